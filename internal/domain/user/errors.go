package user

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserEmailExists = errors.New("email already registered")
	ErrInvalidRole     = errors.New("invalid role")
	ErrForbidden       = errors.New("insufficient permissions")
	ErrTeamRequired    = errors.New("team lead account has no team assigned")
	ErrUnauthenticated = errors.New("caller identity is missing")
)
