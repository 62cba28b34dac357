package roster

import "errors"

var (
	ErrWorkerNotFound     = errors.New("worker not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrDistrictNotFound   = errors.New("district not found")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrMembershipEnded    = errors.New("membership has already ended")
	ErrAlreadyMember      = errors.New("worker is already an active member of this team")
	ErrNationalIDExists   = errors.New("national ID already registered")
	ErrInvalidEndedReason = errors.New("ended_reason must be one of quit, absent_3days, replaced, other")
)
