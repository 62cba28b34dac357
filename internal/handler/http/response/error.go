package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/roster"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Case state preconditions carry their exact reason
	if absence.IsConflict(err) {
		Conflict(w, err.Error())
		return
	}

	switch {
	// Identity
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrRefreshTokenRevoked),
		errors.Is(err, auth.ErrUnauthorized),
		errors.Is(err, user.ErrUnauthenticated):
		Unauthorized(w, err.Error())

	// Authorization
	case errors.Is(err, user.ErrForbidden),
		errors.Is(err, user.ErrTeamRequired),
		errors.Is(err, absence.ErrNotOwnTeam),
		errors.Is(err, absence.ErrWorkerNotInTeam):
		Forbidden(w, err.Error())

	// Not found
	case errors.Is(err, absence.ErrCaseNotFound),
		errors.Is(err, absence.ErrVacancyNotFound),
		errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, roster.ErrWorkerNotFound),
		errors.Is(err, roster.ErrTeamNotFound),
		errors.Is(err, roster.ErrDistrictNotFound),
		errors.Is(err, roster.ErrMembershipNotFound):
		NotFound(w, err.Error())

	// Invalid input detected past DTO validation
	case errors.Is(err, absence.ErrInvalidReason),
		errors.Is(err, absence.ErrInvalidOutcome),
		errors.Is(err, absence.ErrDocumentsRequired),
		errors.Is(err, roster.ErrInvalidEndedReason),
		errors.Is(err, user.ErrInvalidRole):
		UnprocessableEntity(w, err.Error())

	// Roster conflicts
	case errors.Is(err, roster.ErrAlreadyMember),
		errors.Is(err, roster.ErrMembershipEnded),
		errors.Is(err, roster.ErrNationalIDExists),
		errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, err.Error())

	default:
		var dep *database.DependencyError
		if errors.As(err, &dep) {
			ServiceUnavailable(w, dep.Error())
			return
		}
		InternalServerError(w, "An unexpected error occurred")
	}
}
