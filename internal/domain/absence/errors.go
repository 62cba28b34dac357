package absence

import "errors"

var (
	ErrCaseNotFound    = errors.New("case not found")
	ErrVacancyNotFound = errors.New("vacancy period not found")

	// Transition preconditions
	ErrAlreadyReceived    = errors.New("case has already been received")
	ErrNotReceived        = errors.New("case has not been received yet")
	ErrAlreadyFinalized   = errors.New("case is already finalized")
	ErrOutcomeNotFound    = errors.New("recruitment outcome is not found")
	ErrOutcomeNotNotFound = errors.New("recruitment outcome is not not_found")
	ErrDeadlineNotSet     = errors.New("SLA deadline has not been set")
	ErrDeadlinePassed     = errors.New("SLA deadline has passed")
	ErrDeadlineNotPassed  = errors.New("SLA deadline has not passed yet")
	ErrCaseChanged        = errors.New("case was modified concurrently")
	ErrDuplicateOpenCase  = errors.New("worker already has an open case in this team")

	ErrNotOwnTeam        = errors.New("case belongs to another team")
	ErrWorkerNotInTeam   = errors.New("worker is not an active member of your team")
	ErrInvalidReason     = errors.New("reason must be one of absent, missing, quit")
	ErrInvalidOutcome    = errors.New("outcome must be found or not_found")
	ErrDocumentsRequired = errors.New("at least one document is required")
)

var conflicts = []error{
	ErrAlreadyReceived,
	ErrNotReceived,
	ErrAlreadyFinalized,
	ErrOutcomeNotFound,
	ErrOutcomeNotNotFound,
	ErrDeadlineNotSet,
	ErrDeadlinePassed,
	ErrDeadlineNotPassed,
	ErrCaseChanged,
	ErrDuplicateOpenCase,
}

// IsConflict reports whether err is an unmet case-state precondition.
func IsConflict(err error) bool {
	for _, c := range conflicts {
		if errors.Is(err, c) {
			return true
		}
	}
	return false
}
