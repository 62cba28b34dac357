package absence

import (
	"context"
	"time"
)

// CaseRepository - interface for absence_cases table.
// Every transition is a conditional UPDATE whose WHERE clause restates the
// precondition; ErrCaseChanged is returned when no row matched.
type CaseRepository interface {
	Create(ctx context.Context, c AbsenceCase) (AbsenceCase, error)
	GetByID(ctx context.Context, id string) (AbsenceCase, error)
	List(ctx context.Context, filter CaseFilter) ([]AbsenceCase, int64, error)
	ListOpen(ctx context.Context) ([]AbsenceCase, error)

	MarkReceived(ctx context.Context, id string, receivedAt, deadline time.Time) (AbsenceCase, error)
	SetOutcome(ctx context.Context, id string, outcome RecruitmentStatus, replacementName *string, replacementStart *time.Time, at time.Time) (AbsenceCase, error)
	ApproveSwap(ctx context.Context, id string, today, at time.Time) (AbsenceCase, error)
	MarkVacant(ctx context.Context, id string, today, at time.Time) (AbsenceCase, error)
}

// ActionRepository - interface for hr_case_actions and their documents
type ActionRepository interface {
	Create(ctx context.Context, action HrCaseAction) (HrCaseAction, error)
	ListByCaseID(ctx context.Context, caseID string) ([]HrCaseAction, error)
}

// VacancyRepository - interface for vacancy_periods table
type VacancyRepository interface {
	Create(ctx context.Context, v VacancyPeriod) (VacancyPeriod, error)
	GetByCaseID(ctx context.Context, caseID string) (VacancyPeriod, error)
}

// EventPublisher receives committed transitions. Implementations must not block.
type EventPublisher interface {
	Publish(ctx context.Context, event CaseEvent)
}

// CaseArchiver renders and stores a case document.
type CaseArchiver interface {
	Render(ctx context.Context, c AbsenceCase, actions []HrCaseAction) ([]byte, error)
	Archive(ctx context.Context, c AbsenceCase, actions []HrCaseAction) (string, error)
}
