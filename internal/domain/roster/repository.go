package roster

import (
	"context"
	"time"
)

type WorkerRepository interface {
	Create(ctx context.Context, w Worker) (Worker, error)
	GetByID(ctx context.Context, id string) (Worker, error)
	UpdateStatus(ctx context.Context, id string, status WorkerStatus) error
}

type TeamRepository interface {
	Create(ctx context.Context, t Team) (Team, error)
	GetByID(ctx context.Context, id string) (Team, error)
	// List returns teams with their active headcount, optionally limited to one team.
	List(ctx context.Context, teamID *string) ([]Team, error)
	UpdateDistrict(ctx context.Context, teamID string, districtID *string) error
}

type DistrictRepository interface {
	Create(ctx context.Context, d District) (District, error)
	GetByID(ctx context.Context, id string) (District, error)
	List(ctx context.Context) ([]District, error)
}

// MembershipRepository - interface for team_memberships table
type MembershipRepository interface {
	Create(ctx context.Context, m TeamMembership) (TeamMembership, error)
	GetByID(ctx context.Context, id string) (TeamMembership, error)
	// GetActive returns the active membership of worker in team.
	GetActive(ctx context.Context, teamID, workerID string) (TeamMembership, error)
	ListByTeam(ctx context.Context, teamID string, activeOnly bool) ([]TeamMembership, error)
	// ListActiveKeys returns every active (team, worker) pair, optionally limited to one team.
	ListActiveKeys(ctx context.Context, teamID *string) ([]MembershipKey, error)
	// End closes an active membership; ErrMembershipEnded when it is no longer active.
	End(ctx context.Context, id string, endDate time.Time, reason EndedReason) error
	CountActiveByWorker(ctx context.Context, workerID string) (int, error)
}
