package dashboard

import (
	"context"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/roster"
)

// DashboardRepository reads the rows the aggregator needs. A nil teamID reads
// every team. Each method is a single query so the service can run them in parallel.
type DashboardRepository interface {
	ListTeams(ctx context.Context, teamID *string) ([]roster.Team, error)
	ListCases(ctx context.Context, teamID *string) ([]absence.AbsenceCase, error)
	ListActiveMemberships(ctx context.Context, teamID *string) ([]roster.MembershipKey, error)
}
