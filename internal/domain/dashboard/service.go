package dashboard

import (
	"context"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/user"
)

// DashboardService defines the interface for dashboard operations
type DashboardService interface {
	// GetDashboard returns the summary for every team the actor may view.
	GetDashboard(ctx context.Context, actor user.Actor) (*DashboardResponse, error)

	// GetTeamDashboard returns the summary of a single team.
	GetTeamDashboard(ctx context.Context, actor user.Actor, teamID string) (*DashboardResponse, error)
}
