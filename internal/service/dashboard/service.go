package dashboard

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/roster"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/clock"
	"golang.org/x/sync/errgroup"
)

type DashboardServiceImpl struct {
	dashboard.DashboardRepository
	clock clock.Clock
}

func NewDashboardService(repo dashboard.DashboardRepository, clk clock.Clock) dashboard.DashboardService {
	if clk == nil {
		clk = clock.Real()
	}
	return &DashboardServiceImpl{
		DashboardRepository: repo,
		clock:               clk,
	}
}

// scope returns the team the actor is limited to, or nil for every team.
func (s *DashboardServiceImpl) scope(actor user.Actor) (*string, error) {
	if actor.UserID == "" {
		return nil, user.ErrUnauthenticated
	}
	if actor.Can(user.PermissionDashboardViewAll) {
		return nil, nil
	}
	if !actor.Can(user.PermissionDashboardViewOwnTeam) {
		return nil, fmt.Errorf("%w: dashboard", user.ErrForbidden)
	}
	if actor.TeamID == nil {
		return nil, user.ErrTeamRequired
	}
	return actor.TeamID, nil
}

// GetDashboard implements dashboard.DashboardService.
func (s *DashboardServiceImpl) GetDashboard(ctx context.Context, actor user.Actor) (*dashboard.DashboardResponse, error) {
	teamID, err := s.scope(actor)
	if err != nil {
		return nil, err
	}
	return s.build(ctx, teamID)
}

// GetTeamDashboard implements dashboard.DashboardService.
func (s *DashboardServiceImpl) GetTeamDashboard(ctx context.Context, actor user.Actor, teamID string) (*dashboard.DashboardResponse, error) {
	scoped, err := s.scope(actor)
	if err != nil {
		return nil, err
	}
	if scoped != nil && *scoped != teamID {
		return nil, fmt.Errorf("%w: team belongs to another lead", user.ErrForbidden)
	}

	resp, err := s.build(ctx, &teamID)
	if err != nil {
		return nil, err
	}
	if len(resp.Teams) == 0 {
		return nil, roster.ErrTeamNotFound
	}
	return resp, nil
}

// build reads teams, cases and memberships in parallel to keep the read window short.
func (s *DashboardServiceImpl) build(ctx context.Context, teamID *string) (*dashboard.DashboardResponse, error) {
	today := s.clock.Now()

	var (
		teams  []roster.Team
		cases  []absence.AbsenceCase
		active []roster.MembershipKey
	)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Teams with headcount
	g.Go(func() error {
		var err error
		teams, err = s.ListTeams(gCtx, teamID)
		return err
	})

	// 2. Cases with joined names
	g.Go(func() error {
		var err error
		cases, err = s.ListCases(gCtx, teamID)
		return err
	})

	// 3. Active memberships for orphan detection
	g.Go(func() error {
		var err error
		active, err = s.ListActiveMemberships(gCtx, teamID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := dashboard.Aggregate(today, teams, cases, active)
	return &resp, nil
}
