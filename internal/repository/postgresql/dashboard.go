package postgresql

import (
	"context"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/roster"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/database"
)

type dashboardRepositoryImpl struct {
	db          *database.DB
	teams       roster.TeamRepository
	memberships roster.MembershipRepository
}

func NewDashboardRepository(db *database.DB) dashboard.DashboardRepository {
	return &dashboardRepositoryImpl{
		db:          db,
		teams:       NewTeamRepository(db),
		memberships: NewTeamMembershipRepository(db),
	}
}

// ListTeams returns teams with their active headcount in a single query.
func (r *dashboardRepositoryImpl) ListTeams(ctx context.Context, teamID *string) ([]roster.Team, error) {
	return r.teams.List(ctx, teamID)
}

// ListCases returns every case in scope, open and finalized, since finalized
// cases still move a team's last update.
func (r *dashboardRepositoryImpl) ListCases(ctx context.Context, teamID *string) ([]absence.AbsenceCase, error) {
	q := GetQuerier(ctx, r.db)

	query := caseSelect + `FROM absence_cases c` + caseJoins
	args := []interface{}{}
	if teamID != nil {
		query += ` WHERE c.team_id = $1`
		args = append(args, *teamID)
	}
	query += ` ORDER BY c.reported_at DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, translateCaseError("dashboard cases", err)
	}
	defer rows.Close()

	cases := make([]absence.AbsenceCase, 0)
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, translateCaseError("scan case", err)
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, translateCaseError("dashboard cases", err)
	}
	return cases, nil
}

// ListActiveMemberships returns the active (team, worker) pairs used for orphan detection.
func (r *dashboardRepositoryImpl) ListActiveMemberships(ctx context.Context, teamID *string) ([]roster.MembershipKey, error) {
	return r.memberships.ListActiveKeys(ctx, teamID)
}
