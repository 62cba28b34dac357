package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/roster"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/database"
	"github.com/google/uuid"
)

type teamRepositoryImpl struct {
	db *database.DB
}

func NewTeamRepository(db *database.DB) roster.TeamRepository {
	return &teamRepositoryImpl{db: db}
}

const teamSelect = `
	SELECT t.id, t.name, t.capacity, t.district_id, d.name, t.created_at, t.updated_at,
		   (SELECT COUNT(*) FROM team_memberships m WHERE m.team_id = t.id AND m.active) AS headcount
	FROM teams t
	LEFT JOIN districts d ON d.id = t.district_id
`

func scanTeam(row interface{ Scan(dest ...any) error }) (roster.Team, error) {
	var t roster.Team
	err := row.Scan(&t.ID, &t.Name, &t.Capacity, &t.DistrictID, &t.DistrictName, &t.CreatedAt, &t.UpdatedAt, &t.Headcount)
	return t, err
}

// Create implements roster.TeamRepository.
func (r *teamRepositoryImpl) Create(ctx context.Context, t roster.Team) (roster.Team, error) {
	q := GetQuerier(ctx, r.db)

	if t.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return roster.Team{}, fmt.Errorf("generate team id: %w", err)
		}
		t.ID = id.String()
	}

	query := `
		INSERT INTO teams (id, name, capacity, district_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	if err := q.QueryRow(ctx, query, t.ID, t.Name, t.Capacity, t.DistrictID).Scan(&t.CreatedAt, &t.UpdatedAt); err != nil {
		if _, ok := database.ConstraintError(err, database.ForeignKeyViolation); ok {
			return roster.Team{}, roster.ErrDistrictNotFound
		}
		return roster.Team{}, database.Dependency("create team", err)
	}
	return t, nil
}

// GetByID implements roster.TeamRepository.
func (r *teamRepositoryImpl) GetByID(ctx context.Context, id string) (roster.Team, error) {
	q := GetQuerier(ctx, r.db)

	t, err := scanTeam(q.QueryRow(ctx, teamSelect+` WHERE t.id = $1`, id))
	if err != nil {
		return roster.Team{}, translateLookupError("get team", err, roster.ErrTeamNotFound)
	}
	return t, nil
}

// List implements roster.TeamRepository.
func (r *teamRepositoryImpl) List(ctx context.Context, teamID *string) ([]roster.Team, error) {
	q := GetQuerier(ctx, r.db)

	query := teamSelect
	args := []interface{}{}
	if teamID != nil {
		query += ` WHERE t.id = $1`
		args = append(args, *teamID)
	}
	query += ` ORDER BY t.name ASC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, translateLookupError("list teams", err, roster.ErrTeamNotFound)
	}
	defer rows.Close()

	teams := make([]roster.Team, 0)
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, database.Dependency("scan team", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Dependency("list teams", err)
	}
	return teams, nil
}

// UpdateDistrict implements roster.TeamRepository. A nil districtID unassigns the team.
func (r *teamRepositoryImpl) UpdateDistrict(ctx context.Context, teamID string, districtID *string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE teams SET district_id = $2, updated_at = NOW() WHERE id = $1`, teamID, districtID)
	if err != nil {
		if _, ok := database.ConstraintError(err, database.ForeignKeyViolation); ok {
			return roster.ErrDistrictNotFound
		}
		return translateLookupError("update team district", err, roster.ErrTeamNotFound)
	}
	if tag.RowsAffected() == 0 {
		return roster.ErrTeamNotFound
	}
	return nil
}
