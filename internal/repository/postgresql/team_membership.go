package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/roster"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/database"
	"github.com/google/uuid"
)

const activeMembershipIndex = "uq_team_memberships_active"

const membershipSelect = `
	SELECT m.id, m.worker_id, m.team_id, m.start_date, m.end_date, m.ended_reason, m.active, m.created_at,
		   w.full_name, w.national_id, w.status
	FROM team_memberships m
	INNER JOIN workers w ON w.id = m.worker_id
`

type teamMembershipRepositoryImpl struct {
	db *database.DB
}

func NewTeamMembershipRepository(db *database.DB) roster.MembershipRepository {
	return &teamMembershipRepositoryImpl{db: db}
}

func scanMembership(row interface{ Scan(dest ...any) error }) (roster.TeamMembership, error) {
	var m roster.TeamMembership
	err := row.Scan(
		&m.ID,
		&m.WorkerID,
		&m.TeamID,
		&m.StartDate,
		&m.EndDate,
		&m.EndedReason,
		&m.Active,
		&m.CreatedAt,
		&m.WorkerName,
		&m.NationalID,
		&m.WorkerStatus,
	)
	return m, err
}

// Create implements roster.MembershipRepository.
func (r *teamMembershipRepositoryImpl) Create(ctx context.Context, m roster.TeamMembership) (roster.TeamMembership, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return roster.TeamMembership{}, fmt.Errorf("generate membership id: %w", err)
	}
	m.ID = id.String()
	m.Active = true

	query := `
		INSERT INTO team_memberships (id, worker_id, team_id, start_date, active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING created_at
	`
	if err := q.QueryRow(ctx, query, m.ID, m.WorkerID, m.TeamID, m.StartDate).Scan(&m.CreatedAt); err != nil {
		if name, ok := database.ConstraintError(err, database.UniqueViolation); ok && name == activeMembershipIndex {
			return roster.TeamMembership{}, roster.ErrAlreadyMember
		}
		if _, ok := database.ConstraintError(err, database.ForeignKeyViolation); ok {
			return roster.TeamMembership{}, roster.ErrTeamNotFound
		}
		return roster.TeamMembership{}, database.Dependency("create membership", err)
	}
	return m, nil
}

// GetByID implements roster.MembershipRepository.
func (r *teamMembershipRepositoryImpl) GetByID(ctx context.Context, id string) (roster.TeamMembership, error) {
	q := GetQuerier(ctx, r.db)

	m, err := scanMembership(q.QueryRow(ctx, membershipSelect+` WHERE m.id = $1`, id))
	if err != nil {
		return roster.TeamMembership{}, translateLookupError("get membership", err, roster.ErrMembershipNotFound)
	}
	return m, nil
}

// GetActive implements roster.MembershipRepository.
func (r *teamMembershipRepositoryImpl) GetActive(ctx context.Context, teamID, workerID string) (roster.TeamMembership, error) {
	q := GetQuerier(ctx, r.db)

	query := membershipSelect + ` WHERE m.team_id = $1 AND m.worker_id = $2 AND m.active`
	m, err := scanMembership(q.QueryRow(ctx, query, teamID, workerID))
	if err != nil {
		return roster.TeamMembership{}, translateLookupError("get active membership", err, roster.ErrMembershipNotFound)
	}
	return m, nil
}

// ListByTeam implements roster.MembershipRepository.
func (r *teamMembershipRepositoryImpl) ListByTeam(ctx context.Context, teamID string, activeOnly bool) ([]roster.TeamMembership, error) {
	q := GetQuerier(ctx, r.db)

	query := membershipSelect + ` WHERE m.team_id = $1`
	if activeOnly {
		query += ` AND m.active`
	}
	query += ` ORDER BY m.active DESC, w.full_name ASC, m.start_date DESC`

	rows, err := q.Query(ctx, query, teamID)
	if err != nil {
		return nil, translateLookupError("list memberships", err, roster.ErrTeamNotFound)
	}
	defer rows.Close()

	members := make([]roster.TeamMembership, 0)
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, database.Dependency("scan membership", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Dependency("list memberships", err)
	}
	return members, nil
}

// ListActiveKeys implements roster.MembershipRepository.
func (r *teamMembershipRepositoryImpl) ListActiveKeys(ctx context.Context, teamID *string) ([]roster.MembershipKey, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT team_id, worker_id FROM team_memberships WHERE active`
	args := []interface{}{}
	if teamID != nil {
		query += ` AND team_id = $1`
		args = append(args, *teamID)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, translateLookupError("list active memberships", err, roster.ErrTeamNotFound)
	}
	defer rows.Close()

	keys := make([]roster.MembershipKey, 0)
	for rows.Next() {
		var k roster.MembershipKey
		if err := rows.Scan(&k.TeamID, &k.WorkerID); err != nil {
			return nil, database.Dependency("scan membership key", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Dependency("list active memberships", err)
	}
	return keys, nil
}

// End implements roster.MembershipRepository.
func (r *teamMembershipRepositoryImpl) End(ctx context.Context, id string, endDate time.Time, reason roster.EndedReason) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE team_memberships
		SET active = FALSE, end_date = $2, ended_reason = $3
		WHERE id = $1 AND active
	`
	tag, err := q.Exec(ctx, query, id, endDate, reason)
	if err != nil {
		return translateLookupError("end membership", err, roster.ErrMembershipNotFound)
	}
	if tag.RowsAffected() == 0 {
		return roster.ErrMembershipEnded
	}
	return nil
}

// CountActiveByWorker implements roster.MembershipRepository.
func (r *teamMembershipRepositoryImpl) CountActiveByWorker(ctx context.Context, workerID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM team_memberships WHERE worker_id = $1 AND active`, workerID).Scan(&count)
	if err != nil {
		return 0, translateLookupError("count memberships", err, roster.ErrWorkerNotFound)
	}
	return count, nil
}
