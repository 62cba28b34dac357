package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const openCaseIndex = "uq_absence_cases_open_worker"

// caseSelect projects a case row aliased c with its team, worker and district names.
const caseSelect = `
	SELECT c.id, c.team_id, c.worker_id, c.membership_id,
		   c.reason, c.reported_at, c.last_seen_date, c.note, c.reported_by,
		   c.hr_status, c.hr_received_at, c.document_sent, c.sla_deadline_at,
		   c.recruitment_status, c.recruitment_updated_at, c.replacement_worker_name, c.replacement_start_date,
		   c.final_status, c.hr_swap_approved_at, c.created_at, c.updated_at,
		   t.name, w.full_name, t.district_id, d.name,
		   NOT EXISTS (
			   SELECT 1 FROM team_memberships m
			   WHERE m.team_id = c.team_id AND m.worker_id = c.worker_id AND m.active
		   ) AS removed_from_team
`

const caseJoins = `
	INNER JOIN teams t ON t.id = c.team_id
	INNER JOIN workers w ON w.id = c.worker_id
	LEFT JOIN districts d ON d.id = t.district_id
`

type absenceCaseRepositoryImpl struct {
	db *database.DB
}

func NewAbsenceCaseRepository(db *database.DB) absence.CaseRepository {
	return &absenceCaseRepositoryImpl{db: db}
}

func scanCase(row pgx.Row) (absence.AbsenceCase, error) {
	var c absence.AbsenceCase
	err := row.Scan(
		&c.ID,
		&c.TeamID,
		&c.WorkerID,
		&c.MembershipID,
		&c.Reason,
		&c.ReportedAt,
		&c.LastSeenDate,
		&c.Note,
		&c.ReportedBy,
		&c.HRStatus,
		&c.HRReceivedAt,
		&c.DocumentSent,
		&c.SLADeadlineAt,
		&c.RecruitmentStatus,
		&c.RecruitmentUpdatedAt,
		&c.ReplacementWorkerName,
		&c.ReplacementStartDate,
		&c.FinalStatus,
		&c.HRSwapApprovedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.TeamName,
		&c.WorkerName,
		&c.DistrictID,
		&c.DistrictName,
		&c.RemovedFromTeam,
	)
	return c, err
}

// translateCaseError maps driver errors onto the absence domain.
func translateCaseError(op string, err error) error {
	if name, ok := database.ConstraintError(err, database.UniqueViolation); ok && name == openCaseIndex {
		return absence.ErrDuplicateOpenCase
	}
	return translateLookupError(op, err, absence.ErrCaseNotFound)
}

// Create implements absence.CaseRepository.
func (r *absenceCaseRepositoryImpl) Create(ctx context.Context, c absence.AbsenceCase) (absence.AbsenceCase, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return absence.AbsenceCase{}, fmt.Errorf("generate case id: %w", err)
	}

	query := `
		INSERT INTO absence_cases (
			id, team_id, worker_id, membership_id, reason, reported_at, last_seen_date, note, reported_by,
			hr_status, recruitment_status, final_status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $6, $6)
		RETURNING id, created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		id.String(),
		c.TeamID,
		c.WorkerID,
		c.MembershipID,
		c.Reason,
		c.ReportedAt,
		c.LastSeenDate,
		c.Note,
		c.ReportedBy,
		c.HRStatus,
		c.RecruitmentStatus,
		c.FinalStatus,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return absence.AbsenceCase{}, translateCaseError("create case", err)
	}

	return c, nil
}

// GetByID implements absence.CaseRepository.
func (r *absenceCaseRepositoryImpl) GetByID(ctx context.Context, id string) (absence.AbsenceCase, error) {
	q := GetQuerier(ctx, r.db)

	query := caseSelect + `FROM absence_cases c` + caseJoins + `WHERE c.id = $1`

	c, err := scanCase(q.QueryRow(ctx, query, id))
	if err != nil {
		return absence.AbsenceCase{}, translateCaseError("get case", err)
	}
	return c, nil
}

// List implements absence.CaseRepository.
func (r *absenceCaseRepositoryImpl) List(ctx context.Context, filter absence.CaseFilter) ([]absence.AbsenceCase, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "WHERE 1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.TeamID != nil {
		baseWhere += fmt.Sprintf(" AND c.team_id = $%d", argIdx)
		args = append(args, *filter.TeamID)
		argIdx++
	}
	if filter.DistrictID != nil {
		baseWhere += fmt.Sprintf(" AND t.district_id = $%d", argIdx)
		args = append(args, *filter.DistrictID)
		argIdx++
	}
	if filter.FinalStatus != nil {
		baseWhere += fmt.Sprintf(" AND c.final_status = $%d", argIdx)
		args = append(args, *filter.FinalStatus)
		argIdx++
	}
	if filter.OpenOnly {
		baseWhere += " AND c.final_status = 'open'"
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM absence_cases c` + caseJoins + baseWhere
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, translateCaseError("count cases", err)
	}

	query := caseSelect + `FROM absence_cases c` + caseJoins + baseWhere +
		fmt.Sprintf(" ORDER BY c.reported_at DESC, c.id DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, translateCaseError("list cases", err)
	}
	defer rows.Close()

	cases := make([]absence.AbsenceCase, 0)
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, 0, translateCaseError("scan case", err)
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translateCaseError("list cases", err)
	}

	return cases, total, nil
}

// ListOpen implements absence.CaseRepository.
func (r *absenceCaseRepositoryImpl) ListOpen(ctx context.Context) ([]absence.AbsenceCase, error) {
	q := GetQuerier(ctx, r.db)

	query := caseSelect + `FROM absence_cases c` + caseJoins + `
		WHERE c.final_status = 'open'
		ORDER BY c.sla_deadline_at ASC NULLS LAST, c.reported_at ASC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, translateCaseError("list open cases", err)
	}
	defer rows.Close()

	var cases []absence.AbsenceCase
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, translateCaseError("scan case", err)
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, translateCaseError("list open cases", err)
	}
	return cases, nil
}

// transition runs a guarded UPDATE wrapped in a CTE so the updated row comes
// back with its joined display fields. No returned row means the guard failed.
func (r *absenceCaseRepositoryImpl) transition(ctx context.Context, op, update string, args ...interface{}) (absence.AbsenceCase, error) {
	q := GetQuerier(ctx, r.db)

	query := `WITH c AS (` + update + ` RETURNING *)` + caseSelect + `FROM c` + caseJoins

	c, err := scanCase(q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return absence.AbsenceCase{}, absence.ErrCaseChanged
	}
	if err != nil {
		// A malformed id aborts the enclosing transaction, so it is reported
		// as not found here instead of being re-read.
		return absence.AbsenceCase{}, translateCaseError(op, err)
	}
	return c, nil
}

// MarkReceived implements absence.CaseRepository.
func (r *absenceCaseRepositoryImpl) MarkReceived(ctx context.Context, id string, receivedAt, deadline time.Time) (absence.AbsenceCase, error) {
	return r.transition(ctx, "receive case", `
		UPDATE absence_cases
		SET hr_received_at = $2,
			sla_deadline_at = $3,
			hr_status = 'in_sla',
			document_sent = TRUE,
			updated_at = $2
		WHERE id = $1
		  AND hr_status = 'pending'
		  AND hr_received_at IS NULL
		  AND final_status = 'open'`,
		id, receivedAt, deadline,
	)
}

// SetOutcome implements absence.CaseRepository.
func (r *absenceCaseRepositoryImpl) SetOutcome(ctx context.Context, id string, outcome absence.RecruitmentStatus, replacementName *string, replacementStart *time.Time, at time.Time) (absence.AbsenceCase, error) {
	return r.transition(ctx, "record outcome", `
		UPDATE absence_cases
		SET recruitment_status = $2,
			replacement_worker_name = $3,
			replacement_start_date = $4,
			recruitment_updated_at = $5,
			updated_at = $5
		WHERE id = $1
		  AND final_status = 'open'
		  AND hr_received_at IS NOT NULL`,
		id, outcome, replacementName, replacementStart, at,
	)
}

// ApproveSwap implements absence.CaseRepository.
func (r *absenceCaseRepositoryImpl) ApproveSwap(ctx context.Context, id string, today, at time.Time) (absence.AbsenceCase, error) {
	return r.transition(ctx, "approve swap", `
		UPDATE absence_cases
		SET hr_swap_approved_at = $3,
			final_status = 'swapped',
			hr_status = 'closed',
			updated_at = $3
		WHERE id = $1
		  AND final_status = 'open'
		  AND recruitment_status = 'found'
		  AND sla_deadline_at IS NOT NULL
		  AND sla_deadline_at >= $2::date`,
		id, today, at,
	)
}

// MarkVacant implements absence.CaseRepository.
func (r *absenceCaseRepositoryImpl) MarkVacant(ctx context.Context, id string, today, at time.Time) (absence.AbsenceCase, error) {
	return r.transition(ctx, "mark vacant", `
		UPDATE absence_cases
		SET final_status = 'vacant',
			hr_status = 'sla_expired',
			updated_at = $3
		WHERE id = $1
		  AND final_status = 'open'
		  AND recruitment_status = 'not_found'
		  AND sla_deadline_at IS NOT NULL
		  AND sla_deadline_at < $2::date`,
		id, today, at,
	)
}
