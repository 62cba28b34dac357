package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type vacancyPeriodRepositoryImpl struct {
	db *database.DB
}

func NewVacancyPeriodRepository(db *database.DB) absence.VacancyRepository {
	return &vacancyPeriodRepositoryImpl{db: db}
}

// Create implements absence.VacancyRepository. A second vacancy for the same
// case violates the case_id unique key and is reported as a changed case.
func (r *vacancyPeriodRepositoryImpl) Create(ctx context.Context, v absence.VacancyPeriod) (absence.VacancyPeriod, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return absence.VacancyPeriod{}, fmt.Errorf("generate vacancy id: %w", err)
	}
	v.ID = id.String()

	query := `
		INSERT INTO vacancy_periods (id, case_id, team_id, started_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	if err := q.QueryRow(ctx, query, v.ID, v.CaseID, v.TeamID, v.StartedAt).Scan(&v.CreatedAt); err != nil {
		if _, ok := database.ConstraintError(err, database.UniqueViolation); ok {
			return absence.VacancyPeriod{}, absence.ErrCaseChanged
		}
		return absence.VacancyPeriod{}, database.Dependency("create vacancy period", err)
	}
	return v, nil
}

// GetByCaseID implements absence.VacancyRepository.
func (r *vacancyPeriodRepositoryImpl) GetByCaseID(ctx context.Context, caseID string) (absence.VacancyPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, case_id, team_id, started_at, created_at
		FROM vacancy_periods
		WHERE case_id = $1
	`
	var v absence.VacancyPeriod
	err := q.QueryRow(ctx, query, caseID).Scan(&v.ID, &v.CaseID, &v.TeamID, &v.StartedAt, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return absence.VacancyPeriod{}, absence.ErrVacancyNotFound
		}
		if _, ok := database.ConstraintError(err, database.InvalidTextRepresentation); ok {
			return absence.VacancyPeriod{}, absence.ErrVacancyNotFound
		}
		return absence.VacancyPeriod{}, database.Dependency("get vacancy period", err)
	}
	return v, nil
}
