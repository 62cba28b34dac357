package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/roster"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/database"
	"github.com/google/uuid"
)

type workerRepositoryImpl struct {
	db *database.DB
}

func NewWorkerRepository(db *database.DB) roster.WorkerRepository {
	return &workerRepositoryImpl{db: db}
}

// Create implements roster.WorkerRepository.
func (r *workerRepositoryImpl) Create(ctx context.Context, w roster.Worker) (roster.Worker, error) {
	q := GetQuerier(ctx, r.db)

	if w.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return roster.Worker{}, fmt.Errorf("generate worker id: %w", err)
		}
		w.ID = id.String()
	}
	if w.Status == "" {
		w.Status = roster.WorkerActive
	}

	query := `
		INSERT INTO workers (id, full_name, national_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	err := q.QueryRow(ctx, query, w.ID, w.FullName, w.NationalID, w.Status).Scan(&w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if _, ok := database.ConstraintError(err, database.UniqueViolation); ok {
			return roster.Worker{}, roster.ErrNationalIDExists
		}
		return roster.Worker{}, database.Dependency("create worker", err)
	}
	return w, nil
}

// GetByID implements roster.WorkerRepository.
func (r *workerRepositoryImpl) GetByID(ctx context.Context, id string) (roster.Worker, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, full_name, national_id, status, created_at, updated_at
		FROM workers
		WHERE id = $1
	`
	var w roster.Worker
	err := q.QueryRow(ctx, query, id).Scan(&w.ID, &w.FullName, &w.NationalID, &w.Status, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return roster.Worker{}, translateLookupError("get worker", err, roster.ErrWorkerNotFound)
	}
	return w, nil
}

// UpdateStatus implements roster.WorkerRepository.
func (r *workerRepositoryImpl) UpdateStatus(ctx context.Context, id string, status roster.WorkerStatus) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE workers SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return translateLookupError("update worker status", err, roster.ErrWorkerNotFound)
	}
	if tag.RowsAffected() == 0 {
		return roster.ErrWorkerNotFound
	}
	return nil
}
