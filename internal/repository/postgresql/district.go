package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/roster"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/database"
	"github.com/google/uuid"
)

type districtRepositoryImpl struct {
	db *database.DB
}

func NewDistrictRepository(db *database.DB) roster.DistrictRepository {
	return &districtRepositoryImpl{db: db}
}

// Create implements roster.DistrictRepository.
func (r *districtRepositoryImpl) Create(ctx context.Context, d roster.District) (roster.District, error) {
	q := GetQuerier(ctx, r.db)

	if d.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return roster.District{}, fmt.Errorf("generate district id: %w", err)
		}
		d.ID = id.String()
	}

	err := q.QueryRow(ctx, `INSERT INTO districts (id, name) VALUES ($1, $2) RETURNING created_at`, d.ID, d.Name).Scan(&d.CreatedAt)
	if err != nil {
		return roster.District{}, database.Dependency("create district", err)
	}
	return d, nil
}

// GetByID implements roster.DistrictRepository.
func (r *districtRepositoryImpl) GetByID(ctx context.Context, id string) (roster.District, error) {
	q := GetQuerier(ctx, r.db)

	var d roster.District
	err := q.QueryRow(ctx, `SELECT id, name, created_at FROM districts WHERE id = $1`, id).Scan(&d.ID, &d.Name, &d.CreatedAt)
	if err != nil {
		return roster.District{}, translateLookupError("get district", err, roster.ErrDistrictNotFound)
	}
	return d, nil
}

// List implements roster.DistrictRepository.
func (r *districtRepositoryImpl) List(ctx context.Context) ([]roster.District, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT id, name, created_at FROM districts ORDER BY name ASC`)
	if err != nil {
		return nil, database.Dependency("list districts", err)
	}
	defer rows.Close()

	districts := make([]roster.District, 0)
	for rows.Next() {
		var d roster.District
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt); err != nil {
			return nil, database.Dependency("scan district", err)
		}
		districts = append(districts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Dependency("list districts", err)
	}
	return districts, nil
}
