package postgresql

import (
	"errors"

	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// translateLookupError maps errors of single-row lookups. notFound is
// returned for missing rows and malformed identifiers.
func translateLookupError(op string, err error, notFound error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	if _, ok := database.ConstraintError(err, database.InvalidTextRepresentation); ok {
		return notFound
	}
	return database.Dependency(op, err)
}
