package postgresql

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTransaction_Commit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	db := database.NewDB(mock)
	mock.ExpectBegin()
	mock.ExpectCommit()

	err = WithTransaction(context.Background(), db, func(txCtx context.Context) error {
		_, ok := txCtx.Value(txContextKey{}).(pgx.Tx)
		assert.True(t, ok, "transaction not injected into context")
		return nil
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransaction_RollbackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	db := database.NewDB(mock)
	mock.ExpectBegin()
	mock.ExpectRollback()

	want := errors.New("boom")
	err = WithTransaction(context.Background(), db, func(txCtx context.Context) error {
		return want
	})

	assert.ErrorIs(t, err, want)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransaction_NestedReusesTx(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	db := database.NewDB(mock)
	mock.ExpectBegin()
	mock.ExpectCommit()

	err = WithTransaction(context.Background(), db, func(outer context.Context) error {
		return WithTransaction(outer, db, func(inner context.Context) error {
			assert.Equal(t, GetQuerier(outer, db), GetQuerier(inner, db))
			return nil
		})
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransaction_BeginFailureIsDependencyError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	called := false
	err = NewTransactor(database.NewDB(mock)).WithinTransaction(context.Background(), func(context.Context) error {
		called = true
		return nil
	})

	var dep *database.DependencyError
	assert.ErrorAs(t, err, &dep)
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}
