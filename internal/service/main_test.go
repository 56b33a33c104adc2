package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBase(db Transactor) BaseService {
	base := NewBaseService(db, testLogger(), time.Second)
	base.now = func() time.Time { return testNow }

	return base
}

func newMockDBAndTx(t *testing.T) (*sqlx.DB, *sqlx.Tx, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, smock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")

	smock.ExpectBegin()

	tx, err := sqlxDB.Beginx()
	require.NoError(t, err)

	return sqlxDB, tx, smock
}

// sqlmockTransactor hands out a fresh sqlmock transaction per call, so many
// goroutines can run their own transactions at once.
type sqlmockTransactor struct {
	t *testing.T
}

func (s sqlmockTransactor) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	mockDB, smock, err := sqlmock.New()
	if err != nil {
		return nil, err
	}
	s.t.Cleanup(func() { _ = mockDB.Close() })

	smock.MatchExpectationsInOrder(false)
	smock.ExpectBegin()
	smock.ExpectCommit()
	smock.ExpectRollback()

	return sqlx.NewDb(mockDB, "sqlmock").BeginTxx(ctx, opts)
}

// stalledTransactor never gets a connection before the deadline.
type stalledTransactor struct{}

func (stalledTransactor) BeginTxx(ctx context.Context, _ *sql.TxOptions) (*sqlx.Tx, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
