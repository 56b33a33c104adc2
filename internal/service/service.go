package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/YusovID/donor-match-service/internal/apperrors"
	"github.com/YusovID/donor-match-service/pkg/logger/sl"
	"github.com/jmoiron/sqlx"
)

const defaultStorageTimeout = 3 * time.Second

type Transactor interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type BaseService struct {
	db      Transactor
	log     *slog.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewBaseService bounds every storage call made through it by timeout.
// A non-positive timeout falls back to three seconds.
func NewBaseService(db Transactor, log *slog.Logger, timeout time.Duration) BaseService {
	if timeout <= 0 {
		timeout = defaultStorageTimeout
	}

	return BaseService{
		db:      db,
		log:     log,
		timeout: timeout,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// transaction runs fn in one transaction under the storage timeout. Nothing
// is committed unless fn returns nil.
func (s *BaseService) transaction(ctx context.Context, op string, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.runTx(ctx, op, fn)

	return s.storageError(ctx, op, err)
}

func (s *BaseService) runTx(ctx context.Context, op string, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			s.log.Error("failed to rollback transaction", sl.Err(err))
		}
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return nil
}

// read runs a non-transactional storage call under the storage timeout.
func (s *BaseService) read(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.storageError(ctx, op, fn(ctx))
}

// storageError turns infrastructure failures caused by the storage deadline
// into ErrStorageTimeout. Domain errors pass through untouched.
func (s *BaseService) storageError(ctx context.Context, op string, err error) error {
	if err == nil || apperrors.IsDomain(err) {
		return err
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		s.log.Warn("storage call timed out", slog.String("op", op), slog.Duration("timeout", s.timeout), sl.Err(err))
		return fmt.Errorf("%s: %w: %v", op, apperrors.ErrStorageTimeout, err)
	}

	return err
}
