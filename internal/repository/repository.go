// package repository defines the interfaces for the data persistence layer.
// These interfaces abstract the underlying database implementation from the service layer.
package repository

import (
	"context"
	"time"

	"github.com/YusovID/donor-match-service/internal/domain"
	"github.com/YusovID/donor-match-service/internal/geo"
	"github.com/jmoiron/sqlx"
)

// DonorRepository is the donor directory.
type DonorRepository interface {
	// UpsertDonor creates the donor or replaces its profile fields.
	UpsertDonor(ctx context.Context, donor *domain.Donor) (*domain.Donor, error)

	// SetAvailability toggles the donor-controlled availability flag.
	// It returns apperrors.ErrNotFound if the donor does not exist.
	SetAvailability(ctx context.Context, donorID string, isAvailable bool) (*domain.Donor, error)

	// GetDonorByID returns apperrors.ErrNotFound if the donor does not exist.
	GetDonorByID(ctx context.Context, donorID string) (*domain.Donor, error)

	// GetDonorStats counts the donor's donations and the open requests still
	// waiting on its answer. It returns apperrors.ErrNotFound if the donor
	// does not exist.
	GetDonorStats(ctx context.Context, donorID string) (*domain.DonorStats, error)

	// FindCandidates returns available donors of the given types whose location
	// falls inside box. The box is a coarse filter; exact distances are the
	// caller's job.
	FindCandidates(ctx context.Context, types []domain.BloodType, box geo.Box) ([]domain.Donor, error)
}

// RequestQueryRepository defines the read-only blood request operations.
type RequestQueryRepository interface {
	// GetRequestByID retrieves a request without its matches.
	// The ext argument allows this method to be executed within a transaction (*sqlx.Tx)
	// or directly on a DB connection (*sqlx.DB).
	// It returns apperrors.ErrNotFound if the request is not found.
	GetRequestByID(ctx context.Context, ext sqlx.ExtContext, requestID string) (*domain.BloodRequest, error)

	// GetMatches returns the request's matches in rank order.
	GetMatches(ctx context.Context, ext sqlx.ExtContext, requestID string) ([]domain.DonorMatch, error)

	// GetMatchesForRequests returns matches grouped by request id, each group in rank order.
	GetMatchesForRequests(ctx context.Context, requestIDs []string) (map[string][]domain.DonorMatch, error)

	// ListRequests returns requests newest first.
	ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.BloodRequest, error)

	GetStats(ctx context.Context) (*domain.Stats, error)
}

// RequestCommandRepository defines write and locking operations on requests.
// All methods are expected to be executed within a transaction.
type RequestCommandRepository interface {
	// CreateRequest inserts the request and fills in the database-derived fields.
	CreateRequest(ctx context.Context, tx *sqlx.Tx, req *domain.BloodRequest) error

	// InsertMatches stores the ranked match list. A duplicate (request, donor)
	// pair is rejected by the primary key.
	InsertMatches(ctx context.Context, tx *sqlx.Tx, requestID string, matches []domain.DonorMatch) error

	// MarkMatched records that the selector ran for a non-terminal request.
	MarkMatched(ctx context.Context, tx *sqlx.Tx, requestID string) (*domain.BloodRequest, error)

	// GetRequestByIDWithLock retrieves a request and acquires a row-level lock ("FOR UPDATE").
	// It returns apperrors.ErrNotFound if the request is not found.
	GetRequestByIDWithLock(ctx context.Context, tx *sqlx.Tx, requestID string) (*domain.BloodRequest, error)

	// GetMatchForUpdate locks one match row.
	// It returns *apperrors.MatchNotFoundError if the donor was never proposed.
	GetMatchForUpdate(ctx context.Context, tx *sqlx.Tx, requestID, donorID string) (*domain.DonorMatch, error)

	// IncrementFulfilled books one unit if the request still has room and is not
	// cancelled, and returns the updated row. It returns
	// apperrors.ErrRequestAlreadySatisfied when no row qualified.
	IncrementFulfilled(ctx context.Context, tx *sqlx.Tx, requestID string) (*domain.BloodRequest, error)

	// SetMatchStatus moves a proposed match to status. It returns
	// *apperrors.AlreadyDecidedError if the match was no longer proposed.
	SetMatchStatus(ctx context.Context, tx *sqlx.Tx, requestID, donorID string, status domain.MatchStatus, decidedAt time.Time) error

	// CancelRequest sets the cancel flag and returns the updated row.
	CancelRequest(ctx context.Context, tx *sqlx.Tx, requestID string) (*domain.BloodRequest, error)

	CreateDonation(ctx context.Context, tx *sqlx.Tx, donation *domain.Donation) error

	// AppendEvent writes the event to the audit trail.
	AppendEvent(ctx context.Context, tx *sqlx.Tx, event domain.RequestEvent) error
}
