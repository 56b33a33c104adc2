package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/YusovID/donor-match-service/internal/domain"
	"github.com/YusovID/donor-match-service/internal/geo"
	"github.com/YusovID/donor-match-service/internal/notify"
	"github.com/YusovID/donor-match-service/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
)

type DonorRepositoryMock struct {
	mock.Mock
}

var _ repository.DonorRepository = (*DonorRepositoryMock)(nil)

func (m *DonorRepositoryMock) UpsertDonor(ctx context.Context, donor *domain.Donor) (*domain.Donor, error) {
	args := m.Called(ctx, donor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Donor), args.Error(1)
}

func (m *DonorRepositoryMock) SetAvailability(ctx context.Context, donorID string, isAvailable bool) (*domain.Donor, error) {
	args := m.Called(ctx, donorID, isAvailable)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Donor), args.Error(1)
}

func (m *DonorRepositoryMock) GetDonorByID(ctx context.Context, donorID string) (*domain.Donor, error) {
	args := m.Called(ctx, donorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Donor), args.Error(1)
}

func (m *DonorRepositoryMock) GetDonorStats(ctx context.Context, donorID string) (*domain.DonorStats, error) {
	args := m.Called(ctx, donorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.DonorStats), args.Error(1)
}

func (m *DonorRepositoryMock) FindCandidates(ctx context.Context, types []domain.BloodType, box geo.Box) ([]domain.Donor, error) {
	args := m.Called(ctx, types, box)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Donor), args.Error(1)
}

type RequestCommandRepositoryMock struct {
	mock.Mock
}

var _ repository.RequestCommandRepository = (*RequestCommandRepositoryMock)(nil)

func (m *RequestCommandRepositoryMock) CreateRequest(ctx context.Context, tx *sqlx.Tx, req *domain.BloodRequest) error {
	args := m.Called(ctx, tx, req)
	return args.Error(0)
}

func (m *RequestCommandRepositoryMock) InsertMatches(ctx context.Context, tx *sqlx.Tx, requestID string, matches []domain.DonorMatch) error {
	args := m.Called(ctx, tx, requestID, matches)
	return args.Error(0)
}

func (m *RequestCommandRepositoryMock) MarkMatched(ctx context.Context, tx *sqlx.Tx, requestID string) (*domain.BloodRequest, error) {
	args := m.Called(ctx, tx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.BloodRequest), args.Error(1)
}

func (m *RequestCommandRepositoryMock) GetRequestByIDWithLock(ctx context.Context, tx *sqlx.Tx, requestID string) (*domain.BloodRequest, error) {
	args := m.Called(ctx, tx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.BloodRequest), args.Error(1)
}

func (m *RequestCommandRepositoryMock) GetMatchForUpdate(ctx context.Context, tx *sqlx.Tx, requestID, donorID string) (*domain.DonorMatch, error) {
	args := m.Called(ctx, tx, requestID, donorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.DonorMatch), args.Error(1)
}

func (m *RequestCommandRepositoryMock) IncrementFulfilled(ctx context.Context, tx *sqlx.Tx, requestID string) (*domain.BloodRequest, error) {
	args := m.Called(ctx, tx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.BloodRequest), args.Error(1)
}

func (m *RequestCommandRepositoryMock) SetMatchStatus(ctx context.Context, tx *sqlx.Tx, requestID, donorID string, status domain.MatchStatus, decidedAt time.Time) error {
	args := m.Called(ctx, tx, requestID, donorID, status, decidedAt)
	return args.Error(0)
}

func (m *RequestCommandRepositoryMock) CancelRequest(ctx context.Context, tx *sqlx.Tx, requestID string) (*domain.BloodRequest, error) {
	args := m.Called(ctx, tx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.BloodRequest), args.Error(1)
}

func (m *RequestCommandRepositoryMock) CreateDonation(ctx context.Context, tx *sqlx.Tx, donation *domain.Donation) error {
	args := m.Called(ctx, tx, donation)
	return args.Error(0)
}

func (m *RequestCommandRepositoryMock) AppendEvent(ctx context.Context, tx *sqlx.Tx, event domain.RequestEvent) error {
	args := m.Called(ctx, tx, event)
	return args.Error(0)
}

type RequestQueryRepositoryMock struct {
	mock.Mock
}

var _ repository.RequestQueryRepository = (*RequestQueryRepositoryMock)(nil)

func (m *RequestQueryRepositoryMock) GetRequestByID(ctx context.Context, ext sqlx.ExtContext, requestID string) (*domain.BloodRequest, error) {
	args := m.Called(ctx, ext, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.BloodRequest), args.Error(1)
}

func (m *RequestQueryRepositoryMock) GetMatches(ctx context.Context, ext sqlx.ExtContext, requestID string) ([]domain.DonorMatch, error) {
	args := m.Called(ctx, ext, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.DonorMatch), args.Error(1)
}

func (m *RequestQueryRepositoryMock) GetMatchesForRequests(ctx context.Context, requestIDs []string) (map[string][]domain.DonorMatch, error) {
	args := m.Called(ctx, requestIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(map[string][]domain.DonorMatch), args.Error(1)
}

func (m *RequestQueryRepositoryMock) ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.BloodRequest, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.BloodRequest), args.Error(1)
}

func (m *RequestQueryRepositoryMock) GetStats(ctx context.Context) (*domain.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Stats), args.Error(1)
}

type DispatcherMock struct {
	mock.Mock
}

var _ notify.Dispatcher = (*DispatcherMock)(nil)

func (m *DispatcherMock) Dispatch(ctx context.Context, event domain.RequestEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type OracleMock struct {
	mock.Mock
}

var _ ResponseOracle = (*OracleMock)(nil)

func (m *OracleMock) ResponseProbabilities(ctx context.Context, req *domain.BloodRequest, donors []domain.Donor) (map[string]float64, error) {
	args := m.Called(ctx, req, donors)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(map[string]float64), args.Error(1)
}

type RecommenderMock struct {
	mock.Mock
}

var _ Recommender = (*RecommenderMock)(nil)

func (m *RecommenderMock) Recommend(ctx context.Context, req *domain.BloodRequest, matches []domain.DonorMatch) (string, error) {
	args := m.Called(ctx, req, matches)
	return args.String(0), args.Error(1)
}

type TransactorMock struct {
	mock.Mock
}

func (m *TransactorMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	var tx *sqlx.Tx

	args := m.Called(ctx, opts)
	if args.Get(0) != nil {
		tx = args.Get(0).(*sqlx.Tx)
	}

	return tx, args.Error(1)
}
