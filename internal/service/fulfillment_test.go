package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/YusovID/donor-match-service/internal/apperrors"
	"github.com/YusovID/donor-match-service/internal/domain"
	"github.com/YusovID/donor-match-service/internal/lifecycle"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func openRequest(fulfilled, needed int) *domain.BloodRequest {
	req := &domain.BloodRequest{
		ID:             "req-1",
		RequesterID:    "hospital-1",
		BloodType:      domain.BloodTypeONegative,
		UnitsNeeded:    needed,
		UnitsFulfilled: fulfilled,
		Urgency:        domain.UrgencyEmergency,
		Matched:        true,
	}
	req.Status = lifecycle.StateOf(req).Status()

	return req
}

func proposed(donorID string, rank int) *domain.DonorMatch {
	return &domain.DonorMatch{
		RequestID: "req-1",
		DonorID:   donorID,
		Rank:      rank,
		BloodType: domain.BloodTypeONegative,
		Status:    domain.MatchStatusProposed,
	}
}

func eventKind(kind domain.EventKind) interface{} {
	return mock.MatchedBy(func(e domain.RequestEvent) bool { return e.Kind == kind })
}

func TestFulfillmentCoordinator_AcceptMatch(t *testing.T) {
	testCases := []struct {
		name           string
		setupMocks     func(tr *TransactorMock, cmd *RequestCommandRepositoryMock, query *RequestQueryRepositoryMock, disp *DispatcherMock)
		expectedErr    error
		expectedStatus string
		expectedUnits  int
	}{
		{
			name: "Success, request still open",
			setupMocks: func(tr *TransactorMock, cmd *RequestCommandRepositoryMock, query *RequestQueryRepositoryMock, disp *DispatcherMock) {
				_, tx, smock := newMockDBAndTx(t)
				smock.ExpectCommit()

				tr.On("BeginTxx", mock.Anything, (*sql.TxOptions)(nil)).Return(tx, nil).Once()
				cmd.On("GetRequestByIDWithLock", mock.Anything, tx, "req-1").Return(openRequest(0, 2), nil).Once()
				cmd.On("GetMatchForUpdate", mock.Anything, tx, "req-1", "d1").Return(proposed("d1", 1), nil).Once()
				cmd.On("IncrementFulfilled", mock.Anything, tx, "req-1").Return(openRequest(1, 2), nil).Once()
				cmd.On("SetMatchStatus", mock.Anything, tx, "req-1", "d1", domain.MatchStatusAccepted, testNow).Return(nil).Once()
				cmd.On("CreateDonation", mock.Anything, tx, mock.MatchedBy(func(d *domain.Donation) bool {
					return d.DonorID == "d1" && d.Status == domain.DonationStatusScheduled && d.BloodType == domain.BloodTypeONegative
				})).Return(nil).Once()
				cmd.On("AppendEvent", mock.Anything, tx, eventKind(domain.EventMatchAccepted)).Return(nil).Once()
				query.On("GetMatches", mock.Anything, tx, "req-1").Return([]domain.DonorMatch{*proposed("d1", 1)}, nil).Once()
				disp.On("Dispatch", mock.Anything, eventKind(domain.EventMatchAccepted)).Return(nil).Once()
			},
			expectedStatus: "matching",
			expectedUnits:  1,
		},
		{
			name: "Success, last unit fulfils the request",
			setupMocks: func(tr *TransactorMock, cmd *RequestCommandRepositoryMock, query *RequestQueryRepositoryMock, disp *DispatcherMock) {
				_, tx, smock := newMockDBAndTx(t)
				smock.ExpectCommit()

				tr.On("BeginTxx", mock.Anything, (*sql.TxOptions)(nil)).Return(tx, nil).Once()
				cmd.On("GetRequestByIDWithLock", mock.Anything, tx, "req-1").Return(openRequest(1, 2), nil).Once()
				cmd.On("GetMatchForUpdate", mock.Anything, tx, "req-1", "d1").Return(proposed("d1", 1), nil).Once()
				cmd.On("IncrementFulfilled", mock.Anything, tx, "req-1").Return(openRequest(2, 2), nil).Once()
				cmd.On("SetMatchStatus", mock.Anything, tx, "req-1", "d1", domain.MatchStatusAccepted, testNow).Return(nil).Once()
				cmd.On("CreateDonation", mock.Anything, tx, mock.Anything).Return(nil).Once()
				cmd.On("AppendEvent", mock.Anything, tx, eventKind(domain.EventMatchAccepted)).Return(nil).Once()
				cmd.On("AppendEvent", mock.Anything, tx, eventKind(domain.EventRequestFulfilled)).Return(nil).Once()
				query.On("GetMatches", mock.Anything, tx, "req-1").Return([]domain.DonorMatch{}, nil).Once()
				disp.On("Dispatch", mock.Anything, eventKind(domain.EventMatchAccepted)).Return(nil).Once()
				disp.On("Dispatch", mock.Anything, eventKind(domain.EventRequestFulfilled)).Return(errors.New("broker down")).Once()
			},
			expectedStatus: "fulfilled",
			expectedUnits:  2,
		},
		{
			name: "Donation records the donor's blood type",
			setupMocks: func(tr *TransactorMock, cmd *RequestCommandRepositoryMock, query *RequestQueryRepositoryMock, disp *DispatcherMock) {
				_, tx, smock := newMockDBAndTx(t)
				smock.ExpectCommit()

				req := openRequest(0, 2)
				req.BloodType = domain.BloodTypeAPositive
				after := openRequest(1, 2)
				after.BloodType = domain.BloodTypeAPositive

				tr.On("BeginTxx", mock.Anything, (*sql.TxOptions)(nil)).Return(tx, nil).Once()
				cmd.On("GetRequestByIDWithLock", mock.Anything, tx, "req-1").Return(req, nil).Once()
				cmd.On("GetMatchForUpdate", mock.Anything, tx, "req-1", "d1").Return(proposed("d1", 1), nil).Once()
				cmd.On("IncrementFulfilled", mock.Anything, tx, "req-1").Return(after, nil).Once()
				cmd.On("SetMatchStatus", mock.Anything, tx, "req-1", "d1", domain.MatchStatusAccepted, testNow).Return(nil).Once()
				cmd.On("CreateDonation", mock.Anything, tx, mock.MatchedBy(func(d *domain.Donation) bool {
					return d.BloodType == domain.BloodTypeONegative
				})).Return(nil).Once()
				cmd.On("AppendEvent", mock.Anything, tx, eventKind(domain.EventMatchAccepted)).Return(nil).Once()
				query.On("GetMatches", mock.Anything, tx, "req-1").Return([]domain.DonorMatch{*proposed("d1", 1)}, nil).Once()
				disp.On("Dispatch", mock.Anything, eventKind(domain.EventMatchAccepted)).Return(nil).Once()
			},
			expectedStatus: "matching",
			expectedUnits:  1,
		},
		{
			name: "Request not found",
			setupMocks: func(tr *TransactorMock, cmd *RequestCommandRepositoryMock, query *RequestQueryRepositoryMock, disp *DispatcherMock) {
				_, tx, smock := newMockDBAndTx(t)
				smock.ExpectRollback()

				tr.On("BeginTxx", mock.Anything, (*sql.TxOptions)(nil)).Return(tx, nil).Once()
				cmd.On("GetRequestByIDWithLock", mock.Anything, tx, "req-1").Return(nil, apperrors.ErrNotFound).Once()
			},
			expectedErr: apperrors.ErrNotFound,
		},
		{
			name: "Donor was never proposed",
			setupMocks: func(tr *TransactorMock, cmd *RequestCommandRepositoryMock, query *RequestQueryRepositoryMock, disp *DispatcherMock) {
				_, tx, smock := newMockDBAndTx(t)
				smock.ExpectRollback()

				tr.On("BeginTxx", mock.Anything, (*sql.TxOptions)(nil)).Return(tx, nil).Once()
				cmd.On("GetRequestByIDWithLock", mock.Anything, tx, "req-1").Return(openRequest(0, 2), nil).Once()
				cmd.On("GetMatchForUpdate", mock.Anything, tx, "req-1", "d1").
					Return(nil, &apperrors.MatchNotFoundError{RequestID: "req-1", DonorID: "d1"}).Once()
			},
			expectedErr: apperrors.ErrMatchNotFound,
		},
		{
			name: "Match already accepted",
			setupMocks: func(tr *TransactorMock, cmd *RequestCommandRepositoryMock, query *RequestQueryRepositoryMock, disp *DispatcherMock) {
				_, tx, smock := newMockDBAndTx(t)
				smock.ExpectRollback()

				decided := proposed("d1", 1)
				decided.Status = domain.MatchStatusAccepted

				tr.On("BeginTxx", mock.Anything, (*sql.TxOptions)(nil)).Return(tx, nil).Once()
				cmd.On("GetRequestByIDWithLock", mock.Anything, tx, "req-1").Return(openRequest(1, 2), nil).Once()
				cmd.On("GetMatchForUpdate", mock.Anything, tx, "req-1", "d1").Return(decided, nil).Once()
			},
			expectedErr: apperrors.ErrAlreadyDecided,
		},
		{
			name: "Request cancelled",
			setupMocks: func(tr *TransactorMock, cmd *RequestCommandRepositoryMock, query *RequestQueryRepositoryMock, disp *DispatcherMock) {
				_, tx, smock := newMockDBAndTx(t)
				smock.ExpectRollback()

				cancelled := openRequest(0, 2)
				cancelled.Cancelled = true

				tr.On("BeginTxx", mock.Anything, (*sql.TxOptions)(nil)).Return(tx, nil).Once()
				cmd.On("GetRequestByIDWithLock", mock.Anything, tx, "req-1").Return(cancelled, nil).Once()
				cmd.On("GetMatchForUpdate", mock.Anything, tx, "req-1", "d1").Return(proposed("d1", 1), nil).Once()
			},
			expectedErr: apperrors.ErrRequestTerminal,
		},
		{
			name: "Request already fulfilled",
			setupMocks: func(tr *TransactorMock, cmd *RequestCommandRepositoryMock, query *RequestQueryRepositoryMock, disp *DispatcherMock) {
				_, tx, smock := newMockDBAndTx(t)
				smock.ExpectRollback()

				tr.On("BeginTxx", mock.Anything, (*sql.TxOptions)(nil)).Return(tx, nil).Once()
				cmd.On("GetRequestByIDWithLock", mock.Anything, tx, "req-1").Return(openRequest(2, 2), nil).Once()
				cmd.On("GetMatchForUpdate", mock.Anything, tx, "req-1", "d1").Return(proposed("d1", 3), nil).Once()
			},
			expectedErr: apperrors.ErrRequestAlreadySatisfied,
		},
		{
			name: "Failure on BeginTxx",
			setupMocks: func(tr *TransactorMock, cmd *RequestCommandRepositoryMock, query *RequestQueryRepositoryMock, disp *DispatcherMock) {
				tr.On("BeginTxx", mock.Anything, (*sql.TxOptions)(nil)).Return(nil, errors.New("cannot begin tx")).Once()
			},
			expectedErr: errors.New("cannot begin tx"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tr := new(TransactorMock)
			cmd := new(RequestCommandRepositoryMock)
			query := new(RequestQueryRepositoryMock)
			disp := new(DispatcherMock)

			tc.setupMocks(tr, cmd, query, disp)

			coordinator := NewFulfillmentCoordinator(newTestBase(tr), cmd, query, disp)
			coordinator.newID = func() string { return "id-1" }

			resp, err := coordinator.AcceptMatch(context.Background(), "req-1", "d1")

			switch {
			case tc.expectedErr == nil:
				require.NoError(t, err)
				require.NotNil(t, resp)
				assert.Equal(t, "accepted", resp.Match.Status)
				assert.Equal(t, &testNow, resp.Match.DecidedAt)
				assert.Equal(t, tc.expectedStatus, resp.Request.Status)
				assert.Equal(t, tc.expectedUnits, resp.Request.UnitsFulfilled)
				assert.Equal(t, "id-1", resp.DonationId)
			case apperrors.IsDomain(tc.expectedErr):
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Nil(t, resp)
				cmd.AssertNotCalled(t, "IncrementFulfilled", mock.Anything, mock.Anything, mock.Anything)
			default:
				assert.ErrorContains(t, err, tc.expectedErr.Error())
			}

			tr.AssertExpectations(t)
			cmd.AssertExpectations(t)
			query.AssertExpectations(t)
			disp.AssertExpectations(t)
			assert.Zero(t, coordinator.keys.size())
		})
	}
}

// memStore mirrors the conditional increment of the Postgres repository
// without any row locks of its own.
type memStore struct {
	mu        sync.Mutex
	requests  map[string]*domain.BloodRequest
	matches   map[string]map[string]*domain.DonorMatch
	donations []domain.Donation
	events    []domain.RequestEvent
}

func newMemStore(req *domain.BloodRequest, donorIDs ...string) *memStore {
	s := &memStore{
		requests: map[string]*domain.BloodRequest{req.ID: req},
		matches:  map[string]map[string]*domain.DonorMatch{req.ID: {}},
	}

	for i, id := range donorIDs {
		s.matches[req.ID][id] = proposed(id, i+1)
	}

	return s
}

func (s *memStore) request(id string) (*domain.BloodRequest, error) {
	req, ok := s.requests[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}

	req.Status = lifecycle.StateOf(req).Status()
	cp := *req

	return &cp, nil
}

func (s *memStore) GetRequestByIDWithLock(_ context.Context, _ *sqlx.Tx, requestID string) (*domain.BloodRequest, error) {
	runtime.Gosched()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.request(requestID)
}

func (s *memStore) GetRequestByID(_ context.Context, _ sqlx.ExtContext, requestID string) (*domain.BloodRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.request(requestID)
}

func (s *memStore) GetMatchForUpdate(_ context.Context, _ *sqlx.Tx, requestID, donorID string) (*domain.DonorMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.matches[requestID][donorID]
	if !ok {
		return nil, &apperrors.MatchNotFoundError{RequestID: requestID, DonorID: donorID}
	}

	cp := *m

	return &cp, nil
}

func (s *memStore) IncrementFulfilled(_ context.Context, _ *sqlx.Tx, requestID string) (*domain.BloodRequest, error) {
	runtime.Gosched()

	s.mu.Lock()
	defer s.mu.Unlock()

	req := s.requests[requestID]
	if req.Cancelled || req.UnitsFulfilled >= req.UnitsNeeded {
		return nil, apperrors.ErrRequestAlreadySatisfied
	}

	req.UnitsFulfilled++

	return s.request(requestID)
}

func (s *memStore) SetMatchStatus(_ context.Context, _ *sqlx.Tx, requestID, donorID string, status domain.MatchStatus, decidedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.matches[requestID][donorID]
	if m.Status != domain.MatchStatusProposed {
		return &apperrors.AlreadyDecidedError{Status: string(m.Status)}
	}

	m.Status = status
	m.DecidedAt = &decidedAt

	return nil
}

func (s *memStore) CreateDonation(_ context.Context, _ *sqlx.Tx, donation *domain.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.donations = append(s.donations, *donation)

	return nil
}

func (s *memStore) AppendEvent(_ context.Context, _ *sqlx.Tx, event domain.RequestEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, event)

	return nil
}

func (s *memStore) GetMatches(_ context.Context, _ sqlx.ExtContext, requestID string) ([]domain.DonorMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.DonorMatch, 0, len(s.matches[requestID]))
	for _, m := range s.matches[requestID] {
		out = append(out, *m)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })

	return out, nil
}

func (s *memStore) CancelRequest(_ context.Context, _ *sqlx.Tx, requestID string) (*domain.BloodRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests[requestID].Cancelled = true

	return s.request(requestID)
}

func (s *memStore) CreateRequest(context.Context, *sqlx.Tx, *domain.BloodRequest) error {
	return errors.New("not supported")
}

func (s *memStore) InsertMatches(context.Context, *sqlx.Tx, string, []domain.DonorMatch) error {
	return errors.New("not supported")
}

func (s *memStore) MarkMatched(context.Context, *sqlx.Tx, string) (*domain.BloodRequest, error) {
	return nil, errors.New("not supported")
}

func (s *memStore) GetMatchesForRequests(context.Context, []string) (map[string][]domain.DonorMatch, error) {
	return nil, errors.New("not supported")
}

func (s *memStore) ListRequests(context.Context, domain.RequestFilter) ([]domain.BloodRequest, error) {
	return nil, errors.New("not supported")
}

func (s *memStore) GetStats(context.Context) (*domain.Stats, error) {
	return nil, errors.New("not supported")
}

func (s *memStore) countMatches(status domain.MatchStatus) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, m := range s.matches["req-1"] {
		if m.Status == status {
			n++
		}
	}

	return n
}

func newMemCoordinator(t *testing.T, store *memStore) *FulfillmentCoordinator {
	t.Helper()

	return NewFulfillmentCoordinator(newTestBase(sqlmockTransactor{t: t}), store, store, nil)
}

func TestFulfillmentCoordinator_ConcurrentAccepts(t *testing.T) {
	testCases := []struct {
		name        string
		unitsNeeded int
		donors      int
	}{
		{name: "Three donors for two units", unitsNeeded: 2, donors: 3},
		{name: "Ten donors for three units", unitsNeeded: 3, donors: 10},
		{name: "Exactly enough donors", unitsNeeded: 5, donors: 5},
		{name: "Fewer donors than units", unitsNeeded: 8, donors: 4},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			donorIDs := make([]string, tc.donors)
			for i := range donorIDs {
				donorIDs[i] = fmt.Sprintf("d%d", i+1)
			}

			store := newMemStore(openRequest(0, tc.unitsNeeded), donorIDs...)
			coordinator := newMemCoordinator(t, store)

			var (
				wg    sync.WaitGroup
				start = make(chan struct{})
				errs  = make([]error, tc.donors)
			)

			for i, id := range donorIDs {
				wg.Add(1)

				go func(i int, id string) {
					defer wg.Done()
					<-start

					_, errs[i] = coordinator.AcceptMatch(context.Background(), "req-1", id)
				}(i, id)
			}

			close(start)
			wg.Wait()

			expected := min(tc.donors, tc.unitsNeeded)

			succeeded := 0
			for _, err := range errs {
				if err == nil {
					succeeded++
					continue
				}

				assert.ErrorIs(t, err, apperrors.ErrRequestAlreadySatisfied)
			}

			req, err := store.GetRequestByID(context.Background(), nil, "req-1")
			require.NoError(t, err)

			assert.Equal(t, expected, succeeded)
			assert.Equal(t, expected, req.UnitsFulfilled)
			assert.Equal(t, expected, store.countMatches(domain.MatchStatusAccepted))
			assert.Len(t, store.donations, expected)

			if tc.donors >= tc.unitsNeeded {
				assert.Equal(t, domain.RequestStatusFulfilled, req.Status)
			} else {
				assert.Equal(t, domain.RequestStatusMatching, req.Status)
			}

			assert.Zero(t, coordinator.keys.size())
		})
	}
}

func TestFulfillmentCoordinator_RetriedAcceptIsAlreadyDecided(t *testing.T) {
	store := newMemStore(openRequest(0, 2), "d1", "d2")
	coordinator := newMemCoordinator(t, store)

	_, err := coordinator.AcceptMatch(context.Background(), "req-1", "d1")
	require.NoError(t, err)

	_, err = coordinator.AcceptMatch(context.Background(), "req-1", "d1")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyDecided)

	req, err := store.GetRequestByID(context.Background(), nil, "req-1")
	require.NoError(t, err)
	assert.Equal(t, 1, req.UnitsFulfilled)
	assert.Len(t, store.donations, 1)
}

func TestFulfillmentCoordinator_DeclineMatch(t *testing.T) {
	store := newMemStore(openRequest(0, 1), "d1", "d2", "d3")
	coordinator := newMemCoordinator(t, store)
	ctx := context.Background()

	match, err := coordinator.DeclineMatch(ctx, "req-1", "d2")
	require.NoError(t, err)
	assert.Equal(t, "declined", match.Status)
	assert.Equal(t, &testNow, match.DecidedAt)

	_, err = coordinator.DeclineMatch(ctx, "req-1", "d2")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyDecided)

	_, err = coordinator.AcceptMatch(ctx, "req-1", "d2")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyDecided)

	_, err = coordinator.DeclineMatch(ctx, "req-1", "d9")
	assert.ErrorIs(t, err, apperrors.ErrMatchNotFound)

	_, err = coordinator.AcceptMatch(ctx, "req-1", "d1")
	require.NoError(t, err)

	_, err = coordinator.DeclineMatch(ctx, "req-1", "d3")
	assert.ErrorIs(t, err, apperrors.ErrRequestTerminal)

	req, err := store.GetRequestByID(ctx, nil, "req-1")
	require.NoError(t, err)
	assert.Equal(t, 1, req.UnitsFulfilled)
	assert.Equal(t, 1, store.countMatches(domain.MatchStatusDeclined))

	kinds := make([]domain.EventKind, len(store.events))
	for i, e := range store.events {
		kinds[i] = e.Kind
	}

	assert.Equal(t, []domain.EventKind{
		domain.EventMatchDeclined,
		domain.EventMatchAccepted,
		domain.EventRequestFulfilled,
	}, kinds)
}

func TestFulfillmentCoordinator_StorageTimeout(t *testing.T) {
	base := NewBaseService(stalledTransactor{}, testLogger(), 20*time.Millisecond)
	coordinator := NewFulfillmentCoordinator(base, new(RequestCommandRepositoryMock), new(RequestQueryRepositoryMock), nil)

	_, err := coordinator.AcceptMatch(context.Background(), "req-1", "d1")
	assert.ErrorIs(t, err, apperrors.ErrStorageTimeout)

	_, err = coordinator.DeclineMatch(context.Background(), "req-1", "d1")
	assert.ErrorIs(t, err, apperrors.ErrStorageTimeout)
}

func TestFulfillmentCoordinator_LockWaitTimesOut(t *testing.T) {
	store := newMemStore(openRequest(0, 2), "d1")
	base := NewBaseService(sqlmockTransactor{t: t}, testLogger(), 20*time.Millisecond)
	coordinator := NewFulfillmentCoordinator(base, store, store, nil)

	unlock, err := coordinator.keys.Lock(context.Background(), "req-1")
	require.NoError(t, err)

	_, err = coordinator.AcceptMatch(context.Background(), "req-1", "d1")
	assert.ErrorIs(t, err, apperrors.ErrStorageTimeout)

	unlock()

	_, err = coordinator.AcceptMatch(context.Background(), "req-1", "d1")
	assert.NoError(t, err)
}
