package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/YusovID/donor-match-service/internal/apperrors"
	"github.com/YusovID/donor-match-service/internal/bloodtype"
	"github.com/YusovID/donor-match-service/internal/domain"
	"github.com/YusovID/donor-match-service/internal/geo"
	"github.com/YusovID/donor-match-service/internal/lifecycle"
	"github.com/YusovID/donor-match-service/internal/matching"
	"github.com/YusovID/donor-match-service/internal/notify"
	"github.com/YusovID/donor-match-service/internal/repository"
	"github.com/YusovID/donor-match-service/pkg/api"
	"github.com/YusovID/donor-match-service/pkg/logger/sl"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const dispatchTimeout = 5 * time.Second

// ResponseOracle predicts how likely each donor is to accept req.
type ResponseOracle interface {
	ResponseProbabilities(ctx context.Context, req *domain.BloodRequest, donors []domain.Donor) (map[string]float64, error)
}

// Recommender produces the free-text recommendation shown with a request.
type Recommender interface {
	Recommend(ctx context.Context, req *domain.BloodRequest, matches []domain.DonorMatch) (string, error)
}

// Collaborators are the external parties a request touches. Nil Oracle and
// Recommender are skipped; a nil Dispatcher logs events instead.
type Collaborators struct {
	Oracle      ResponseOracle
	Recommender Recommender
	Dispatcher  notify.Dispatcher
}

type RequestService interface {
	CreateRequest(ctx context.Context, requesterID string, in api.CreateRequestJSONRequestBody) (*api.BloodRequest, error)
	GetRequest(ctx context.Context, requestID string) (*api.BloodRequest, error)
	ListRequests(ctx context.Context, params api.ListRequestsParams) ([]api.BloodRequest, error)
	CancelRequest(ctx context.Context, requesterID, requestID string) (*api.BloodRequest, error)
	FindNearbyDonors(ctx context.Context, params api.FindNearbyDonorsParams) ([]api.DonorMatch, error)
	GetStats(ctx context.Context) (*api.StatsResponse, error)
}

type RequestServiceImpl struct {
	BaseService
	donors         repository.DonorRepository
	cmd            repository.RequestCommandRepository
	query          repository.RequestQueryRepository
	selector       *matching.Selector
	nearbyRadiusKm float64
	collab         Collaborators
	newID          func() string
}

func NewRequestService(
	base BaseService,
	donors repository.DonorRepository,
	cmd repository.RequestCommandRepository,
	query repository.RequestQueryRepository,
	selector *matching.Selector,
	nearbyRadiusKm float64,
	collab Collaborators,
) *RequestServiceImpl {
	if collab.Dispatcher == nil {
		collab.Dispatcher = notify.NewLogDispatcher(base.log)
	}

	return &RequestServiceImpl{
		BaseService:    base,
		donors:         donors,
		cmd:            cmd,
		query:          query,
		selector:       selector,
		nearbyRadiusKm: nearbyRadiusKm,
		collab:         collab,
		newID:          uuid.NewString,
	}
}

func (s *RequestServiceImpl) CreateRequest(ctx context.Context, requesterID string, in api.CreateRequestJSONRequestBody) (*api.BloodRequest, error) {
	const op = "internal.service.request.CreateRequest"
	log := s.log.With(slog.String("op", op), slog.String("requester_id", requesterID))

	req, err := s.newRequest(requesterID, in)
	if err != nil {
		return nil, err
	}

	log = log.With(slog.String("request_id", req.ID))

	var matches []domain.DonorMatch

	location, located := req.Location()
	if located {
		matches, err = s.rank(ctx, req, location)
		if err != nil {
			return nil, err
		}

		if text := s.recommend(ctx, req, matches); text != "" {
			req.AIRecommendation = &text
		}
	} else {
		log.Info("request has no coordinates, leaving it pending without matches")
	}

	if matches == nil {
		matches = []domain.DonorMatch{}
	}

	req.Matches = matches
	created := s.newEvent(domain.EventRequestCreated, req, "")

	err = s.transaction(ctx, op, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := s.cmd.CreateRequest(ctx, tx, req); err != nil {
			return err
		}

		if located {
			if err := s.cmd.InsertMatches(ctx, tx, req.ID, matches); err != nil {
				return fmt.Errorf("%s: failed to insert matches: %w", op, err)
			}

			if _, err := lifecycle.StateOf(req).MarkMatched(); err != nil {
				return err
			}

			updated, err := s.cmd.MarkMatched(ctx, tx, req.ID)
			if err != nil {
				return fmt.Errorf("%s: failed to mark request matched: %w", op, err)
			}

			req = updated
		}

		created.Status = req.Status

		return s.cmd.AppendEvent(ctx, tx, created)
	})
	if err != nil {
		return nil, err
	}

	req.Matches = matches

	matchesPerRequest.Observe(float64(len(req.Matches)))

	log.Info("request created",
		slog.String("status", string(req.Status)),
		slog.Int("matches", len(req.Matches)),
	)

	if located {
		s.dispatch(ctx, created)
	}

	return toAPIRequest(req), nil
}

func (s *RequestServiceImpl) newRequest(requesterID string, in api.CreateRequestJSONRequestBody) (*domain.BloodRequest, error) {
	bt, err := bloodtype.Parse(in.BloodType)
	if err != nil {
		return nil, err
	}

	urgency := domain.Urgency(in.Urgency)
	if !urgency.Valid() {
		return nil, fmt.Errorf("%w: unknown urgency '%s'", apperrors.ErrValidation, in.Urgency)
	}

	if err := (lifecycle.State{UnitsNeeded: in.UnitsNeeded}).Validate(); err != nil {
		return nil, err
	}

	if (in.Latitude == nil) != (in.Longitude == nil) {
		return nil, fmt.Errorf("%w: latitude and longitude must be given together", apperrors.ErrValidation)
	}

	req := &domain.BloodRequest{
		ID:              s.newID(),
		RequesterID:     requesterID,
		BloodType:       bt,
		UnitsNeeded:     in.UnitsNeeded,
		Urgency:         urgency,
		HospitalName:    in.HospitalName,
		HospitalAddress: in.HospitalAddress,
		Latitude:        in.Latitude,
		Longitude:       in.Longitude,
		PatientName:     in.PatientName,
		Notes:           in.Notes,
	}

	if loc, ok := req.Location(); ok {
		if err := geo.Validate(loc); err != nil {
			return nil, err
		}
	}

	return req, nil
}

// rank runs the selector for req against the donor directory.
func (s *RequestServiceImpl) rank(ctx context.Context, req *domain.BloodRequest, location domain.Coordinate) ([]domain.DonorMatch, error) {
	const op = "internal.service.request.rank"

	criteria := matching.Criteria{
		BloodType: req.BloodType,
		Urgency:   req.Urgency,
		Location:  location,
	}

	candidates, err := s.candidates(ctx, op, criteria, s.selector.Engine().Policy().RadiusKm)
	if err != nil {
		return nil, err
	}

	s.applyProbabilities(ctx, req, candidates)

	matches, err := s.selector.Select(criteria, candidates, s.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i := range matches {
		matches[i].RequestID = req.ID
	}

	return matches, nil
}

func (s *RequestServiceImpl) candidates(ctx context.Context, op string, c matching.Criteria, radiusKm float64) ([]domain.Donor, error) {
	types, err := bloodtype.CompatibleDonorsFor(c.BloodType)
	if err != nil {
		return nil, err
	}

	box, err := geo.BoundingBox(c.Location, radiusKm)
	if err != nil {
		return nil, err
	}

	var donors []domain.Donor

	err = s.read(ctx, op, func(ctx context.Context) error {
		var err error

		donors, err = s.donors.FindCandidates(ctx, types, box)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to find candidates: %w", op, err)
	}

	return donors, nil
}

// applyProbabilities overrides the stored probabilities with fresh
// predictions. Any failure keeps the stored values.
func (s *RequestServiceImpl) applyProbabilities(ctx context.Context, req *domain.BloodRequest, donors []domain.Donor) {
	if s.collab.Oracle == nil || len(donors) == 0 {
		return
	}

	probs, err := s.collab.Oracle.ResponseProbabilities(ctx, req, donors)
	if err != nil {
		s.log.Warn("response oracle unavailable, using stored probabilities",
			slog.String("request_id", req.ID), sl.Err(err))

		return
	}

	for i := range donors {
		if p, ok := probs[donors[i].ID]; ok {
			donors[i].ResponseProbability = p
		}
	}
}

func (s *RequestServiceImpl) recommend(ctx context.Context, req *domain.BloodRequest, matches []domain.DonorMatch) string {
	if s.collab.Recommender == nil {
		return ""
	}

	text, err := s.collab.Recommender.Recommend(ctx, req, matches)
	if err != nil {
		s.log.Warn("recommendation unavailable", slog.String("request_id", req.ID), sl.Err(err))
		return ""
	}

	return text
}

func (s *RequestServiceImpl) GetRequest(ctx context.Context, requestID string) (*api.BloodRequest, error) {
	const op = "internal.service.request.GetRequest"

	var req *domain.BloodRequest

	err := s.transaction(ctx, op, func(ctx context.Context, tx *sqlx.Tx) error {
		var err error

		req, err = s.query.GetRequestByID(ctx, tx, requestID)
		if err != nil {
			return err
		}

		req.Matches, err = s.query.GetMatches(ctx, tx, requestID)
		if err != nil {
			return fmt.Errorf("%s: failed to get matches: %w", op, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return toAPIRequest(req), nil
}

func (s *RequestServiceImpl) ListRequests(ctx context.Context, params api.ListRequestsParams) ([]api.BloodRequest, error) {
	const op = "internal.service.request.ListRequests"

	filter := domain.RequestFilter{}
	if params.RequesterId != nil {
		filter.RequesterID = *params.RequesterId
	}

	if params.DonorId != nil {
		filter.DonorID = *params.DonorId
	}

	if params.Status != nil {
		filter.Status = domain.RequestStatus(*params.Status)
	}

	if params.Limit != nil && *params.Limit > 0 {
		filter.Limit = uint64(*params.Limit)
	}

	var (
		requests []domain.BloodRequest
		matches  map[string][]domain.DonorMatch
	)

	err := s.read(ctx, op, func(ctx context.Context) error {
		var err error

		requests, err = s.query.ListRequests(ctx, filter)
		if err != nil {
			return err
		}

		ids := make([]string, len(requests))
		for i := range requests {
			ids[i] = requests[i].ID
		}

		matches, err = s.query.GetMatchesForRequests(ctx, ids)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]api.BloodRequest, len(requests))
	for i := range requests {
		requests[i].Matches = matches[requests[i].ID]
		out[i] = *toAPIRequest(&requests[i])
	}

	return out, nil
}

// CancelRequest is reserved to the requester and to requests that are still open.
func (s *RequestServiceImpl) CancelRequest(ctx context.Context, requesterID, requestID string) (*api.BloodRequest, error) {
	const op = "internal.service.request.CancelRequest"
	log := s.log.With(slog.String("op", op), slog.String("request_id", requestID))

	var (
		req   *domain.BloodRequest
		event domain.RequestEvent
	)

	err := s.transaction(ctx, op, func(ctx context.Context, tx *sqlx.Tx) error {
		current, err := s.cmd.GetRequestByIDWithLock(ctx, tx, requestID)
		if err != nil {
			return err
		}

		if current.RequesterID != requesterID {
			return fmt.Errorf("%w: only the requester can cancel request '%s'", apperrors.ErrForbidden, requestID)
		}

		if _, err := lifecycle.StateOf(current).Cancel(); err != nil {
			return err
		}

		req, err = s.cmd.CancelRequest(ctx, tx, requestID)
		if err != nil {
			return fmt.Errorf("%s: failed to cancel: %w", op, err)
		}

		req.Matches, err = s.query.GetMatches(ctx, tx, requestID)
		if err != nil {
			return fmt.Errorf("%s: failed to get matches: %w", op, err)
		}

		event = s.newEvent(domain.EventRequestCancelled, req, "")

		return s.cmd.AppendEvent(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	log.Info("request cancelled")
	s.dispatch(ctx, event)

	return toAPIRequest(req), nil
}

// FindNearbyDonors ranks donors around a point with the same engine that
// builds match lists, using normal-urgency weights.
func (s *RequestServiceImpl) FindNearbyDonors(ctx context.Context, params api.FindNearbyDonorsParams) ([]api.DonorMatch, error) {
	const op = "internal.service.request.FindNearbyDonors"

	bt, err := bloodtype.Parse(params.BloodType)
	if err != nil {
		return nil, err
	}

	location := domain.Coordinate{Latitude: params.Latitude, Longitude: params.Longitude}
	if err := geo.Validate(location); err != nil {
		return nil, err
	}

	radius := s.nearbyRadiusKm
	if params.RadiusKm != nil && *params.RadiusKm > 0 {
		radius = *params.RadiusKm
	}

	criteria := matching.Criteria{
		BloodType: bt,
		Urgency:   domain.UrgencyNormal,
		Location:  location,
		RadiusKm:  radius,
	}

	candidates, err := s.candidates(ctx, op, criteria, radius)
	if err != nil {
		return nil, err
	}

	matches, err := s.selector.Select(criteria, candidates, s.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toAPIMatches(matches), nil
}

func (s *RequestServiceImpl) GetStats(ctx context.Context) (*api.StatsResponse, error) {
	const op = "internal.service.request.GetStats"

	var stats *domain.Stats

	err := s.read(ctx, op, func(ctx context.Context) error {
		var err error

		stats, err = s.query.GetStats(ctx)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get stats: %w", op, err)
	}

	return &api.StatsResponse{
		TotalDonors:       stats.TotalDonors,
		AvailableDonors:   stats.AvailableDonors,
		TotalRequests:     stats.TotalRequests,
		OpenRequests:      stats.OpenRequests,
		FulfilledRequests: stats.FulfilledRequests,
		CancelledRequests: stats.CancelledRequests,
		FulfillmentRate:   stats.FulfillmentRate(),
	}, nil
}

func (s *RequestServiceImpl) newEvent(kind domain.EventKind, req *domain.BloodRequest, donorID string) domain.RequestEvent {
	return newEvent(s.newID(), s.now(), kind, req, donorID)
}

func (s *RequestServiceImpl) dispatch(ctx context.Context, events ...domain.RequestEvent) {
	dispatchAll(ctx, s.log, s.collab.Dispatcher, events...)
}

func newEvent(id string, at time.Time, kind domain.EventKind, req *domain.BloodRequest, donorID string) domain.RequestEvent {
	event := domain.RequestEvent{
		ID:        id,
		Kind:      kind,
		RequestID: req.ID,
		DonorID:   donorID,
		Status:    req.Status,
		BloodType: req.BloodType,
		Urgency:   req.Urgency,
		CreatedAt: at,
	}

	if kind == domain.EventRequestCreated {
		event.RankedDonorIDs = make([]string, 0, len(req.Matches))
		for _, m := range req.Matches {
			event.RankedDonorIDs = append(event.RankedDonorIDs, m.DonorID)
		}
	}

	return event
}

// dispatchAll hands committed events to the notifier. The state change is
// already durable, so failures are logged and counted, never returned.
func dispatchAll(ctx context.Context, log *slog.Logger, d notify.Dispatcher, events ...domain.RequestEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dispatchTimeout)
	defer cancel()

	for _, e := range events {
		if err := d.Dispatch(ctx, e); err != nil {
			dispatchFailures.WithLabelValues(string(e.Kind)).Inc()
			log.Warn("failed to dispatch event",
				slog.String("kind", string(e.Kind)),
				slog.String("request_id", e.RequestID),
				sl.Err(err),
			)
		}
	}
}
