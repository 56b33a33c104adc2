package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/YusovID/donor-match-service/internal/apperrors"
	"github.com/YusovID/donor-match-service/internal/domain"
	"github.com/YusovID/donor-match-service/internal/lifecycle"
	"github.com/YusovID/donor-match-service/internal/notify"
	"github.com/YusovID/donor-match-service/internal/repository"
	"github.com/YusovID/donor-match-service/pkg/api"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type FulfillmentService interface {
	AcceptMatch(ctx context.Context, requestID, donorID string) (*api.AcceptResponse, error)
	DeclineMatch(ctx context.Context, requestID, donorID string) (*api.DonorMatch, error)
}

// FulfillmentCoordinator books accepted units. Accepts on one request queue on
// an in-process lock before taking the row lock, so the counter can never
// pass units_needed whatever the interleaving.
type FulfillmentCoordinator struct {
	BaseService
	cmd        repository.RequestCommandRepository
	query      repository.RequestQueryRepository
	dispatcher notify.Dispatcher
	keys       *keyLock
	newID      func() string
}

func NewFulfillmentCoordinator(
	base BaseService,
	cmd repository.RequestCommandRepository,
	query repository.RequestQueryRepository,
	dispatcher notify.Dispatcher,
) *FulfillmentCoordinator {
	if dispatcher == nil {
		dispatcher = notify.NewLogDispatcher(base.log)
	}

	return &FulfillmentCoordinator{
		BaseService: base,
		cmd:         cmd,
		query:       query,
		dispatcher:  dispatcher,
		keys:        newKeyLock(),
		newID:       uuid.NewString,
	}
}

func (c *FulfillmentCoordinator) AcceptMatch(ctx context.Context, requestID, donorID string) (resp *api.AcceptResponse, err error) {
	const op = "internal.service.fulfillment.AcceptMatch"
	log := c.log.With(
		slog.String("op", op),
		slog.String("request_id", requestID),
		slog.String("donor_id", donorID),
	)

	defer func() {
		acceptTotal.WithLabelValues(acceptOutcome(err)).Inc()
	}()

	unlock, err := c.lock(ctx, op, requestID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		req      *domain.BloodRequest
		match    *domain.DonorMatch
		donation *domain.Donation
		events   []domain.RequestEvent
	)

	err = c.transaction(ctx, op, func(ctx context.Context, tx *sqlx.Tx) error {
		current, err := c.cmd.GetRequestByIDWithLock(ctx, tx, requestID)
		if err != nil {
			return err
		}

		match, err = c.cmd.GetMatchForUpdate(ctx, tx, requestID, donorID)
		if err != nil {
			return err
		}

		if err := lifecycle.DecideMatch(match.Status, domain.MatchStatusAccepted); err != nil {
			return err
		}

		if _, err := lifecycle.StateOf(current).Accept(); err != nil {
			return err
		}

		req, err = c.cmd.IncrementFulfilled(ctx, tx, requestID)
		if err != nil {
			return err
		}

		now := c.now()

		if err := c.cmd.SetMatchStatus(ctx, tx, requestID, donorID, domain.MatchStatusAccepted, now); err != nil {
			return err
		}

		match.Status = domain.MatchStatusAccepted
		match.DecidedAt = &now

		donation = &domain.Donation{
			ID:        c.newID(),
			DonorID:   donorID,
			RequestID: requestID,
			BloodType: match.BloodType,
			Status:    domain.DonationStatusScheduled,
		}

		if err := c.cmd.CreateDonation(ctx, tx, donation); err != nil {
			return fmt.Errorf("%s: failed to create donation: %w", op, err)
		}

		events = []domain.RequestEvent{newEvent(c.newID(), now, domain.EventMatchAccepted, req, donorID)}
		if req.Status == domain.RequestStatusFulfilled {
			events = append(events, newEvent(c.newID(), now, domain.EventRequestFulfilled, req, ""))
		}

		for _, e := range events {
			if err := c.cmd.AppendEvent(ctx, tx, e); err != nil {
				return err
			}
		}

		req.Matches, err = c.query.GetMatches(ctx, tx, requestID)
		if err != nil {
			return fmt.Errorf("%s: failed to get matches: %w", op, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("match accepted",
		slog.Int("units_fulfilled", req.UnitsFulfilled),
		slog.Int("units_needed", req.UnitsNeeded),
		slog.String("status", string(req.Status)),
	)

	dispatchAll(ctx, c.log, c.dispatcher, events...)

	return &api.AcceptResponse{
		Match:      toAPIMatch(*match),
		Request:    *toAPIRequest(req),
		DonationId: donation.ID,
	}, nil
}

// DeclineMatch never touches the unit counter, so the row lock is enough.
func (c *FulfillmentCoordinator) DeclineMatch(ctx context.Context, requestID, donorID string) (*api.DonorMatch, error) {
	const op = "internal.service.fulfillment.DeclineMatch"

	var (
		match *domain.DonorMatch
		event domain.RequestEvent
	)

	err := c.transaction(ctx, op, func(ctx context.Context, tx *sqlx.Tx) error {
		current, err := c.cmd.GetRequestByIDWithLock(ctx, tx, requestID)
		if err != nil {
			return err
		}

		match, err = c.cmd.GetMatchForUpdate(ctx, tx, requestID, donorID)
		if err != nil {
			return err
		}

		if err := lifecycle.DecideMatch(match.Status, domain.MatchStatusDeclined); err != nil {
			return err
		}

		if err := lifecycle.StateOf(current).CanDecline(); err != nil {
			return err
		}

		now := c.now()

		if err := c.cmd.SetMatchStatus(ctx, tx, requestID, donorID, domain.MatchStatusDeclined, now); err != nil {
			return err
		}

		match.Status = domain.MatchStatusDeclined
		match.DecidedAt = &now

		event = newEvent(c.newID(), now, domain.EventMatchDeclined, current, donorID)

		return c.cmd.AppendEvent(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	c.log.Info("match declined",
		slog.String("op", op),
		slog.String("request_id", requestID),
		slog.String("donor_id", donorID),
	)

	dispatchAll(ctx, c.log, c.dispatcher, event)

	out := toAPIMatch(*match)

	return &out, nil
}

// lock waits for the request's turn no longer than one storage timeout.
func (c *FulfillmentCoordinator) lock(ctx context.Context, op, requestID string) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	unlock, err := c.keys.Lock(lockCtx, requestID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		}

		return nil, fmt.Errorf("%s: %w: waiting for request lock: %v", op, apperrors.ErrStorageTimeout, err)
	}

	return unlock, nil
}
