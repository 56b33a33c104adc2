package service

import (
	"errors"

	"github.com/YusovID/donor-match-service/internal/apperrors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	acceptTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donor_match_accept_total",
			Help: "Accept attempts by outcome",
		},
		[]string{"outcome"},
	)

	matchesPerRequest = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "donor_match_matches_per_request",
			Help:    "Number of donors proposed when a request is created",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	dispatchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donor_match_dispatch_failures_total",
			Help: "Events the notifier could not take after commit",
		},
		[]string{"kind"},
	)
)

func acceptOutcome(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, apperrors.ErrRequestAlreadySatisfied):
		return "satisfied"
	case errors.Is(err, apperrors.ErrAlreadyDecided):
		return "already_decided"
	case errors.Is(err, apperrors.ErrMatchNotFound):
		return "match_not_found"
	case errors.Is(err, apperrors.ErrRequestTerminal):
		return "terminal"
	case errors.Is(err, apperrors.ErrStorageTimeout):
		return "storage_timeout"
	default:
		return "error"
	}
}
