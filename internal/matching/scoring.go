// Package matching ranks donors for a blood request. Everything here is a pure
// function of its inputs and safe for concurrent use.
package matching

import (
	"math"
	"time"

	"github.com/YusovID/donor-match-service/internal/config"
	"github.com/YusovID/donor-match-service/internal/domain"
)

const (
	maxComponent = 100.0
	day          = 24 * time.Hour
)

type Weights struct {
	Distance float64
	Recency  float64
	Response float64
}

// Policy is the operator-tunable part of matching.
type Policy struct {
	RadiusKm float64
	TopN     int
	Cooldown time.Duration
	Weights  map[domain.Urgency]Weights
}

func PolicyFromConfig(cfg config.Matching) Policy {
	weights := make(map[domain.Urgency]Weights, 3)

	for _, u := range []domain.Urgency{domain.UrgencyEmergency, domain.UrgencyUrgent, domain.UrgencyNormal} {
		w := cfg.WeightsFor(string(u))
		weights[u] = Weights{Distance: w.Distance, Recency: w.Recency, Response: w.Response}
	}

	return Policy{
		RadiusKm: cfg.RadiusKm,
		TopN:     cfg.TopN,
		Cooldown: cfg.Cooldown,
		Weights:  weights,
	}
}

func (p Policy) weightsFor(u domain.Urgency) Weights {
	if w, ok := p.Weights[u]; ok {
		return w
	}

	if w, ok := p.Weights[domain.UrgencyNormal]; ok {
		return w
	}

	return Weights{Distance: 1, Recency: 1, Response: 1}
}

// Criteria describes what a request is looking for.
type Criteria struct {
	BloodType domain.BloodType
	Urgency   domain.Urgency
	Location  domain.Coordinate
	// RadiusKm overrides Policy.RadiusKm when positive.
	RadiusKm float64
}

// Components are the unweighted per-factor contributions, each in [0, 100].
type Components struct {
	Distance float64
	Recency  float64
	Response float64
}

type Engine struct {
	policy Policy
}

func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy}
}

func (e *Engine) Policy() Policy {
	return e.policy
}

func (e *Engine) radius(c Criteria) float64 {
	if c.RadiusKm > 0 {
		return c.RadiusKm
	}

	return e.policy.RadiusKm
}

// Components computes the factors for donor d at distanceKm from the request.
// Compatibility is not a factor: incompatible donors never reach the engine.
func (e *Engine) Components(c Criteria, d domain.Donor, distanceKm float64, now time.Time) Components {
	return Components{
		Distance: e.distanceComponent(c, distanceKm),
		Recency:  e.recencyComponent(d, now),
		Response: responseComponent(d.ResponseProbability),
	}
}

// Score is the weighted sum of the components for the request's urgency.
func (e *Engine) Score(c Criteria, d domain.Donor, distanceKm float64, now time.Time) float64 {
	comp := e.Components(c, d, distanceKm, now)
	w := e.policy.weightsFor(c.Urgency)

	return w.Distance*comp.Distance + w.Recency*comp.Recency + w.Response*comp.Response
}

// InCooldown reports whether d donated less than the cooldown window ago.
// A donation date in the future counts as inside the window.
func (e *Engine) InCooldown(d domain.Donor, now time.Time) bool {
	if d.LastDonationDate == nil {
		return false
	}

	return now.Sub(*d.LastDonationDate) < e.policy.Cooldown
}

func (e *Engine) distanceComponent(c Criteria, distanceKm float64) float64 {
	if math.IsNaN(distanceKm) || distanceKm < 0 || distanceKm > e.radius(c) {
		return 0
	}

	return math.Max(0, maxComponent-distanceKm)
}

// recencyComponent grows by one point per day past the cooldown window and
// saturates at 100. Donors with no recorded donation get the full 100.
func (e *Engine) recencyComponent(d domain.Donor, now time.Time) float64 {
	if d.LastDonationDate == nil {
		return maxComponent
	}

	past := now.Sub(*d.LastDonationDate) - e.policy.Cooldown
	if past <= 0 {
		return 0
	}

	return math.Min(maxComponent, float64(past)/float64(day))
}

func responseComponent(p float64) float64 {
	if math.IsNaN(p) {
		return 0
	}

	return math.Min(1, math.Max(0, p)) * maxComponent
}
