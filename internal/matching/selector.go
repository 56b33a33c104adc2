package matching

import (
	"sort"
	"time"

	"github.com/YusovID/donor-match-service/internal/bloodtype"
	"github.com/YusovID/donor-match-service/internal/domain"
	"github.com/YusovID/donor-match-service/internal/geo"
)

type Selector struct {
	engine *Engine
}

func NewSelector(engine *Engine) *Selector {
	return &Selector{engine: engine}
}

func (s *Selector) Engine() *Engine {
	return s.engine
}

type scored struct {
	donor    domain.Donor
	distance float64
	score    float64
}

// Select filters candidates down to available, out-of-cooldown, compatible
// donors inside the search radius, ranks them by score (ties: closer first,
// then lower donor id) and keeps the policy's top N. Every returned match is
// proposed and ranked from 1. No survivors is a valid, empty result.
func (s *Selector) Select(c Criteria, candidates []domain.Donor, now time.Time) ([]domain.DonorMatch, error) {
	if _, err := bloodtype.Parse(string(c.BloodType)); err != nil {
		return nil, err
	}

	if err := geo.Validate(c.Location); err != nil {
		return nil, err
	}

	radius := s.engine.radius(c)
	seen := make(map[string]struct{}, len(candidates))
	survivors := make([]scored, 0, len(candidates))

	for _, d := range candidates {
		if _, dup := seen[d.ID]; dup {
			continue
		}

		seen[d.ID] = struct{}{}

		if !d.IsAvailable || s.engine.InCooldown(d, now) {
			continue
		}

		ok, err := bloodtype.CanDonateTo(d.BloodType, c.BloodType)
		if err != nil || !ok {
			continue
		}

		distance, err := geo.Distance(c.Location, d.Location())
		if err != nil || distance > radius {
			continue
		}

		survivors = append(survivors, scored{
			donor:    d,
			distance: distance,
			score:    s.engine.Score(c, d, distance, now),
		})
	}

	sort.Slice(survivors, func(i, j int) bool {
		a, b := survivors[i], survivors[j]

		if a.score != b.score {
			return a.score > b.score
		}

		if a.distance != b.distance {
			return a.distance < b.distance
		}

		return a.donor.ID < b.donor.ID
	})

	if n := s.engine.policy.TopN; n > 0 && len(survivors) > n {
		survivors = survivors[:n]
	}

	matches := make([]domain.DonorMatch, len(survivors))
	for i, sc := range survivors {
		matches[i] = domain.DonorMatch{
			DonorID:            sc.donor.ID,
			Rank:               i + 1,
			DonorName:          sc.donor.Name,
			BloodType:          sc.donor.BloodType,
			DistanceKm:         sc.distance,
			CompatibilityScore: sc.score,
			IsAvailable:        sc.donor.IsAvailable,
			Status:             domain.MatchStatusProposed,
		}
	}

	return matches, nil
}
