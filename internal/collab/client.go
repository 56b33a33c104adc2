// Package collab talks to the external prediction service that supplies donor
// response probabilities and the free-text recommendation for a request.
package collab

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/YusovID/donor-match-service/internal/config"
	"github.com/YusovID/donor-match-service/internal/domain"
	"github.com/go-resty/resty/v2"
)

const (
	probabilityPath    = "/v1/response-probability"
	recommendationPath = "/v1/recommendations"
	retryWait          = 100 * time.Millisecond
)

type Client struct {
	http *resty.Client
	log  *slog.Logger
}

func New(cfg config.Predictor, log *slog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(retryWait).
		SetRetryMaxWaitTime(4 * retryWait).
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err == nil && r.StatusCode() >= http.StatusInternalServerError
		})

	return &Client{
		http: httpClient,
		log:  log,
	}
}

type requestPayload struct {
	ID          string  `json:"id"`
	BloodType   string  `json:"blood_type"`
	UnitsNeeded int     `json:"units_needed"`
	Urgency     string  `json:"urgency"`
	Hospital    *string `json:"hospital_name,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

type donorPayload struct {
	ID               string     `json:"id"`
	BloodType        string     `json:"blood_type"`
	LastDonationDate *time.Time `json:"last_donation_date,omitempty"`
	Probability      float64    `json:"stored_probability"`
}

type probabilityRequest struct {
	Request requestPayload `json:"request"`
	Donors  []donorPayload `json:"donors"`
}

type probabilityResponse struct {
	Probabilities map[string]float64 `json:"probabilities"`
}

type matchPayload struct {
	DonorID    string  `json:"donor_id"`
	Rank       int     `json:"rank"`
	DistanceKm float64 `json:"distance_km"`
	Score      float64 `json:"compatibility_score"`
}

type recommendationRequest struct {
	Request requestPayload `json:"request"`
	Matches []matchPayload `json:"matches"`
}

type recommendationResponse struct {
	Recommendation string `json:"recommendation"`
}

func toRequestPayload(req *domain.BloodRequest) requestPayload {
	return requestPayload{
		ID:          req.ID,
		BloodType:   string(req.BloodType),
		UnitsNeeded: req.UnitsNeeded,
		Urgency:     string(req.Urgency),
		Hospital:    req.HospitalName,
		Notes:       req.Notes,
	}
}

// ResponseProbabilities returns the predicted probability, keyed by donor id,
// that each donor accepts req. Donors the service has no opinion on are
// simply absent from the map.
func (c *Client) ResponseProbabilities(ctx context.Context, req *domain.BloodRequest, donors []domain.Donor) (map[string]float64, error) {
	const op = "internal.collab.ResponseProbabilities"

	body := probabilityRequest{
		Request: toRequestPayload(req),
		Donors:  make([]donorPayload, len(donors)),
	}

	for i, d := range donors {
		body.Donors[i] = donorPayload{
			ID:               d.ID,
			BloodType:        string(d.BloodType),
			LastDonationDate: d.LastDonationDate,
			Probability:      d.ResponseProbability,
		}
	}

	var out probabilityResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		Post(probabilityPath)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", op, err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode())
	}

	c.log.Debug("response probabilities received",
		slog.String("op", op),
		slog.Int("donors", len(donors)),
		slog.Int("predicted", len(out.Probabilities)),
	)

	return out.Probabilities, nil
}

// Recommend returns the opaque recommendation text for req and its ranked matches.
func (c *Client) Recommend(ctx context.Context, req *domain.BloodRequest, matches []domain.DonorMatch) (string, error) {
	const op = "internal.collab.Recommend"

	body := recommendationRequest{
		Request: toRequestPayload(req),
		Matches: make([]matchPayload, len(matches)),
	}

	for i, m := range matches {
		body.Matches[i] = matchPayload{
			DonorID:    m.DonorID,
			Rank:       m.Rank,
			DistanceKm: m.DistanceKm,
			Score:      m.CompatibilityScore,
		}
	}

	var out recommendationResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		Post(recommendationPath)
	if err != nil {
		return "", fmt.Errorf("%s: request failed: %w", op, err)
	}

	if resp.IsError() {
		return "", fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode())
	}

	return out.Recommendation, nil
}
