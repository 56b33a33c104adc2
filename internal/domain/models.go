package domain

import (
	"time"
)

type BloodType string

const (
	BloodTypeOPositive  BloodType = "O+"
	BloodTypeONegative  BloodType = "O-"
	BloodTypeAPositive  BloodType = "A+"
	BloodTypeANegative  BloodType = "A-"
	BloodTypeBPositive  BloodType = "B+"
	BloodTypeBNegative  BloodType = "B-"
	BloodTypeABPositive BloodType = "AB+"
	BloodTypeABNegative BloodType = "AB-"
)

type Urgency string

const (
	UrgencyEmergency Urgency = "emergency"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyNormal    Urgency = "normal"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyEmergency, UrgencyUrgent, UrgencyNormal:
		return true
	}

	return false
}

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusMatching  RequestStatus = "matching"
	RequestStatusFulfilled RequestStatus = "fulfilled"
	RequestStatusCancelled RequestStatus = "cancelled"
)

func (s RequestStatus) Terminal() bool {
	return s == RequestStatusFulfilled || s == RequestStatusCancelled
}

type MatchStatus string

const (
	MatchStatusProposed MatchStatus = "proposed"
	MatchStatusAccepted MatchStatus = "accepted"
	MatchStatusDeclined MatchStatus = "declined"
)

type Coordinate struct {
	Latitude  float64
	Longitude float64
}

type Donor struct {
	ID                  string     `db:"id"`
	Name                string     `db:"name"`
	BloodType           BloodType  `db:"blood_type"`
	Latitude            float64    `db:"latitude"`
	Longitude           float64    `db:"longitude"`
	IsAvailable         bool       `db:"is_available"`
	LastDonationDate    *time.Time `db:"last_donation_date"`
	ResponseProbability float64    `db:"response_probability"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
}

func (d Donor) Location() Coordinate {
	return Coordinate{Latitude: d.Latitude, Longitude: d.Longitude}
}

// BloodRequest keeps the counters and flags its status is derived from.
// Status mirrors the generated column and is never written directly.
type BloodRequest struct {
	ID               string        `db:"id"`
	RequesterID      string        `db:"requester_id"`
	BloodType        BloodType     `db:"blood_type"`
	UnitsNeeded      int           `db:"units_needed"`
	UnitsFulfilled   int           `db:"units_fulfilled"`
	Urgency          Urgency       `db:"urgency"`
	Matched          bool          `db:"matched"`
	Cancelled        bool          `db:"cancelled"`
	Status           RequestStatus `db:"status"`
	HospitalName     *string       `db:"hospital_name"`
	HospitalAddress  *string       `db:"hospital_address"`
	Latitude         *float64      `db:"latitude"`
	Longitude        *float64      `db:"longitude"`
	PatientName      *string       `db:"patient_name"`
	Notes            *string       `db:"notes"`
	AIRecommendation *string       `db:"ai_recommendation"`
	CreatedAt        time.Time     `db:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at"`
	Matches          []DonorMatch
}

// Location reports the request coordinate, if both parts were supplied.
func (r *BloodRequest) Location() (Coordinate, bool) {
	if r.Latitude == nil || r.Longitude == nil {
		return Coordinate{}, false
	}

	return Coordinate{Latitude: *r.Latitude, Longitude: *r.Longitude}, true
}

// DonorMatch snapshots the donor at match time; only Status and DecidedAt
// change afterwards.
type DonorMatch struct {
	RequestID          string      `db:"request_id"`
	DonorID            string      `db:"donor_id"`
	Rank               int         `db:"rank"`
	DonorName          string      `db:"donor_name"`
	BloodType          BloodType   `db:"blood_type"`
	DistanceKm         float64     `db:"distance_km"`
	CompatibilityScore float64     `db:"compatibility_score"`
	IsAvailable        bool        `db:"is_available"`
	Status             MatchStatus `db:"status"`
	DecidedAt          *time.Time  `db:"decided_at"`
}

type DonationStatus string

const DonationStatusScheduled DonationStatus = "scheduled"

type Donation struct {
	ID        string         `db:"id"`
	DonorID   string         `db:"donor_id"`
	RequestID string         `db:"request_id"`
	BloodType BloodType      `db:"blood_type"`
	Status    DonationStatus `db:"status"`
	CreatedAt time.Time      `db:"created_at"`
}

type EventKind string

const (
	EventRequestCreated   EventKind = "created"
	EventMatchAccepted    EventKind = "accepted"
	EventMatchDeclined    EventKind = "declined"
	EventRequestFulfilled EventKind = "fulfilled"
	EventRequestCancelled EventKind = "cancelled"
)

// RequestEvent is the payload handed to the external notification dispatcher.
type RequestEvent struct {
	ID             string        `json:"id"`
	Kind           EventKind     `json:"kind"`
	RequestID      string        `json:"request_id"`
	DonorID        string        `json:"donor_id,omitempty"`
	Status         RequestStatus `json:"status"`
	BloodType      BloodType     `json:"blood_type,omitempty"`
	Urgency        Urgency       `json:"urgency,omitempty"`
	RankedDonorIDs []string      `json:"ranked_donor_ids,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

type RequestFilter struct {
	RequesterID string
	DonorID     string
	Status      RequestStatus
	Limit       uint64
}

type Stats struct {
	TotalDonors       int `db:"total_donors"`
	AvailableDonors   int `db:"available_donors"`
	TotalRequests     int `db:"total_requests"`
	OpenRequests      int `db:"open_requests"`
	FulfilledRequests int `db:"fulfilled_requests"`
	CancelledRequests int `db:"cancelled_requests"`
}

// DonorStats are the counters behind a donor's dashboard. PendingRequests
// counts open requests on which the donor is still proposed.
type DonorStats struct {
	TotalDonations  int  `db:"total_donations"`
	PendingRequests int  `db:"pending_requests"`
	IsAvailable     bool `db:"is_available"`
}

// FulfillmentRate is the share of fulfilled requests in percent, rounded to
// one decimal.
func (s Stats) FulfillmentRate() float64 {
	if s.TotalRequests == 0 {
		return 0
	}

	rate := float64(s.FulfilledRequests) / float64(s.TotalRequests) * 1000

	return float64(int64(rate+0.5)) / 10
}
