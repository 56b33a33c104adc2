package service

import (
	"github.com/YusovID/donor-match-service/internal/domain"
	"github.com/YusovID/donor-match-service/pkg/api"
)

func toAPIMatch(m domain.DonorMatch) api.DonorMatch {
	return api.DonorMatch{
		DonorId:            m.DonorID,
		Rank:               m.Rank,
		DonorName:          m.DonorName,
		BloodType:          string(m.BloodType),
		DistanceKm:         m.DistanceKm,
		CompatibilityScore: m.CompatibilityScore,
		IsAvailable:        m.IsAvailable,
		Status:             string(m.Status),
		DecidedAt:          m.DecidedAt,
	}
}

func toAPIMatches(matches []domain.DonorMatch) []api.DonorMatch {
	out := make([]api.DonorMatch, len(matches))
	for i, m := range matches {
		out[i] = toAPIMatch(m)
	}

	return out
}

func toAPIRequest(req *domain.BloodRequest) *api.BloodRequest {
	return &api.BloodRequest{
		Id:               req.ID,
		RequesterId:      req.RequesterID,
		BloodType:        string(req.BloodType),
		UnitsNeeded:      req.UnitsNeeded,
		UnitsFulfilled:   req.UnitsFulfilled,
		Urgency:          string(req.Urgency),
		Status:           string(req.Status),
		HospitalName:     req.HospitalName,
		HospitalAddress:  req.HospitalAddress,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		PatientName:      req.PatientName,
		Notes:            req.Notes,
		AiRecommendation: req.AIRecommendation,
		MatchedDonors:    toAPIMatches(req.Matches),
		CreatedAt:        req.CreatedAt,
		UpdatedAt:        req.UpdatedAt,
	}
}

func toAPIDonor(d *domain.Donor) *api.Donor {
	return &api.Donor{
		Id:                  d.ID,
		Name:                d.Name,
		BloodType:           string(d.BloodType),
		Latitude:            d.Latitude,
		Longitude:           d.Longitude,
		IsAvailable:         d.IsAvailable,
		LastDonationDate:    d.LastDonationDate,
		ResponseProbability: d.ResponseProbability,
		UpdatedAt:           d.UpdatedAt,
	}
}
