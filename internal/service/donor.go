package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/YusovID/donor-match-service/internal/apperrors"
	"github.com/YusovID/donor-match-service/internal/bloodtype"
	"github.com/YusovID/donor-match-service/internal/domain"
	"github.com/YusovID/donor-match-service/internal/geo"
	"github.com/YusovID/donor-match-service/internal/repository"
	"github.com/YusovID/donor-match-service/pkg/api"
)

const defaultResponseProbability = 0.5

type DonorService interface {
	UpsertDonorProfile(ctx context.Context, donorID string, in api.UpsertDonorProfileJSONRequestBody) (*api.Donor, error)
	SetAvailability(ctx context.Context, donorID string, isAvailable bool) (*api.Donor, error)
	GetDonor(ctx context.Context, donorID string) (*api.Donor, error)
	GetDonorStats(ctx context.Context, donorID string) (*api.DonorStats, error)
}

type DonorServiceImpl struct {
	BaseService
	donors repository.DonorRepository
}

func NewDonorService(base BaseService, donors repository.DonorRepository) *DonorServiceImpl {
	return &DonorServiceImpl{
		BaseService: base,
		donors:      donors,
	}
}

// UpsertDonorProfile creates the caller's donor profile or replaces it.
// Omitted availability and probability keep their stored values, or the
// defaults for a new donor.
func (s *DonorServiceImpl) UpsertDonorProfile(ctx context.Context, donorID string, in api.UpsertDonorProfileJSONRequestBody) (*api.Donor, error) {
	const op = "internal.service.donor.UpsertDonorProfile"
	log := s.log.With(slog.String("op", op), slog.String("donor_id", donorID))

	bt, err := bloodtype.Parse(in.BloodType)
	if err != nil {
		return nil, err
	}

	if in.Latitude == nil || in.Longitude == nil {
		return nil, fmt.Errorf("%w: latitude and longitude are required", apperrors.ErrValidation)
	}

	location := domain.Coordinate{Latitude: *in.Latitude, Longitude: *in.Longitude}
	if err := geo.Validate(location); err != nil {
		return nil, err
	}

	if in.ResponseProbability != nil && (*in.ResponseProbability < 0 || *in.ResponseProbability > 1) {
		return nil, fmt.Errorf("%w: response_probability must be in [0, 1]", apperrors.ErrValidation)
	}

	var saved *domain.Donor

	err = s.read(ctx, op, func(ctx context.Context) error {
		donor := &domain.Donor{
			ID:                  donorID,
			IsAvailable:         true,
			ResponseProbability: defaultResponseProbability,
		}

		existing, err := s.donors.GetDonorByID(ctx, donorID)
		switch {
		case err == nil:
			donor.IsAvailable = existing.IsAvailable
			donor.ResponseProbability = existing.ResponseProbability
		case !errors.Is(err, apperrors.ErrNotFound):
			return err
		}

		donor.Name = in.Name
		donor.BloodType = bt
		donor.Latitude = location.Latitude
		donor.Longitude = location.Longitude
		donor.LastDonationDate = in.LastDonationDate

		if in.IsAvailable != nil {
			donor.IsAvailable = *in.IsAvailable
		}

		if in.ResponseProbability != nil {
			donor.ResponseProbability = *in.ResponseProbability
		}

		saved, err = s.donors.UpsertDonor(ctx, donor)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("donor profile saved", slog.String("blood_type", string(saved.BloodType)))

	return toAPIDonor(saved), nil
}

func (s *DonorServiceImpl) SetAvailability(ctx context.Context, donorID string, isAvailable bool) (*api.Donor, error) {
	const op = "internal.service.donor.SetAvailability"

	var donor *domain.Donor

	err := s.read(ctx, op, func(ctx context.Context) error {
		var err error

		donor, err = s.donors.SetAvailability(ctx, donorID, isAvailable)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("donor availability changed",
		slog.String("op", op),
		slog.String("donor_id", donorID),
		slog.Bool("is_available", isAvailable),
	)

	return toAPIDonor(donor), nil
}

func (s *DonorServiceImpl) GetDonor(ctx context.Context, donorID string) (*api.Donor, error) {
	const op = "internal.service.donor.GetDonor"

	var donor *domain.Donor

	err := s.read(ctx, op, func(ctx context.Context) error {
		var err error

		donor, err = s.donors.GetDonorByID(ctx, donorID)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toAPIDonor(donor), nil
}

// GetDonorStats returns the donor's dashboard counters.
func (s *DonorServiceImpl) GetDonorStats(ctx context.Context, donorID string) (*api.DonorStats, error) {
	const op = "internal.service.donor.GetDonorStats"

	var stats *domain.DonorStats

	err := s.read(ctx, op, func(ctx context.Context) error {
		var err error

		stats, err = s.donors.GetDonorStats(ctx, donorID)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.DonorStats{
		TotalDonations:  stats.TotalDonations,
		PendingRequests: stats.PendingRequests,
		IsAvailable:     stats.IsAvailable,
	}, nil
}
