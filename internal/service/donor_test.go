package service

import (
	"context"
	"errors"
	"testing"

	"github.com/YusovID/donor-match-service/internal/apperrors"
	"github.com/YusovID/donor-match-service/internal/domain"
	"github.com/YusovID/donor-match-service/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDonorServiceImpl_UpsertDonorProfile(t *testing.T) {
	profile := api.UpsertDonorProfileJSONRequestBody{
		Name:      "Ann",
		BloodType: "a-",
		Latitude:  ptr(55.75),
		Longitude: ptr(37.62),
	}

	testCases := []struct {
		name                string
		in                  api.UpsertDonorProfileJSONRequestBody
		setupMocks          func(repo *DonorRepositoryMock)
		expectedErr         error
		expectedAvailable   bool
		expectedProbability float64
	}{
		{
			name: "New donor gets defaults",
			in:   profile,
			setupMocks: func(repo *DonorRepositoryMock) {
				repo.On("GetDonorByID", mock.Anything, "donor-1").Return(nil, apperrors.ErrNotFound).Once()
				repo.On("UpsertDonor", mock.Anything, mock.MatchedBy(func(d *domain.Donor) bool {
					return d.BloodType == domain.BloodTypeANegative && d.IsAvailable && d.ResponseProbability == 0.5
				})).Return(&domain.Donor{ID: "donor-1", IsAvailable: true, ResponseProbability: 0.5}, nil).Once()
			},
			expectedAvailable:   true,
			expectedProbability: 0.5,
		},
		{
			name: "Existing donor keeps omitted fields",
			in:   profile,
			setupMocks: func(repo *DonorRepositoryMock) {
				repo.On("GetDonorByID", mock.Anything, "donor-1").
					Return(&domain.Donor{ID: "donor-1", IsAvailable: false, ResponseProbability: 0.9}, nil).Once()
				repo.On("UpsertDonor", mock.Anything, mock.MatchedBy(func(d *domain.Donor) bool {
					return d.Name == "Ann" && !d.IsAvailable && d.ResponseProbability == 0.9
				})).Return(&domain.Donor{ID: "donor-1", Name: "Ann", ResponseProbability: 0.9}, nil).Once()
			},
			expectedAvailable:   false,
			expectedProbability: 0.9,
		},
		{
			name: "Explicit fields win",
			in: api.UpsertDonorProfileJSONRequestBody{
				Name: "Ann", BloodType: "O+", Latitude: ptr(1.0), Longitude: ptr(2.0),
				IsAvailable: ptr(false), ResponseProbability: ptr(0.2),
			},
			setupMocks: func(repo *DonorRepositoryMock) {
				repo.On("GetDonorByID", mock.Anything, "donor-1").Return(nil, apperrors.ErrNotFound).Once()
				repo.On("UpsertDonor", mock.Anything, mock.MatchedBy(func(d *domain.Donor) bool {
					return d.BloodType == domain.BloodTypeOPositive && !d.IsAvailable && d.ResponseProbability == 0.2
				})).Return(&domain.Donor{ID: "donor-1", ResponseProbability: 0.2}, nil).Once()
			},
			expectedAvailable:   false,
			expectedProbability: 0.2,
		},
		{
			name:        "Unknown blood type",
			in:          api.UpsertDonorProfileJSONRequestBody{Name: "Ann", BloodType: "Z"},
			setupMocks:  func(repo *DonorRepositoryMock) {},
			expectedErr: apperrors.ErrUnknownBloodType,
		},
		{
			name:        "Invalid coordinate",
			in:          api.UpsertDonorProfileJSONRequestBody{Name: "Ann", BloodType: "B+", Latitude: ptr(0.0), Longitude: ptr(200.0)},
			setupMocks:  func(repo *DonorRepositoryMock) {},
			expectedErr: apperrors.ErrInvalidCoordinate,
		},
		{
			name:        "Probability out of range",
			in:          api.UpsertDonorProfileJSONRequestBody{Name: "Ann", BloodType: "B+", Latitude: ptr(0.0), Longitude: ptr(0.0), ResponseProbability: ptr(1.5)},
			setupMocks:  func(repo *DonorRepositoryMock) {},
			expectedErr: apperrors.ErrValidation,
		},
		{
			name:        "Missing longitude",
			in:          api.UpsertDonorProfileJSONRequestBody{Name: "Ann", BloodType: "B+", Latitude: ptr(10.0)},
			setupMocks:  func(repo *DonorRepositoryMock) {},
			expectedErr: apperrors.ErrValidation,
		},
		{
			name: "Zero coordinates are a real location",
			in:   api.UpsertDonorProfileJSONRequestBody{Name: "Ann", BloodType: "B+", Latitude: ptr(0.0), Longitude: ptr(0.0)},
			setupMocks: func(repo *DonorRepositoryMock) {
				repo.On("GetDonorByID", mock.Anything, "donor-1").Return(nil, apperrors.ErrNotFound).Once()
				repo.On("UpsertDonor", mock.Anything, mock.MatchedBy(func(d *domain.Donor) bool {
					return d.Latitude == 0 && d.Longitude == 0
				})).Return(&domain.Donor{ID: "donor-1", IsAvailable: true, ResponseProbability: 0.5}, nil).Once()
			},
			expectedAvailable:   true,
			expectedProbability: 0.5,
		},
		{
			name: "Lookup failure",
			in:   profile,
			setupMocks: func(repo *DonorRepositoryMock) {
				repo.On("GetDonorByID", mock.Anything, "donor-1").Return(nil, errors.New("connection reset")).Once()
			},
			expectedErr: errors.New("connection reset"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(DonorRepositoryMock)
			tc.setupMocks(repo)

			s := NewDonorService(newTestBase(new(TransactorMock)), repo)

			got, err := s.UpsertDonorProfile(context.Background(), "donor-1", tc.in)

			switch {
			case tc.expectedErr == nil:
				require.NoError(t, err)
				assert.Equal(t, "donor-1", got.Id)
				assert.Equal(t, tc.expectedAvailable, got.IsAvailable)
				assert.Equal(t, tc.expectedProbability, got.ResponseProbability)
			case apperrors.IsDomain(tc.expectedErr):
				assert.ErrorIs(t, err, tc.expectedErr)
				repo.AssertNotCalled(t, "UpsertDonor", mock.Anything, mock.Anything)
			default:
				assert.ErrorContains(t, err, tc.expectedErr.Error())
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestDonorServiceImpl_SetAvailability(t *testing.T) {
	repo := new(DonorRepositoryMock)
	repo.On("SetAvailability", mock.Anything, "donor-1", false).
		Return(&domain.Donor{ID: "donor-1", BloodType: domain.BloodTypeOPositive}, nil).Once()
	repo.On("SetAvailability", mock.Anything, "ghost", true).Return(nil, apperrors.ErrNotFound).Once()

	s := NewDonorService(newTestBase(new(TransactorMock)), repo)

	got, err := s.SetAvailability(context.Background(), "donor-1", false)
	require.NoError(t, err)
	assert.False(t, got.IsAvailable)
	assert.Equal(t, "O+", got.BloodType)

	_, err = s.SetAvailability(context.Background(), "ghost", true)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	repo.AssertExpectations(t)
}

func TestDonorServiceImpl_GetDonor(t *testing.T) {
	repo := new(DonorRepositoryMock)
	repo.On("GetDonorByID", mock.Anything, "ghost").Return(nil, apperrors.ErrNotFound).Once()

	_, err := NewDonorService(newTestBase(new(TransactorMock)), repo).GetDonor(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDonorServiceImpl_GetDonorStats(t *testing.T) {
	repo := new(DonorRepositoryMock)
	repo.On("GetDonorStats", mock.Anything, "donor-1").
		Return(&domain.DonorStats{TotalDonations: 4, PendingRequests: 2, IsAvailable: true}, nil).Once()
	repo.On("GetDonorStats", mock.Anything, "ghost").Return(nil, apperrors.ErrNotFound).Once()

	s := NewDonorService(newTestBase(new(TransactorMock)), repo)

	got, err := s.GetDonorStats(context.Background(), "donor-1")
	require.NoError(t, err)
	assert.Equal(t, &api.DonorStats{TotalDonations: 4, PendingRequests: 2, IsAvailable: true}, got)

	_, err = s.GetDonorStats(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	repo.AssertExpectations(t)
}
