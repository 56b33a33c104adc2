package http

import (
	"context"

	"github.com/YusovID/donor-match-service/internal/service"
	"github.com/YusovID/donor-match-service/pkg/api"
	"github.com/stretchr/testify/mock"
)

type RequestServiceMock struct {
	mock.Mock
}

var _ service.RequestService = (*RequestServiceMock)(nil)

func (m *RequestServiceMock) CreateRequest(ctx context.Context, requesterID string, body api.CreateRequestJSONRequestBody) (*api.BloodRequest, error) {
	args := m.Called(ctx, requesterID, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*api.BloodRequest), args.Error(1)
}

func (m *RequestServiceMock) GetRequest(ctx context.Context, requestID string) (*api.BloodRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*api.BloodRequest), args.Error(1)
}

func (m *RequestServiceMock) ListRequests(ctx context.Context, params api.ListRequestsParams) ([]api.BloodRequest, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]api.BloodRequest), args.Error(1)
}

func (m *RequestServiceMock) CancelRequest(ctx context.Context, requesterID, requestID string) (*api.BloodRequest, error) {
	args := m.Called(ctx, requesterID, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*api.BloodRequest), args.Error(1)
}

func (m *RequestServiceMock) FindNearbyDonors(ctx context.Context, params api.FindNearbyDonorsParams) ([]api.DonorMatch, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]api.DonorMatch), args.Error(1)
}

func (m *RequestServiceMock) GetStats(ctx context.Context) (*api.StatsResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*api.StatsResponse), args.Error(1)
}

type FulfillmentServiceMock struct {
	mock.Mock
}

var _ service.FulfillmentService = (*FulfillmentServiceMock)(nil)

func (m *FulfillmentServiceMock) AcceptMatch(ctx context.Context, requestID, donorID string) (*api.AcceptResponse, error) {
	args := m.Called(ctx, requestID, donorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*api.AcceptResponse), args.Error(1)
}

func (m *FulfillmentServiceMock) DeclineMatch(ctx context.Context, requestID, donorID string) (*api.DonorMatch, error) {
	args := m.Called(ctx, requestID, donorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*api.DonorMatch), args.Error(1)
}

type DonorServiceMock struct {
	mock.Mock
}

var _ service.DonorService = (*DonorServiceMock)(nil)

func (m *DonorServiceMock) UpsertDonorProfile(ctx context.Context, donorID string, body api.UpsertDonorProfileJSONRequestBody) (*api.Donor, error) {
	args := m.Called(ctx, donorID, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*api.Donor), args.Error(1)
}

func (m *DonorServiceMock) SetAvailability(ctx context.Context, donorID string, isAvailable bool) (*api.Donor, error) {
	args := m.Called(ctx, donorID, isAvailable)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*api.Donor), args.Error(1)
}

func (m *DonorServiceMock) GetDonor(ctx context.Context, donorID string) (*api.Donor, error) {
	args := m.Called(ctx, donorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*api.Donor), args.Error(1)
}

func (m *DonorServiceMock) GetDonorStats(ctx context.Context, donorID string) (*api.DonorStats, error) {
	args := m.Called(ctx, donorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*api.DonorStats), args.Error(1)
}

type PingerMock struct {
	mock.Mock
}

func (m *PingerMock) PingContext(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
