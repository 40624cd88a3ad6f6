package mocks

import (
	"context"

	"roomescape/internal/model"
	"roomescape/internal/repository"
	"roomescape/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) SaveWithPayment(ctx context.Context, memberID int64, in service.SlotInput, pay service.PaymentInput) (*model.Reservation, error) {
	args := m.Called(ctx, memberID, in, pay)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *MockReservationService) SaveWaiting(ctx context.Context, memberID int64, in service.SlotInput) (*model.Reservation, error) {
	args := m.Called(ctx, memberID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *MockReservationService) SaveByAdmin(ctx context.Context, memberID int64, in service.SlotInput) (*model.Reservation, error) {
	args := m.Called(ctx, memberID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *MockReservationService) DeleteByID(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReservationService) CancelByMember(ctx context.Context, memberID, id int64) error {
	args := m.Called(ctx, memberID, id)
	return args.Error(0)
}

func (m *MockReservationService) ApprovePaymentWaiting(ctx context.Context, memberID, id int64, pay service.PaymentInput) (*model.Reservation, error) {
	args := m.Called(ctx, memberID, id, pay)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *MockReservationService) ListByStatus(ctx context.Context, status model.Status) ([]model.Reservation, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Reservation), args.Error(1)
}

func (m *MockReservationService) ListByCriteria(ctx context.Context, c repository.Criteria) ([]model.Reservation, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Reservation), args.Error(1)
}

func (m *MockReservationService) ListMine(ctx context.Context, memberID int64) ([]model.MyReservation, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MyReservation), args.Error(1)
}

func (m *MockReservationService) FindByID(ctx context.Context, id int64) (*model.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *MockReservationService) ListCanceled(ctx context.Context) ([]model.CanceledReservation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CanceledReservation), args.Error(1)
}

func (m *MockReservationService) ReceiptURL(ctx context.Context, memberID, id int64) (string, error) {
	args := m.Called(ctx, memberID, id)
	return args.String(0), args.Error(1)
}
