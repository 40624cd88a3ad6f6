package mocks

import (
	"context"

	"roomescape/internal/model"
	"roomescape/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) Create(ctx context.Context, r *model.Reservation) (*model.Reservation, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *MockReservationRepository) FindByID(ctx context.Context, id int64) (*model.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *MockReservationRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReservationRepository) UpdateStatus(ctx context.Context, id int64, status model.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockReservationRepository) UpdatePayment(ctx context.Context, id int64, p model.Payment) error {
	args := m.Called(ctx, id, p)
	return args.Error(0)
}

func (m *MockReservationRepository) ExistsBySlotAndStatus(ctx context.Context, slot model.Slot, status model.Status) (bool, error) {
	args := m.Called(ctx, slot, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockReservationRepository) FindFirstBySlotAndStatus(ctx context.Context, slot model.Slot, status model.Status) (*model.Reservation, error) {
	args := m.Called(ctx, slot, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *MockReservationRepository) ExistsByMemberAndSlot(ctx context.Context, memberID int64, slot model.Slot) (bool, error) {
	args := m.Called(ctx, memberID, slot)
	return args.Bool(0), args.Error(1)
}

func (m *MockReservationRepository) ListByStatus(ctx context.Context, status model.Status) ([]model.Reservation, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Reservation), args.Error(1)
}

func (m *MockReservationRepository) ListByCriteria(ctx context.Context, c repository.Criteria) ([]model.Reservation, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Reservation), args.Error(1)
}

func (m *MockReservationRepository) ListByMember(ctx context.Context, memberID int64) ([]model.Reservation, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Reservation), args.Error(1)
}

func (m *MockReservationRepository) CountWaitingBefore(ctx context.Context, id int64, slot model.Slot) (int, error) {
	args := m.Called(ctx, id, slot)
	return args.Int(0), args.Error(1)
}
