package mocks

import (
	"context"

	"roomescape/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockCanceledReservationRepository struct {
	mock.Mock
}

func (m *MockCanceledReservationRepository) Create(ctx context.Context, c *model.CanceledReservation) (*model.CanceledReservation, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CanceledReservation), args.Error(1)
}

func (m *MockCanceledReservationRepository) List(ctx context.Context) ([]model.CanceledReservation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CanceledReservation), args.Error(1)
}
