package mocks

import (
	"context"

	"roomescape/internal/queue"

	"github.com/stretchr/testify/mock"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event queue.ReservationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
