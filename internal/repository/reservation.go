package repository

import (
	"context"
	"errors"
	"time"

	"roomescape/internal/model"
)

// ErrDuplicate is returned when a write violates a uniqueness constraint,
// e.g. a second active reservation for the same slot.
var ErrDuplicate = errors.New("duplicate record")

// Transactor runs fn inside a database transaction. Repositories called with the
// context passed to fn join that transaction. Nested calls reuse the outer one.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReservationRepository defines data access for reservations.
// Lookups of a single row return sql.ErrNoRows when nothing matches.
type ReservationRepository interface {
	// Create inserts a reservation and returns it with the generated ID and CreatedAt.
	// Time, Theme and Member only need their IDs set.
	Create(ctx context.Context, r *model.Reservation) (*model.Reservation, error)

	FindByID(ctx context.Context, id int64) (*model.Reservation, error)

	// Delete removes a reservation by ID.
	Delete(ctx context.Context, id int64) error

	UpdateStatus(ctx context.Context, id int64, status model.Status) error

	UpdatePayment(ctx context.Context, id int64, p model.Payment) error

	// ExistsBySlotAndStatus reports whether any reservation with the status holds the slot.
	ExistsBySlotAndStatus(ctx context.Context, slot model.Slot, status model.Status) (bool, error)

	// FindFirstBySlotAndStatus returns the earliest created reservation with the status for the slot.
	FindFirstBySlotAndStatus(ctx context.Context, slot model.Slot, status model.Status) (*model.Reservation, error)

	// ExistsByMemberAndSlot reports whether the member already holds any entry for the slot.
	ExistsByMemberAndSlot(ctx context.Context, memberID int64, slot model.Slot) (bool, error)

	ListByStatus(ctx context.Context, status model.Status) ([]model.Reservation, error)

	ListByCriteria(ctx context.Context, c Criteria) ([]model.Reservation, error)

	ListByMember(ctx context.Context, memberID int64) ([]model.Reservation, error)

	// CountWaitingBefore counts WAITING entries of the slot created before the reservation id.
	CountWaitingBefore(ctx context.Context, id int64, slot model.Slot) (int, error)
}

// Criteria filters reservations. Nil fields are ignored; dates are inclusive.
type Criteria struct {
	ThemeID  *int64
	MemberID *int64
	DateFrom *time.Time
	DateTo   *time.Time
}

// CanceledReservationRepository stores the append-only cancellation archive.
type CanceledReservationRepository interface {
	Create(ctx context.Context, c *model.CanceledReservation) (*model.CanceledReservation, error)
	List(ctx context.Context) ([]model.CanceledReservation, error)
}

// CatalogRepository looks up the reference data reservations point at.
type CatalogRepository interface {
	FindMember(ctx context.Context, id int64) (*model.Member, error)
	FindTheme(ctx context.Context, id int64) (*model.Theme, error)
	FindTime(ctx context.Context, id int64) (*model.TimeSlot, error)
}
