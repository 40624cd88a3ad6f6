package model

import "time"

// Status distinguishes an active booking from a waitlist entry.
type Status string

const (
	StatusReservation Status = "RESERVATION"
	StatusWaiting     Status = "WAITING"
)

// ParseStatus returns the Status named by s and whether it is known.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusReservation, StatusWaiting:
		return Status(s), true
	}
	return "", false
}

// Slot is the (date, time, theme) combination reservations compete for.
type Slot struct {
	Date    time.Time
	TimeID  int64
	ThemeID int64
}

// Payment holds the gateway-confirmed payment metadata of a reservation.
type Payment struct {
	OrderID    string `json:"order_id"`
	PaymentKey string `json:"payment_key"`
	Amount     int64  `json:"amount"`
}

// Reservation is a booking or waitlist entry for a slot.
// Creation order is the ascending ID order.
type Reservation struct {
	ID        int64
	Date      time.Time
	Time      TimeSlot
	Theme     Theme
	Member    Member
	Status    Status
	Payment   *Payment
	CreatedAt time.Time
}

// Slot returns the slot the reservation competes for.
func (r Reservation) Slot() Slot {
	return Slot{Date: r.Date, TimeID: r.Time.ID, ThemeID: r.Theme.ID}
}

// StartsAt combines the reservation date and time slot in loc.
func (r Reservation) StartsAt(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("15:04", r.Time.StartAt, loc)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := r.Date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc), nil
}

// Canceled builds the archival copy stored when the reservation is canceled.
func (r Reservation) Canceled(at time.Time) CanceledReservation {
	return CanceledReservation{
		ReservationID: r.ID,
		Date:          r.Date,
		Time:          r.Time,
		Theme:         r.Theme,
		Member:        r.Member,
		Status:        r.Status,
		Payment:       r.Payment,
		CanceledAt:    at,
	}
}

// CanceledReservation is an append-only archive of a canceled reservation.
type CanceledReservation struct {
	ID            int64
	ReservationID int64
	Date          time.Time
	Time          TimeSlot
	Theme         Theme
	Member        Member
	Status        Status
	Payment       *Payment
	CanceledAt    time.Time
}

// MyReservation is a member's reservation together with its position in the waitlist.
type MyReservation struct {
	Reservation
	WaitingOrder int
}
