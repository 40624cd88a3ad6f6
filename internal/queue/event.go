// Package queue defines reservation events and publishes them to the message broker.
package queue

// Event types published by the reservation service.
const (
	EventReservationCanceled = "reservation.canceled"
	EventWaitingPromoted     = "reservation.promoted"
)

// ReservationEvent carries enough about a reservation for downstream consumers
// (e.g. a notifier telling a promoted member to pay) without querying the database.
type ReservationEvent struct {
	Type          string `json:"type"`
	ReservationID int64  `json:"reservation_id"`
	MemberID      int64  `json:"member_id"`
	ThemeID       int64  `json:"theme_id"`
	ThemeName     string `json:"theme_name"`
	Date          string `json:"date"`
	StartAt       string `json:"start_at"`
	Status        string `json:"status"`
	OccurredAt    string `json:"occurred_at"`
}
