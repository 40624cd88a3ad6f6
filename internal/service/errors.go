package service

import (
	"errors"
	"fmt"
	"net/http"

	"roomescape/internal/payment"
)

// Error is a client-facing failure carrying the HTTP status and a safe message.
// Sentinels below are wrapped with %w to add context such as the id.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrReservationNotFound = &Error{Status: http.StatusNotFound, Code: "RESERVATION_NOT_FOUND", Message: "reservation not found"}
	ErrTimeNotFound        = &Error{Status: http.StatusNotFound, Code: "TIME_NOT_FOUND", Message: "reservation time not found"}
	ErrThemeNotFound       = &Error{Status: http.StatusNotFound, Code: "THEME_NOT_FOUND", Message: "theme not found"}
	ErrMemberNotFound      = &Error{Status: http.StatusNotFound, Code: "MEMBER_NOT_FOUND", Message: "member not found"}
	ErrReceiptNotFound     = &Error{Status: http.StatusNotFound, Code: "RECEIPT_NOT_FOUND", Message: "reservation has no payment receipt"}
	ErrPastSlot            = &Error{Status: http.StatusBadRequest, Code: "PAST_SLOT", Message: "cannot reserve a date and time that has already passed"}
	ErrInvalidCriteria     = &Error{Status: http.StatusBadRequest, Code: "INVALID_CRITERIA", Message: "dateFrom must not be after dateTo"}
	ErrNotOwner            = &Error{Status: http.StatusForbidden, Code: "FORBIDDEN", Message: "reservation belongs to another member"}
	ErrAlreadyReserved     = &Error{Status: http.StatusConflict, Code: "ALREADY_RESERVED", Message: "slot is already reserved"}
	ErrDuplicateEntry      = &Error{Status: http.StatusConflict, Code: "DUPLICATE_ENTRY", Message: "member already holds an entry for this slot"}
	ErrSlotAvailable       = &Error{Status: http.StatusConflict, Code: "SLOT_AVAILABLE", Message: "slot is not reserved, book it instead of waiting"}
	ErrAlreadyPaid         = &Error{Status: http.StatusConflict, Code: "ALREADY_PAID", Message: "reservation is already paid"}
	ErrPaymentMismatch     = &Error{Status: http.StatusBadGateway, Code: "PAYMENT_MISMATCH", Message: "payment gateway confirmed a different payment"}
	ErrPaymentUnavailable  = &Error{Status: http.StatusBadGateway, Code: "PAYMENT_UNAVAILABLE", Message: "payment gateway unavailable"}
	ErrReceiptsDisabled    = &Error{Status: http.StatusServiceUnavailable, Code: "RECEIPTS_DISABLED", Message: "receipt storage is not configured"}
)

func reservationNotFound(id int64) error {
	return fmt.Errorf("%w: id=%d", ErrReservationNotFound, id)
}

// paymentError turns a gateway failure into a user-visible error.
// Rejections caused by our own credentials or the gateway's health surface as 502.
func paymentError(err error) error {
	var gw *payment.GatewayError
	if !errors.As(err, &gw) {
		return ErrPaymentUnavailable
	}
	status := gw.Status
	if status >= http.StatusInternalServerError || status == http.StatusUnauthorized || status == http.StatusForbidden {
		status = http.StatusBadGateway
	}
	code := gw.Code
	if code == "" {
		code = "PAYMENT_REJECTED"
	}
	return &Error{Status: status, Code: code, Message: gw.Message}
}
