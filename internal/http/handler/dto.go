package handler

import (
	"strconv"
	"strings"
	"time"

	"roomescape/internal/model"
	"roomescape/internal/service"
)

const dateLayout = time.DateOnly

type slotRequest struct {
	Date    string `json:"date"`
	ThemeID int64  `json:"themeId"`
	TimeID  int64  `json:"timeId"`
}

type paymentRequest struct {
	PaymentKey string `json:"paymentKey"`
	OrderID    string `json:"orderId"`
	Amount     int64  `json:"amount"`
}

type reservationRequest struct {
	slotRequest
	paymentRequest
}

type adminReservationRequest struct {
	slotRequest
	MemberID int64 `json:"memberId"`
}

// validationError rejects a request before it reaches the service.
type validationError struct {
	code    string
	message string
}

func (e *validationError) Error() string { return e.message }

func invalid(code, message string) *validationError {
	return &validationError{code: code, message: message}
}

func (r slotRequest) toInput() (service.SlotInput, error) {
	if strings.TrimSpace(r.Date) == "" {
		return service.SlotInput{}, invalid("INVALID_DATE", "date is required")
	}
	d, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return service.SlotInput{}, invalid("INVALID_DATE", "date must be formatted as YYYY-MM-DD")
	}
	if r.TimeID <= 0 {
		return service.SlotInput{}, invalid("INVALID_TIME_ID", "timeId must be a positive number")
	}
	if r.ThemeID <= 0 {
		return service.SlotInput{}, invalid("INVALID_THEME_ID", "themeId must be a positive number")
	}
	return service.SlotInput{Date: d, TimeID: r.TimeID, ThemeID: r.ThemeID}, nil
}

func (r paymentRequest) toInput() (service.PaymentInput, error) {
	if strings.TrimSpace(r.PaymentKey) == "" || strings.TrimSpace(r.OrderID) == "" {
		return service.PaymentInput{}, invalid("INVALID_PAYMENT", "paymentKey and orderId are required")
	}
	if r.Amount <= 0 {
		return service.PaymentInput{}, invalid("INVALID_PAYMENT", "amount must be positive")
	}
	return service.PaymentInput{OrderID: r.OrderID, PaymentKey: r.PaymentKey, Amount: r.Amount}, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid("INVALID_ID", "invalid id format")
	}
	return id, nil
}

func parseOptionalID(raw, name string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, invalid("INVALID_"+strings.ToUpper(name), name+" must be a positive number")
	}
	return &id, nil
}

func parseOptionalDate(raw, name string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, invalid("INVALID_DATE", name+" must be formatted as YYYY-MM-DD")
	}
	return &d, nil
}

type memberResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type themeResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
}

type timeResponse struct {
	ID      int64  `json:"id"`
	StartAt string `json:"startAt"`
}

type reservationResponse struct {
	ID         int64          `json:"id"`
	Date       string         `json:"date"`
	Member     memberResponse `json:"member"`
	Time       timeResponse   `json:"time"`
	Theme      themeResponse  `json:"theme"`
	Status     model.Status   `json:"status"`
	PaymentKey string         `json:"paymentKey,omitempty"`
	Amount     int64          `json:"amount,omitempty"`
}

type myReservationResponse struct {
	ReservationID int64        `json:"reservationId"`
	Theme         string       `json:"theme"`
	Date          string       `json:"date"`
	Time          string       `json:"time"`
	Status        model.Status `json:"status"`
	WaitingOrder  int          `json:"waitingOrder"`
	PaymentKey    string       `json:"paymentKey,omitempty"`
	Amount        int64        `json:"amount,omitempty"`
}

type canceledReservationResponse struct {
	ID            int64          `json:"id"`
	ReservationID int64          `json:"reservationId"`
	Date          string         `json:"date"`
	Member        memberResponse `json:"member"`
	Time          timeResponse   `json:"time"`
	Theme         themeResponse  `json:"theme"`
	Status        model.Status   `json:"status"`
	PaymentKey    string         `json:"paymentKey,omitempty"`
	Amount        int64          `json:"amount,omitempty"`
	CanceledAt    time.Time      `json:"canceledAt"`
}

type receiptResponse struct {
	URL string `json:"url"`
}

func toMember(m model.Member) memberResponse { return memberResponse{ID: m.ID, Name: m.Name} }

func toTheme(t model.Theme) themeResponse {
	return themeResponse{ID: t.ID, Name: t.Name, Description: t.Description, Thumbnail: t.Thumbnail}
}

func toTime(t model.TimeSlot) timeResponse { return timeResponse{ID: t.ID, StartAt: t.StartAt} }

func paymentFields(p *model.Payment) (string, int64) {
	if p == nil {
		return "", 0
	}
	return p.PaymentKey, p.Amount
}

func toReservationResponse(r model.Reservation) reservationResponse {
	key, amount := paymentFields(r.Payment)
	return reservationResponse{
		ID:         r.ID,
		Date:       r.Date.Format(dateLayout),
		Member:     toMember(r.Member),
		Time:       toTime(r.Time),
		Theme:      toTheme(r.Theme),
		Status:     r.Status,
		PaymentKey: key,
		Amount:     amount,
	}
}

func toReservationResponses(items []model.Reservation) []reservationResponse {
	out := make([]reservationResponse, 0, len(items))
	for _, r := range items {
		out = append(out, toReservationResponse(r))
	}
	return out
}

func toMyReservationResponses(items []model.MyReservation) []myReservationResponse {
	out := make([]myReservationResponse, 0, len(items))
	for _, r := range items {
		key, amount := paymentFields(r.Payment)
		out = append(out, myReservationResponse{
			ReservationID: r.ID,
			Theme:         r.Theme.Name,
			Date:          r.Date.Format(dateLayout),
			Time:          r.Time.StartAt,
			Status:        r.Status,
			WaitingOrder:  r.WaitingOrder,
			PaymentKey:    key,
			Amount:        amount,
		})
	}
	return out
}

func toCanceledResponses(items []model.CanceledReservation) []canceledReservationResponse {
	out := make([]canceledReservationResponse, 0, len(items))
	for _, r := range items {
		key, amount := paymentFields(r.Payment)
		out = append(out, canceledReservationResponse{
			ID:            r.ID,
			ReservationID: r.ReservationID,
			Date:          r.Date.Format(dateLayout),
			Member:        toMember(r.Member),
			Time:          toTime(r.Time),
			Theme:         toTheme(r.Theme),
			Status:        r.Status,
			PaymentKey:    key,
			Amount:        amount,
			CanceledAt:    r.CanceledAt,
		})
	}
	return out
}
