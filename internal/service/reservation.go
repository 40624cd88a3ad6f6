package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"roomescape/internal/clock"
	"roomescape/internal/model"
	"roomescape/internal/payment"
	"roomescape/internal/queue"
	"roomescape/internal/repository"
	"roomescape/internal/storage"
)

const receiptURLExpiry = 15 * time.Minute

// SlotInput identifies the slot a reservation is requested for. Date carries no time of day.
type SlotInput struct {
	Date    time.Time
	TimeID  int64
	ThemeID int64
}

// PaymentInput is the client's payment authorization to be confirmed with the gateway.
type PaymentInput struct {
	OrderID    string
	PaymentKey string
	Amount     int64
}

// PaymentGateway confirms a payment with the external provider.
type PaymentGateway interface {
	Confirm(ctx context.Context, req payment.Request) (*payment.Confirmation, error)
}

// EventPublisher delivers reservation events to interested consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event queue.ReservationEvent) error
}

// ReservationService defines the reservation and waitlist use cases.
type ReservationService interface {
	// SaveWithPayment books an available slot for the member and confirms the payment in the same
	// transaction; a rejected payment leaves no reservation behind.
	SaveWithPayment(ctx context.Context, memberID int64, in SlotInput, pay PaymentInput) (*model.Reservation, error)

	// SaveWaiting puts the member on the waitlist of an already reserved slot.
	SaveWaiting(ctx context.Context, memberID int64, in SlotInput) (*model.Reservation, error)

	// SaveByAdmin books a slot on behalf of a member without payment.
	SaveByAdmin(ctx context.Context, memberID int64, in SlotInput) (*model.Reservation, error)

	// DeleteByID cancels a reservation, archives it and promotes the earliest waiting entry
	// when the canceled one was the active reservation of its slot.
	DeleteByID(ctx context.Context, id int64) error

	// CancelByMember is DeleteByID restricted to the member's own entries.
	CancelByMember(ctx context.Context, memberID, id int64) error

	// ApprovePaymentWaiting marks the member's reservation active and confirms its payment.
	ApprovePaymentWaiting(ctx context.Context, memberID, id int64, pay PaymentInput) (*model.Reservation, error)

	ListByStatus(ctx context.Context, status model.Status) ([]model.Reservation, error)
	ListByCriteria(ctx context.Context, c repository.Criteria) ([]model.Reservation, error)

	// ListMine returns the member's entries with their position in the waitlist.
	ListMine(ctx context.Context, memberID int64) ([]model.MyReservation, error)

	FindByID(ctx context.Context, id int64) (*model.Reservation, error)
	ListCanceled(ctx context.Context) ([]model.CanceledReservation, error)

	// ReceiptURL returns a temporary download link for the payment receipt of the member's reservation.
	ReceiptURL(ctx context.Context, memberID, id int64) (string, error)
}

// Deps holds the collaborators of the reservation service.
// Receipts, Events, Clock, Location and Logger are optional.
type Deps struct {
	Tx           repository.Transactor
	Reservations repository.ReservationRepository
	Canceled     repository.CanceledReservationRepository
	Catalog      repository.CatalogRepository
	Gateway      PaymentGateway
	Receipts     storage.Storage
	Events       EventPublisher
	Clock        clock.Clock
	Location     *time.Location
	Logger       *zap.Logger
}

type reservationService struct {
	tx           repository.Transactor
	reservations repository.ReservationRepository
	canceled     repository.CanceledReservationRepository
	catalog      repository.CatalogRepository
	gateway      PaymentGateway
	receipts     storage.Storage
	events       EventPublisher
	clock        clock.Clock
	loc          *time.Location
	log          *zap.Logger
}

// NewReservationService constructs a new ReservationService.
func NewReservationService(d Deps) ReservationService {
	s := &reservationService{
		tx:           d.Tx,
		reservations: d.Reservations,
		canceled:     d.Canceled,
		catalog:      d.Catalog,
		gateway:      d.Gateway,
		receipts:     d.Receipts,
		events:       d.Events,
		clock:        d.Clock,
		loc:          d.Location,
		log:          d.Logger,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.clock == nil {
		s.clock = clock.NewSystem(s.loc)
	}
	if s.events == nil {
		s.events = queue.Nop{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

func (s *reservationService) SaveWithPayment(ctx context.Context, memberID int64, in SlotInput, pay PaymentInput) (*model.Reservation, error) {
	var (
		saved *model.Reservation
		conf  *payment.Confirmation
	)
	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		r, err := s.createActive(txCtx, memberID, in)
		if err != nil {
			return err
		}
		conf, err = s.pay(txCtx, r, pay)
		if err != nil {
			return err
		}
		saved = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.storeReceipt(ctx, saved, conf)
	return saved, nil
}

func (s *reservationService) SaveWaiting(ctx context.Context, memberID int64, in SlotInput) (*model.Reservation, error) {
	var saved *model.Reservation
	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		draft, err := s.draft(txCtx, memberID, in)
		if err != nil {
			return err
		}
		slot := draft.Slot()

		reserved, err := s.reservations.ExistsBySlotAndStatus(txCtx, slot, model.StatusReservation)
		if err != nil {
			return err
		}
		if !reserved {
			return ErrSlotAvailable
		}
		held, err := s.reservations.ExistsByMemberAndSlot(txCtx, memberID, slot)
		if err != nil {
			return err
		}
		if held {
			return ErrDuplicateEntry
		}

		draft.Status = model.StatusWaiting
		saved, err = s.reservations.Create(txCtx, draft)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *reservationService) SaveByAdmin(ctx context.Context, memberID int64, in SlotInput) (*model.Reservation, error) {
	var saved *model.Reservation
	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		saved, err = s.createActive(txCtx, memberID, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *reservationService) DeleteByID(ctx context.Context, id int64) error {
	return s.cancel(ctx, id, nil)
}

func (s *reservationService) CancelByMember(ctx context.Context, memberID, id int64) error {
	return s.cancel(ctx, id, &memberID)
}

func (s *reservationService) ApprovePaymentWaiting(ctx context.Context, memberID, id int64, pay PaymentInput) (*model.Reservation, error) {
	var (
		saved *model.Reservation
		conf  *payment.Confirmation
	)
	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		r, err := s.find(txCtx, id)
		if err != nil {
			return err
		}
		if r.Member.ID != memberID {
			return ErrNotOwner
		}
		if r.Payment != nil {
			return ErrAlreadyPaid
		}

		if err := s.reservations.UpdateStatus(txCtx, r.ID, model.StatusReservation); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrAlreadyReserved
			}
			return err
		}
		r.Status = model.StatusReservation

		conf, err = s.pay(txCtx, r, pay)
		if err != nil {
			return err
		}
		saved = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.storeReceipt(ctx, saved, conf)
	return saved, nil
}

func (s *reservationService) ListByStatus(ctx context.Context, status model.Status) ([]model.Reservation, error) {
	return s.reservations.ListByStatus(ctx, status)
}

func (s *reservationService) ListByCriteria(ctx context.Context, c repository.Criteria) ([]model.Reservation, error) {
	if c.DateFrom != nil && c.DateTo != nil && c.DateFrom.After(*c.DateTo) {
		return nil, ErrInvalidCriteria
	}
	return s.reservations.ListByCriteria(ctx, c)
}

func (s *reservationService) ListMine(ctx context.Context, memberID int64) ([]model.MyReservation, error) {
	items, err := s.reservations.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	out := make([]model.MyReservation, 0, len(items))
	for _, r := range items {
		order, err := s.waitingOrder(ctx, r)
		if err != nil {
			return nil, err
		}
		out = append(out, model.MyReservation{Reservation: r, WaitingOrder: order})
	}
	return out, nil
}

func (s *reservationService) FindByID(ctx context.Context, id int64) (*model.Reservation, error) {
	return s.find(ctx, id)
}

func (s *reservationService) ListCanceled(ctx context.Context) ([]model.CanceledReservation, error) {
	return s.canceled.List(ctx)
}

func (s *reservationService) ReceiptURL(ctx context.Context, memberID, id int64) (string, error) {
	r, err := s.find(ctx, id)
	if err != nil {
		return "", err
	}
	if r.Member.ID != memberID {
		return "", ErrNotOwner
	}
	if r.Payment == nil {
		return "", fmt.Errorf("%w: id=%d", ErrReceiptNotFound, id)
	}
	if s.receipts == nil {
		return "", ErrReceiptsDisabled
	}
	u, err := s.receipts.PresignGet(ctx, receiptKey(r.Payment.OrderID), receiptURLExpiry)
	if err != nil {
		return "", fmt.Errorf("presign receipt: %w", err)
	}
	return u, nil
}

// cancel deletes and archives the reservation, then promotes the next waiting entry.
// When owner is set the reservation must belong to that member.
func (s *reservationService) cancel(ctx context.Context, id int64, owner *int64) error {
	var events []queue.ReservationEvent
	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		events = events[:0]

		r, err := s.find(txCtx, id)
		if err != nil {
			return err
		}
		if owner != nil && r.Member.ID != *owner {
			return ErrNotOwner
		}

		now := s.clock.Now()
		if err := s.reservations.Delete(txCtx, r.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return reservationNotFound(id)
			}
			return err
		}
		archived := r.Canceled(now)
		if _, err := s.canceled.Create(txCtx, &archived); err != nil {
			return err
		}
		events = append(events, s.event(queue.EventReservationCanceled, *r, now))

		promoted, err := s.promoteWaiting(txCtx, r)
		if err != nil {
			return err
		}
		if promoted != nil {
			events = append(events, s.event(queue.EventWaitingPromoted, *promoted, now))
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.publish(ctx, events)
	return nil
}

// promoteWaiting turns the earliest waiting entry of a vacated slot into a reservation.
// It does nothing unless the canceled entry held the slot.
func (s *reservationService) promoteWaiting(ctx context.Context, canceled *model.Reservation) (*model.Reservation, error) {
	if canceled.Status != model.StatusReservation {
		return nil, nil
	}
	next, err := s.reservations.FindFirstBySlotAndStatus(ctx, canceled.Slot(), model.StatusWaiting)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := s.reservations.UpdateStatus(ctx, next.ID, model.StatusReservation); err != nil {
		return nil, err
	}
	next.Status = model.StatusReservation

	s.log.Info("waiting promoted",
		zap.Int64("canceled_reservation_id", canceled.ID),
		zap.Int64("reservation_id", next.ID),
		zap.Int64("member_id", next.Member.ID),
	)
	return next, nil
}

func (s *reservationService) waitingOrder(ctx context.Context, r model.Reservation) (int, error) {
	if r.Status != model.StatusWaiting {
		return 0, nil
	}
	return s.reservations.CountWaitingBefore(ctx, r.ID, r.Slot())
}

func (s *reservationService) createActive(ctx context.Context, memberID int64, in SlotInput) (*model.Reservation, error) {
	draft, err := s.draft(ctx, memberID, in)
	if err != nil {
		return nil, err
	}
	reserved, err := s.reservations.ExistsBySlotAndStatus(ctx, draft.Slot(), model.StatusReservation)
	if err != nil {
		return nil, err
	}
	if reserved {
		return nil, ErrAlreadyReserved
	}

	draft.Status = model.StatusReservation
	saved, err := s.reservations.Create(ctx, draft)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyReserved
		}
		return nil, err
	}
	return saved, nil
}

// draft resolves the slot references and rejects slots that already started.
func (s *reservationService) draft(ctx context.Context, memberID int64, in SlotInput) (*model.Reservation, error) {
	t, err := s.catalog.FindTime(ctx, in.TimeID)
	if err != nil {
		return nil, notFoundAs(err, ErrTimeNotFound, in.TimeID)
	}
	theme, err := s.catalog.FindTheme(ctx, in.ThemeID)
	if err != nil {
		return nil, notFoundAs(err, ErrThemeNotFound, in.ThemeID)
	}
	member, err := s.catalog.FindMember(ctx, memberID)
	if err != nil {
		return nil, notFoundAs(err, ErrMemberNotFound, memberID)
	}

	r := &model.Reservation{
		Date:   in.Date,
		Time:   *t,
		Theme:  *theme,
		Member: *member,
	}
	startsAt, err := r.StartsAt(s.loc)
	if err != nil {
		return nil, fmt.Errorf("reservation time %d: %w", t.ID, err)
	}
	if !startsAt.After(s.clock.Now()) {
		return nil, ErrPastSlot
	}
	return r, nil
}

// pay confirms the payment with the gateway and records it on the reservation.
func (s *reservationService) pay(ctx context.Context, r *model.Reservation, in PaymentInput) (*payment.Confirmation, error) {
	conf, err := s.gateway.Confirm(ctx, payment.Request{
		PaymentKey: in.PaymentKey,
		OrderID:    in.OrderID,
		Amount:     in.Amount,
	})
	if err != nil {
		s.log.Warn("payment confirmation failed",
			zap.Int64("reservation_id", r.ID),
			zap.String("order_id", in.OrderID),
			zap.Error(err),
		)
		return nil, paymentError(err)
	}

	if conf.PaymentKey != in.PaymentKey || conf.TotalAmount != in.Amount {
		s.log.Error("payment confirmation does not match request",
			zap.Int64("reservation_id", r.ID),
			zap.String("order_id", in.OrderID),
			zap.String("confirmed_payment_key", conf.PaymentKey),
			zap.Int64("confirmed_amount", conf.TotalAmount),
			zap.Int64("requested_amount", in.Amount),
		)
		return nil, ErrPaymentMismatch
	}

	p := model.Payment{OrderID: in.OrderID, PaymentKey: conf.PaymentKey, Amount: conf.TotalAmount}
	if err := s.reservations.UpdatePayment(ctx, r.ID, p); err != nil {
		return nil, err
	}
	r.Payment = &p
	return conf, nil
}

// storeReceipt keeps the gateway's confirmation for later download. The payment is already
// committed, so failures are only logged.
func (s *reservationService) storeReceipt(ctx context.Context, r *model.Reservation, conf *payment.Confirmation) {
	if s.receipts == nil || r.Payment == nil || conf == nil || len(conf.Raw) == 0 {
		return
	}
	key := receiptKey(r.Payment.OrderID)
	_, err := s.receipts.Put(ctx, key, bytes.NewReader(conf.Raw), storage.PutObjectOptions{
		Size:        int64(len(conf.Raw)),
		ContentType: "application/json",
		Metadata:    map[string]string{"reservation-id": strconv.FormatInt(r.ID, 10)},
	})
	if err != nil {
		s.log.Warn("store payment receipt failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *reservationService) publish(ctx context.Context, events []queue.ReservationEvent) {
	for _, e := range events {
		if err := s.events.Publish(ctx, e); err != nil {
			s.log.Warn("publish reservation event failed",
				zap.String("type", e.Type),
				zap.Int64("reservation_id", e.ReservationID),
				zap.Error(err),
			)
		}
	}
}

func (s *reservationService) event(typ string, r model.Reservation, at time.Time) queue.ReservationEvent {
	return queue.ReservationEvent{
		Type:          typ,
		ReservationID: r.ID,
		MemberID:      r.Member.ID,
		ThemeID:       r.Theme.ID,
		ThemeName:     r.Theme.Name,
		Date:          r.Date.Format(time.DateOnly),
		StartAt:       r.Time.StartAt,
		Status:        string(r.Status),
		OccurredAt:    at.Format(time.RFC3339),
	}
}

func (s *reservationService) find(ctx context.Context, id int64) (*model.Reservation, error) {
	r, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservationNotFound(id)
		}
		return nil, err
	}
	return r, nil
}

func notFoundAs(err error, target *Error, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: id=%d", target, id)
	}
	return err
}

func receiptKey(orderID string) string {
	return "receipts/" + orderID + ".json"
}
