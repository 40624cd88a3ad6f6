package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"roomescape/internal/model"
	"roomescape/internal/repository"
)

// ReservationPostgres is a PostgreSQL implementation of repository.ReservationRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type ReservationPostgres struct {
	db *sql.DB
}

// NewReservationPostgres creates a new ReservationPostgres repository.
func NewReservationPostgres(db *sql.DB) *ReservationPostgres {
	return &ReservationPostgres{db: db}
}

var _ repository.ReservationRepository = (*ReservationPostgres)(nil)

const reservationSelect = `
		SELECT r.id, r.date, t.id, t.start_at, th.id, th.name, th.description, th.thumbnail,
		       m.id, m.name, m.email, m.role, r.status,
		       r.payment_order_id, r.payment_key, r.payment_amount, r.created_at
		FROM reservation r
		JOIN reservation_time t ON t.id = r.time_id
		JOIN theme th ON th.id = r.theme_id
		JOIN member m ON m.id = r.member_id
`

func scanReservation(s scanner) (*model.Reservation, error) {
	var (
		r model.Reservation
		p paymentColumns
	)
	if err := s.Scan(
		&r.ID,
		&r.Date,
		&r.Time.ID,
		&r.Time.StartAt,
		&r.Theme.ID,
		&r.Theme.Name,
		&r.Theme.Description,
		&r.Theme.Thumbnail,
		&r.Member.ID,
		&r.Member.Name,
		&r.Member.Email,
		&r.Member.Role,
		&r.Status,
		&p.orderID,
		&p.paymentKey,
		&p.amount,
		&r.CreatedAt,
	); err != nil {
		return nil, err
	}
	r.Payment = p.payment()
	return &r, nil
}

func (r *ReservationPostgres) list(ctx context.Context, q string, args ...any) ([]model.Reservation, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Create inserts a new reservation row and returns the stored record with its joined references.
func (r *ReservationPostgres) Create(ctx context.Context, res *model.Reservation) (*model.Reservation, error) {
	const q = `
		INSERT INTO reservation (date, time_id, theme_id, member_id, status, payment_order_id, payment_key, payment_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	orderID, paymentKey, amount := nullablePayment(res.Payment)
	var id int64
	err := conn(ctx, r.db).QueryRowContext(ctx, q,
		res.Date,
		res.Time.ID,
		res.Theme.ID,
		res.Member.ID,
		res.Status,
		orderID,
		paymentKey,
		amount,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("insert reservation: %w", repository.ErrDuplicate)
		}
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// FindByID fetches a single reservation by its ID.
func (r *ReservationPostgres) FindByID(ctx context.Context, id int64) (*model.Reservation, error) {
	q := reservationSelect + ` WHERE r.id = $1`
	return scanReservation(conn(ctx, r.db).QueryRowContext(ctx, q, id))
}

// Delete removes a reservation by ID. A row already removed by a concurrent
// transaction yields sql.ErrNoRows.
func (r *ReservationPostgres) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM reservation WHERE id = $1`
	res, err := conn(ctx, r.db).ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *ReservationPostgres) UpdateStatus(ctx context.Context, id int64, status model.Status) error {
	const q = `UPDATE reservation SET status = $1 WHERE id = $2`
	res, err := conn(ctx, r.db).ExecContext(ctx, q, status, id)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update reservation status: %w", repository.ErrDuplicate)
		}
		return err
	}
	return requireAffected(res)
}

func (r *ReservationPostgres) UpdatePayment(ctx context.Context, id int64, p model.Payment) error {
	const q = `
		UPDATE reservation
		SET payment_order_id = $1, payment_key = $2, payment_amount = $3
		WHERE id = $4
	`
	res, err := conn(ctx, r.db).ExecContext(ctx, q, p.OrderID, p.PaymentKey, p.Amount, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *ReservationPostgres) ExistsBySlotAndStatus(ctx context.Context, slot model.Slot, status model.Status) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM reservation
			WHERE date = $1 AND time_id = $2 AND theme_id = $3 AND status = $4
		)
	`
	var exists bool
	err := conn(ctx, r.db).QueryRowContext(ctx, q, slot.Date, slot.TimeID, slot.ThemeID, status).Scan(&exists)
	return exists, err
}

// FindFirstBySlotAndStatus locks the returned row so a concurrent cancellation cannot promote it twice.
func (r *ReservationPostgres) FindFirstBySlotAndStatus(ctx context.Context, slot model.Slot, status model.Status) (*model.Reservation, error) {
	q := reservationSelect + `
		WHERE r.date = $1 AND r.time_id = $2 AND r.theme_id = $3 AND r.status = $4
		ORDER BY r.id
		LIMIT 1
		FOR UPDATE OF r
	`
	return scanReservation(conn(ctx, r.db).QueryRowContext(ctx, q, slot.Date, slot.TimeID, slot.ThemeID, status))
}

func (r *ReservationPostgres) ExistsByMemberAndSlot(ctx context.Context, memberID int64, slot model.Slot) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM reservation
			WHERE member_id = $1 AND date = $2 AND time_id = $3 AND theme_id = $4
		)
	`
	var exists bool
	err := conn(ctx, r.db).QueryRowContext(ctx, q, memberID, slot.Date, slot.TimeID, slot.ThemeID).Scan(&exists)
	return exists, err
}

func (r *ReservationPostgres) ListByStatus(ctx context.Context, status model.Status) ([]model.Reservation, error) {
	q := reservationSelect + ` WHERE r.status = $1 ORDER BY r.date, t.start_at, r.id`
	return r.list(ctx, q, status)
}

// ListByCriteria applies each criterion only when it is set.
func (r *ReservationPostgres) ListByCriteria(ctx context.Context, c repository.Criteria) ([]model.Reservation, error) {
	q := reservationSelect + `
		WHERE ($1::bigint IS NULL OR r.theme_id = $1)
		  AND ($2::bigint IS NULL OR r.member_id = $2)
		  AND ($3::date IS NULL OR r.date >= $3)
		  AND ($4::date IS NULL OR r.date <= $4)
		ORDER BY r.date, t.start_at, r.id
	`
	return r.list(ctx, q, c.ThemeID, c.MemberID, c.DateFrom, c.DateTo)
}

func (r *ReservationPostgres) ListByMember(ctx context.Context, memberID int64) ([]model.Reservation, error) {
	q := reservationSelect + ` WHERE r.member_id = $1 ORDER BY r.date, t.start_at, r.id`
	return r.list(ctx, q, memberID)
}

func (r *ReservationPostgres) CountWaitingBefore(ctx context.Context, id int64, slot model.Slot) (int, error) {
	const q = `
		SELECT COUNT(*) FROM reservation
		WHERE date = $1 AND time_id = $2 AND theme_id = $3 AND status = $4 AND id < $5
	`
	var n int
	err := conn(ctx, r.db).QueryRowContext(ctx, q, slot.Date, slot.TimeID, slot.ThemeID, model.StatusWaiting, id).Scan(&n)
	return n, err
}

// requireAffected maps an update that touched no rows to sql.ErrNoRows.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
