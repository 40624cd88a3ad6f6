package postgres

import (
	"context"
	"database/sql"

	"roomescape/internal/model"
	"roomescape/internal/repository"
)

// CanceledReservationPostgres stores canceled reservations. Rows are never updated or deleted.
type CanceledReservationPostgres struct {
	db *sql.DB
}

func NewCanceledReservationPostgres(db *sql.DB) *CanceledReservationPostgres {
	return &CanceledReservationPostgres{db: db}
}

var _ repository.CanceledReservationRepository = (*CanceledReservationPostgres)(nil)

// Create archives a canceled reservation and returns it with its archive ID.
func (r *CanceledReservationPostgres) Create(ctx context.Context, c *model.CanceledReservation) (*model.CanceledReservation, error) {
	const q = `
		INSERT INTO canceled_reservation
			(reservation_id, date, time_id, theme_id, member_id, status,
			 payment_order_id, payment_key, payment_amount, canceled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	orderID, paymentKey, amount := nullablePayment(c.Payment)
	out := *c
	err := conn(ctx, r.db).QueryRowContext(ctx, q,
		c.ReservationID,
		c.Date,
		c.Time.ID,
		c.Theme.ID,
		c.Member.ID,
		c.Status,
		orderID,
		paymentKey,
		amount,
		c.CanceledAt,
	).Scan(&out.ID)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns the archive, most recent cancellation first.
func (r *CanceledReservationPostgres) List(ctx context.Context) ([]model.CanceledReservation, error) {
	const q = `
		SELECT c.id, c.reservation_id, c.date, t.id, t.start_at, th.id, th.name, th.description, th.thumbnail,
		       m.id, m.name, m.email, m.role, c.status,
		       c.payment_order_id, c.payment_key, c.payment_amount, c.canceled_at
		FROM canceled_reservation c
		JOIN reservation_time t ON t.id = c.time_id
		JOIN theme th ON th.id = c.theme_id
		JOIN member m ON m.id = c.member_id
		ORDER BY c.canceled_at DESC, c.id DESC
	`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.CanceledReservation, 0)
	for rows.Next() {
		var (
			c model.CanceledReservation
			p paymentColumns
		)
		if err := rows.Scan(
			&c.ID,
			&c.ReservationID,
			&c.Date,
			&c.Time.ID,
			&c.Time.StartAt,
			&c.Theme.ID,
			&c.Theme.Name,
			&c.Theme.Description,
			&c.Theme.Thumbnail,
			&c.Member.ID,
			&c.Member.Name,
			&c.Member.Email,
			&c.Member.Role,
			&c.Status,
			&p.orderID,
			&p.paymentKey,
			&p.amount,
			&c.CanceledAt,
		); err != nil {
			return nil, err
		}
		c.Payment = p.payment()
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
