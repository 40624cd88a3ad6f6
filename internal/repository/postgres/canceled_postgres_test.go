package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomescape/internal/model"
)

func TestCanceledReservationPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCanceledReservationPostgres(db)
	canceledAt := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	in := &model.CanceledReservation{
		ReservationID: 4,
		Date:          day,
		Time:          model.TimeSlot{ID: 1},
		Theme:         model.Theme{ID: 2},
		Member:        model.Member{ID: 3},
		Status:        model.StatusWaiting,
		CanceledAt:    canceledAt,
	}

	mock.ExpectQuery("INSERT INTO canceled_reservation").
		WithArgs(int64(4), day, int64(1), int64(2), int64(3), model.StatusWaiting, nil, nil, nil, canceledAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	got, err := repo.Create(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, int64(11), got.ID)
	assert.Equal(t, int64(4), got.ReservationID)
	assert.Zero(t, in.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCanceledReservationPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCanceledReservationPostgres(db)

	rows := sqlmock.NewRows([]string{
		"id", "reservation_id", "date", "time_id", "start_at", "theme_id", "theme_name", "description", "thumbnail",
		"member_id", "member_name", "email", "role", "status",
		"payment_order_id", "payment_key", "payment_amount", "canceled_at",
	}).
		AddRow(int64(2), int64(8), day, int64(1), "10:00", int64(2), "Escape", "desc", "thumb.png",
			int64(3), "alice", "alice@example.com", "USER", "RESERVATION",
			"order-1", "pay-key", int64(20000), time.Now()).
		AddRow(int64(1), int64(7), day, int64(1), "10:00", int64(2), "Escape", "desc", "thumb.png",
			int64(4), "bob", "bob@example.com", "USER", "WAITING",
			nil, nil, nil, time.Now())
	mock.ExpectQuery("FROM canceled_reservation c").WillReturnRows(rows)

	got, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].Payment)
	assert.Equal(t, "pay-key", got[0].Payment.PaymentKey)
	assert.Nil(t, got[1].Payment)
	assert.Equal(t, model.StatusWaiting, got[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCatalogPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("FROM member WHERE id = ").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "role"}).AddRow(3, "alice", "alice@example.com", "ADMIN"))
	m, err := repo.FindMember(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, m.Role)

	mock.ExpectQuery("FROM theme WHERE id = ").WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "thumbnail"}).AddRow(2, "Escape", "desc", "thumb.png"))
	th, err := repo.FindTheme(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Escape", th.Name)

	mock.ExpectQuery("FROM reservation_time WHERE id = ").WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)
	tm, err := repo.FindTime(ctx, 99)
	assert.Nil(t, tm)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}
