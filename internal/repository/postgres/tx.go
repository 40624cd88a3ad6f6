package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"roomescape/internal/model"
	"roomescape/internal/repository"
)

type txKey struct{}

// querier is the subset of *sql.DB and *sql.Tx the repositories use.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxManager implements repository.Transactor on a *sql.DB.
type TxManager struct {
	db *sql.DB
}

func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

var _ repository.Transactor = (*TxManager)(nil)

// WithTx runs fn in a transaction carried by the context. It commits when fn
// returns nil and rolls back otherwise.
func (m *TxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func txFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

// conn returns the transaction in ctx, or db when there is none.
func conn(ctx context.Context, db *sql.DB) querier {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return db
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// paymentColumns holds the nullable payment columns while scanning.
type paymentColumns struct {
	orderID    sql.NullString
	paymentKey sql.NullString
	amount     sql.NullInt64
}

func (p paymentColumns) payment() *model.Payment {
	if !p.paymentKey.Valid {
		return nil
	}
	return &model.Payment{
		OrderID:    p.orderID.String,
		PaymentKey: p.paymentKey.String,
		Amount:     p.amount.Int64,
	}
}

func nullablePayment(p *model.Payment) (orderID, paymentKey sql.NullString, amount sql.NullInt64) {
	if p == nil {
		return
	}
	return sql.NullString{String: p.OrderID, Valid: true},
		sql.NullString{String: p.PaymentKey, Valid: true},
		sql.NullInt64{Int64: p.Amount, Valid: true}
}
