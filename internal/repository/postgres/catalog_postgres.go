package postgres

import (
	"context"
	"database/sql"

	"roomescape/internal/model"
	"roomescape/internal/repository"
)

// CatalogPostgres reads members, themes and reservation times.
type CatalogPostgres struct {
	db *sql.DB
}

func NewCatalogPostgres(db *sql.DB) *CatalogPostgres {
	return &CatalogPostgres{db: db}
}

var _ repository.CatalogRepository = (*CatalogPostgres)(nil)

func (r *CatalogPostgres) FindMember(ctx context.Context, id int64) (*model.Member, error) {
	const q = `SELECT id, name, email, role FROM member WHERE id = $1`
	var m model.Member
	if err := conn(ctx, r.db).QueryRowContext(ctx, q, id).Scan(&m.ID, &m.Name, &m.Email, &m.Role); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *CatalogPostgres) FindTheme(ctx context.Context, id int64) (*model.Theme, error) {
	const q = `SELECT id, name, description, thumbnail FROM theme WHERE id = $1`
	var t model.Theme
	if err := conn(ctx, r.db).QueryRowContext(ctx, q, id).Scan(&t.ID, &t.Name, &t.Description, &t.Thumbnail); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *CatalogPostgres) FindTime(ctx context.Context, id int64) (*model.TimeSlot, error) {
	const q = `SELECT id, start_at FROM reservation_time WHERE id = $1`
	var t model.TimeSlot
	if err := conn(ctx, r.db).QueryRowContext(ctx, q, id).Scan(&t.ID, &t.StartAt); err != nil {
		return nil, err
	}
	return &t, nil
}
