package service

import (
	"context"
	"database/sql"
	"maps"
	"sort"
	"time"

	"roomescape/internal/model"
	"roomescape/internal/repository"
)

// fakeReservations is an in-memory ReservationRepository that enforces the
// one-active-reservation-per-slot constraint like the database index does.
type fakeReservations struct {
	nextID int64
	rows   map[int64]model.Reservation
}

func newFakeReservations() *fakeReservations {
	return &fakeReservations{rows: map[int64]model.Reservation{}}
}

func sameSlot(a, b model.Slot) bool {
	return a.Date.Equal(b.Date) && a.TimeID == b.TimeID && a.ThemeID == b.ThemeID
}

func (f *fakeReservations) sorted(keep func(model.Reservation) bool) []model.Reservation {
	out := make([]model.Reservation, 0)
	for _, r := range f.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeReservations) activeOn(slot model.Slot, except int64) bool {
	for _, r := range f.rows {
		if r.ID != except && r.Status == model.StatusReservation && sameSlot(r.Slot(), slot) {
			return true
		}
	}
	return false
}

func (f *fakeReservations) Create(_ context.Context, r *model.Reservation) (*model.Reservation, error) {
	if r.Status == model.StatusReservation && f.activeOn(r.Slot(), 0) {
		return nil, repository.ErrDuplicate
	}
	f.nextID++
	stored := *r
	stored.ID = f.nextID
	stored.CreatedAt = time.Unix(f.nextID, 0)
	f.rows[stored.ID] = stored
	out := stored
	return &out, nil
}

func (f *fakeReservations) FindByID(_ context.Context, id int64) (*model.Reservation, error) {
	r, ok := f.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &r, nil
}

func (f *fakeReservations) Delete(_ context.Context, id int64) error {
	if _, ok := f.rows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeReservations) UpdateStatus(_ context.Context, id int64, status model.Status) error {
	r, ok := f.rows[id]
	if !ok {
		return sql.ErrNoRows
	}
	if status == model.StatusReservation && f.activeOn(r.Slot(), id) {
		return repository.ErrDuplicate
	}
	r.Status = status
	f.rows[id] = r
	return nil
}

func (f *fakeReservations) UpdatePayment(_ context.Context, id int64, p model.Payment) error {
	r, ok := f.rows[id]
	if !ok {
		return sql.ErrNoRows
	}
	r.Payment = &p
	f.rows[id] = r
	return nil
}

func (f *fakeReservations) ExistsBySlotAndStatus(_ context.Context, slot model.Slot, status model.Status) (bool, error) {
	return len(f.sorted(func(r model.Reservation) bool {
		return r.Status == status && sameSlot(r.Slot(), slot)
	})) > 0, nil
}

func (f *fakeReservations) FindFirstBySlotAndStatus(_ context.Context, slot model.Slot, status model.Status) (*model.Reservation, error) {
	items := f.sorted(func(r model.Reservation) bool {
		return r.Status == status && sameSlot(r.Slot(), slot)
	})
	if len(items) == 0 {
		return nil, sql.ErrNoRows
	}
	return &items[0], nil
}

func (f *fakeReservations) ExistsByMemberAndSlot(_ context.Context, memberID int64, slot model.Slot) (bool, error) {
	return len(f.sorted(func(r model.Reservation) bool {
		return r.Member.ID == memberID && sameSlot(r.Slot(), slot)
	})) > 0, nil
}

func (f *fakeReservations) ListByStatus(_ context.Context, status model.Status) ([]model.Reservation, error) {
	return f.sorted(func(r model.Reservation) bool { return r.Status == status }), nil
}

func (f *fakeReservations) ListByCriteria(_ context.Context, c repository.Criteria) ([]model.Reservation, error) {
	return f.sorted(func(r model.Reservation) bool {
		return (c.ThemeID == nil || r.Theme.ID == *c.ThemeID) &&
			(c.MemberID == nil || r.Member.ID == *c.MemberID) &&
			(c.DateFrom == nil || !r.Date.Before(*c.DateFrom)) &&
			(c.DateTo == nil || !r.Date.After(*c.DateTo))
	}), nil
}

func (f *fakeReservations) ListByMember(_ context.Context, memberID int64) ([]model.Reservation, error) {
	return f.sorted(func(r model.Reservation) bool { return r.Member.ID == memberID }), nil
}

func (f *fakeReservations) CountWaitingBefore(_ context.Context, id int64, slot model.Slot) (int, error) {
	return len(f.sorted(func(r model.Reservation) bool {
		return r.ID < id && r.Status == model.StatusWaiting && sameSlot(r.Slot(), slot)
	})), nil
}

type fakeArchive struct {
	items []model.CanceledReservation
}

func (f *fakeArchive) Create(_ context.Context, c *model.CanceledReservation) (*model.CanceledReservation, error) {
	out := *c
	out.ID = int64(len(f.items) + 1)
	f.items = append(f.items, out)
	return &out, nil
}

func (f *fakeArchive) List(context.Context) ([]model.CanceledReservation, error) {
	return append([]model.CanceledReservation(nil), f.items...), nil
}

type fakeCatalog struct{}

func (fakeCatalog) FindMember(_ context.Context, id int64) (*model.Member, error) {
	if id <= 0 || id > 100 {
		return nil, sql.ErrNoRows
	}
	return &model.Member{ID: id, Name: "member", Role: model.RoleUser}, nil
}

func (fakeCatalog) FindTheme(_ context.Context, id int64) (*model.Theme, error) {
	if id <= 0 || id > 10 {
		return nil, sql.ErrNoRows
	}
	return &model.Theme{ID: id, Name: "theme"}, nil
}

func (fakeCatalog) FindTime(_ context.Context, id int64) (*model.TimeSlot, error) {
	if id <= 0 || id > 10 {
		return nil, sql.ErrNoRows
	}
	return &model.TimeSlot{ID: id, StartAt: "10:00"}, nil
}

// fakeTx restores the fake stores when fn fails, like a rolled back transaction.
type fakeTx struct {
	store   *fakeReservations
	archive *fakeArchive
}

func (t *fakeTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	rows := maps.Clone(t.store.rows)
	nextID := t.store.nextID
	archived := len(t.archive.items)
	if err := fn(ctx); err != nil {
		t.store.rows = rows
		t.store.nextID = nextID
		t.archive.items = t.archive.items[:archived]
		return err
	}
	return nil
}
