package mocks

import "context"

// Transactor runs fn directly with the caller's context and records whether it was used.
type Transactor struct {
	Calls int
}

func (t *Transactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.Calls++
	return fn(ctx)
}
