package store

import "context"

// RunInDay wraps ctx with the day scope and calls fn inside the provided TxRunner
func RunInDay(ctx context.Context, tx TxRunner, scope DayScope, fn func(ctx context.Context, q RowQuerier) error) error {
	ctx = WithDayScope(ctx, scope)
	return tx.Tx(ctx, func(q RowQuerier) error {
		return fn(ctx, q)
	})
}
