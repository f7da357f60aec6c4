package repository

import "context"

// Tx is an opaque, store-defined transaction handle (pgx.Tx for Postgres,
// *gorm.DB for SQLite). Repositories MUST accept NoTX (nil) and fall back to
// their pool/connection.
type Tx interface{}

var NoTX Tx

// TransactionManager runs fn inside one store transaction. fn receives the
// handle it must pass to every repository call that belongs to the unit.
// A non-nil error from fn rolls the transaction back.
//
// USAGE
//
//	tm.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
//		ok, err := sessions.MarkDeployed(ctx, tx, id, name, now)
//		...
//		return deployments.Create(ctx, tx, d)
//	})
type TransactionManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
