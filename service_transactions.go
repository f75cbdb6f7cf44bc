package grantkit

import (
	"context"
	"fmt"

	"github.com/fernandezvara/dbkit"
)

const contextKeyTx contextKey = "grantkit:tx"

// withTx binds an open transaction to the context so subsequent service calls
// run on it.
func withTx(ctx context.Context, tx *dbkit.Tx) context.Context {
	return context.WithValue(ctx, contextKeyTx, tx)
}

// txFromContext returns the transaction in flight, if any.
func txFromContext(ctx context.Context) (*dbkit.Tx, bool) {
	tx, ok := ctx.Value(contextKeyTx).(*dbkit.Tx)
	return tx, ok
}

// handle returns the query handle for one call: the transaction bound to the
// context when one is open, the root pool otherwise. Every service query goes
// through here so that work inside Transaction actually lands on the
// transaction.
func (s *Service) handle(ctx context.Context) dbkit.IDB {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return s.db
}

// Transaction executes a function within a database transaction with
// automatic commit/rollback. The context passed to the function carries the
// transaction; service calls made with it run inside the transaction, and an
// error return rolls all of them back.
//
// Transactions exist for multi-row grant administration (UpsertGrants and the
// like). Permission evaluation never runs inside one: a check is a read of
// the current grant state and concurrent grant edits need not be linearized
// against it.
//
// Example:
//
//	err := service.Transaction(ctx, func(ctx context.Context) error {
//	    if err := service.UpsertGrant(ctx, viewGrant); err != nil {
//	        return err // rollback
//	    }
//	    return service.UpsertGrant(ctx, editGrant) // nil commits
//	})
func (s *Service) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// Nested calls open a savepoint on the transaction in flight.
	if tx, ok := txFromContext(ctx); ok {
		return tx.Transaction(ctx, func(inner *dbkit.Tx) error {
			return fn(withTx(ctx, inner))
		})
	}

	if db, ok := s.db.(*dbkit.DBKit); ok {
		return db.Transaction(ctx, func(tx *dbkit.Tx) error {
			return fn(withTx(ctx, tx))
		})
	}

	return fmt.Errorf("transaction support requires a dbkit.DBKit instance")
}

// TransactionWithOptions executes a function within a transaction using
// explicit transaction options (isolation level, read-only).
func (s *Service) TransactionWithOptions(ctx context.Context, opts dbkit.TxOptions, fn func(ctx context.Context) error) error {
	if db, ok := s.db.(*dbkit.DBKit); ok {
		return db.TransactionWithOptions(ctx, opts, func(tx *dbkit.Tx) error {
			return fn(withTx(ctx, tx))
		})
	}
	return fmt.Errorf("transaction options require a dbkit.DBKit instance")
}

// ReadOnlyTransaction executes a function within a read-only transaction.
// Useful for consistent multi-query administration reads.
func (s *Service) ReadOnlyTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.TransactionWithOptions(ctx, dbkit.ReadOnlyTxOptions(), fn)
}
