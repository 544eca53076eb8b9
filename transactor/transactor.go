// Package transactor provides caller-side transaction demarcation
// sugar over a sqldbal.Connection: Atomically begins a transaction,
// runs fn, and commits or rolls back depending on the outcome,
// including recovering and rolling back on panic.
//
// Unlike the pool-and-context-propagated transaction pattern this is
// adapted from, a sqldbal.Connection carries at most one transaction
// at a time (it wraps exactly one backend session), so nested calls
// to Atomically on the same Connection reuse the already-open
// transaction instead of opening a second one.
package transactor

import (
	"context"
	"fmt"

	"github.com/somnisoft/sqldbal/sqldbal"
)

type txKey struct{}

// SQLTransactor runs functions atomically against one Connection.
type SQLTransactor struct {
	conn *sqldbal.Connection
}

// New builds a SQLTransactor bound to conn.
func New(conn *sqldbal.Connection) *SQLTransactor {
	return &SQLTransactor{conn: conn}
}

// Atomically runs fn inside a transaction. If fn is already running
// inside an Atomically call for this same Connection (detected via
// ctx), it runs fn directly without opening a nested transaction,
// since sqldbal has no savepoint-based nesting.
func (t *SQLTransactor) Atomically(ctx context.Context, fn TxFn) (err error) {
	if already, ok := ctx.Value(txKey{}).(*sqldbal.Connection); ok && already == t.conn {
		return fn(ctx, t.conn)
	}

	if st := t.conn.Begin(); st != sqldbal.StatusOK {
		_, msg := t.conn.ErrStr()
		return fmt.Errorf("begin transaction: %s", msg)
	}

	txCtx := context.WithValue(ctx, txKey{}, t.conn)

	defer func() {
		if p := recover(); p != nil {
			t.conn.Rollback()
			panic(p)
		} else if err != nil {
			t.conn.Rollback()
		} else if st := t.conn.Commit(); st != sqldbal.StatusOK {
			_, msg := t.conn.ErrStr()
			err = fmt.Errorf("commit transaction: %s", msg)
		}
	}()

	err = fn(txCtx, t.conn)
	return err
}
