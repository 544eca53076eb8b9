package transactor

import (
	"context"

	"github.com/somnisoft/sqldbal/sqldbal"
)

// WithResult adapts a value-returning function to Transactor.Atomically.
func WithResult[T any](ctx context.Context, t Transactor, fn TxFnResult[T]) (T, error) {
	var result T
	err := t.Atomically(ctx, func(txCtx context.Context, conn *sqldbal.Connection) error {
		var err error
		result, err = fn(txCtx, conn)
		return err
	})
	return result, err
}

// GetConnection extracts the Connection the current transaction is
// running against, for repository code that needs to issue extra
// statements on the same session. Returns nil outside of Atomically.
func GetConnection(ctx context.Context) *sqldbal.Connection {
	if conn, ok := ctx.Value(txKey{}).(*sqldbal.Connection); ok {
		return conn
	}
	return nil
}
