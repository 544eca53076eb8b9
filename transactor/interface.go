package transactor

import (
	"context"

	"github.com/somnisoft/sqldbal/sqldbal"
)

// TxFn is the unit of work Atomically runs inside a transaction.
type TxFn func(ctx context.Context, conn *sqldbal.Connection) error

// TxFnResult is TxFn with a return value, for use with WithResult.
type TxFnResult[T any] func(ctx context.Context, conn *sqldbal.Connection) (T, error)

// Transactor runs a function atomically against its bound Connection.
type Transactor interface {
	Atomically(ctx context.Context, fn TxFn) error
}
