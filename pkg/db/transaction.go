package db

import (
	"context"
	"errors"
)

var (
	ErrTransactionConflict = errors.New("transaction conflict")
	ErrLockWaitTimeout     = errors.New("lock wait timeout")
)

// TransactionFunc runs inside a transaction. Repositories recover the
// transaction handle from ctx.
type TransactionFunc func(ctx context.Context) error

// TransactionManager runs fn in a single transaction attempt. A failing fn
// aborts the transaction and its error is returned unchanged; commit failures
// are classified into ErrTransactionConflict or ErrLockWaitTimeout when the
// backend reports them as such.
type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransactionConflict) || errors.Is(err, ErrLockWaitTimeout)
}
