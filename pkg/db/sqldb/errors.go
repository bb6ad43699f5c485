package sqldb

import (
	"context"
	"errors"
	"fmt"
	"lockrent/pkg/db"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgQueryCanceled        = "57014"

	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

// ClassifyError maps driver errors for serialization failures, deadlocks and
// lock waits onto the db sentinels. Other errors are returned unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, db.ErrTransactionConflict) || errors.Is(err, db.ErrLockWaitTimeout) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected:
			return fmt.Errorf("%w: %v", db.ErrTransactionConflict, err)
		case pgLockNotAvailable, pgQueryCanceled:
			return fmt.Errorf("%w: %v", db.ErrLockWaitTimeout, err)
		}
		return err
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDeadlock:
			return fmt.Errorf("%w: %v", db.ErrTransactionConflict, err)
		case mysqlLockWaitTimeout:
			return fmt.Errorf("%w: %v", db.ErrLockWaitTimeout, err)
		}
		return err
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code {
		case sqlite3.ErrBusy:
			return fmt.Errorf("%w: %v", db.ErrLockWaitTimeout, err)
		case sqlite3.ErrLocked:
			return fmt.Errorf("%w: %v", db.ErrTransactionConflict, err)
		}
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", db.ErrLockWaitTimeout, err)
	}
	return err
}
