package sqldb

import (
	"context"
	"fmt"
	"lockrent/pkg/db"
	"time"

	"gorm.io/gorm"
)

type txKey struct{}

// WithTx returns a context carrying tx. Repositories built on FromContext
// join the transaction automatically.
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// FromContext returns the transaction stored in ctx, or base when there is none.
func FromContext(ctx context.Context, base *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return base.WithContext(ctx)
}

type gormTransactionManager struct {
	db              *gorm.DB
	lockWaitTimeout time.Duration
}

func NewTransactionManager(gdb *gorm.DB, lockWaitTimeout time.Duration) db.TransactionManager {
	return &gormTransactionManager{
		db:              gdb,
		lockWaitTimeout: lockWaitTimeout,
	}
}

func (m *gormTransactionManager) ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error {
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := m.boundLockWait(tx); err != nil {
			return fmt.Errorf("failed to set lock wait timeout: %w", err)
		}
		return fn(WithTx(ctx, tx))
	})
	return ClassifyError(err)
}

func (m *gormTransactionManager) boundLockWait(tx *gorm.DB) error {
	if m.lockWaitTimeout <= 0 {
		return nil
	}
	switch tx.Dialector.Name() {
	case DialectPostgres:
		return tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", m.lockWaitTimeout.Milliseconds())).Error
	case DialectMySQL:
		seconds := max(int64(1), int64(m.lockWaitTimeout/time.Second))
		return tx.Exec(fmt.Sprintf("SET SESSION innodb_lock_wait_timeout = %d", seconds)).Error
	case DialectSQLite:
		return tx.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", m.lockWaitTimeout.Milliseconds())).Error
	default:
		return nil
	}
}
