package mongo

import (
	"context"
	"errors"
	"fmt"
	"lockrent/pkg/db"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const transientTransactionLabel = "TransientTransactionError"

type mongoTransactionManager struct {
	client        *mongo.Client
	maxCommitTime time.Duration
}

// NewTransactionManager returns a manager that runs each function in exactly
// one snapshot transaction. Unlike session.WithTransaction it never retries.
func NewTransactionManager(client *mongo.Client, maxCommitTime time.Duration) db.TransactionManager {
	return &mongoTransactionManager{
		client:        client,
		maxCommitTime: maxCommitTime,
	}
}

func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(context.Background())

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
	if m.maxCommitTime > 0 {
		txnOpts.SetMaxCommitTime(&m.maxCommitTime)
	}

	return mongo.WithSession(ctx, session, func(sessCtx mongo.SessionContext) error {
		if err := session.StartTransaction(txnOpts); err != nil {
			return fmt.Errorf("failed to start transaction: %w", err)
		}

		if err := fn(sessCtx); err != nil {
			_ = session.AbortTransaction(context.Background())
			return ClassifyError(err)
		}

		if err := session.CommitTransaction(sessCtx); err != nil {
			_ = session.AbortTransaction(context.Background())
			return ClassifyError(err)
		}
		return nil
	})
}

// ClassifyError maps driver errors for write conflicts and lock waits onto
// the db sentinels. Errors that are already classified, or that carry no
// driver information, are returned unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, db.ErrTransactionConflict) || errors.Is(err, db.ErrLockWaitTimeout) {
		return err
	}

	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) && serverErr.HasErrorLabel(transientTransactionLabel) {
		if mongo.IsTimeout(err) {
			return fmt.Errorf("%w: %v", db.ErrLockWaitTimeout, err)
		}
		return fmt.Errorf("%w: %v", db.ErrTransactionConflict, err)
	}
	if mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", db.ErrLockWaitTimeout, err)
	}
	return err
}
