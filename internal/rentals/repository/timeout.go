package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// withTimeout bounds ctx by timeout unless it carries a session. Operations
// inside a transaction share the transaction's deadline.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if mongo.SessionFromContext(ctx) != nil {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}
