package events

import (
	"context"
	"strings"

	apperrors "lockrent/pkg/errors"
	"lockrent/pkg/kafka"
	"lockrent/pkg/logger"
)

type LockRetirer interface {
	RetireLock(ctx context.Context, lockID string) (string, error)
}

// NewRetirementHandler consumes lock retirement commands. The message value
// is a RetireLockCommand; when it has no lock id the message key is used.
// Commands for locks that no longer exist are acknowledged.
func NewRetirementHandler(retirer LockRetirer, log *logger.Logger) kafka.MessageHandler {
	if log == nil {
		log = logger.Discard()
	}

	return func(ctx context.Context, msg kafka.Message) error {
		var cmd RetireLockCommand
		if err := msg.DecodeValue(&cmd); err != nil {
			return kafka.NewPermanentError("decode retire command", err).WithDetail("offset", msg.Offset)
		}
		if strings.TrimSpace(cmd.LockID) == "" {
			cmd.LockID = msg.Key
		}

		mode, err := retirer.RetireLock(ctx, cmd.LockID)
		if err == nil {
			log.Info("Lock retirement applied", "lock_id", cmd.LockID, "mode", mode, "reason", cmd.Reason)
			return nil
		}

		switch apperrors.AsAppError(err).Code {
		case apperrors.CodeNotFound:
			log.Warn("Retire command for unknown lock", "lock_id", cmd.LockID)
			return nil
		case apperrors.CodeInvalidInput, apperrors.CodeValidation:
			return kafka.NewPermanentError("invalid retire command", err).WithDetail("lock_id", cmd.LockID)
		default:
			return kafka.NewTransientError("retire lock", err).WithDetail("lock_id", cmd.LockID)
		}
	}
}
