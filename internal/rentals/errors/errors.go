package errors

import (
	"errors"
	"lockrent/pkg/db"
)

var (
	ErrNotHeldByCaller = errors.New("lock is not held by caller")

	ErrLockNotFound = errors.New("lock not found")

	// ErrLockVanished is returned when a lock acquired earlier in the same
	// transaction can no longer be read.
	ErrLockVanished = errors.New("lock vanished during transaction")

	ErrTransactionConflict = db.ErrTransactionConflict

	ErrLockWaitTimeout = db.ErrLockWaitTimeout

	ErrInvalidID = errors.New("invalid lock ID format")

	ErrCorruptLock = errors.New("lock has inconsistent rental state")

	ErrInvalidSecret = errors.New("lock secret has invalid length")
)
