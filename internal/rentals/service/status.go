package service

import (
	"context"
	"errors"
	rentalserrors "lockrent/internal/rentals/errors"
	"lockrent/internal/rentals/repository"
	"lockrent/pkg/model"
)

// LockStatusValidator decides whether a user currently holds a lock.
type LockStatusValidator interface {
	// GetLockStatus is read-only. A missing lock and a lock held by someone
	// else both report LockNotHeld.
	GetLockStatus(ctx context.Context, userID string, lockID string) (model.LockStatus, error)
	// Acquire must run inside a transaction. It claims the lock for the
	// rest of the transaction or fails with ErrNotHeldByCaller.
	Acquire(ctx context.Context, userID string, lockID string) (*model.Lock, error)
}

type lockStatusValidator struct {
	locks repository.LockRepository
}

func NewLockStatusValidator(locks repository.LockRepository) LockStatusValidator {
	return &lockStatusValidator{locks: locks}
}

func (v *lockStatusValidator) GetLockStatus(ctx context.Context, userID string, lockID string) (model.LockStatus, error) {
	lock, err := v.locks.FindByID(ctx, lockID)
	if err != nil {
		if errors.Is(err, rentalserrors.ErrLockNotFound) || errors.Is(err, rentalserrors.ErrInvalidID) {
			return model.LockNotHeld, nil
		}
		return model.LockNotHeld, err
	}
	if lock.HeldBy(userID) {
		return model.LockHeld, nil
	}
	return model.LockNotHeld, nil
}

func (v *lockStatusValidator) Acquire(ctx context.Context, userID string, lockID string) (*model.Lock, error) {
	lock, err := v.locks.ClaimHeld(ctx, userID, lockID)
	if err != nil {
		if errors.Is(err, rentalserrors.ErrInvalidID) {
			return nil, rentalserrors.ErrNotHeldByCaller
		}
		return nil, err
	}
	if !lock.HeldBy(userID) {
		return nil, rentalserrors.ErrNotHeldByCaller
	}
	return lock, nil
}
