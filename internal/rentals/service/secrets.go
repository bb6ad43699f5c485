package service

import (
	"context"
	"errors"
	"fmt"
	rentalserrors "lockrent/internal/rentals/errors"
	"lockrent/internal/rentals/repository"
	"lockrent/pkg/model"
)

// SecretReleaser reads the hardware credentials of an acquired lock. It must
// run before the lock is released or deleted.
type SecretReleaser interface {
	Release(ctx context.Context, lock *model.Lock) (model.Secrets, error)
}

type secretReleaser struct {
	locks repository.LockRepository
}

func NewSecretReleaser(locks repository.LockRepository) SecretReleaser {
	return &secretReleaser{locks: locks}
}

func (r *secretReleaser) Release(ctx context.Context, lock *model.Lock) (model.Secrets, error) {
	current, err := r.locks.FindByID(ctx, lock.ID)
	if err != nil {
		if errors.Is(err, rentalserrors.ErrLockNotFound) {
			return model.Secrets{}, fmt.Errorf("%w: %s", rentalserrors.ErrLockVanished, lock.ID)
		}
		return model.Secrets{}, err
	}
	if current.Version != lock.Version {
		return model.Secrets{}, fmt.Errorf("%w: lock %s moved from version %d to %d",
			rentalserrors.ErrTransactionConflict, lock.ID, lock.Version, current.Version)
	}
	if len(current.Secret) != model.SecretSize {
		return model.Secrets{}, fmt.Errorf("%w: lock %s has %d bytes", rentalserrors.ErrInvalidSecret, lock.ID, len(current.Secret))
	}
	return current.Secrets(), nil
}
