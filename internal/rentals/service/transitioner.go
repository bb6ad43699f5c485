package service

import (
	"context"
	"lockrent/internal/rentals/repository"
	"lockrent/pkg/model"
)

// LockStateTransitioner moves an acquired lock out of its rental: a retired
// lock is removed, any other lock becomes idle.
type LockStateTransitioner interface {
	Transition(ctx context.Context, lock *model.Lock) (retired bool, err error)
}

type lockStateTransitioner struct {
	locks repository.LockRepository
}

func NewLockStateTransitioner(locks repository.LockRepository) LockStateTransitioner {
	return &lockStateTransitioner{locks: locks}
}

func (t *lockStateTransitioner) Transition(ctx context.Context, lock *model.Lock) (bool, error) {
	if lock.Deleted {
		return true, t.locks.Delete(ctx, lock.ID, lock.Version)
	}
	return false, t.locks.Release(ctx, lock.ID, lock.Version)
}
