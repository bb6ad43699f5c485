package repository

import (
	"context"
	"lockrent/pkg/db"
	"lockrent/pkg/model"
)

const (
	LocksCollection   = "Locks"
	RentalsCollection = "Rentals"
)

type LockRepository interface {
	Create(ctx context.Context, lock *model.Lock) error
	FindByID(ctx context.Context, id string) (*model.Lock, error)
	// ClaimHeld claims the lock row for the current transaction if userID
	// holds it, and returns the claimed snapshot. Any other state, including
	// a missing lock, yields ErrNotHeldByCaller.
	ClaimHeld(ctx context.Context, userID string, lockID string) (*model.Lock, error)
	// Release clears the active rental if the stored version still equals
	// version.
	Release(ctx context.Context, lockID string, version int64) error
	Delete(ctx context.Context, lockID string, version int64) error
	MarkRetired(ctx context.Context, lockID string, version int64) error
	ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error
}

// RentalRepository is append-only. There is intentionally no update or
// delete.
type RentalRepository interface {
	Create(ctx context.Context, rental *model.Rental) error
	FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Rental, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
}
