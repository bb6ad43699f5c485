package service

import (
	"context"
	"fmt"
	rentalserrors "lockrent/internal/rentals/errors"
	"lockrent/internal/rentals/repository"
	"lockrent/pkg/model"
	"time"

	"github.com/google/uuid"
)

// RentalFinalizer turns an acquired lock snapshot into its terminal rental
// record and stores it.
type RentalFinalizer interface {
	Finalize(ctx context.Context, lock *model.Lock, end time.Time) (*model.Rental, error)
}

type rentalFinalizer struct {
	rentals repository.RentalRepository
}

func NewRentalFinalizer(rentals repository.RentalRepository) RentalFinalizer {
	return &rentalFinalizer{rentals: rentals}
}

func (f *rentalFinalizer) Finalize(ctx context.Context, lock *model.Lock, end time.Time) (*model.Rental, error) {
	if !lock.IsActive() {
		return nil, fmt.Errorf("%w: %s has no active rental", rentalserrors.ErrCorruptLock, lock.ID)
	}

	active := lock.Rental
	duration, cost := ComputeCharge(active.StartTime, end, active.HourlyRate)

	rental := &model.Rental{
		ID:         uuid.NewString(),
		Station:    lock.Station,
		LockID:     lock.ID,
		LockName:   lock.Name,
		UserID:     active.UserID,
		HourlyRate: active.HourlyRate,
		StartTime:  active.StartTime,
		EndTime:    end,
		Duration:   duration,
		Cost:       cost,
	}

	if err := f.rentals.Create(ctx, rental); err != nil {
		return nil, err
	}
	return rental, nil
}
