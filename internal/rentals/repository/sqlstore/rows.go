package sqlstore

import (
	"fmt"
	rentalserrors "lockrent/internal/rentals/errors"
	"lockrent/pkg/model"
	"time"
)

// lockRow is the relational shape of model.Lock. The rental columns are
// nullable and must be all set or all NULL.
type lockRow struct {
	ID               string  `gorm:"primaryKey;size:36"`
	Name             string  `gorm:"size:100;not null"`
	StationID        string  `gorm:"size:64;not null"`
	StationName      string  `gorm:"size:100;not null"`
	StationLatitude  float64 `gorm:"not null"`
	StationLongitude float64 `gorm:"not null"`
	UserID           *string `gorm:"size:128;index"`
	StartTime        *time.Time
	HourlyRate       *int64
	URL              string `gorm:"size:2048;not null"`
	Secret           []byte `gorm:"size:512;not null"`
	MAC              string `gorm:"size:32;not null"`
	Deleted          bool   `gorm:"not null;default:false"`
	Version          int64  `gorm:"not null;default:0"`
}

func (lockRow) TableName() string {
	return "locks"
}

func newLockRow(lock *model.Lock) *lockRow {
	row := &lockRow{
		ID:               lock.ID,
		Name:             lock.Name,
		StationID:        lock.Station.ID,
		StationName:      lock.Station.Name,
		StationLatitude:  lock.Station.Latitude,
		StationLongitude: lock.Station.Longitude,
		URL:              lock.URL,
		Secret:           lock.Secret,
		MAC:              lock.MAC,
		Deleted:          lock.Deleted,
		Version:          lock.Version,
	}
	if lock.Rental != nil {
		userID := lock.Rental.UserID
		start := lock.Rental.StartTime
		rate := lock.Rental.HourlyRate
		row.UserID = &userID
		row.StartTime = &start
		row.HourlyRate = &rate
	}
	return row
}

func (r *lockRow) toModel() (*model.Lock, error) {
	lock := &model.Lock{
		ID:   r.ID,
		Name: r.Name,
		Station: model.Station{
			ID:        r.StationID,
			Name:      r.StationName,
			Latitude:  r.StationLatitude,
			Longitude: r.StationLongitude,
		},
		URL:     r.URL,
		Secret:  r.Secret,
		MAC:     r.MAC,
		Deleted: r.Deleted,
		Version: r.Version,
	}

	switch {
	case r.UserID == nil && r.StartTime == nil && r.HourlyRate == nil:
	case r.UserID != nil && r.StartTime != nil && r.HourlyRate != nil:
		lock.Rental = &model.ActiveRental{
			UserID:     *r.UserID,
			StartTime:  r.StartTime.UTC(),
			HourlyRate: *r.HourlyRate,
		}
	default:
		return nil, fmt.Errorf("%w: %s", rentalserrors.ErrCorruptLock, r.ID)
	}
	return lock, nil
}

type rentalRow struct {
	ID               string    `gorm:"primaryKey;size:36"`
	StationID        string    `gorm:"size:64;not null"`
	StationName      string    `gorm:"size:100;not null"`
	StationLatitude  float64   `gorm:"not null"`
	StationLongitude float64   `gorm:"not null"`
	LockID           string    `gorm:"size:36;not null;index"`
	LockName         string    `gorm:"size:100;not null"`
	UserID           string    `gorm:"size:128;not null;index:idx_rentals_user_end,priority:1"`
	HourlyRate       int64     `gorm:"not null"`
	StartTime        time.Time `gorm:"not null"`
	EndTime          time.Time `gorm:"not null;index:idx_rentals_user_end,priority:2"`
	DurationNs       int64     `gorm:"not null"`
	Cost             int64     `gorm:"not null"`
}

func (rentalRow) TableName() string {
	return "rentals"
}

func newRentalRow(rental *model.Rental) *rentalRow {
	return &rentalRow{
		ID:               rental.ID,
		StationID:        rental.Station.ID,
		StationName:      rental.Station.Name,
		StationLatitude:  rental.Station.Latitude,
		StationLongitude: rental.Station.Longitude,
		LockID:           rental.LockID,
		LockName:         rental.LockName,
		UserID:           rental.UserID,
		HourlyRate:       rental.HourlyRate,
		StartTime:        rental.StartTime,
		EndTime:          rental.EndTime,
		DurationNs:       int64(rental.Duration),
		Cost:             rental.Cost,
	}
}

func (r *rentalRow) toModel() *model.Rental {
	return &model.Rental{
		ID: r.ID,
		Station: model.Station{
			ID:        r.StationID,
			Name:      r.StationName,
			Latitude:  r.StationLatitude,
			Longitude: r.StationLongitude,
		},
		LockID:     r.LockID,
		LockName:   r.LockName,
		UserID:     r.UserID,
		HourlyRate: r.HourlyRate,
		StartTime:  r.StartTime.UTC(),
		EndTime:    r.EndTime.UTC(),
		Duration:   time.Duration(r.DurationNs),
		Cost:       r.Cost,
	}
}

// Models lists the tables owned by this store, in migration order.
func Models() []any {
	return []any{&lockRow{}, &rentalRow{}}
}
