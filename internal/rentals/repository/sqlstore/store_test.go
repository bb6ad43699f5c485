package sqlstore

import (
	"bytes"
	"context"
	"testing"
	"time"

	rentalserrors "lockrent/internal/rentals/errors"
	"lockrent/pkg/db/sqldb"
	"lockrent/pkg/logger"
	"lockrent/pkg/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := sqldb.Open(logger.Discard(), sqldb.Config{
		Dialect:      sqldb.DialectSQLite,
		DSN:          ":memory:",
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(context.Background(), gdb))
	t.Cleanup(func() { _ = sqldb.Close(gdb) })
	return gdb
}

func newLock(userID string) *model.Lock {
	lock := &model.Lock{
		ID:   uuid.NewString(),
		Name: "L1",
		Station: model.Station{
			ID:        "st-1",
			Name:      "Central",
			Latitude:  52.52,
			Longitude: 13.405,
		},
		URL:    "https://locks.example.com/l1",
		Secret: bytes.Repeat([]byte{0xAB}, model.SecretSize),
		MAC:    "00:11:22:33:44:55",
	}
	if userID != "" {
		lock.Rental = &model.ActiveRental{
			UserID:     userID,
			StartTime:  time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
			HourlyRate: 2,
		}
	}
	return lock
}

func TestLockStore_CreateAndFind(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewLockRepository(gdb, time.Second)
	ctx := context.Background()

	lock := newLock("user-1")
	require.NoError(t, repo.Create(ctx, lock))

	got, err := repo.FindByID(ctx, lock.ID)
	require.NoError(t, err)
	assert.Equal(t, lock.Name, got.Name)
	assert.Equal(t, lock.Station, got.Station)
	assert.Equal(t, lock.Secret, got.Secret)
	require.NotNil(t, got.Rental)
	assert.Equal(t, "user-1", got.Rental.UserID)
	assert.True(t, lock.Rental.StartTime.Equal(got.Rental.StartTime))
	assert.Equal(t, int64(2), got.Rental.HourlyRate)
}

func TestLockStore_FindByID_Errors(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewLockRepository(gdb, time.Second)
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, rentalserrors.ErrInvalidID)

	_, err = repo.FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, rentalserrors.ErrLockNotFound)
}

func TestLockStore_CorruptRow(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewLockRepository(gdb, time.Second)
	ctx := context.Background()

	lock := newLock("user-1")
	require.NoError(t, repo.Create(ctx, lock))
	require.NoError(t, gdb.Model(&lockRow{}).Where("id = ?", lock.ID).Update("start_time", nil).Error)

	_, err := repo.FindByID(ctx, lock.ID)
	assert.ErrorIs(t, err, rentalserrors.ErrCorruptLock)
}

func TestLockStore_ClaimHeld(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewLockRepository(gdb, time.Second)
	ctx := context.Background()

	held := newLock("user-1")
	idle := newLock("")
	require.NoError(t, repo.Create(ctx, held))
	require.NoError(t, repo.Create(ctx, idle))

	t.Run("holder claims and bumps version", func(t *testing.T) {
		var claimed *model.Lock
		err := repo.ExecuteTransaction(ctx, func(ctx context.Context) error {
			var err error
			claimed, err = repo.ClaimHeld(ctx, "user-1", held.ID)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), claimed.Version)

		stored, err := repo.FindByID(ctx, held.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stored.Version)
	})

	t.Run("other user is not holder", func(t *testing.T) {
		_, err := repo.ClaimHeld(ctx, "user-2", held.ID)
		assert.ErrorIs(t, err, rentalserrors.ErrNotHeldByCaller)
	})

	t.Run("idle lock is not held", func(t *testing.T) {
		_, err := repo.ClaimHeld(ctx, "user-1", idle.ID)
		assert.ErrorIs(t, err, rentalserrors.ErrNotHeldByCaller)
	})

	t.Run("missing lock is not held", func(t *testing.T) {
		_, err := repo.ClaimHeld(ctx, "user-1", uuid.NewString())
		assert.ErrorIs(t, err, rentalserrors.ErrNotHeldByCaller)
	})
}

func TestLockStore_Release(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewLockRepository(gdb, time.Second)
	ctx := context.Background()

	lock := newLock("user-1")
	require.NoError(t, repo.Create(ctx, lock))

	err := repo.Release(ctx, lock.ID, 5)
	assert.ErrorIs(t, err, rentalserrors.ErrTransactionConflict)

	require.NoError(t, repo.Release(ctx, lock.ID, 0))

	got, err := repo.FindByID(ctx, lock.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Rental)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, lock.Secret, got.Secret)
	assert.Equal(t, lock.URL, got.URL)
	assert.Equal(t, lock.MAC, got.MAC)

	err = repo.Release(ctx, uuid.NewString(), 0)
	assert.ErrorIs(t, err, rentalserrors.ErrLockNotFound)
}

func TestLockStore_Delete(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewLockRepository(gdb, time.Second)
	ctx := context.Background()

	lock := newLock("")
	require.NoError(t, repo.Create(ctx, lock))

	assert.ErrorIs(t, repo.Delete(ctx, lock.ID, 3), rentalserrors.ErrTransactionConflict)
	require.NoError(t, repo.Delete(ctx, lock.ID, 0))

	_, err := repo.FindByID(ctx, lock.ID)
	assert.ErrorIs(t, err, rentalserrors.ErrLockNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, lock.ID, 0), rentalserrors.ErrLockNotFound)
}

func TestLockStore_MarkRetired(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewLockRepository(gdb, time.Second)
	ctx := context.Background()

	lock := newLock("user-1")
	require.NoError(t, repo.Create(ctx, lock))
	require.NoError(t, repo.MarkRetired(ctx, lock.ID, 0))

	got, err := repo.FindByID(ctx, lock.ID)
	require.NoError(t, err)
	assert.True(t, got.Deleted)
	assert.Equal(t, int64(1), got.Version)
	require.NotNil(t, got.Rental)
}

func TestRentalStore_FindByUser(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewRentalRepository(gdb)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &model.Rental{
			ID:         uuid.NewString(),
			Station:    model.Station{ID: "st-1", Name: "Central"},
			LockID:     uuid.NewString(),
			LockName:   "L1",
			UserID:     "user-1",
			HourlyRate: 2,
			StartTime:  base,
			EndTime:    base.Add(time.Duration(i+1) * time.Hour),
			Duration:   time.Duration(i+1) * time.Hour,
			Cost:       int64(i+1) * 2,
		}))
	}
	require.NoError(t, repo.Create(ctx, &model.Rental{
		ID:        uuid.NewString(),
		LockID:    uuid.NewString(),
		UserID:    "user-2",
		StartTime: base,
		EndTime:   base,
	}))

	rentals, err := repo.FindByUser(ctx, "user-1", 2, 0)
	require.NoError(t, err)
	require.Len(t, rentals, 2)
	assert.Equal(t, 3*time.Hour, rentals[0].Duration)
	assert.Equal(t, int64(6), rentals[0].Cost)
	assert.Equal(t, 2*time.Hour, rentals[1].Duration)

	rentals, err = repo.FindByUser(ctx, "user-1", 2, 2)
	require.NoError(t, err)
	require.Len(t, rentals, 1)
	assert.Equal(t, time.Hour, rentals[0].Duration)

	count, err := repo.CountByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
