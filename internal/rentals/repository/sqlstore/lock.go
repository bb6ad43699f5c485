package sqlstore

import (
	"context"
	"errors"
	"fmt"
	rentalserrors "lockrent/internal/rentals/errors"
	"lockrent/internal/rentals/repository"
	"lockrent/pkg/db"
	"lockrent/pkg/db/sqldb"
	"lockrent/pkg/model"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type lockStore struct {
	db        *gorm.DB
	txManager db.TransactionManager
}

func NewLockRepository(gdb *gorm.DB, lockWaitTimeout time.Duration) repository.LockRepository {
	return &lockStore{
		db:        gdb,
		txManager: sqldb.NewTransactionManager(gdb, lockWaitTimeout),
	}
}

func (s *lockStore) getDB(ctx context.Context) *gorm.DB {
	return sqldb.FromContext(ctx, s.db)
}

func validateID(id string) error {
	if err := uuid.Validate(id); err != nil {
		return fmt.Errorf("%w: %s", rentalserrors.ErrInvalidID, id)
	}
	return nil
}

func (s *lockStore) Create(ctx context.Context, lock *model.Lock) error {
	if lock.ID == "" {
		lock.ID = uuid.NewString()
	}
	if err := validateID(lock.ID); err != nil {
		return err
	}
	if err := s.getDB(ctx).Create(newLockRow(lock)).Error; err != nil {
		return fmt.Errorf("failed to create lock: %w", err)
	}
	return nil
}

func (s *lockStore) FindByID(ctx context.Context, id string) (*model.Lock, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	var row lockRow
	if err := s.getDB(ctx).Take(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rentalserrors.ErrLockNotFound
		}
		return nil, fmt.Errorf("failed to find lock: %w", err)
	}
	return row.toModel()
}

// ClaimHeld takes a row lock on the lock held by userID, then bumps its
// version so concurrent holders of a stale snapshot fail their CAS.
func (s *lockStore) ClaimHeld(ctx context.Context, userID string, lockID string) (*model.Lock, error) {
	if err := validateID(lockID); err != nil {
		return nil, err
	}

	tx := s.getDB(ctx)
	var row lockRow
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", lockID, userID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rentalserrors.ErrNotHeldByCaller
		}
		return nil, fmt.Errorf("failed to claim lock: %w", err)
	}

	result := tx.Model(&lockRow{}).
		Where("id = ? AND version = ?", row.ID, row.Version).
		Update("version", gorm.Expr("version + 1"))
	if result.Error != nil {
		return nil, fmt.Errorf("failed to claim lock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: lock %s changed version", rentalserrors.ErrTransactionConflict, lockID)
	}
	row.Version++

	return row.toModel()
}

func (s *lockStore) Release(ctx context.Context, lockID string, version int64) error {
	result := s.getDB(ctx).Model(&lockRow{}).
		Where("id = ? AND version = ?", lockID, version).
		Updates(map[string]any{
			"user_id":     nil,
			"start_time":  nil,
			"hourly_rate": nil,
			"version":     gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to release lock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return s.missOrConflict(ctx, lockID)
	}
	return nil
}

func (s *lockStore) Delete(ctx context.Context, lockID string, version int64) error {
	result := s.getDB(ctx).
		Where("id = ? AND version = ?", lockID, version).
		Delete(&lockRow{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete lock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return s.missOrConflict(ctx, lockID)
	}
	return nil
}

func (s *lockStore) MarkRetired(ctx context.Context, lockID string, version int64) error {
	result := s.getDB(ctx).Model(&lockRow{}).
		Where("id = ? AND version = ?", lockID, version).
		Updates(map[string]any{
			"deleted": true,
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to retire lock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return s.missOrConflict(ctx, lockID)
	}
	return nil
}

func (s *lockStore) missOrConflict(ctx context.Context, lockID string) error {
	var count int64
	if err := s.getDB(ctx).Model(&lockRow{}).Where("id = ?", lockID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count lock: %w", err)
	}
	if count == 0 {
		return rentalserrors.ErrLockNotFound
	}
	return fmt.Errorf("%w: lock %s changed version", rentalserrors.ErrTransactionConflict, lockID)
}

func (s *lockStore) ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error {
	return s.txManager.ExecuteTransaction(ctx, fn)
}
