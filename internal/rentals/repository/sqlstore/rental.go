package sqlstore

import (
	"context"
	"fmt"
	"lockrent/internal/rentals/repository"
	"lockrent/pkg/db/sqldb"
	"lockrent/pkg/model"

	"gorm.io/gorm"
)

type rentalStore struct {
	db *gorm.DB
}

func NewRentalRepository(gdb *gorm.DB) repository.RentalRepository {
	return &rentalStore{db: gdb}
}

func (s *rentalStore) getDB(ctx context.Context) *gorm.DB {
	return sqldb.FromContext(ctx, s.db)
}

func (s *rentalStore) Create(ctx context.Context, rental *model.Rental) error {
	if err := s.getDB(ctx).Create(newRentalRow(rental)).Error; err != nil {
		return fmt.Errorf("failed to create rental: %w", err)
	}
	return nil
}

func (s *rentalStore) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Rental, error) {
	var rows []rentalRow
	err := s.getDB(ctx).
		Where("user_id = ?", userID).
		Order("end_time DESC").
		Limit(limit).
		Offset(int(offset)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find rentals: %w", err)
	}

	rentals := make([]*model.Rental, 0, len(rows))
	for i := range rows {
		rentals = append(rentals, rows[i].toModel())
	}
	return rentals, nil
}

func (s *rentalStore) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := s.getDB(ctx).Model(&rentalRow{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count rentals: %w", err)
	}
	return count, nil
}

// AutoMigrate creates or updates the locks and rentals tables.
func AutoMigrate(ctx context.Context, gdb *gorm.DB) error {
	return gdb.WithContext(ctx).AutoMigrate(Models()...)
}
