package repository

import (
	"context"
	"fmt"
	"lockrent/pkg/config"
	"lockrent/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoRentalRepository struct {
	readTimeout  time.Duration
	writeTimeout time.Duration
	collection   *mongo.Collection
}

func NewMongoRentalRepository(cfg *config.Config) RentalRepository {
	database := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRentalRepository{
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
		collection:   database.Collection(RentalsCollection),
	}
}

func (r *mongoRentalRepository) Create(ctx context.Context, rental *model.Rental) error {
	ctx, cancel := withTimeout(ctx, r.writeTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, rental); err != nil {
		return fmt.Errorf("failed to create rental: %w", err)
	}
	return nil
}

func (r *mongoRentalRepository) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Rental, error) {
	ctx, cancel := withTimeout(ctx, r.readTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "end_time", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find rentals: %w", err)
	}
	defer cursor.Close(ctx)

	rentals := []*model.Rental{}
	if err = cursor.All(ctx, &rentals); err != nil {
		return nil, fmt.Errorf("failed to decode rentals: %w", err)
	}
	return rentals, nil
}

func (r *mongoRentalRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.readTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to count rentals: %w", err)
	}
	return count, nil
}
