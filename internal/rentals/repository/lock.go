package repository

import (
	"context"
	"errors"
	"fmt"
	rentalserrors "lockrent/internal/rentals/errors"
	"lockrent/pkg/config"
	"lockrent/pkg/db"
	mongotx "lockrent/pkg/db/mongo"
	"lockrent/pkg/model"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoLockRepository struct {
	readTimeout  time.Duration
	writeTimeout time.Duration
	collection   *mongo.Collection
	txManager    db.TransactionManager
}

func NewMongoLockRepository(cfg *config.Config) LockRepository {
	database := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoLockRepository{
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
		collection:   database.Collection(LocksCollection),
		txManager:    mongotx.NewTransactionManager(cfg.Client.Mongo, cfg.LockWaitTimeout),
	}
}

func validateID(id string) error {
	if err := uuid.Validate(id); err != nil {
		return fmt.Errorf("%w: %s", rentalserrors.ErrInvalidID, id)
	}
	return nil
}

func (r *mongoLockRepository) Create(ctx context.Context, lock *model.Lock) error {
	ctx, cancel := withTimeout(ctx, r.writeTimeout)
	defer cancel()

	if lock.ID == "" {
		lock.ID = uuid.NewString()
	}
	if err := validateID(lock.ID); err != nil {
		return err
	}

	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		return fmt.Errorf("failed to create lock: %w", err)
	}
	return nil
}

func (r *mongoLockRepository) FindByID(ctx context.Context, id string) (*model.Lock, error) {
	ctx, cancel := withTimeout(ctx, r.readTimeout)
	defer cancel()

	if err := validateID(id); err != nil {
		return nil, err
	}

	var lock model.Lock
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&lock)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, rentalserrors.ErrLockNotFound
		}
		return nil, fmt.Errorf("failed to find lock: %w", err)
	}
	return &lock, nil
}

// ClaimHeld bumps the version of a lock held by userID. Inside a snapshot
// transaction the write makes any concurrent claimant fail with a write
// conflict.
func (r *mongoLockRepository) ClaimHeld(ctx context.Context, userID string, lockID string) (*model.Lock, error) {
	ctx, cancel := withTimeout(ctx, r.writeTimeout)
	defer cancel()

	if err := validateID(lockID); err != nil {
		return nil, err
	}

	filter := bson.M{
		"_id":            lockID,
		"rental.user_id": userID,
	}
	update := bson.M{"$inc": bson.M{"version": 1}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var lock model.Lock
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&lock)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, rentalserrors.ErrNotHeldByCaller
		}
		return nil, fmt.Errorf("failed to claim lock: %w", err)
	}
	return &lock, nil
}

func (r *mongoLockRepository) Release(ctx context.Context, lockID string, version int64) error {
	ctx, cancel := withTimeout(ctx, r.writeTimeout)
	defer cancel()

	filter := bson.M{"_id": lockID, "version": version}
	update := bson.M{
		"$unset": bson.M{"rental": ""},
		"$inc":   bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	if result.MatchedCount == 0 {
		return r.missOrConflict(ctx, lockID)
	}
	return nil
}

func (r *mongoLockRepository) Delete(ctx context.Context, lockID string, version int64) error {
	ctx, cancel := withTimeout(ctx, r.writeTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID, "version": version})
	if err != nil {
		return fmt.Errorf("failed to delete lock: %w", err)
	}
	if result.DeletedCount == 0 {
		return r.missOrConflict(ctx, lockID)
	}
	return nil
}

func (r *mongoLockRepository) MarkRetired(ctx context.Context, lockID string, version int64) error {
	ctx, cancel := withTimeout(ctx, r.writeTimeout)
	defer cancel()

	filter := bson.M{"_id": lockID, "version": version}
	update := bson.M{
		"$set": bson.M{"deleted": true},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to retire lock: %w", err)
	}
	if result.MatchedCount == 0 {
		return r.missOrConflict(ctx, lockID)
	}
	return nil
}

// missOrConflict explains a conditional write that matched nothing.
func (r *mongoLockRepository) missOrConflict(ctx context.Context, lockID string) error {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": lockID})
	if err != nil {
		return fmt.Errorf("failed to count lock: %w", err)
	}
	if count == 0 {
		return rentalserrors.ErrLockNotFound
	}
	return fmt.Errorf("%w: lock %s changed version", rentalserrors.ErrTransactionConflict, lockID)
}

func (r *mongoLockRepository) ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
