package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lockrent/internal/migrations/mongo/validators"
	"lockrent/internal/rentals/repository"
	"lockrent/pkg/logger"
)

var (
	LocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "rental.user_id", Value: 1}},
			Options: options.Index().SetName("rental_user").SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "station.id", Value: 1}},
			Options: options.Index().SetName("station"),
		},
	}

	RentalsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "end_time", Value: -1}},
			Options: options.Index().SetName("user_end_time"),
		},
		{
			Keys:    bson.D{{Key: "lock_id", Value: 1}, {Key: "end_time", Value: -1}},
			Options: options.Index().SetName("lock_end_time"),
		},
	}
)

type CollectionDef struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func Collections() []CollectionDef {
	return []CollectionDef{
		{Name: repository.LocksCollection, Indexes: LocksIndexes, Validator: validators.LockValidator},
		{Name: repository.RentalsCollection, Indexes: RentalsIndexes, Validator: validators.RentalValidator},
	}
}

// RunMigration creates the collections with their schema validators and
// indexes. Existing collections get their validator updated. Collections
// must exist before the service runs because multi-document transactions
// cannot create them.
func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	for _, def := range Collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
		log.Info("Collection ready", "collection", def.Name, "indexes", len(def.Indexes))
	}

	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().
			SetValidator(validator).
			SetValidationLevel("strict").
			SetValidationAction("error")
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "strict"},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	_, err := db.Collection(name).Indexes().CreateMany(ctx, models)
	return err
}
