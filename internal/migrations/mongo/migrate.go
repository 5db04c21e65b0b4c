package mongo

import (
	"context"
	"fmt"

	"parkspot/internal/bookings/repository"
	"parkspot/internal/migrations/mongo/validators"
	"parkspot/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionDef describes one collection the bookings service relies on.
// Collections owned by other services get indexes only.
type CollectionDef struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

var (
	BookingsIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "spot_id", Value: 1},
				{Key: "start_time", Value: 1},
				{Key: "end_time", Value: 1},
				{Key: "status", Value: 1},
			},
			Options: options.Index().SetName("spot_interval_status"),
		},
		{
			Keys: bson.D{
				{Key: "driver_id", Value: 1},
				{Key: "start_time", Value: 1},
			},
			Options: options.Index().SetName("driver_start"),
		},
	}

	BookingLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("expires_at_ttl").SetExpireAfterSeconds(0),
		},
	}

	SpotsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}},
			Options: options.Index().SetName("owner"),
		},
		{
			Keys:    bson.D{{Key: "location", Value: "2dsphere"}},
			Options: options.Index().SetName("location_2dsphere").SetSparse(true),
		},
	}
)

func Collections() []CollectionDef {
	return []CollectionDef{
		{Name: repository.CollectionName, Indexes: BookingsIndexes, Validator: validators.BookingValidator},
		{Name: repository.LockCollectionName, Indexes: BookingLocksIndexes, Validator: validators.BookingLockValidator},
		{Name: repository.SpotCollectionName, Indexes: SpotsIndexes},
	}
}

func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	for _, def := range Collections() {
		if err := ensureCollection(ctx, db, def, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
		log.Info("Collection ready", "collection", def.Name, "indexes", len(def.Indexes))
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, def CollectionDef, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: def.Name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", def.Name)
		opts := options.CreateCollection()
		if def.Validator != nil {
			opts.SetValidator(def.Validator)
		}
		if err := db.CreateCollection(ctx, def.Name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", def.Name, err)
		}
		return nil
	}

	if def.Validator == nil {
		return nil
	}

	command := bson.D{
		{Key: "collMod", Value: def.Name},
		{Key: "validator", Value: def.Validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", def.Name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, def CollectionDef) error {
	if len(def.Indexes) == 0 {
		return nil
	}
	_, err := db.Collection(def.Name).Indexes().CreateMany(ctx, def.Indexes)
	return err
}
