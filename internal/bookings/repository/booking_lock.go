package repository

import (
	"context"
	"fmt"
	"time"

	"parkspot/pkg/config"
	"parkspot/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "Booking_locks"

// BookingLockRepository stores advisory lock documents keyed by lock name.
// It satisfies locker.Store.
type BookingLockRepository struct {
	collection *mongo.Collection
}

func NewBookingLockRepository(cfg *config.Config) *BookingLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &BookingLockRepository{
		collection: db.Collection(LockCollectionName),
	}
}

func (r *BookingLockRepository) TryAcquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	now := time.Now().UTC()

	// the TTL monitor runs once a minute, so expired holders are cleared here too
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": key, "expires_at": bson.M{"$lte": now}})
	if err != nil {
		return false, fmt.Errorf("failed to clear expired lock: %w", err)
	}

	lock := &model.BookingLock{
		ID:        key,
		Token:     token,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create lock: %w", err)
	}
	return true, nil
}

func (r *BookingLockRepository) Release(ctx context.Context, key, token string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": key, "token": token}); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}
