package repository

import (
	"context"
	"errors"
	"fmt"

	bookingserrors "parkspot/internal/bookings/errors"
	"parkspot/pkg/config"
	"parkspot/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const SpotCollectionName = "Parking_spots"

// SpotRepository reads parking spots owned by the spots service.
type SpotRepository interface {
	FindByID(ctx context.Context, id string) (*model.Spot, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*model.Spot, error)
}

type mongoSpotRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSpotRepository(cfg *config.Config) SpotRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSpotRepository{
		cfg:        cfg,
		collection: db.Collection(SpotCollectionName),
	}
}

// FindByID treats a malformed id as an unknown spot.
func (r *mongoSpotRepository) FindByID(ctx context.Context, id string) (*model.Spot, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrSpotNotFound, id)
	}

	var spot model.Spot
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&spot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrSpotNotFound
		}
		return nil, fmt.Errorf("failed to find spot: %w", err)
	}
	return &spot, nil
}

func (r *mongoSpotRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*model.Spot, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	spots := make(map[string]*model.Spot, len(ids))
	objectIDs := toObjectIDs(ids)
	if len(objectIDs) == 0 {
		return spots, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to find spots: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var spot model.Spot
		if err := cursor.Decode(&spot); err != nil {
			return nil, fmt.Errorf("failed to decode spot: %w", err)
		}
		spots[spot.ID] = &spot
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate spots: %w", err)
	}
	return spots, nil
}

// toObjectIDs converts the well-formed ids and drops duplicates.
func toObjectIDs(ids []string) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		if _, ok := seen[oid]; ok {
			continue
		}
		seen[oid] = struct{}{}
		out = append(out, oid)
	}
	return out
}
