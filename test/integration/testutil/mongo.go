//go:build integration

package testutil

import (
	"context"
	"testing"
	"time"

	"parkspot/internal/bookings/repository"
	"parkspot/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ConnectionTimeout = 10 * time.Second

// MongoHelper seeds the read-only collections owned by other services and
// removes everything it created when the test ends.
type MongoHelper struct {
	Client   *mongo.Client
	Database *mongo.Database

	userIDs []primitive.ObjectID
	spotIDs []primitive.ObjectID
}

func NewMongoHelper(t *testing.T, mongoURI, dbName string) *MongoHelper {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("failed to ping MongoDB: %v", err)
	}

	return &MongoHelper{
		Client:   client,
		Database: client.Database(dbName),
	}
}

func (m *MongoHelper) SeedUser(t *testing.T, username string, role model.Role) string {
	t.Helper()
	id := primitive.NewObjectID()
	m.insert(t, repository.UserCollectionName, bson.M{
		"_id":      id,
		"username": username,
		"email":    username + "@parkspot.test",
		"role":     string(role),
	})
	m.userIDs = append(m.userIDs, id)
	return id.Hex()
}

func (m *MongoHelper) SeedSpot(t *testing.T, ownerID string, pricePerHour float64, available bool) string {
	t.Helper()
	id := primitive.NewObjectID()
	m.insert(t, repository.SpotCollectionName, bson.M{
		"_id":            id,
		"owner_id":       ownerID,
		"spot_type":      "driveway",
		"address":        "1 Integration Way",
		"description":    "seeded by integration tests",
		"price_per_hour": pricePerHour,
		"is_available":   available,
		"location": bson.M{
			"type":        "Point",
			"coordinates": []float64{34.78, 32.08},
		},
	})
	m.spotIDs = append(m.spotIDs, id)
	return id.Hex()
}

func (m *MongoHelper) CountBookings(t *testing.T, spotID string) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := m.Database.Collection(repository.CollectionName).CountDocuments(ctx, bson.M{"spot_id": spotID})
	if err != nil {
		t.Fatalf("failed to count bookings: %v", err)
	}
	return count
}

// Cleanup deletes the seeded users and spots and every booking made on the
// seeded spots, then disconnects.
func (m *MongoHelper) Cleanup(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	spotHexes := make([]string, 0, len(m.spotIDs))
	for _, id := range m.spotIDs {
		spotHexes = append(spotHexes, id.Hex())
	}

	deletions := []struct {
		collection string
		filter     bson.M
	}{
		{repository.CollectionName, bson.M{"spot_id": bson.M{"$in": spotHexes}}},
		{repository.SpotCollectionName, bson.M{"_id": bson.M{"$in": m.spotIDs}}},
		{repository.UserCollectionName, bson.M{"_id": bson.M{"$in": m.userIDs}}},
	}
	for _, d := range deletions {
		if _, err := m.Database.Collection(d.collection).DeleteMany(ctx, d.filter); err != nil {
			t.Logf("warning: failed to clean %s: %v", d.collection, err)
		}
	}

	if err := m.Client.Disconnect(ctx); err != nil {
		t.Logf("warning: failed to disconnect from MongoDB: %v", err)
	}
}

func (m *MongoHelper) insert(t *testing.T, collection string, doc bson.M) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := m.Database.Collection(collection).InsertOne(ctx, doc); err != nil {
		t.Fatalf("failed to seed %s: %v", collection, err)
	}
}
