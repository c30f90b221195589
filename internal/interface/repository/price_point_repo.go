package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"skypulse-engine/internal/domain/entity"
	"skypulse-engine/internal/domain/repository"
)

// MongoPricePointRepository implements PricePointRepository
type MongoPricePointRepository struct {
	collection *mongo.Collection
}

// NewMongoPricePointRepository creates a new price point repository
func NewMongoPricePointRepository(db *mongo.Database) repository.PricePointRepository {
	collection := db.Collection("price_points")

	ctx := context.Background()
	routeIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "origin", Value: 1},
			{Key: "destination", Value: 1},
			{Key: "observedAt", Value: 1},
		},
	}
	observedIndex := mongo.IndexModel{
		Keys: bson.M{"observedAt": 1},
	}
	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{routeIndex, observedIndex})

	return &MongoPricePointRepository{
		collection: collection,
	}
}

// Save inserts a price observation
func (r *MongoPricePointRepository) Save(ctx context.Context, point *entity.PricePoint) error {
	if point.ID == "" {
		point.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.collection.InsertOne(ctx, point); err != nil {
		return &entity.PersistenceError{Op: "pricePoints.save", Err: err}
	}
	return nil
}

// FindSince returns all points observed after the cutoff, oldest first,
// across all routes. Used to rebuild the in-memory store on warm start.
func (r *MongoPricePointRepository) FindSince(ctx context.Context, since time.Time) ([]*entity.PricePoint, error) {
	cursor, err := r.collection.Find(ctx,
		bson.M{"observedAt": bson.M{"$gt": since}},
		&options.FindOptions{Sort: bson.D{{Key: "observedAt", Value: 1}}},
	)
	if err != nil {
		return nil, &entity.PersistenceError{Op: "pricePoints.findSince", Err: err}
	}
	defer cursor.Close(ctx)

	var points []*entity.PricePoint
	if err := cursor.All(ctx, &points); err != nil {
		return nil, &entity.PersistenceError{Op: "pricePoints.findSince", Err: err}
	}
	return points, nil
}

// DeleteBefore removes a route's points older than the cutoff
func (r *MongoPricePointRepository) DeleteBefore(ctx context.Context, route entity.Route, cutoff time.Time) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{
		"origin":      route.Origin,
		"destination": route.Destination,
		"observedAt":  bson.M{"$lt": cutoff},
	})
	if err != nil {
		return &entity.PersistenceError{Op: "pricePoints.deleteBefore", Err: err}
	}
	return nil
}
