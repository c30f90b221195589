package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"skypulse-engine/internal/domain/entity"
	"skypulse-engine/internal/domain/repository"
)

// MongoAlertRepository implements AlertRepository
type MongoAlertRepository struct {
	collection *mongo.Collection
}

// NewMongoAlertRepository creates a new price alert repository
func NewMongoAlertRepository(db *mongo.Database) repository.AlertRepository {
	collection := db.Collection("price_alerts")

	ctx := context.Background()
	routeIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "origin", Value: 1},
			{Key: "destination", Value: 1},
			{Key: "state", Value: 1},
		},
	}
	collection.Indexes().CreateOne(ctx, routeIndex)

	return &MongoAlertRepository{
		collection: collection,
	}
}

// Save inserts a newly created alert
func (r *MongoAlertRepository) Save(ctx context.Context, alert *entity.PriceAlert) error {
	if _, err := r.collection.InsertOne(ctx, alert); err != nil {
		return &entity.PersistenceError{Op: "alerts.save", Err: err}
	}
	return nil
}

// Update persists an alert state transition
func (r *MongoAlertRepository) Update(ctx context.Context, alert *entity.PriceAlert) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": alert.ID},
		bson.M{"$set": bson.M{
			"state":          alert.State,
			"triggeredAt":    alert.TriggeredAt,
			"triggeredPrice": alert.TriggeredPrice,
		}},
	)
	if err != nil {
		return &entity.PersistenceError{Op: "alerts.update", Err: err}
	}
	return nil
}

// FindAll returns every alert, armed and triggered, for warm start
func (r *MongoAlertRepository) FindAll(ctx context.Context) ([]*entity.PriceAlert, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, &entity.PersistenceError{Op: "alerts.findAll", Err: err}
	}
	defer cursor.Close(ctx)

	var alerts []*entity.PriceAlert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, &entity.PersistenceError{Op: "alerts.findAll", Err: err}
	}
	return alerts, nil
}
