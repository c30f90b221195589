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

// MongoMatchRepository implements MatchRepository
type MongoMatchRepository struct {
	collection *mongo.Collection
}

// NewMongoMatchRepository creates a new match record repository
func NewMongoMatchRepository(db *mongo.Database) repository.MatchRepository {
	collection := db.Collection("deal_matches")

	ctx := context.Background()
	dealIndex := mongo.IndexModel{
		Keys: bson.M{"dealId": 1},
	}
	subIndex := mongo.IndexModel{
		Keys: bson.M{"subscriptionId": 1},
	}
	createdIndex := mongo.IndexModel{
		Keys: bson.M{"createdAt": -1},
	}
	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{dealIndex, subIndex, createdIndex})

	return &MongoMatchRepository{
		collection: collection,
	}
}

// Save inserts a new match record
func (r *MongoMatchRepository) Save(ctx context.Context, record *entity.MatchRecord) error {
	if record.ID == "" {
		record.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		return &entity.PersistenceError{Op: "matches.save", Err: err}
	}
	return nil
}

// SetSummary backfills the summary text of an existing record
func (r *MongoMatchRepository) SetSummary(ctx context.Context, id string, summary string) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"summary":   summary,
			"summaryAt": time.Now(),
		}},
	)
	if err != nil {
		return &entity.PersistenceError{Op: "matches.setSummary", Err: err}
	}
	return nil
}

// FindByDeal returns all match records for a deal, newest first
func (r *MongoMatchRepository) FindByDeal(ctx context.Context, dealID string) ([]*entity.MatchRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"dealId": dealID}, &options.FindOptions{
		Sort: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return nil, &entity.PersistenceError{Op: "matches.findByDeal", Err: err}
	}
	defer cursor.Close(ctx)

	var records []*entity.MatchRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, &entity.PersistenceError{Op: "matches.findByDeal", Err: err}
	}
	return records, nil
}
