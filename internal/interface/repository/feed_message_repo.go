package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"skypulse-engine/internal/domain/entity"
	"skypulse-engine/internal/domain/repository"
)

// MongoFeedMessageRepository implements the FeedMessageRepository interface
type MongoFeedMessageRepository struct {
	collection *mongo.Collection
}

// NewMongoFeedMessageRepository creates a new MongoDB feed message repository
func NewMongoFeedMessageRepository(db *mongo.Database) repository.FeedMessageRepository {
	collection := db.Collection("feed_messages")

	// Create indexes for better performance
	ctx := context.Background()

	messageIDIndex := mongo.IndexModel{
		Keys:    bson.M{"messageId": 1},
		Options: options.Index().SetUnique(true),
	}

	// Compound index for draining pending messages efficiently
	pendingIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "processStatus", Value: 1},
			{Key: "receivedAt", Value: 1},
		},
	}

	receivedAtIndex := mongo.IndexModel{
		Keys: bson.M{"receivedAt": -1},
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		messageIDIndex,
		pendingIndex,
		receivedAtIndex,
	})

	return &MongoFeedMessageRepository{
		collection: collection,
	}
}

// Save saves a feed message
func (r *MongoFeedMessageRepository) Save(ctx context.Context, msg *entity.FeedMessage) error {
	if msg.ProcessStatus == "" {
		msg.ProcessStatus = entity.StatusPending
	}
	if _, err := r.collection.InsertOne(ctx, msg); err != nil {
		return &entity.PersistenceError{Op: "feedMessages.save", Err: err}
	}
	return nil
}

// FindByMessageIDs batch-checks which message ids already exist
func (r *MongoFeedMessageRepository) FindByMessageIDs(ctx context.Context, messageIDs []string) (map[string]*entity.FeedMessage, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"messageId": bson.M{"$in": messageIDs}})
	if err != nil {
		return nil, &entity.PersistenceError{Op: "feedMessages.findByIds", Err: err}
	}
	defer cursor.Close(ctx)

	result := make(map[string]*entity.FeedMessage)
	for cursor.Next(ctx) {
		var msg entity.FeedMessage
		if err := cursor.Decode(&msg); err != nil {
			continue
		}
		result[msg.MessageID] = &msg
	}
	return result, nil
}

// FindPending returns pending messages, oldest first
func (r *MongoFeedMessageRepository) FindPending(ctx context.Context, limit int) ([]*entity.FeedMessage, error) {
	limit64 := int64(limit)
	cursor, err := r.collection.Find(ctx,
		bson.M{"processStatus": entity.StatusPending},
		&options.FindOptions{
			Limit: &limit64,
			Sort:  bson.D{{Key: "receivedAt", Value: 1}}, // Process oldest first
		},
	)
	if err != nil {
		return nil, &entity.PersistenceError{Op: "feedMessages.findPending", Err: err}
	}
	defer cursor.Close(ctx)

	var messages []*entity.FeedMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, &entity.PersistenceError{Op: "feedMessages.findPending", Err: err}
	}
	return messages, nil
}

// GetLast returns the most recently received message
func (r *MongoFeedMessageRepository) GetLast(ctx context.Context) (*entity.FeedMessage, error) {
	var msg entity.FeedMessage
	err := r.collection.FindOne(ctx, bson.M{}, &options.FindOneOptions{
		Sort: bson.D{{Key: "receivedAt", Value: -1}},
	}).Decode(&msg)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, &entity.PersistenceError{Op: "feedMessages.getLast", Err: err}
	}
	return &msg, nil
}

// MarkProcessed marks a message as processed with status and metadata
func (r *MongoFeedMessageRepository) MarkProcessed(ctx context.Context, messageID, status, errorDetail string, extractedData map[string]interface{}) error {
	set := bson.M{
		"processedAt":   time.Now(),
		"processStatus": status,
	}
	if errorDetail != "" {
		set["errorDetail"] = errorDetail
	}
	if len(extractedData) > 0 {
		set["extractedData"] = extractedData
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"messageId": messageID},
		bson.M{"$set": set},
	)
	if err != nil {
		return &entity.PersistenceError{Op: "feedMessages.markProcessed", Err: err}
	}
	if result.MatchedCount == 0 {
		return &entity.PersistenceError{Op: "feedMessages.markProcessed", Err: fmt.Errorf("no message found with id: %s", messageID)}
	}
	return nil
}
