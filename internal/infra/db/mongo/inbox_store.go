package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InboxStore records consumed event ids per consumer.
type InboxStore struct {
	col      *mongo.Collection
	consumer string
}

func NewInboxStore(ctx context.Context, db *mongo.Database, consumer string) (*InboxStore, error) {
	col := db.Collection(inboxCollection)
	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "consumer", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, err
	}
	return &InboxStore{col: col, consumer: consumer}, nil
}

// Seen inserts eventID and reports true when it had already been recorded.
func (s *InboxStore) Seen(ctx context.Context, eventID string) (bool, error) {
	doc := bson.M{"event_id": eventID, "consumer": s.consumer, "received_at": time.Now().UTC()}
	_, err := s.col.InsertOne(ctx, doc)
	if err == nil {
		return false, nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return true, nil
	}
	return false, err
}
