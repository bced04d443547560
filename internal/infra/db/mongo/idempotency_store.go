package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bookingcore/internal/app/middleware"
)

// IdempotencyStore keeps command results; a TTL index expires them.
type IdempotencyStore struct {
	col *mongo.Collection
}

func NewIdempotencyStore(ctx context.Context, db *mongo.Database, ttl time.Duration) (*IdempotencyStore, error) {
	col := db.Collection(idempotencyCollection)
	if ttl > 0 {
		_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(ttl.Seconds())),
		})
		if err != nil {
			return nil, err
		}
	}
	return &IdempotencyStore{col: col}, nil
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	var doc idempotencyDocument
	if err := s.col.FindOne(ctx, bson.M{"_id": key}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return middleware.IdempotencyRecord{}, false, nil
		}
		return middleware.IdempotencyRecord{}, false, err
	}
	return doc.toRecord(), true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	doc := idempotencyDocument{
		ID:          rec.Key,
		Command:     rec.Command,
		Fingerprint: rec.Fingerprint,
		Payload:     rec.Payload,
		OccurredAt:  rec.OccurredAt,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := s.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

type idempotencyDocument struct {
	ID          string    `bson:"_id"`
	Command     string    `bson:"command"`
	Fingerprint string    `bson:"fingerprint,omitempty"`
	Payload     []byte    `bson:"payload"`
	OccurredAt  time.Time `bson:"occurred_at"`
	CreatedAt   time.Time `bson:"created_at"`
}

func (d idempotencyDocument) toRecord() middleware.IdempotencyRecord {
	return middleware.IdempotencyRecord{Key: d.ID, Command: d.Command, Fingerprint: d.Fingerprint, Payload: d.Payload, OccurredAt: d.OccurredAt}
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
