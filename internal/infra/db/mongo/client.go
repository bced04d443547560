package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	propertiesCollection  = "agg_property"
	bookingsCollection    = "agg_booking"
	blocksCollection      = "agg_block"
	outboxCollection      = "app_outbox"
	idempotencyCollection = "app_idempotency"
	inboxCollection       = "app_inbox"
)

type Client struct {
	DB *mongo.Database
}

// New connects to uri. Transactions need a replica set or sharded cluster.
func New(ctx context.Context, uri, database string) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	opts := options.Client().ApplyURI(uri).SetRetryWrites(true)
	m, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Client{DB: m.Database(database)}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.DB.Client().Ping(ctx, nil)
}

func (c *Client) Close(ctx context.Context) error {
	return c.DB.Client().Disconnect(ctx)
}

// EnsureIndexes creates the indexes the overlap queries and the outbox poller rely on.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	byRange := []mongo.IndexModel{
		{Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "start_day", Value: 1}, {Key: "end_day", Value: 1}}},
	}
	if _, err := c.DB.Collection(bookingsCollection).Indexes().CreateMany(ctx, byRange); err != nil {
		return err
	}
	if _, err := c.DB.Collection(blocksCollection).Indexes().CreateMany(ctx, byRange); err != nil {
		return err
	}
	_, err := c.DB.Collection(outboxCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "state", Value: 1}, {Key: "next_attempt_at", Value: 1}},
	})
	return err
}
