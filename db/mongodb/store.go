package mongodb

import (
	"context"
	"time"

	"github.com/webhookx-io/eventsvc/config/modules"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const collectionEvents = "events"

// Store holds the MongoDB connection and the events collection.
type Store struct {
	client *mongo.Client
	events *mongo.Collection
}

func Connect(ctx context.Context, cfg modules.DatabaseConfig) (*Store, error) {
	opts := options.Client().
		ApplyURI(cfg.GetDSN()).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true}).
		SetConnectTimeout(10 * time.Second)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(uint64(cfg.MaxPoolSize))
	}
	if cfg.MaxLifetime > 0 {
		opts.SetMaxConnIdleTime(time.Duration(cfg.MaxLifetime) * time.Second)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	return &Store{
		client: client,
		events: client.Database(cfg.Database).Collection(collectionEvents),
	}, nil
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}, {Key: "schedule_at", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}, {Key: "schedule", Value: 1}}},
		{Keys: bson.D{{Key: "schedule_at", Value: -1}}},
	})
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Truncate(ctx context.Context) error {
	_, err := s.events.DeleteMany(ctx, bson.M{})
	return err
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
