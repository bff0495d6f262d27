package ticket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oakrp/warden/pkg/entities"
	"github.com/oakrp/warden/pkg/logging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoDatabase   = "warden"
	mongoCollection = "tickets"
)

// ConnectMongo connects to mongo with the given URI and verifies the
// connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	client, err := mongo.Connect(pingCtx, options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI))
	if err != nil {
		return nil, fmt.Errorf("error connecting to mongo: %w", err)
	}
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("error pinging mongo: %w", err)
	}
	return client, nil
}

// MongoStore persists ticket records as one document per open ticket, keyed by
// channel ID.
type MongoStore struct {
	// l is the logger.
	l *slog.Logger

	// client is the database. This is a connection pool.
	client *mongo.Client

	locks *keyedMutex
}

// NewMongoStore creates a mongo-backed ticket store.
func NewMongoStore(client *mongo.Client, l *slog.Logger) *MongoStore {
	return &MongoStore{
		l:      l.With(slog.String(logging.KeyBackend, "mongo")),
		client: client,
		locks:  newKeyedMutex(),
	}
}

func (s *MongoStore) collection() *mongo.Collection {
	return s.client.Database(mongoDatabase).Collection(mongoCollection)
}

func (s *MongoStore) Create(ctx context.Context, t *entities.Ticket) error {
	unlock := s.locks.Lock(t.ChannelID)
	defer unlock()

	observe := observeStore("mongo", "create")
	defer observe()

	count, err := s.collection().CountDocuments(ctx, bson.M{"channel_id": t.ChannelID})
	if err != nil {
		return fmt.Errorf("error counting tickets: %w", err)
	}
	if count > 0 {
		return ErrConflict
	}

	if _, err := s.collection().InsertOne(ctx, t); err != nil {
		return fmt.Errorf("error inserting ticket: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, channelID string) (*entities.Ticket, error) {
	observe := observeStore("mongo", "get")
	defer observe()

	t := new(entities.Ticket)
	err := s.collection().FindOne(ctx, bson.M{"channel_id": channelID}).Decode(t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error getting ticket: %w", err)
	}
	return t, nil
}

func (s *MongoStore) Update(ctx context.Context, channelID string, mutate Mutator) (*entities.Ticket, error) {
	unlock := s.locks.Lock(channelID)
	defer unlock()

	observe := observeStore("mongo", "update")
	defer observe()

	t, err := s.Get(ctx, channelID)
	if err != nil {
		return nil, err
	}

	updated := t.Clone()
	if err := mutate(updated); err != nil {
		return nil, err
	}

	if _, err := s.collection().ReplaceOne(ctx, bson.M{"channel_id": channelID}, updated); err != nil {
		return nil, fmt.Errorf("error updating ticket: %w", err)
	}
	return updated, nil
}

func (s *MongoStore) Delete(ctx context.Context, channelID string) error {
	unlock := s.locks.Lock(channelID)
	defer unlock()

	observe := observeStore("mongo", "delete")
	defer observe()

	res, err := s.collection().DeleteOne(ctx, bson.M{"channel_id": channelID})
	if err != nil {
		return fmt.Errorf("error deleting ticket: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}

	s.locks.Forget(channelID)
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}
