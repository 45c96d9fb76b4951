// Package mongodb implements the session state store on MongoDB, one
// document per authentication session.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sirosfoundation/go-credential-nodes/internal/state"
	"github.com/sirosfoundation/go-credential-nodes/pkg/config"
)

// Store implements MongoDB session state storage
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

type sessionDoc struct {
	ID        string    `bson:"_id"`
	State     state.Bag `bson:"state"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// NewStore creates a new MongoDB store
func NewStore(ctx context.Context, cfg *config.MongoDBConfig) (*Store, error) {
	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(time.Duration(cfg.Timeout) * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	collection := client.Database(cfg.Database).Collection(cfg.Collection)

	// Sessions are short-lived; expire abandoned state after a day
	_, err = collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "updatedAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(86400),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create state index: %w", err)
	}

	return &Store{client: client, collection: collection}, nil
}

func (s *Store) Load(ctx context.Context, sessionID string) (state.Bag, error) {
	var doc sessionDoc
	err := s.collection.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return state.Bag{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", state.ErrDatabase, err)
	}
	if doc.State == nil {
		return state.Bag{}, nil
	}
	return doc.State, nil
}

func (s *Store) Save(ctx context.Context, sessionID string, bag state.Bag) error {
	doc := sessionDoc{ID: sessionID, State: bag, UpdatedAt: time.Now()}
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": sessionID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("%w: %v", state.ErrDatabase, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": sessionID})
	if err != nil {
		return fmt.Errorf("%w: %v", state.ErrDatabase, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
