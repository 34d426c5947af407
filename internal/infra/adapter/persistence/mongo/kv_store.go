// Package mongo implements the repository ports on a MongoDB collection.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"citypulse/internal/repository"
)

// CollectionName is the collection holding one document per key.
const CollectionName = "kv_entries"

type entry struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// KVStore keeps each key as a document whose _id is the key.
type KVStore struct {
	coll *mongo.Collection
}

// NewKVStore uses the kv_entries collection of db.
func NewKVStore(db *mongo.Database) *KVStore {
	return &KVStore{coll: db.Collection(CollectionName)}
}

// Connect opens a client for uri and returns a store on database.
// The caller owns the returned client and must Disconnect it.
func Connect(ctx context.Context, uri, database string) (*KVStore, *mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	return NewKVStore(client.Database(database)), client, nil
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	var e entry
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", repository.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("Get: FindOne: %w", err)
	}
	return e.Value, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	doc := entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("Set: ReplaceOne: %w", err)
	}
	return nil
}

func (s *KVStore) Ping(ctx context.Context) error {
	if err := s.coll.Database().Client().Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("Ping: %w", err)
	}
	return nil
}
