package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	// ErrStoreUnavailable wraps every failure reported by the driver.
	ErrStoreUnavailable = errors.New("database not available")
	ErrInvalidID        = errors.New("invalid id")
	ErrNotFound         = errors.New("document not found")
)

// Store is the handle on the application database. It is safe for
// concurrent use.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

// Connect dials uri, pings the primary and returns a Store bound to dbName.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, unavailable("connect", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, unavailable("ping", err)
	}

	log.Info().Str("database", dbName).Msg("Connected to MongoDB successfully")
	return New(client, dbName), nil
}

// New wraps an already connected client.
func New(client *mongo.Client, dbName string) *Store {
	return &Store{
		client: client,
		db:     client.Database(dbName),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}
	if err := s.client.Disconnect(ctx); err != nil {
		return unavailable("disconnect", err)
	}
	log.Info().Msg("Disconnected from MongoDB")
	return nil
}

// Name is the database name.
func (s *Store) Name() string {
	return s.db.Name()
}

// Insert stores record in collection together with created_at and
// updated_at, and returns the id the store assigned.
func (s *Store) Insert(ctx context.Context, collection string, record any) (primitive.ObjectID, error) {
	raw, err := bson.Marshal(record)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("encode %s: %w", collection, err)
	}
	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return primitive.NilObjectID, fmt.Errorf("encode %s: %w", collection, err)
	}

	now := s.now()
	doc = append(doc,
		bson.E{Key: "created_at", Value: now},
		bson.E{Key: "updated_at", Value: now},
	)

	res, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, unavailable("insert into "+collection, err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("insert into %s: unexpected id type %T", collection, res.InsertedID)
	}
	return id, nil
}

// Query returns at most limit documents of collection matching filter, in
// the store's natural order. A nil filter matches everything.
func (s *Store) Query(ctx context.Context, collection string, filter bson.M, limit int64) ([]bson.D, error) {
	if filter == nil {
		filter = bson.M{}
	}

	cursor, err := s.db.Collection(collection).Find(ctx, filter, options.Find().SetLimit(limit))
	if err != nil {
		return nil, unavailable("find in "+collection, err)
	}
	defer cursor.Close(ctx)

	docs := []bson.D{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, unavailable("read "+collection, err)
	}
	return docs, nil
}

// SetFields sets fields and updated_at on the document with the given id
// and reports how many documents matched it. A match counts even when the
// stored values were already equal.
func (s *Store) SetFields(ctx context.Context, collection string, id primitive.ObjectID, fields bson.M) (int64, error) {
	set := bson.M{"updated_at": s.now()}
	for k, v := range fields {
		set[k] = v
	}

	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return 0, unavailable("update "+collection, err)
	}
	return res.MatchedCount, nil
}

// ParseID converts the hex form of an id.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, hex)
	}
	return id, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}
