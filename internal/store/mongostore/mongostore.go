// Package mongostore keeps tasks in a MongoDB collection.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"todo/internal/service"
)

const (
	// DefaultDatabase is used when Config.Database is empty.
	DefaultDatabase = "todo"

	// DefaultAuthSource is used when credentials are given without one.
	DefaultAuthSource = "admin"

	collectionName = "tasks"
)

// Config holds the connection parameters.
type Config struct {
	// URI is the MongoDB connection string.
	URI string

	// UseAuth enables Username/Password authentication against AuthSource.
	UseAuth    bool
	Username   string
	Password   string
	AuthSource string

	Database string
}

// taskDoc is the stored form of a task.
type taskDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Task      string             `bson:"task"`
	Completed bool               `bson:"completed"`
}

func (d taskDoc) task() service.Task {
	return service.Task{ID: d.ID.Hex(), Text: d.Task, Completed: d.Completed}
}

// Store is a task store backed by MongoDB.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// ClientOptions builds the driver options for cfg.
func ClientOptions(cfg Config) *options.ClientOptions {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.UseAuth {
		source := cfg.AuthSource
		if source == "" {
			source = DefaultAuthSource
		}
		opts.SetAuth(options.Credential{
			Username:   cfg.Username,
			Password:   cfg.Password,
			AuthSource: source,
		})
	}
	return opts
}

// Open connects to MongoDB and pings the primary.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongostore: connection string is required")
	}

	client, err := mongo.Connect(ctx, ClientOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connecting: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongostore: ping: %w", err)
	}

	database := cfg.Database
	if database == "" {
		database = DefaultDatabase
	}
	return &Store{
		client: client,
		coll:   client.Database(database).Collection(collectionName),
	}, nil
}

// ListTasks implements service.Service.
func (s *Store) ListTasks(ctx context.Context) ([]service.Task, error) {
	cursor, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []taskDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]service.Task, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.task())
	}
	return out, nil
}

// CreateTask implements service.Service.
func (s *Store) CreateTask(ctx context.Context, text string) (service.Task, error) {
	doc := taskDoc{Task: text}
	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return service.Task{}, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return service.Task{}, fmt.Errorf("mongostore: unexpected id type %T", res.InsertedID)
	}
	doc.ID = id
	return doc.task(), nil
}

// UpdateTask implements service.Service.
func (s *Store) UpdateTask(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return service.Task{}, service.ErrNotFound
	}

	var doc taskDoc
	filter := bson.D{{Key: "_id", Value: oid}}
	if set := updateSet(patch); len(set) > 0 {
		err = s.coll.FindOneAndUpdate(ctx, filter, bson.D{{Key: "$set", Value: set}},
			options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	} else {
		err = s.coll.FindOne(ctx, filter).Decode(&doc)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return service.Task{}, service.ErrNotFound
	}
	if err != nil {
		return service.Task{}, err
	}
	return doc.task(), nil
}

// DeleteTask implements service.Service.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return service.ErrNotFound
	}
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return service.ErrNotFound
	}
	return nil
}

// Ping checks that the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// updateSet returns the $set document for patch.
func updateSet(patch service.TaskPatch) bson.D {
	var set bson.D
	if patch.Text != nil {
		set = append(set, bson.E{Key: "task", Value: *patch.Text})
	}
	if patch.Completed != nil {
		set = append(set, bson.E{Key: "completed", Value: *patch.Completed})
	}
	return set
}
