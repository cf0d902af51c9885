package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// ErrMissingURI is returned by [ConnectMongo] when no URI is configured.
var ErrMissingURI = errors.New("data store uri is required")

// Database is the process-wide data-store handle.
//
// It is created once at startup and only read afterwards. None of the
// built-in tasks query it.
type Database interface {
	// Ping verifies the data store is reachable.
	Ping(ctx context.Context) error

	// Close releases the connection. Safe to call once at shutdown.
	Close(ctx context.Context) error
}

// MongoDatabase is a [Database] backed by the MongoDB driver.
type MongoDatabase struct {
	client *mongo.Client
}

// ConnectMongo connects to MongoDB at uri and verifies the connection.
//
// The driver connects lazily, so ConnectMongo pings the primary before
// returning. timeout bounds server selection and the ping; zero leaves the
// driver defaults in place. The returned handle must be closed with
// [MongoDatabase.Close].
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*MongoDatabase, error) {
	if uri == "" {
		return nil, ErrMissingURI
	}

	opts := options.Client().ApplyURI(uri)
	if timeout > 0 {
		opts.SetConnectTimeout(timeout)
		opts.SetServerSelectionTimeout(timeout)
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	pingCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &MongoDatabase{client: client}, nil
}

// Ping verifies the primary is reachable.
func (m *MongoDatabase) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (m *MongoDatabase) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
