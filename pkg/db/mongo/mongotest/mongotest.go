// Package mongotest connects integration tests to a disposable MongoDB database.
// Tests are skipped unless MONGO_TEST_URI points at a replica set.
package mongotest

import (
	"context"
	"os"
	migrations "slotter/internal/migrations/mongo"
	"slotter/pkg/client"
	"slotter/pkg/config"
	"slotter/pkg/logger"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	EnvMongoTestURI = "MONGO_TEST_URI"

	connectionTimeout = 10 * time.Second
)

type Helper struct {
	Client   *mongo.Client
	Database *mongo.Database
	Config   *config.Config
}

// New connects, creates a uniquely named database with every collection migrated,
// and drops it when the test ends.
func New(t *testing.T) *Helper {
	t.Helper()

	uri := os.Getenv(EnvMongoTestURI)
	if uri == "" {
		t.Skipf("%s not set, skipping MongoDB integration test", EnvMongoTestURI)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		t.Fatalf("failed to ping MongoDB: %v", err)
	}

	dbName := "slotter_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	log := logger.Discard()

	if err := migrations.RunMigration(ctx, mongoClient, dbName, log); err != nil {
		t.Fatalf("failed to migrate %s: %v", dbName, err)
	}

	h := &Helper{
		Client:   mongoClient,
		Database: mongoClient.Database(dbName),
		Config: &config.Config{
			MongoDatabaseName: dbName,
			ReadTimeout:       5 * time.Second,
			WriteTimeout:      5 * time.Second,
			Log:               log,
			Client:            &client.Client{Mongo: mongoClient},
		},
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
		defer cancel()
		if err := h.Database.Drop(ctx); err != nil {
			t.Logf("warning: failed to drop %s: %v", dbName, err)
		}
		if err := mongoClient.Disconnect(ctx); err != nil {
			t.Logf("warning: failed to disconnect from MongoDB: %v", err)
		}
	})

	return h
}

// Count returns the number of documents in collection.
func (h *Helper) Count(t *testing.T, collection string) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := h.Database.Collection(collection).CountDocuments(ctx, map[string]any{})
	if err != nil {
		t.Fatalf("failed to count documents in %s: %v", collection, err)
	}
	return count
}
