package config

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	mongoClient *mongo.Client
	mongoMu     sync.Mutex
)

// GetMongoClient returns the shared Mongo client used for raw-batch archival.
// Returns nil when MONGO_URI is not configured; callers treat that as
// archival disabled.
func GetMongoClient(ctx context.Context) *mongo.Client {
	mongoMu.Lock()
	defer mongoMu.Unlock()
	if mongoClient != nil {
		return mongoClient
	}

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		return nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Printf("failed to connect mongo: %v", err)
		return nil
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		log.Printf("failed to ping mongo: %v", err)
		_ = client.Disconnect(context.Background())
		return nil
	}
	mongoClient = client
	return mongoClient
}

// GetMongoDatabase returns the archive database (MONGO_DB, default iga_archive).
func GetMongoDatabase(ctx context.Context) *mongo.Database {
	client := GetMongoClient(ctx)
	if client == nil {
		return nil
	}
	name := os.Getenv("MONGO_DB")
	if name == "" {
		name = "iga_archive"
	}
	return client.Database(name)
}
