package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"shop-inventory/internal/config"
	"shop-inventory/internal/database"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
)

// Checks that the configured product store, and the cache when enabled, are
// reachable with the current environment.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := zerolog.Nop()

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
			os.Exit(1)
		}
		defer pool.Close()

		var dbName string
		if err := pool.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
			fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Successfully connected to database: %s\n", dbName)

	default:
		client, err := database.NewMongoClient(ctx, cfg.Mongo, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to connect to mongodb: %v\n", err)
			os.Exit(1)
		}
		defer client.Disconnect(context.Background())

		count, err := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection).CountDocuments(ctx, bson.D{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Successfully connected to mongodb: %s.%s (%d products)\n", cfg.Mongo.Database, cfg.Mongo.Collection, count)
	}

	if cfg.Redis.Enabled() {
		client, err := database.NewRedisClient(ctx, cfg.Redis, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to connect to redis: %v\n", err)
			os.Exit(1)
		}
		defer client.Close()
		fmt.Printf("Successfully connected to redis: %s\n", cfg.Redis.Addr)
	}
}
