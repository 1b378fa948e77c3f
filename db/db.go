package db

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// extractDBName parses the database name from the URI, defaulting to "munhub"
func extractDBName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "munhub"
	}
	if name := strings.TrimPrefix(u.Path, "/"); name != "" {
		return name
	}
	return "munhub"
}

// Connect opens a client and verifies it with a ping. An empty name falls
// back to the database named in the URI.
func Connect(ctx context.Context, uri, name string, logger *zap.Logger) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	if name == "" {
		name = extractDBName(uri)
	}
	logger.Info("connected to MongoDB", zap.String("database", name))

	return client, client.Database(name), nil
}
