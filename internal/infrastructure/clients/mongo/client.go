package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/feedbackdesk/backend/pkg/config"
)

const connectTimeout = 10 * time.Second

// Client represents a MongoDB client bound to one database
type Client struct {
	client   *mongo.Client
	database *mongo.Database
}

// NewClient connects to MongoDB and verifies the connection with a ping.
func NewClient(ctx context.Context, cfg *config.StoreConfig) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to open MongoDB connection: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	log.Info().Str("database", cfg.Database).Msg("Successfully connected to MongoDB")
	return &Client{
		client:   client,
		database: client.Database(cfg.Database),
	}, nil
}

// Collection returns a handle to the named collection
func (c *Client) Collection(name string) *mongo.Collection {
	return c.database.Collection(name)
}

// Ping verifies the connection to MongoDB
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
