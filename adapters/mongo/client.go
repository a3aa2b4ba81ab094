package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.uber.org/zap"

	"github.com/bhargav676/intern/internal/config"
)

const connectTimeout = 10 * time.Second

// Client owns the connection pool and the application database
type Client struct {
	*mongo.Client
	Database *mongo.Database
	logger   *zap.Logger
}

// NewClient connects to cfg.MongoURI and verifies the primary is reachable.
// Readings are acknowledged by a majority so a failover does not lose them.
func NewClient(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*Client, error) {
	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetAppName("water-quality-server").
		SetMaxPoolSize(20).
		SetMinPoolSize(1).
		SetRetryWrites(true).
		SetWriteConcern(writeconcern.Majority()).
		SetServerSelectionTimeout(5 * time.Second)

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to reach MongoDB primary: %w", err)
	}

	logger.Info("Connected to MongoDB", zap.String("database", cfg.MongoDatabase))
	return &Client{
		Client:   client,
		Database: client.Database(cfg.MongoDatabase),
		logger:   logger,
	}, nil
}

// Ping implements repositories.Pinger
func (c *Client) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx, readpref.Primary())
}

// Close drains the pool
func (c *Client) Close(ctx context.Context) error {
	err := c.Client.Disconnect(ctx)
	if err != nil {
		c.logger.Error("Failed to disconnect from MongoDB", zap.Error(err))
		return err
	}
	c.logger.Info("Disconnected from MongoDB")
	return nil
}
