package client

import (
	"context"
	"fmt"
	"time"

	"lockrent/pkg/db/sqldb"
	"lockrent/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/gorm"
)

// Client holds the store connection of the running service. Exactly one of
// Mongo and SQL is set.
type Client struct {
	Mongo *mongo.Client
	SQL   *gorm.DB
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) SetMongo(log *logger.Logger, mongoURI string, mongoConnTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatal("Failed to ping MongoDB", "error", err)
	}

	log.Info("Successfully connected to MongoDB")
	c.Mongo = client
}

func (c *Client) SetSQL(log *logger.Logger, cfg sqldb.Config) {
	db, err := sqldb.Open(log, cfg)
	if err != nil {
		log.Fatal("Failed to open SQL database", "dialect", cfg.Dialect, "error", err)
	}

	c.SQL = db
}

// Ping checks the configured store. It backs the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	switch {
	case c.Mongo != nil:
		return c.Mongo.Ping(ctx, readpref.Primary())
	case c.SQL != nil:
		sqlDB, err := c.SQL.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	default:
		return fmt.Errorf("no store configured")
	}
}

func (c *Client) GracefulShutdown(log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if c.Mongo != nil {
		if err := c.Mongo.Disconnect(ctx); err != nil {
			log.Error("Failed to disconnect from MongoDB", "error", err)
		} else {
			log.Info("Disconnected from MongoDB")
		}
	}

	if c.SQL != nil {
		if err := sqldb.Close(c.SQL); err != nil {
			log.Error("Failed to close SQL database", "error", err)
		} else {
			log.Info("Closed SQL database")
		}
	}
}
