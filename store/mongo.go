package store

import (
	"context"
	"time"

	"github.com/go-redis/redis/v7"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rotafield/rotafield-api/lifecycle"
)

const (
	mongoLogPrefix = "mongo"
	defaultTimeout = 5 * time.Second

	// DuplicateKeyCode - mongodb duplicate key error code
	DuplicateKeyCode = 11000
)

// MongoStore - interface for mongodb operations
type MongoStore interface {
	POI
	Visit
	ProfileOperator
	Tracking
	VisitFeed
	Distributor
	Closer
	Pinger
}

// Closer - close db connection
type Closer interface {
	Close()
}

// Pinger - ping database
type Pinger interface {
	Ping() error
}

type mongoDB struct {
	client   *mongo.Client
	database string

	// machine decides visit transitions, configured once at construction.
	machine lifecycle.Machine

	// throttle guards tracking writes; nil disables throttling.
	throttle *redis.Client
}

// Ping - ping mongo db
func (m mongoDB) Ping() error {
	return m.client.Ping(context.Background(), nil)
}

// Close - close mongo db connections
func (m mongoDB) Close() {
	log.WithField("prefix", mongoLogPrefix).Info("closing mongo db connections")
	_ = m.client.Disconnect(context.Background())
}

// NewMongoStore - return mongo db operations
func NewMongoStore(client *mongo.Client, database string, throttle *redis.Client) MongoStore {
	return &mongoDB{
		client:   client,
		database: database,
		machine:  lifecycle.NewMachineFromConfig(),
		throttle: throttle,
	}
}
