package schema

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDBIndexer struct {
	ctx      context.Context
	dbName   string
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDBIndexer(connectionString, dbName string) *MongoDBIndexer {
	ctx := context.Background()
	opts := options.Client().ApplyURI(connectionString)
	client, err := mongo.NewClient(opts)
	if err != nil {
		panic(err)
	}
	if err := client.Connect(ctx); err != nil {
		panic(err)
	}

	return &MongoDBIndexer{
		ctx:      ctx,
		dbName:   dbName,
		Client:   client,
		Database: client.Database(dbName),
	}
}

func (m *MongoDBIndexer) createIndex(collection string, index mongo.IndexModel) error {
	c := m.Database.Collection(collection)
	_, err := c.Indexes().CreateOne(m.ctx, index)
	return err
}

func panicIfError(err error) {
	if err != nil {
		panic(err)
	}
}

func (m *MongoDBIndexer) IndexAll() {
	panicIfError(m.IndexProfileCollection())
	panicIfError(m.IndexPOICollection())
	panicIfError(m.IndexVisitCollection())
	panicIfError(m.IndexGeographicCollection())
}

func (m *MongoDBIndexer) IndexProfileCollection() error {
	if err := m.createIndex(ProfileCollection, mongo.IndexModel{
		Keys: bson.M{
			"id": 1,
		},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return err
	}

	if err := m.createIndex(ProfileCollection, mongo.IndexModel{
		Keys: bson.M{
			"email": 1,
		},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return err
	}

	return m.createIndex(ProfileCollection, mongo.IndexModel{
		Keys: bson.M{
			"manager_id": 1,
		},
	})
}

func (m *MongoDBIndexer) IndexPOICollection() error {
	return m.createIndex(POICollection, mongo.IndexModel{
		Keys: bson.D{
			{Key: "name", Value: "text"},
			{Key: "neighborhood", Value: "text"},
		},
	})
}

// IndexVisitCollection guards the one-open-visit-per-POI invariant with a
// partial unique index. Partial filters cannot express status != finalized,
// hence the open flag on the visit row.
func (m *MongoDBIndexer) IndexVisitCollection() error {
	if err := m.createIndex(VisitCollection, mongo.IndexModel{
		Keys: bson.M{
			"point_id": 1,
		},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"open": true}),
	}); err != nil {
		return err
	}

	return m.createIndex(VisitCollection, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "status", Value: 1},
		},
	})
}

func (m *MongoDBIndexer) IndexGeographicCollection() error {
	if err := m.createIndex(GeographicCollection, mongo.IndexModel{
		Keys: bson.M{
			"profile_id": 1,
		},
	}); err != nil {
		return err
	}

	return m.createIndex(GeographicCollection, mongo.IndexModel{
		Keys: bson.M{
			"location": "2dsphere",
		},
	})
}
