package store

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rotafield/rotafield-api/geo"
	"github.com/rotafield/rotafield-api/schema"
)

var (
	ErrPOINotFound = fmt.Errorf("poi not found")
)

// POIFilter narrows ListPOI. Zero values mean "no restriction".
type POIFilter struct {
	Type       schema.POIType
	TextSearch string
	Page       int64
	PageSize   int64
}

type POI interface {
	AddPOI(creatorID string, poi schema.POI) (*schema.POI, error)
	GetPOI(poiID primitive.ObjectID) (*schema.POI, error)
	ListPOI(filter POIFilter) ([]schema.POI, int64, error)
	GetPOIsByIDs(poiIDs []primitive.ObjectID) ([]schema.POI, error)
	SetPOILastVisit(poiID primitive.ObjectID, t time.Time) error
}

// AddPOI inserts a new point of interest. A malformed coordinate string is
// rejected; an absent one triggers a best-effort geocoding of the address,
// and the POI is registered without coordinates when that fails too.
func (m *mongoDB) AddPOI(creatorID string, poi schema.POI) (*schema.POI, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if poi.Coordinates != "" {
		c, err := geo.Parse(poi.Coordinates)
		if err != nil {
			return nil, err
		}
		poi.Coordinates = c.String()
	} else if poi.Address != "" {
		if c, err := geo.ResolveAddress(fmt.Sprintf("%s, %s", poi.Address, poi.Neighborhood)); err == nil {
			poi.Coordinates = c.String()
		} else {
			log.WithError(err).WithField("prefix", mongoLogPrefix).Warn("fail to geocode poi address")
		}
	}

	now := time.Now().UTC()
	poi.ID = primitive.NewObjectID()
	poi.CreatedBy = creatorID
	poi.CreatedAt = now
	poi.UpdatedAt = now

	c := m.client.Database(m.database).Collection(schema.POICollection)
	if _, err := c.InsertOne(ctx, poi); err != nil {
		return nil, err
	}

	return &poi, nil
}

// GetPOI finds POI by poi ID
func (m *mongoDB) GetPOI(poiID primitive.ObjectID) (*schema.POI, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.POICollection)

	var poi schema.POI
	if err := c.FindOne(ctx, bson.M{"_id": poiID}).Decode(&poi); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrPOINotFound
		}
		return nil, err
	}

	return &poi, nil
}

// ListPOI pages through the registry with optional type and text filters.
func (m *mongoDB) ListPOI(filter POIFilter) ([]schema.POI, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.TextSearch != "" {
		pattern := primitive.Regex{Pattern: filter.TextSearch, Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"neighborhood": pattern},
		}
	}

	c := m.client.Database(m.database).Collection(schema.POICollection)

	total, err := c.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.M{"name": 1})
	if filter.PageSize > 0 {
		opts.SetSkip(filter.Page * filter.PageSize).SetLimit(filter.PageSize)
	}

	cursor, err := c.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}

	pois := make([]schema.POI, 0)
	if err := cursor.All(ctx, &pois); err != nil {
		return nil, 0, err
	}

	return pois, total, nil
}

// GetPOIsByIDs loads a batch of POIs; the result order is unspecified.
func (m *mongoDB) GetPOIsByIDs(poiIDs []primitive.ObjectID) ([]schema.POI, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.POICollection)

	cursor, err := c.Find(ctx, bson.M{"_id": bson.M{"$in": poiIDs}})
	if err != nil {
		return nil, err
	}

	pois := make([]schema.POI, 0)
	if err := cursor.All(ctx, &pois); err != nil {
		return nil, err
	}

	return pois, nil
}

// SetPOILastVisit stamps a point with its latest finalized visit time.
func (m *mongoDB) SetPOILastVisit(poiID primitive.ObjectID, t time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.POICollection)
	result, err := c.UpdateOne(ctx, bson.M{"_id": poiID}, bson.M{
		"$set": bson.M{
			"last_visit_at": t.UTC(),
			"updated_at":    time.Now().UTC(),
		},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrPOINotFound
	}

	return nil
}
