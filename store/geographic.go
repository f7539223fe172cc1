package store

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rotafield/rotafield-api/schema"
)

const (
	trackingWriteInterval = 30 * time.Second
)

var (
	errInvalidEarlier = fmt.Errorf("invalid earlier")
)

// Tracking - live position operations for seller devices
type Tracking interface {
	UpdateProfilePosition(profileID string, latitude float64, longitude float64) error
	ListProfilePositions(profileID string, limit int64, earlier int64) ([]schema.Geographic, error)
}

// UpdateProfilePosition records a device fix. The profile's last-known state
// always moves; the geographic history only accepts one point per profile per
// trackingWriteInterval, enforced with a redis SETNX lease so a fleet of API
// instances shares the throttle. Without redis every fix is recorded.
func (m *mongoDB) UpdateProfilePosition(profileID string, latitude float64, longitude float64) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	now := time.Now().UTC()

	location := schema.GeoJSON{
		Type:        "Point",
		Coordinates: []float64{longitude, latitude},
	}

	p := m.client.Database(m.database).Collection(schema.ProfileCollection)
	result, err := p.UpdateOne(ctx, bson.M{"id": profileID}, bson.M{
		"$set": bson.M{
			"state.last_location": location,
			"state.last_fix_time": now,
			"updated_at":          now,
		},
	})
	if err != nil {
		log.WithFields(log.Fields{
			"prefix":     mongoLogPrefix,
			"profile_id": profileID,
			"error":      err,
		}).Error("update profile last location")
		return err
	}
	if result.MatchedCount == 0 {
		return ErrProfileNotFound
	}

	if m.throttle != nil {
		key := fmt.Sprintf("tracking:%s", profileID)
		acquired, err := m.throttle.SetNX(key, now.Unix(), trackingWriteInterval).Result()
		if err != nil {
			log.WithFields(log.Fields{
				"prefix":     mongoLogPrefix,
				"profile_id": profileID,
				"error":      err,
			}).Warn("tracking throttle unavailable")
		} else if !acquired {
			// update too fast, ignore those
			return nil
		}
	}

	current := schema.Geographic{
		ProfileID: profileID,
		Location:  location,
		Timestamp: now.Unix(),
	}

	c := m.client.Database(m.database).Collection(schema.GeographicCollection)
	if _, err := c.InsertOne(ctx, current); nil != err {
		log.WithFields(log.Fields{
			"prefix":     mongoLogPrefix,
			"profile_id": profileID,
			"geographic": current,
		}).Error("add profile position")
		return err
	}

	return nil
}

// ListProfilePositions pages backwards through a profile's position history.
func (m *mongoDB) ListProfilePositions(profileID string, limit int64, earlier int64) ([]schema.Geographic, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if earlier <= 0 {
		return nil, errInvalidEarlier
	}

	query := bson.M{
		"profile_id": profileID,
		"ts": bson.M{
			"$lt": earlier,
		},
	}
	opts := options.Find()
	opts = opts.SetSort(bson.M{"ts": -1}).SetLimit(limit)

	c := m.client.Database(m.database).Collection(schema.GeographicCollection)
	cur, err := c.Find(ctx, query, opts)
	if nil != err {
		log.WithFields(log.Fields{
			"prefix":     mongoLogPrefix,
			"profile_id": profileID,
			"earlier":    earlier,
			"limit":      limit,
			"error":      err,
		}).Error("list profile position history")
		return nil, err
	}

	result := make([]schema.Geographic, 0)
	for cur.Next(ctx) {
		var g schema.Geographic
		if err = cur.Decode(&g); err != nil {
			return nil, err
		}
		result = append(result, g)
	}

	return result, nil
}
