package store

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rotafield/rotafield-api/schema"
)

var (
	ErrNothingToDistribute      = fmt.Errorf("no points selected for distribution")
	ErrUnknownDistributionPoint = fmt.Errorf("selection contains an unknown point")
)

// Distributor - bulk route assignment
type Distributor interface {
	Distribute(pointIDs []primitive.ObjectID, targetID string) (int64, error)
}

// Distribute hands a batch of points to a target assignee. Points with an
// open visit get that visit reassigned and reset to to_visit; points without
// one get a fresh visit. The two writes are not atomic: a failure midway
// leaves earlier points assigned, which the caller reports via the returned
// count rather than rolling back.
func (m *mongoDB) Distribute(pointIDs []primitive.ObjectID, targetID string) (int64, error) {
	if len(pointIDs) == 0 {
		return 0, ErrNothingToDistribute
	}

	// reject the whole batch when any selected point does not exist, so a
	// mistyped ID never produces an orphan visit
	pois, err := m.GetPOIsByIDs(pointIDs)
	if err != nil {
		return 0, err
	}
	known := make(map[primitive.ObjectID]bool, len(pois))
	for _, p := range pois {
		known[p.ID] = true
	}
	for _, pointID := range pointIDs {
		if !known[pointID] {
			return 0, ErrUnknownDistributionPoint
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.VisitCollection)
	now := time.Now().UTC()

	result, err := c.UpdateMany(ctx,
		bson.M{"point_id": bson.M{"$in": pointIDs}, "open": true},
		bson.M{
			"$set": bson.M{
				"user_id":    targetID,
				"status":     schema.StatusToVisit,
				"open":       true,
				"updated_at": now,
			},
			"$unset": bson.M{
				"checkin_time":        "",
				"checkout_time":       "",
				"collaborator_count":  "",
				"responsible_name":    "",
				"summary":             "",
				"fraud_justification": "",
				"scheduled_for":       "",
			},
		},
	)
	if err != nil {
		return 0, err
	}
	reassigned := result.ModifiedCount

	// points that had no open visit get a fresh one
	cursor, err := c.Find(ctx, bson.M{"point_id": bson.M{"$in": pointIDs}, "open": true})
	if err != nil {
		return reassigned, err
	}

	covered := make(map[primitive.ObjectID]bool, len(pointIDs))
	for cursor.Next(ctx) {
		var v schema.Visit
		if err := cursor.Decode(&v); err != nil {
			return reassigned, err
		}
		covered[v.PointID] = true
	}

	fresh := make([]interface{}, 0)
	for _, pointID := range pointIDs {
		if covered[pointID] {
			continue
		}
		fresh = append(fresh, schema.Visit{
			ID:         primitive.NewObjectID(),
			PointID:    pointID,
			AssigneeID: targetID,
			Status:     schema.StatusToVisit,
			Open:       true,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	if len(fresh) > 0 {
		inserted, err := c.InsertMany(ctx, fresh)
		if err != nil {
			if inserted != nil {
				reassigned += int64(len(inserted.InsertedIDs))
			}
			log.WithFields(log.Fields{
				"prefix":    mongoLogPrefix,
				"target_id": targetID,
				"error":     err,
			}).Error("distribute fresh visits")
			return reassigned, err
		}
		reassigned += int64(len(inserted.InsertedIDs))
	}

	return reassigned, nil
}
