package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rotafield/rotafield-api/geo"
	"github.com/rotafield/rotafield-api/lifecycle"
	"github.com/rotafield/rotafield-api/schema"
)

var (
	ErrVisitNotFound   = fmt.Errorf("visit not found")
	ErrOpenVisitExists = fmt.Errorf("the point already has an open visit")
)

// VisitFilter narrows ListVisits. Zero values mean "no restriction".
type VisitFilter struct {
	AssigneeID string
	Status     schema.VisitStatus
	PointIDs   []primitive.ObjectID
}

type Visit interface {
	AddVisit(visit schema.Visit) (*schema.Visit, error)
	GetVisit(visitID primitive.ObjectID) (*schema.Visit, error)
	ListVisits(filter VisitFilter) ([]schema.Visit, error)
	ListVisitDetails(filter VisitFilter) ([]schema.VisitDetail, error)
	TransitionVisit(visitID primitive.ObjectID, target schema.VisitStatus, payload lifecycle.Payload) (*schema.Visit, error)
	DeferVisit(visitID primitive.ObjectID, when time.Time) (*schema.Visit, error)
	ClearOverdueDeferrals(now time.Time) (int64, error)
}

// AddVisit inserts a fresh to_visit entry for a point. The partial unique
// index on open visits rejects a second open visit for the same point.
func (m *mongoDB) AddVisit(visit schema.Visit) (*schema.Visit, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	visit.ID = primitive.NewObjectID()
	visit.Status = schema.StatusToVisit
	visit.Open = true
	visit.CreatedAt = now
	visit.UpdatedAt = now

	c := m.client.Database(m.database).Collection(schema.VisitCollection)
	if _, err := c.InsertOne(ctx, visit); err != nil {
		if we, hasErr := err.(mongo.WriteException); hasErr {
			if 1 == len(we.WriteErrors) && DuplicateKeyCode == we.WriteErrors[0].Code {
				return nil, ErrOpenVisitExists
			}
		}
		return nil, err
	}

	return &visit, nil
}

// GetVisit finds a visit by visit ID
func (m *mongoDB) GetVisit(visitID primitive.ObjectID) (*schema.Visit, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.VisitCollection)

	var visit schema.Visit
	if err := c.FindOne(ctx, bson.M{"_id": visitID}).Decode(&visit); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrVisitNotFound
		}
		return nil, err
	}

	return &visit, nil
}

func visitQuery(filter VisitFilter) bson.M {
	query := bson.M{}
	if filter.AssigneeID != "" {
		query["user_id"] = filter.AssigneeID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if len(filter.PointIDs) > 0 {
		query["point_id"] = bson.M{"$in": filter.PointIDs}
	}
	return query
}

// ListVisits returns bare visits, newest first.
func (m *mongoDB) ListVisits(filter VisitFilter) ([]schema.Visit, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.VisitCollection)

	cursor, err := c.Find(ctx, visitQuery(filter), options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, err
	}

	visits := make([]schema.Visit, 0)
	if err := cursor.All(ctx, &visits); err != nil {
		return nil, err
	}

	return visits, nil
}

// ListVisitDetails returns visits joined with their point and assignee, via a
// $lookup pipeline so one round trip serves list views.
func (m *mongoDB) ListVisitDetails(filter VisitFilter) ([]schema.VisitDetail, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.VisitCollection)

	pipeline := []bson.M{
		{"$match": visitQuery(filter)},
		{"$sort": bson.M{"created_at": -1}},
		{"$lookup": bson.M{
			"from":         schema.POICollection,
			"localField":   "point_id",
			"foreignField": "_id",
			"as":           "poi",
		}},
		{"$unwind": bson.M{"path": "$poi", "preserveNullAndEmptyArrays": true}},
		{"$lookup": bson.M{
			"from":         schema.ProfileCollection,
			"localField":   "user_id",
			"foreignField": "id",
			"as":           "assignee",
		}},
		{"$unwind": bson.M{"path": "$assignee", "preserveNullAndEmptyArrays": true}},
	}

	cursor, err := c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	details := make([]schema.VisitDetail, 0)
	if err := cursor.All(ctx, &details); err != nil {
		return nil, err
	}

	return details, nil
}

// hasActiveRoute reports whether an assignee already has an en_route visit,
// optionally excluding one visit from the count.
func (m *mongoDB) hasActiveRoute(ctx context.Context, assigneeID string, exclude primitive.ObjectID) (bool, error) {
	c := m.client.Database(m.database).Collection(schema.VisitCollection)

	query := bson.M{
		"user_id": assigneeID,
		"status":  schema.StatusEnRoute,
		"_id":     bson.M{"$ne": exclude},
	}

	count, err := c.CountDocuments(ctx, query)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// TransitionVisit loads the visit, gathers the decision inputs, runs the
// lifecycle machine and persists the resulting patch. The active-route check
// is check-then-act rather than transactional; the window is accepted since
// starting two routes is an inconvenience, not a corruption.
func (m *mongoDB) TransitionVisit(visitID primitive.ObjectID, target schema.VisitStatus, payload lifecycle.Payload) (*schema.Visit, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	visit, err := m.GetVisit(visitID)
	if err != nil {
		return nil, err
	}

	in := lifecycle.Inputs{}

	if target == schema.StatusEnRoute {
		active, err := m.hasActiveRoute(ctx, visit.AssigneeID, visit.ID)
		if err != nil {
			return nil, err
		}
		in.AssigneeHasActiveRoute = active
	}

	if target == schema.StatusVisited {
		poi, err := m.GetPOI(visit.PointID)
		if err != nil && err != ErrPOINotFound {
			return nil, err
		}
		if poi != nil && poi.Coordinates != "" {
			if c, err := geo.Parse(poi.Coordinates); err == nil {
				in.POICoordinate = c
			}
		}
	}

	patch, err := m.machine.Transition(*visit, target, payload, in)
	if err != nil {
		return nil, err
	}

	return m.applyPatch(ctx, visit, patch)
}

// DeferVisit annotates a visit with a future scheduled date.
func (m *mongoDB) DeferVisit(visitID primitive.ObjectID, when time.Time) (*schema.Visit, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	visit, err := m.GetVisit(visitID)
	if err != nil {
		return nil, err
	}

	patch, err := m.machine.Defer(*visit, when)
	if err != nil {
		return nil, err
	}

	return m.applyPatch(ctx, visit, patch)
}

// ClearOverdueDeferrals drops scheduled dates that have passed so those
// visits rejoin the current queue. Run periodically by the background worker.
func (m *mongoDB) ClearOverdueDeferrals(now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.VisitCollection)
	result, err := c.UpdateMany(ctx,
		bson.M{
			"scheduled_for": bson.M{"$lt": now.UTC()},
			"status":        bson.M{"$in": bson.A{schema.StatusToVisit, schema.StatusEnRoute}},
		},
		bson.M{
			"$unset": bson.M{"scheduled_for": ""},
			"$set":   bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return 0, err
	}

	return result.ModifiedCount, nil
}

func (m *mongoDB) applyPatch(ctx context.Context, visit *schema.Visit, patch *lifecycle.Patch) (*schema.Visit, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Status != "" {
		set["status"] = patch.Status
		set["open"] = patch.Status != schema.StatusFinalized
	}
	if patch.CheckinTime != nil {
		set["checkin_time"] = patch.CheckinTime
	}
	if patch.CheckoutTime != nil {
		set["checkout_time"] = patch.CheckoutTime
	}
	if patch.CollaboratorCount != nil {
		set["collaborator_count"] = patch.CollaboratorCount
	}
	if patch.ResponsibleName != "" {
		set["responsible_name"] = patch.ResponsibleName
	}
	if patch.Summary != "" {
		set["summary"] = patch.Summary
	}
	if patch.FraudJustification != "" {
		set["fraud_justification"] = patch.FraudJustification
	}
	if patch.ScheduledFor != nil {
		set["scheduled_for"] = patch.ScheduledFor
	}

	c := m.client.Database(m.database).Collection(schema.VisitCollection)
	result, err := c.UpdateOne(ctx, bson.M{"_id": visit.ID}, bson.M{"$set": set})
	if err != nil {
		return nil, err
	}
	if result.MatchedCount == 0 {
		return nil, ErrVisitNotFound
	}

	patch.Apply(visit)
	visit.UpdatedAt = set["updated_at"].(time.Time)
	return visit, nil
}
