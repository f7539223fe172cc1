package schema

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	VisitCollection = "visit"
)

// VisitStatus is one stop in the linear visit lifecycle.
type VisitStatus string

const (
	StatusToVisit   VisitStatus = "to_visit"
	StatusEnRoute   VisitStatus = "en_route"
	StatusVisited   VisitStatus = "visited"
	StatusFinalized VisitStatus = "finalized"
)

func (s VisitStatus) Valid() bool {
	switch s {
	case StatusToVisit, StatusEnRoute, StatusVisited, StatusFinalized:
		return true
	}
	return false
}

// Visit - one assignee's engagement with one POI. A POI holds at most one
// non-finalized visit at a time; reassignment overwrites the open row and
// restarts its lifecycle. The redundant open flag exists so a partial unique
// index can guard the one-open-visit-per-POI invariant; the store keeps it in
// sync with Status.
type Visit struct {
	ID                 primitive.ObjectID `bson:"_id" json:"id"`
	PointID            primitive.ObjectID `bson:"point_id" json:"point_id"`
	AssigneeID         string             `bson:"user_id" json:"user_id"`
	Status             VisitStatus        `bson:"status" json:"status"`
	Open               bool               `bson:"open" json:"-"`
	CollaboratorCount  *int               `bson:"collaborator_count,omitempty" json:"collaborator_count,omitempty"`
	CheckinTime        *time.Time         `bson:"checkin_time,omitempty" json:"checkin_time,omitempty"`
	CheckoutTime       *time.Time         `bson:"checkout_time,omitempty" json:"checkout_time,omitempty"`
	ScheduledFor       *time.Time         `bson:"scheduled_for,omitempty" json:"scheduled_for,omitempty"`
	ResponsibleName    string             `bson:"responsible_name,omitempty" json:"responsible_name,omitempty"`
	Summary            string             `bson:"summary,omitempty" json:"summary,omitempty"`
	FraudJustification string             `bson:"fraud_justification,omitempty" json:"fraud_justification,omitempty"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updated_at"`
}

// VisitDetail is a visit joined with its POI and assignee profile, the shape
// handed to the board, the optimizer and the visibility filter.
type VisitDetail struct {
	Visit    `bson:",inline"`
	POI      *POI     `bson:"poi,omitempty" json:"poi,omitempty"`
	Assignee *Profile `bson:"assignee,omitempty" json:"assignee,omitempty"`
}
