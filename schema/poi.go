package schema

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	POICollection = "poi"
)

// POIType categorizes a point of interest.
type POIType string

const (
	POITypeSchool     POIType = "school"
	POITypeHospital   POIType = "hospital"
	POITypeUrgentCare POIType = "urgent_care"
	POITypeClinic     POIType = "clinic"
	POITypeCompany    POIType = "company"
	POITypeRetail     POIType = "retail"
	POITypeOther      POIType = "other"
)

func (t POIType) Valid() bool {
	switch t {
	case POITypeSchool, POITypeHospital, POITypeUrgentCare, POITypeClinic,
		POITypeCompany, POITypeRetail, POITypeOther:
		return true
	}
	return false
}

// POI - a physical location eligible for a sales visit. Coordinates is the
// textual "lat, lng" convention carried end to end; it may be empty when the
// place was registered without a GPS fix.
type POI struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Address      string             `bson:"address" json:"address"`
	Neighborhood string             `bson:"neighborhood" json:"neighborhood"`
	PostalCode   string             `bson:"postal_code,omitempty" json:"postal_code,omitempty"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Type         POIType            `bson:"type" json:"type"`
	Coordinates  string             `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
	CreatedBy    string             `bson:"created_by,omitempty" json:"created_by,omitempty"`
	LastVisitAt  *time.Time         `bson:"last_visit_at,omitempty" json:"last_visit_at,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
