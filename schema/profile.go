package schema

import (
	"time"
)

const (
	ProfileCollection = "profile"
)

// Role is the position of an actor in the three-tier sales hierarchy.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleSeller  Role = "seller"
)

// Valid reports whether a role is one of the three known tiers.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleSeller:
		return true
	}
	return false
}

// GeoJSON - mongo location format
type GeoJSON struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// ActivityState tracks the last thing we heard from a profile's device.
type ActivityState struct {
	LastActiveTime time.Time `bson:"last_active_time" json:"last_active_time"`
	LastLocation   *GeoJSON  `bson:"last_location,omitempty" json:"last_location,omitempty"`
	LastFixTime    time.Time `bson:"last_fix_time,omitempty" json:"last_fix_time,omitempty"`
}

// Profile - a field-sales actor: admin, manager or seller. Sellers point to
// their manager; managers are peers under admin.
type Profile struct {
	ID        string        `bson:"id" json:"id"`
	Email     string        `bson:"email" json:"email"`
	FullName  string        `bson:"full_name" json:"full_name"`
	Role      Role          `bson:"role" json:"role"`
	ManagerID *string       `bson:"manager_id,omitempty" json:"manager_id,omitempty"`
	IsActive  bool          `bson:"is_active" json:"is_active"`
	State     ActivityState `bson:"state" json:"state"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at" json:"updated_at"`
}
