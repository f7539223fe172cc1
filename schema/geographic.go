package schema

const (
	GeographicCollection = "geographic"
)

// Geographic is one recorded device fix, appended as profiles report their
// position. The profile itself carries only the latest fix.
type Geographic struct {
	ProfileID string  `bson:"profile_id"`
	Location  GeoJSON `bson:"location"`
	Timestamp int64   `bson:"ts"`
}
