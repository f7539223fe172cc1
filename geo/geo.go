package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EarthRadiusKm - mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371

var ErrInvalidCoordinate = fmt.Errorf("invalid coordinate string")

// Coordinate is a pair of decimal-degree coordinates.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// String renders the coordinate in the "lat, lng" convention used across the
// system. It round-trips through Parse without precision loss beyond the
// standard decimal representation of float64.
func (c Coordinate) String() string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + ", " +
		strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

// Parse reads a "lat, lng" string into a Coordinate. It tolerates surrounding
// whitespace on either component. Malformed input yields ErrInvalidCoordinate;
// callers must treat the distance as unknown in that case, not zero.
func Parse(s string) (*Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, ErrInvalidCoordinate
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, ErrInvalidCoordinate
	}

	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, ErrInvalidCoordinate
	}

	return &Coordinate{Latitude: lat, Longitude: lng}, nil
}

// Distance returns the great-circle distance between two coordinates in
// kilometers, by the haversine formula. Symmetric within floating-point
// tolerance.
func Distance(a, b Coordinate) float64 {
	dLat := (b.Latitude - a.Latitude) * (math.Pi / 180)
	dLng := (b.Longitude - a.Longitude) * (math.Pi / 180)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Latitude*(math.Pi/180))*
			math.Cos(b.Latitude*(math.Pi/180))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}
