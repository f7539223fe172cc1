package geo

import (
	"fmt"

	"github.com/rotafield/rotafield-api/external/geoinfo"
)

var (
	ErrNoGeoInfoFound         = fmt.Errorf("no geo information found")
	ErrResolverNotInitialized = fmt.Errorf("location resolver is not initialized")
)

// LocationResolver turns a postal address into coordinates. Used to backfill
// POIs registered without a GPS fix; resolution failures leave the POI without
// coordinates rather than blocking registration.
type LocationResolver interface {
	Resolve(address string) (*Coordinate, error)
}

var defaultResolver LocationResolver

type GeocodingLocationResolver struct {
	client geoinfo.GeoInfo
}

func NewGeocodingLocationResolver(client geoinfo.GeoInfo) *GeocodingLocationResolver {
	return &GeocodingLocationResolver{
		client: client,
	}
}

func (g *GeocodingLocationResolver) Resolve(address string) (*Coordinate, error) {
	results, err := g.client.Search(address)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return nil, ErrNoGeoInfoFound
	}

	loc := results[0].Geometry.Location
	return &Coordinate{
		Latitude:  loc.Lat,
		Longitude: loc.Lng,
	}, nil
}

func SetLocationResolver(resolver LocationResolver) {
	defaultResolver = resolver
}

// ResolveAddress resolves through the process-wide resolver configured at
// startup.
func ResolveAddress(address string) (*Coordinate, error) {
	if defaultResolver == nil {
		return nil, ErrResolverNotInitialized
	}

	return defaultResolver.Resolve(address)
}
