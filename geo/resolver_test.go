package geo

import (
	"fmt"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"googlemaps.github.io/maps"

	"github.com/rotafield/rotafield-api/external/mocks"
)

func geocodingResult(lat, lng float64) maps.GeocodingResult {
	var r maps.GeocodingResult
	r.Geometry.Location = maps.LatLng{Lat: lat, Lng: lng}
	return r
}

func TestGeocodingLocationResolver(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockGeoInfo(ctrl)
	client.EXPECT().
		Search("Av. Paulista 1578, Bela Vista").
		Return([]maps.GeocodingResult{geocodingResult(-23.5614, -46.6558)}, nil)

	r := NewGeocodingLocationResolver(client)
	c, err := r.Resolve("Av. Paulista 1578, Bela Vista")

	assert.NoError(t, err)
	assert.Equal(t, -23.5614, c.Latitude)
	assert.Equal(t, -46.6558, c.Longitude)
}

func TestGeocodingLocationResolverNoResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockGeoInfo(ctrl)
	client.EXPECT().
		Search("nowhere at all").
		Return([]maps.GeocodingResult{}, nil)

	r := NewGeocodingLocationResolver(client)
	c, err := r.Resolve("nowhere at all")

	assert.Nil(t, c)
	assert.Equal(t, ErrNoGeoInfoFound, err)
}

func TestGeocodingLocationResolverClientError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockGeoInfo(ctrl)
	client.EXPECT().
		Search(gomock.Any()).
		Return(nil, fmt.Errorf("quota exceeded"))

	r := NewGeocodingLocationResolver(client)
	c, err := r.Resolve("Av. Paulista 1578")

	assert.Nil(t, c)
	assert.EqualError(t, err, "quota exceeded")
}

func TestResolveAddressWithoutResolver(t *testing.T) {
	SetLocationResolver(nil)

	c, err := ResolveAddress("Av. Paulista 1578")

	assert.Nil(t, c)
	assert.Equal(t, ErrResolverNotInitialized, err)
}

func TestResolveAddressThroughDefaultResolver(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockGeoInfo(ctrl)
	client.EXPECT().
		Search("Rua Augusta 500").
		Return([]maps.GeocodingResult{geocodingResult(-23.5530, -46.6477)}, nil)

	SetLocationResolver(NewGeocodingLocationResolver(client))
	defer SetLocationResolver(nil)

	c, err := ResolveAddress("Rua Augusta 500")

	assert.NoError(t, err)
	assert.Equal(t, "-23.553, -46.6477", c.String())
}
