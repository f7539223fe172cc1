package geoinfo

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"googlemaps.github.io/maps"
)

const (
	logPrefix      = "geoinfo"
	defaultTimeout = 5 * time.Second
)

// GeoInfo - interface to operate google maps
type GeoInfo interface {
	Search(address string) ([]maps.GeocodingResult, error)
}

type geoInfo struct {
	client *maps.Client
}

// Search geocodes a free-form postal address into candidate results.
func (g geoInfo) Search(address string) ([]maps.GeocodingResult, error) {
	log.WithFields(log.Fields{
		"prefix":  logPrefix,
		"address": address,
	}).Info("query geo info")

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	return g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
}

// New - new GeoInfo interface
func New(apiKey string) (GeoInfo, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		log.WithFields(log.Fields{
			"prefix": logPrefix,
			"error":  err,
		}).Error("new map client")

		return nil, err
	}

	return &geoInfo{
		client: client,
	}, nil
}
