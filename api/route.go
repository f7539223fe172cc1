package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rotafield/rotafield-api/geo"
	"github.com/rotafield/rotafield-api/route"
	"github.com/rotafield/rotafield-api/schema"
	"github.com/rotafield/rotafield-api/store"
)

// optimizeRoute orders the requester's visible pending visits by distance
// from a reference point. The reference is either an explicit coordinate, a
// pivot query matched against the POI registry, or the Geo-Position header.
// An optional radius keeps only visits close to the reference.
func (s *Server) optimizeRoute(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	var req struct {
		Latitude   *float64 `json:"latitude"`
		Longitude  *float64 `json:"longitude"`
		PivotQuery string   `json:"pivot_query"`
		RadiusKm   *float64 `json:"radius_km"`
		AssigneeID string   `json:"assignee_id"`
	}
	if err := c.BindJSON(&req); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorCannotParseRequest, err)
		return
	}

	var ref *geo.Coordinate
	switch {
	case req.Latitude != nil && req.Longitude != nil:
		ref = &geo.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude}
	case req.PivotQuery != "":
		pois, _, err := s.mongoStore.ListPOI(store.POIFilter{})
		if err != nil {
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
			return
		}
		pivot, err := route.FindPivot(pois, req.PivotQuery)
		if err != nil {
			abortWithEncoding(c, http.StatusNotFound, errorPivotNotFound)
			return
		}
		ref = pivot
	default:
		if gp := c.GetHeader("Geo-Position"); gp != "" {
			if lat, long, err := parseGeoPosition(gp); err == nil {
				ref = &geo.Coordinate{Latitude: lat, Longitude: long}
			}
		}
	}

	if ref == nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters)
		return
	}

	filter := store.VisitFilter{Status: schema.StatusToVisit}
	if req.AssigneeID != "" {
		filter.AssigneeID = req.AssigneeID
	}

	details, err := s.visibleVisitDetails(profile, filter)
	if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	if req.RadiusKm != nil {
		details = route.WithinRadius(details, *ref, *req.RadiusKm)
	}

	c.JSON(http.StatusOK, gin.H{
		"reference": ref.String(),
		"visits":    route.Optimize(details, *ref),
	})
}
