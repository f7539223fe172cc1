package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rotafield/rotafield-api/geo"
	"github.com/rotafield/rotafield-api/hierarchy"
	"github.com/rotafield/rotafield-api/lifecycle"
	"github.com/rotafield/rotafield-api/schema"
	"github.com/rotafield/rotafield-api/store"
	"github.com/rotafield/rotafield-api/utils"
)

// statusLabels localizes the four status names for list views.
func statusLabels(lang string) map[string]string {
	loc := utils.NewLocalizer(lang)

	labels := make(map[string]string)
	for _, status := range []schema.VisitStatus{
		schema.StatusToVisit, schema.StatusEnRoute, schema.StatusVisited, schema.StatusFinalized,
	} {
		if name, err := loc.Localize(&i18n.LocalizeConfig{
			MessageID: fmt.Sprintf("statuses.%s.name", status),
		}); err == nil {
			labels[string(status)] = name
		}
	}
	return labels
}

// visibleVisitDetails loads the visit details the requester may see.
func (s *Server) visibleVisitDetails(profile *schema.Profile, filter store.VisitFilter) ([]schema.VisitDetail, error) {
	actor := hierarchy.ActorFromProfile(*profile)

	if actor.Role == schema.RoleSeller {
		filter.AssigneeID = actor.ID
	}

	details, err := s.mongoStore.ListVisitDetails(filter)
	if err != nil {
		return nil, err
	}

	return hierarchy.VisibleVisits(actor, details), nil
}

func (s *Server) listVisits(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	filter := store.VisitFilter{
		Status: schema.VisitStatus(c.Query("status")),
	}
	if assignee := c.Query("assignee_id"); assignee != "" {
		filter.AssigneeID = assignee
	}

	details, err := s.visibleVisitDetails(profile, filter)
	if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	if managerID := c.Query("manager_id"); managerID != "" && profile.Role == schema.RoleAdmin {
		details = hierarchy.FilterByManager(details, managerID)
	}

	c.JSON(http.StatusOK, gin.H{
		"visits": details,
		"labels": statusLabels(c.GetHeader("Accept-Language")),
	})
}

// loadVisibleVisit fetches one visit and enforces the hierarchy on it.
func (s *Server) loadVisibleVisit(c *gin.Context, profile *schema.Profile) (*schema.VisitDetail, bool) {
	visitID, err := primitive.ObjectIDFromHex(c.Param("visitID"))
	if err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, fmt.Errorf("invalid visit ID"))
		return nil, false
	}

	visit, err := s.mongoStore.GetVisit(visitID)
	if err != nil {
		if err == store.ErrVisitNotFound {
			abortWithEncoding(c, http.StatusNotFound, errorUnknownVisit)
		} else {
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		}
		return nil, false
	}

	detail := schema.VisitDetail{Visit: *visit}

	if assignee, err := s.mongoStore.GetProfileByID(visit.AssigneeID); err == nil {
		detail.Assignee = assignee
	}
	if poi, err := s.mongoStore.GetPOI(visit.PointID); err == nil {
		detail.POI = poi
	}

	if !hierarchy.CanSee(hierarchy.ActorFromProfile(*profile), detail) {
		abortWithEncoding(c, http.StatusForbidden, errorVisitNotVisible)
		return nil, false
	}

	return &detail, true
}

func (s *Server) getVisit(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	detail, ok := s.loadVisibleVisit(c, profile)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"visit": detail})
}

func (s *Server) addVisit(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	var req struct {
		PointID    string `json:"point_id" binding:"required"`
		AssigneeID string `json:"assignee_id"`
	}
	if err := c.BindJSON(&req); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorCannotParseRequest, err)
		return
	}

	pointID, err := primitive.ObjectIDFromHex(req.PointID)
	if err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, fmt.Errorf("invalid point ID"))
		return
	}

	assigneeID := req.AssigneeID
	if assigneeID == "" {
		assigneeID = profile.ID
	}
	if assigneeID != profile.ID {
		target, err := s.mongoStore.GetProfileByID(assigneeID)
		if err != nil {
			abortWithEncoding(c, http.StatusBadRequest, errorAccountNotFound)
			return
		}
		if err := hierarchy.CanTarget(hierarchy.ActorFromProfile(*profile), *target); err != nil {
			abortWithEncoding(c, http.StatusForbidden, errorDistributionDenied, err)
			return
		}
	}

	if _, err := s.mongoStore.GetPOI(pointID); err != nil {
		if err == store.ErrPOINotFound {
			abortWithEncoding(c, http.StatusBadRequest, errorUnknownPOI)
		} else {
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		}
		return
	}

	visit, err := s.mongoStore.AddVisit(schema.Visit{
		PointID:    pointID,
		AssigneeID: assigneeID,
	})
	if err != nil {
		if err == store.ErrOpenVisitExists {
			abortWithEncoding(c, http.StatusConflict, errorOpenVisitExists)
		} else {
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"visit": visit})
}

// transitionVisit advances a visit one step along its lifecycle. The request
// carries the target status plus the fields that transition needs.
func (s *Server) transitionVisit(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	detail, ok := s.loadVisibleVisit(c, profile)
	if !ok {
		return
	}

	var req struct {
		Status             string   `json:"status" binding:"required"`
		NavigationProvider string   `json:"navigation_provider"`
		Latitude           *float64 `json:"latitude"`
		Longitude          *float64 `json:"longitude"`
		Justification      string   `json:"justification"`
		CollaboratorCount  *int     `json:"collaborator_count"`
		ResponsibleName    string   `json:"responsible_name"`
		Summary            string   `json:"summary"`
	}
	if err := c.BindJSON(&req); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorCannotParseRequest, err)
		return
	}

	target := schema.VisitStatus(req.Status)

	var payload lifecycle.Payload
	switch target {
	case schema.StatusEnRoute:
		payload = lifecycle.CheckinPayload{NavigationProvider: req.NavigationProvider}
	case schema.StatusVisited:
		arrival := lifecycle.ArrivalPayload{Justification: req.Justification}
		if req.Latitude != nil && req.Longitude != nil {
			arrival.Fix = &geo.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude}
		} else if gp := c.GetHeader("Geo-Position"); gp != "" {
			if lat, long, err := parseGeoPosition(gp); err == nil {
				arrival.Fix = &geo.Coordinate{Latitude: lat, Longitude: long}
			}
		}
		payload = arrival
	case schema.StatusFinalized:
		payload = lifecycle.FinalizePayload{
			CollaboratorCount: req.CollaboratorCount,
			ResponsibleName:   req.ResponsibleName,
			Summary:           req.Summary,
		}
	default:
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, fmt.Errorf("unknown status %q", req.Status))
		return
	}

	visit, err := s.mongoStore.TransitionVisit(detail.ID, target, payload)
	if err != nil {
		switch e := err.(type) {
		case *lifecycle.ValidationError:
			abortWithEncoding(c, http.StatusBadRequest, errorInvalidTransition, e)
		case *lifecycle.ConflictError:
			abortWithEncoding(c, http.StatusConflict, errorActiveRouteExists, e)
		case *lifecycle.GeofenceError:
			c.Error(e)
			c.JSON(http.StatusConflict, gin.H{
				"code":         errorGeofenceViolation.Code,
				"message":      errorGeofenceViolation.Message,
				"distance_km":  e.DistanceKm,
				"threshold_km": e.ThresholdKm,
			})
			c.Abort()
		default:
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		}
		return
	}

	if visit.Status == schema.StatusFinalized {
		s.enqueueLastVisitSync(c, visit.ID.Hex())
	}

	c.JSON(http.StatusOK, gin.H{"visit": visit})
}

func (s *Server) deferVisit(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	detail, ok := s.loadVisibleVisit(c, profile)
	if !ok {
		return
	}

	var req struct {
		ScheduledFor time.Time `json:"scheduled_for" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorCannotParseRequest, err)
		return
	}

	visit, err := s.mongoStore.DeferVisit(detail.ID, req.ScheduledFor)
	if err != nil {
		if _, ok := err.(*lifecycle.ValidationError); ok {
			abortWithEncoding(c, http.StatusBadRequest, errorInvalidTransition, err)
		} else {
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"visit": visit})
}

// visitFeed streams reload signals over SSE. Clients reload their visit list
// on every event instead of patching state incrementally.
func (s *Server) visitFeed(c *gin.Context) {
	if _, ok := currentProfile(c); !ok {
		return
	}

	events, err := s.mongoStore.WatchVisits(c.Request.Context())
	if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	c.Stream(func(w io.Writer) bool {
		select {
		case _, open := <-events:
			if !open {
				return false
			}
			c.SSEvent("reload", gin.H{"ts": time.Now().Unix()})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
