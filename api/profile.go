package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rotafield/rotafield-api/hierarchy"
	"github.com/rotafield/rotafield-api/schema"
	"github.com/rotafield/rotafield-api/store"
)

// listProfiles returns the roster the requester may see. Sellers get nothing
// here; managers get their own team, admin the whole seller pool or any role
// via the role query.
func (s *Server) listProfiles(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	actor := hierarchy.ActorFromProfile(*profile)

	filter := store.ProfileFilter{Role: schema.RoleSeller}
	if role := schema.Role(c.Query("role")); role.Valid() && profile.Role == schema.RoleAdmin {
		filter.Role = role
	}

	profiles, err := s.mongoStore.ListProfiles(filter)
	if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	if filter.Role == schema.RoleSeller {
		profiles = hierarchy.VisibleSellers(actor, profiles)
	}

	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// listProfilePositions returns the tracked position history of one seller.
func (s *Server) listProfilePositions(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	profileID := c.Param("profileID")

	target, err := s.mongoStore.GetProfileByID(profileID)
	if err != nil {
		if err == store.ErrProfileNotFound {
			abortWithEncoding(c, http.StatusNotFound, errorAccountNotFound)
		} else {
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		}
		return
	}

	visible := hierarchy.VisibleSellers(hierarchy.ActorFromProfile(*profile), []schema.Profile{*target})
	if profileID != profile.ID && len(visible) == 0 {
		abortWithEncoding(c, http.StatusForbidden, errorVisitNotVisible)
		return
	}

	limit := int64(100)
	if l, err := strconv.ParseInt(c.Query("limit"), 10, 64); err == nil && l > 0 {
		limit = l
	}

	earlier := time.Now().Unix() + 1
	if e, err := strconv.ParseInt(c.Query("earlier"), 10, 64); err == nil {
		earlier = e
	}

	positions, err := s.mongoStore.ListProfilePositions(profileID, limit, earlier)
	if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"positions": positions})
}

// setProfileActive toggles an actor on or off. Admin only.
func (s *Server) setProfileActive(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	if profile.Role != schema.RoleAdmin {
		abortWithEncoding(c, http.StatusForbidden, errorDistributionDenied)
		return
	}

	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorCannotParseRequest, err)
		return
	}

	if err := s.mongoStore.SetProfileActive(c.Param("profileID"), *req.Active); err != nil {
		if err == store.ErrProfileNotFound {
			abortWithEncoding(c, http.StatusNotFound, errorAccountNotFound)
		} else {
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": "OK"})
}
