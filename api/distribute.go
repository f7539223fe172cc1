package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rotafield/rotafield-api/hierarchy"
	"github.com/rotafield/rotafield-api/schema"
	"github.com/rotafield/rotafield-api/store"
)

// distributeRoutes hands a batch of points to a target in the requester's
// reach. Partial failures report how many points landed before the error.
func (s *Server) distributeRoutes(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	var req struct {
		PointIDs []string `json:"point_ids" binding:"required"`
		TargetID string   `json:"target_id" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorCannotParseRequest, err)
		return
	}

	target, err := s.mongoStore.GetProfileByID(req.TargetID)
	if err != nil {
		if err == store.ErrProfileNotFound {
			abortWithEncoding(c, http.StatusBadRequest, errorAccountNotFound)
		} else {
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		}
		return
	}

	if err := hierarchy.CanTarget(hierarchy.ActorFromProfile(*profile), *target); err != nil {
		abortWithEncoding(c, http.StatusForbidden, errorDistributionDenied, err)
		return
	}

	pointIDs := make([]primitive.ObjectID, 0, len(req.PointIDs))
	for _, raw := range req.PointIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, fmt.Errorf("invalid point ID %q", raw))
			return
		}
		pointIDs = append(pointIDs, id)
	}

	assigned, err := s.mongoStore.Distribute(pointIDs, target.ID)
	if err != nil {
		if err == store.ErrNothingToDistribute {
			abortWithEncoding(c, http.StatusBadRequest, errorNothingToDistribute)
			return
		}
		if err == store.ErrUnknownDistributionPoint {
			abortWithEncoding(c, http.StatusBadRequest, errorUnknownPOI, err)
			return
		}
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":     errorInternalServer.Code,
			"message":  errorInternalServer.Message,
			"assigned": assigned,
		})
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{"assigned": assigned})
}

// transferTeam moves one manager's sellers under another manager. Admin only.
func (s *Server) transferTeam(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	if err := hierarchy.CanTransferTeam(hierarchy.ActorFromProfile(*profile)); err != nil {
		abortWithEncoding(c, http.StatusForbidden, errorDistributionDenied, err)
		return
	}

	var req struct {
		FromManagerID string `json:"from_manager_id" binding:"required"`
		ToManagerID   string `json:"to_manager_id" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorCannotParseRequest, err)
		return
	}

	for _, id := range []string{req.FromManagerID, req.ToManagerID} {
		manager, err := s.mongoStore.GetProfileByID(id)
		if err != nil {
			abortWithEncoding(c, http.StatusBadRequest, errorAccountNotFound, err)
			return
		}
		if manager.Role != schema.RoleManager {
			abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, fmt.Errorf("%s is not a manager", id))
			return
		}
	}

	moved, err := s.mongoStore.TransferTeam(req.FromManagerID, req.ToManagerID)
	if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"moved": moved})
}
