package api

import (
	"net/http"

	"github.com/RichardKnop/machinery/v1/tasks"
	"github.com/gin-gonic/gin"
)

// enqueueLastVisitSync hands the point's last-visit stamp to the background
// worker. Best effort: a broken broker never fails the finalize.
func (s *Server) enqueueLastVisitSync(c *gin.Context, visitID string) {
	if s.background == nil {
		return
	}

	if _, err := s.background.SendTask(&tasks.Signature{
		Name: "sync_poi_last_visit",
		Args: []tasks.Arg{
			{Type: "string", Value: visitID},
		},
	}); err != nil {
		c.Error(err)
	}
}

// enqueueDeferralSweep pushes an immediate deferral sweep ahead of the
// worker's fixed schedule.
func (s *Server) enqueueDeferralSweep(c *gin.Context) {
	if s.background == nil {
		abortWithEncoding(c, http.StatusServiceUnavailable, errorInternalServer)
		return
	}

	if _, err := s.background.SendTask(&tasks.Signature{Name: "sweep_overdue_deferrals"}); err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"result": "ok"})
}
