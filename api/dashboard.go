package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rotafield/rotafield-api/stats"
	"github.com/rotafield/rotafield-api/store"
)

// dashboard rolls up the requester's visible visits and sales.
func (s *Server) dashboard(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	details, err := s.visibleVisitDetails(profile, store.VisitFilter{})
	if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	sellerIDs, err := s.visibleSellerIDs(profile)
	if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	customers, err := s.store.ListCustomers(sellerIDs)
	if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	now := time.Now()
	c.JSON(http.StatusOK, gin.H{
		"visits": stats.Summarize(details, now),
		"sales":  stats.SummarizeSales(customers, now),
	})
}
