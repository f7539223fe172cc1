package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestEnqueueDeferralSweepWithoutBroker(t *testing.T) {
	gin.SetMode(gin.TestMode)

	s := &Server{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/secret/tasks/sweep-deferrals", nil)

	s.enqueueDeferralSweep(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
