package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"github.com/rotafield/rotafield-api/schema"
)

// accountRegister creates an authentication account with its hierarchy
// profile. Exposed behind the admin api key, not the public surface.
func (s *Server) accountRegister(c *gin.Context) {
	var req struct {
		Email     string  `json:"email" binding:"required,email"`
		Password  string  `json:"password" binding:"required,min=8"`
		FullName  string  `json:"full_name" binding:"required"`
		Role      string  `json:"role" binding:"required"`
		ManagerID *string `json:"manager_id"`
	}

	if err := c.BindJSON(&req); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorCannotParseRequest, err)
		return
	}

	role := schema.Role(req.Role)
	if !role.Valid() {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters)
		return
	}

	// sellers need a manager, nobody else carries one
	if (role == schema.RoleSeller) != (req.ManagerID != nil) {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	account, err := s.store.CreateAccount(email, req.Password)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			abortWithEncoding(c, http.StatusConflict, errorAccountTaken)
			return
		}
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	profile, err := s.mongoStore.CreateProfile(schema.Profile{
		ID:        account.ID.String(),
		Email:     email,
		FullName:  req.FullName,
		Role:      role,
		ManagerID: req.ManagerID,
	})
	if err != nil {
		// roll the account back so the email is not stranded without a profile
		if derr := s.store.DeleteAccount(email); derr != nil {
			c.Error(derr)
		}
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"account": account,
		"profile": profile,
	})
}

// profileDetail returns the requester's own profile.
func (s *Server) profileDetail(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
