package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rotafield/rotafield-api/hierarchy"
	"github.com/rotafield/rotafield-api/schema"
	"github.com/rotafield/rotafield-api/store"
)

// addCustomer captures a sale. Sellers record against themselves; managers
// may record on behalf of their team.
func (s *Server) addCustomer(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	var body schema.Customer
	if err := c.BindJSON(&body); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorCannotParseRequest, err)
		return
	}
	if body.FullName == "" {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, fmt.Errorf("full name is required"))
		return
	}

	if body.SellerID == "" {
		body.SellerID = profile.ID
	}
	if body.SellerID != profile.ID {
		seller, err := s.mongoStore.GetProfileByID(body.SellerID)
		if err != nil {
			abortWithEncoding(c, http.StatusBadRequest, errorAccountNotFound)
			return
		}
		if err := hierarchy.CanTarget(hierarchy.ActorFromProfile(*profile), *seller); err != nil {
			abortWithEncoding(c, http.StatusForbidden, errorDistributionDenied, err)
			return
		}
	}

	customer, err := s.store.CreateCustomer(body)
	if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// listCustomers scopes the sales list by the requester's position: sellers
// see their own captures, managers their team's, admin everything.
func (s *Server) listCustomers(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
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

	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

// visibleSellerIDs resolves which sellers' captures the requester may read.
// An empty slice means unrestricted.
func (s *Server) visibleSellerIDs(profile *schema.Profile) ([]string, error) {
	switch profile.Role {
	case schema.RoleAdmin:
		return nil, nil
	case schema.RoleSeller:
		return []string{profile.ID}, nil
	}

	sellers, err := s.mongoStore.ListProfiles(store.ProfileFilter{
		Role:      schema.RoleSeller,
		ManagerID: profile.ID,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(sellers)+1)
	ids = append(ids, profile.ID)
	for _, seller := range sellers {
		ids = append(ids, seller.ID)
	}
	return ids, nil
}

func (s *Server) updateCustomer(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	customerID, err := uuid.Parse(c.Param("customerID"))
	if err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, fmt.Errorf("invalid customer ID"))
		return
	}

	existing, ok := s.loadEditableCustomer(c, profile, customerID)
	if !ok {
		return
	}

	var body schema.Customer
	if err := c.BindJSON(&body); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorCannotParseRequest, err)
		return
	}

	body.ID = existing.ID
	body.SellerID = existing.SellerID
	body.Status = existing.Status

	if err := s.store.UpdateCustomer(body); err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": "OK"})
}

func (s *Server) enrollCustomer(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	customerID, err := uuid.Parse(c.Param("customerID"))
	if err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, fmt.Errorf("invalid customer ID"))
		return
	}

	if _, ok := s.loadEditableCustomer(c, profile, customerID); !ok {
		return
	}

	if err := s.store.EnrollCustomer(customerID); err != nil {
		if err == store.ErrCustomerNotFound {
			abortWithEncoding(c, http.StatusConflict, errorUnknownCustomer)
		} else {
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": "OK"})
}

// loadEditableCustomer fetches a customer and enforces the hierarchy on it.
func (s *Server) loadEditableCustomer(c *gin.Context, profile *schema.Profile, customerID uuid.UUID) (*schema.Customer, bool) {
	customer, err := s.store.GetCustomer(customerID)
	if err != nil {
		if err == store.ErrCustomerNotFound {
			abortWithEncoding(c, http.StatusNotFound, errorUnknownCustomer)
		} else {
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		}
		return nil, false
	}

	if profile.Role == schema.RoleAdmin || customer.SellerID == profile.ID {
		return customer, true
	}

	sellerIDs, err := s.visibleSellerIDs(profile)
	if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return nil, false
	}
	for _, id := range sellerIDs {
		if id == customer.SellerID {
			return customer, true
		}
	}

	abortWithEncoding(c, http.StatusForbidden, errorVisitNotVisible)
	return nil, false
}
