package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rotafield/rotafield-api/geo"
	"github.com/rotafield/rotafield-api/schema"
	"github.com/rotafield/rotafield-api/store"
)

func (s *Server) addPOI(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	var body struct {
		Name         string `json:"name" binding:"required"`
		Address      string `json:"address"`
		Neighborhood string `json:"neighborhood"`
		PostalCode   string `json:"postal_code"`
		Phone        string `json:"phone"`
		Type         string `json:"type" binding:"required"`
		Coordinates  string `json:"coordinates"`
	}
	if err := c.BindJSON(&body); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorCannotParseRequest, err)
		return
	}

	poiType := schema.POIType(body.Type)
	if !poiType.Valid() {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, fmt.Errorf("unknown type %q", body.Type))
		return
	}

	poi, err := s.mongoStore.AddPOI(profile.ID, schema.POI{
		Name:         body.Name,
		Address:      body.Address,
		Neighborhood: body.Neighborhood,
		PostalCode:   body.PostalCode,
		Phone:        body.Phone,
		Type:         poiType,
		Coordinates:  body.Coordinates,
	})
	if err != nil {
		if err == geo.ErrInvalidCoordinate {
			abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
		} else {
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"poi": poi})
}

func (s *Server) listPOI(c *gin.Context) {
	filter := store.POIFilter{
		Type:       schema.POIType(c.Query("type")),
		TextSearch: c.Query("q"),
	}
	if page, err := strconv.ParseInt(c.Query("page"), 10, 64); err == nil {
		filter.Page = page
	}
	if size, err := strconv.ParseInt(c.Query("page_size"), 10, 64); err == nil {
		filter.PageSize = size
	}

	pois, total, err := s.mongoStore.ListPOI(filter)
	if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"points_of_interest": pois,
		"total":              total,
	})
}

func (s *Server) getPOI(c *gin.Context) {
	poiID, err := primitive.ObjectIDFromHex(c.Param("poiID"))
	if err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, fmt.Errorf("invalid POI ID"))
		return
	}

	poi, err := s.mongoStore.GetPOI(poiID)
	if err != nil {
		if err == store.ErrPOINotFound {
			abortWithEncoding(c, http.StatusNotFound, errorUnknownPOI)
		} else {
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"poi": poi})
}
