package api

import (
	"context"
	"crypto/rsa"
	"net/http"
	"time"

	"github.com/RichardKnop/machinery/v1"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/rotafield/rotafield-api/logmodule"
	"github.com/rotafield/rotafield-api/store"
)

var log *logrus.Entry

func init() {
	log = logrus.WithField("prefix", "gin")
}

// Server to run a http server instance
type Server struct {
	// Server instance
	server *http.Server

	// Stores
	store      store.RotafieldCore
	mongoStore store.MongoStore

	// JWT private key
	jwtPrivateKey *rsa.PrivateKey

	// job pool enqueuer
	background *machinery.Server
}

// NewServer new instance of server
func NewServer(
	ormDB *gorm.DB,
	mongoStore store.MongoStore,
	jwtKey *rsa.PrivateKey,
	background *machinery.Server) *Server {
	return &Server{
		store:         store.NewRotafieldStore(ormDB, mongoStore),
		mongoStore:    mongoStore,
		jwtPrivateKey: jwtKey,
		background:    background,
	}
}

// Run to run the server
func (s *Server) Run(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.setupRouter(),
	}

	return s.server.ListenAndServe()
}

func (s *Server) setupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         10 * time.Second,
	}))
	r.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Accept-Language", "Geo-Position"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		AllowAllOrigins:  true,
		MaxAge:           12 * time.Hour,
	}))

	apiRoute := r.Group("/api")
	apiRoute.Use(logmodule.Ginrus("API"))

	apiRoute.POST("/auth", s.requestJWT)

	// api route other than `/auth` will apply the following middleware
	apiRoute.Use(s.authMiddleware())
	apiRoute.Use(s.recognizeProfileMiddleware())
	apiRoute.Use(s.updateGeoPositionMiddleware)

	profileRoute := apiRoute.Group("/profiles")
	{
		profileRoute.GET("/me", s.profileDetail)
		profileRoute.GET("", s.listProfiles)
		profileRoute.GET("/:profileID/positions", s.listProfilePositions)
		profileRoute.PATCH("/:profileID/active", s.setProfileActive)
	}

	poiRoute := apiRoute.Group("/points-of-interest")
	{
		poiRoute.POST("", s.addPOI)
		poiRoute.GET("", s.listPOI)
		poiRoute.GET("/:poiID", s.getPOI)
	}

	visitRoute := apiRoute.Group("/visits")
	{
		visitRoute.GET("/feed", s.visitFeed)
		visitRoute.GET("", s.listVisits)
		visitRoute.GET("/:visitID", s.getVisit)
		visitRoute.POST("", s.addVisit)
		visitRoute.PATCH("/:visitID", s.transitionVisit)
		visitRoute.PUT("/:visitID/defer", s.deferVisit)
	}

	routeRoute := apiRoute.Group("/routes")
	{
		routeRoute.POST("/optimize", s.optimizeRoute)
	}

	distributeRoute := apiRoute.Group("/distributions")
	{
		distributeRoute.POST("", s.distributeRoutes)
	}

	teamRoute := apiRoute.Group("/teams")
	{
		teamRoute.POST("/transfer", s.transferTeam)
	}

	customerRoute := apiRoute.Group("/customers")
	{
		customerRoute.POST("", s.addCustomer)
		customerRoute.GET("", s.listCustomers)
		customerRoute.PATCH("/:customerID", s.updateCustomer)
		customerRoute.POST("/:customerID/enroll", s.enrollCustomer)
	}

	apiRoute.GET("/dashboard", s.dashboard)

	secretRoute := r.Group("/secret")
	secretRoute.Use(logmodule.Ginrus("Secret"))
	secretRoute.Use(s.apikeyAuthentication(viper.GetString("server.apikey.admin")))
	{
		secretRoute.POST("/accounts", s.accountRegister)
		secretRoute.POST("/tasks/sweep-deferrals", s.enqueueDeferralSweep)
	}

	r.GET("/healthz", s.healthz)

	return r
}

// Shutdown to shutdown the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// shouldInterupt sends error message and determine if it should interupt the current flow
func shouldInterupt(err error, c *gin.Context) bool {
	if err == nil {
		return false
	}

	log.Error(err)
	abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer)
	return true
}

func (s *Server) healthz(c *gin.Context) {
	// Ping db
	err := s.store.Ping()
	if shouldInterupt(err, c) {
		return
	}

	if err := s.mongoStore.Ping(); shouldInterupt(err, c) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"version": viper.GetString("server.version"),
	})
}

func responseWithEncoding(c *gin.Context, code int, obj ErrorResponse) {
	acceptEncoding := c.GetHeader("Accept-Encoding")
	switch acceptEncoding {
	default:
		c.JSON(code, obj)
	}
}

func abortWithEncoding(c *gin.Context, code int, obj ErrorResponse, errors ...error) {
	for _, err := range errors {
		c.Error(err)
	}
	responseWithEncoding(c, code, obj)
	c.Abort()
}
