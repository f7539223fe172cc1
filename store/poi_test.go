package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"googlemaps.github.io/maps"

	"github.com/rotafield/rotafield-api/external/mocks"
	"github.com/rotafield/rotafield-api/geo"
	"github.com/rotafield/rotafield-api/schema"
)

type POITestSuite struct {
	suite.Suite
	connURI       string
	testDBName    string
	mongoClient   *mongo.Client
	testDatabase  *mongo.Database
	store         MongoStore
	geoClientMock *mocks.MockGeoInfo
}

func NewPOITestSuite(connURI, dbName string) *POITestSuite {
	return &POITestSuite{
		connURI:    connURI,
		testDBName: dbName,
	}
}

func (s *POITestSuite) SetupSuite() {
	if s.connURI == "" || s.testDBName == "" {
		s.T().Fatal("invalid test suite configuration")
	}

	opts := options.Client().ApplyURI(s.connURI)
	mongoClient, err := mongo.NewClient(opts)
	if nil != err {
		s.T().Fatalf("create mongo client with error: %s", err)
	}
	ctrl := gomock.NewController(s.T())

	geoClientMock := mocks.NewMockGeoInfo(ctrl)
	geo.SetLocationResolver(geo.NewGeocodingLocationResolver(geoClientMock))

	if err = mongoClient.Connect(context.Background()); nil != err {
		s.T().Fatalf("connect mongo database with error: %s", err.Error())
	}

	s.geoClientMock = geoClientMock
	s.mongoClient = mongoClient
	s.testDatabase = mongoClient.Database(s.testDBName)
	s.store = NewMongoStore(mongoClient, s.testDBName, nil)

	// make sure the test suite is run with a clean environment
	if err := s.CleanMongoDB(); err != nil {
		s.T().Fatal(err)
	}
	schema.NewMongoDBIndexer(s.connURI, s.testDBName).IndexAll()
}

func (s *POITestSuite) CleanMongoDB() error {
	return s.testDatabase.Drop(context.Background())
}

func (s *POITestSuite) TearDownSuite() {
	geo.SetLocationResolver(nil)
}

func (s *POITestSuite) TestAddPOIWithCoordinates() {
	poi, err := s.store.AddPOI("creator-poi-test", schema.POI{
		Name:        "Escola Monte Alto",
		Type:        schema.POITypeSchool,
		Coordinates: " -23.5505 ,  -46.6333 ",
	})

	s.NoError(err)
	s.Equal("-23.5505, -46.6333", poi.Coordinates)
	s.Equal("creator-poi-test", poi.CreatedBy)

	loaded, err := s.store.GetPOI(poi.ID)
	s.NoError(err)
	s.Equal(poi.Coordinates, loaded.Coordinates)
}

func (s *POITestSuite) TestAddPOIRejectsMalformedCoordinates() {
	_, err := s.store.AddPOI("creator-poi-test", schema.POI{
		Name:        "Quebrado",
		Type:        schema.POITypeOther,
		Coordinates: "somewhere downtown",
	})

	s.Equal(geo.ErrInvalidCoordinate, err)
}

func (s *POITestSuite) TestAddPOIGeocodesMissingCoordinates() {
	var result maps.GeocodingResult
	result.Geometry.Location = maps.LatLng{Lat: -23.5614, Lng: -46.6558}

	s.geoClientMock.EXPECT().
		Search("Av. Paulista 1578, Bela Vista").
		Return([]maps.GeocodingResult{result}, nil)

	poi, err := s.store.AddPOI("creator-poi-test", schema.POI{
		Name:         "Livraria Central",
		Address:      "Av. Paulista 1578",
		Neighborhood: "Bela Vista",
		Type:         schema.POITypeRetail,
	})

	s.NoError(err)
	s.Equal("-23.5614, -46.6558", poi.Coordinates)
}

func (s *POITestSuite) TestAddPOISurvivesGeocodingFailure() {
	s.geoClientMock.EXPECT().
		Search(gomock.Any()).
		Return([]maps.GeocodingResult{}, nil)

	poi, err := s.store.AddPOI("creator-poi-test", schema.POI{
		Name:    "Sem Coordenada",
		Address: "Rua Desconhecida 1",
		Type:    schema.POITypeOther,
	})

	s.NoError(err)
	s.Empty(poi.Coordinates)
}

func (s *POITestSuite) TestListPOIByTypeAndText() {
	for _, p := range []schema.POI{
		{Name: "Hospital São Lucas", Neighborhood: "Centro", Type: schema.POITypeHospital, Coordinates: "-23.55, -46.63"},
		{Name: "Hospital Vida Nova", Neighborhood: "Moema", Type: schema.POITypeHospital, Coordinates: "-23.60, -46.66"},
		{Name: "Colégio Andrade", Neighborhood: "Centro", Type: schema.POITypeSchool, Coordinates: "-23.56, -46.64"},
	} {
		_, err := s.store.AddPOI("creator-list-test", p)
		s.NoError(err)
	}

	hospitals, total, err := s.store.ListPOI(POIFilter{Type: schema.POITypeHospital})
	s.NoError(err)
	s.Equal(int64(2), total)
	s.Len(hospitals, 2)

	centro, total, err := s.store.ListPOI(POIFilter{TextSearch: "centro"})
	s.NoError(err)
	s.Equal(int64(2), total)
	s.Len(centro, 2)

	paged, total, err := s.store.ListPOI(POIFilter{Type: schema.POITypeHospital, PageSize: 1})
	s.NoError(err)
	s.Equal(int64(2), total)
	s.Len(paged, 1)
}

func (s *POITestSuite) TestSetPOILastVisit() {
	poi, err := s.store.AddPOI("creator-poi-test", schema.POI{
		Name: "Carimbo", Type: schema.POITypeOther, Coordinates: "-23.55, -46.63",
	})
	s.NoError(err)

	stamp := time.Date(2024, 5, 10, 18, 0, 0, 0, time.UTC)
	s.NoError(s.store.SetPOILastVisit(poi.ID, stamp))

	loaded, err := s.store.GetPOI(poi.ID)
	s.NoError(err)
	s.Equal(stamp, loaded.LastVisitAt.UTC())
}

// In order for 'go test' to run this suite, we need to create
// a normal test function and pass our suite to s.Run
func TestPOITestSuite(t *testing.T) {
	connURI := os.Getenv("MONGO_CONN")
	if connURI == "" {
		t.Skip("Skip poi store tests due to missing mongodb connection")
	}
	suite.Run(t, NewPOITestSuite(connURI, "test-db"))
}
