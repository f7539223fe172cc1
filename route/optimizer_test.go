package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rotafield/rotafield-api/geo"
	"github.com/rotafield/rotafield-api/schema"
)

var reference = geo.Coordinate{Latitude: -23.5505, Longitude: -46.6333}

func detailAt(name string, c *geo.Coordinate) schema.VisitDetail {
	poi := &schema.POI{
		ID:   primitive.NewObjectID(),
		Name: name,
	}
	if c != nil {
		poi.Coordinates = c.String()
	}
	return schema.VisitDetail{
		Visit: schema.Visit{
			ID:      primitive.NewObjectID(),
			PointID: poi.ID,
			Status:  schema.StatusToVisit,
		},
		POI: poi,
	}
}

func names(details []schema.VisitDetail) []string {
	out := make([]string, 0, len(details))
	for _, d := range details {
		out = append(out, d.POI.Name)
	}
	return out
}

func TestOptimizeOrdersByDistance(t *testing.T) {
	// V1 about 2 km out, V3 about 0.5 km, V2 has no coordinates
	v1 := detailAt("v1", &geo.Coordinate{Latitude: -23.5685, Longitude: -46.6333})
	v2 := detailAt("v2", nil)
	v3 := detailAt("v3", &geo.Coordinate{Latitude: -23.5550, Longitude: -46.6333})

	ordered := Optimize([]schema.VisitDetail{v1, v2, v3}, reference)

	assert.Equal(t, []string{"v3", "v1", "v2"}, names(ordered))
}

func TestOptimizeLeavesInputUntouched(t *testing.T) {
	v1 := detailAt("far", &geo.Coordinate{Latitude: -23.60, Longitude: -46.6333})
	v2 := detailAt("near", &geo.Coordinate{Latitude: -23.5510, Longitude: -46.6333})
	input := []schema.VisitDetail{v1, v2}

	Optimize(input, reference)

	assert.Equal(t, "far", input[0].POI.Name)
	assert.Equal(t, "near", input[1].POI.Name)
}

func TestOptimizeIsIdempotent(t *testing.T) {
	v1 := detailAt("a", &geo.Coordinate{Latitude: -23.60, Longitude: -46.6333})
	v2 := detailAt("b", nil)
	v3 := detailAt("c", &geo.Coordinate{Latitude: -23.5510, Longitude: -46.6333})
	details := []schema.VisitDetail{v1, v2, v3}

	first := Optimize(details, reference)
	second := Optimize(first, reference)

	assert.Equal(t, names(first), names(second))
}

func TestOptimizeMalformedCoordinateSortsLast(t *testing.T) {
	near := detailAt("near", &geo.Coordinate{Latitude: -23.5510, Longitude: -46.6333})
	broken := detailAt("broken", nil)
	broken.POI.Coordinates = "not-a-coordinate"

	ordered := Optimize([]schema.VisitDetail{broken, near}, reference)

	assert.Equal(t, []string{"near", "broken"}, names(ordered))
}

func TestOptimizeEmptyQueue(t *testing.T) {
	assert.Empty(t, Optimize(nil, reference))
}

func TestFindPivotMatchesNameCaseInsensitively(t *testing.T) {
	pois := []schema.POI{
		{Name: "Escola Santa Cruz", Neighborhood: "Centro", Coordinates: "-23.55, -46.63"},
		{Name: "Hospital Vida", Neighborhood: "Moema", Coordinates: "-23.60, -46.66"},
	}

	pivot, err := FindPivot(pois, "hospital")

	assert.NoError(t, err)
	assert.Equal(t, -23.60, pivot.Latitude)
}

func TestFindPivotMatchesNeighborhood(t *testing.T) {
	pois := []schema.POI{
		{Name: "Escola Santa Cruz", Neighborhood: "Vila Madalena", Coordinates: "-23.55, -46.69"},
	}

	pivot, err := FindPivot(pois, "madalena")

	assert.NoError(t, err)
	assert.Equal(t, -46.69, pivot.Longitude)
}

func TestFindPivotSkipsCoordinatelessPOI(t *testing.T) {
	pois := []schema.POI{
		{Name: "Escola Santa Cruz", Neighborhood: "Centro"},
		{Name: "Escola Nova Era", Neighborhood: "Centro", Coordinates: "-23.56, -46.64"},
	}

	pivot, err := FindPivot(pois, "escola")

	assert.NoError(t, err)
	assert.Equal(t, -23.56, pivot.Latitude)
}

func TestFindPivotNoMatch(t *testing.T) {
	pois := []schema.POI{
		{Name: "Escola Santa Cruz", Coordinates: "-23.55, -46.63"},
	}

	pivot, err := FindPivot(pois, "farmácia")

	assert.Nil(t, pivot)
	assert.Equal(t, ErrPivotNotFound, err)
}

func TestFindPivotBlankQuery(t *testing.T) {
	pivot, err := FindPivot([]schema.POI{{Name: "anything", Coordinates: "-23, -46"}}, "   ")

	assert.Nil(t, pivot)
	assert.Equal(t, ErrPivotNotFound, err)
}

func TestWithinRadiusKeepsCloseVisits(t *testing.T) {
	near := detailAt("near", &geo.Coordinate{Latitude: -23.5510, Longitude: -46.6333})
	far := detailAt("far", &geo.Coordinate{Latitude: -23.65, Longitude: -46.6333})
	unknown := detailAt("unknown", nil)

	kept := WithinRadius([]schema.VisitDetail{near, far, unknown}, reference, 2)

	assert.Equal(t, []string{"near"}, names(kept))
}

func TestWithinRadiusPreservesOrder(t *testing.T) {
	a := detailAt("a", &geo.Coordinate{Latitude: -23.5550, Longitude: -46.6333})
	b := detailAt("b", &geo.Coordinate{Latitude: -23.5510, Longitude: -46.6333})

	kept := WithinRadius([]schema.VisitDetail{a, b}, reference, 5)

	assert.Equal(t, []string{"a", "b"}, names(kept))
}
