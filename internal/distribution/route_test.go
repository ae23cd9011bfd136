package distribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch-portal/internal/models"
)

func geoUnit(id string, lat, lng float64) models.Unit {
	u := newUnit(id, 1, 20, 1, 1)
	u.Latitude = floatPtr(lat)
	u.Longitude = floatPtr(lng)
	return u
}

func TestBuildRoute_Empty(t *testing.T) {
	route := BuildRoute("a1", nil, nil)
	assert.Equal(t, "a1", route.AgentID)
	assert.Empty(t, route.Stops)
	assert.Equal(t, 0.0, route.TotalKm)
}

func TestBuildRoute_SkipsUnitsWithoutCoordinates(t *testing.T) {
	withCoords := geoUnit("u1", 0, 1)
	without := newUnit("u2", 1, 20, 1, 1)

	route := BuildRoute("a1", []models.Unit{without, withCoords}, nil)
	require.Len(t, route.Stops, 1)
	assert.Equal(t, "u1", route.Stops[0].Unit.ID)
}

func TestBuildRoute_NearestNeighborFromBase(t *testing.T) {
	// Equator points at 1, 2 and 3 degrees east, deliberately out of order
	units := []models.Unit{
		geoUnit("u2", 0, 2),
		geoUnit("u1", 0, 1),
		geoUnit("u3", 0, 3),
	}
	base := &Coordinate{Lat: 0, Lng: 0}

	route := BuildRoute("a1", units, base)
	require.Len(t, route.Stops, 3)
	assert.Equal(t, "u1", route.Stops[0].Unit.ID)
	assert.Equal(t, "u2", route.Stops[1].Unit.ID)
	assert.Equal(t, "u3", route.Stops[2].Unit.ID)

	// Each leg is one degree of longitude at the equator
	for _, stop := range route.Stops {
		assert.InDelta(t, 111.19, stop.LegKm, 0.5)
	}
}

func TestBuildRoute_NoBaseStartsAtSmallestID(t *testing.T) {
	units := []models.Unit{
		geoUnit("u2", 0, 2),
		geoUnit("u1", 0, 1),
		geoUnit("u3", 0, 3),
	}

	route := BuildRoute("a1", units, nil)
	require.Len(t, route.Stops, 3)

	// Smallest ID starts the route with a free first leg, regardless of the
	// order units arrive in
	assert.Equal(t, "u1", route.Stops[0].Unit.ID)
	assert.Equal(t, 0.0, route.Stops[0].LegKm)
	assert.Equal(t, "u2", route.Stops[1].Unit.ID)
	assert.Equal(t, "u3", route.Stops[2].Unit.ID)
}

func TestBuildRoute_TotalEqualsSumOfLegs(t *testing.T) {
	units := []models.Unit{
		geoUnit("u1", 48.85, 2.35),
		geoUnit("u2", 48.87, 2.30),
		geoUnit("u3", 48.80, 2.40),
		geoUnit("u4", 48.90, 2.25),
	}
	base := &Coordinate{Lat: 48.86, Lng: 2.34}

	route := BuildRoute("a1", units, base)
	require.Len(t, route.Stops, 4)

	var sum float64
	for _, stop := range route.Stops {
		sum += stop.LegKm
	}
	assert.InDelta(t, sum, route.TotalKm, 1e-9)
}
