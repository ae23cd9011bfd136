package distribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine_OneDegreeAtEquator(t *testing.T) {
	d := Haversine(Coordinate{Lat: 0, Lng: 0}, Coordinate{Lat: 0, Lng: 1})
	assert.InDelta(t, 111.19, d, 0.5)
}

func TestHaversine_SamePoint(t *testing.T) {
	p := Coordinate{Lat: 48.8566, Lng: 2.3522}
	assert.Equal(t, 0.0, Haversine(p, p))
}

func TestHaversine_Symmetric(t *testing.T) {
	paris := Coordinate{Lat: 48.8566, Lng: 2.3522}
	lyon := Coordinate{Lat: 45.7640, Lng: 4.8357}

	ab := Haversine(paris, lyon)
	ba := Haversine(lyon, paris)

	assert.InDelta(t, ab, ba, 1e-9)
	// Paris-Lyon is roughly 390 km as the crow flies
	assert.InDelta(t, 392, ab, 10)
}
