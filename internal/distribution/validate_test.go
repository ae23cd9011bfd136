package distribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUnit(t *testing.T) {
	ok := newUnit("u1", 2, 50, 5, 3)
	assert.NoError(t, ValidateUnit(ok))

	withCoords := ok
	withCoords.Latitude = floatPtr(48.85)
	withCoords.Longitude = floatPtr(2.35)
	assert.NoError(t, ValidateUnit(withCoords))

	negRooms := ok
	negRooms.Rooms = -1
	assert.Error(t, ValidateUnit(negRooms))

	negArea := ok
	negArea.AreaM2 = -0.5
	assert.Error(t, ValidateUnit(negArea))

	negDistance := ok
	negDistance.DistanceKm = -3
	assert.Error(t, ValidateUnit(negDistance))

	diffLow := ok
	diffLow.Difficulty = 0
	assert.Error(t, ValidateUnit(diffLow))

	diffHigh := ok
	diffHigh.Difficulty = 6
	assert.Error(t, ValidateUnit(diffHigh))

	halfCoord := ok
	halfCoord.Longitude = floatPtr(2.35)
	assert.Error(t, ValidateUnit(halfCoord))
}
