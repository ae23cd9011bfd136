package distribution

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dispatch-portal/internal/models"
)

func newUnit(id string, rooms int, area, distance float64, difficulty int) models.Unit {
	return models.Unit{
		ID:         id,
		Name:       "Unit " + id,
		Rooms:      rooms,
		AreaM2:     area,
		DistanceKm: distance,
		Difficulty: difficulty,
		Status:     models.UnitStatusAvailable,
	}
}

func floatPtr(f float64) *float64 { return &f }

func strPtr(s string) *string { return &s }

func TestEngine_UnitScore(t *testing.T) {
	e := NewEngine()

	// 2*10 + 50*0.5 + 5*2 + 3*15 = 20 + 25 + 10 + 45
	u := newUnit("u1", 2, 50, 5, 3)
	assert.Equal(t, 100.0, e.UnitScore(u))

	// Minimal unit still carries the difficulty floor
	zero := newUnit("u2", 0, 0, 0, 1)
	assert.Equal(t, 15.0, e.UnitScore(zero))
}

func TestEngine_UnitScoreMonotonic(t *testing.T) {
	e := NewEngine()
	base := newUnit("u1", 2, 50, 5, 3)
	baseScore := e.UnitScore(base)

	moreRooms := base
	moreRooms.Rooms++
	assert.Greater(t, e.UnitScore(moreRooms), baseScore)

	moreArea := base
	moreArea.AreaM2 += 10
	assert.Greater(t, e.UnitScore(moreArea), baseScore)

	moreDistance := base
	moreDistance.DistanceKm += 1
	assert.Greater(t, e.UnitScore(moreDistance), baseScore)

	harder := base
	harder.Difficulty++
	assert.Greater(t, e.UnitScore(harder), baseScore)
}

func TestEngine_CustomWeights(t *testing.T) {
	e := NewEngineWithConfig(Weights{Rooms: 1, Area: 1, Distance: 1, Difficulty: 1}, DefaultSectorBonus)

	u := newUnit("u1", 2, 50, 5, 3)
	assert.Equal(t, 60.0, e.UnitScore(u))
}
