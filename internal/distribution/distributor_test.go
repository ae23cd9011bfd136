package distribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch-portal/internal/models"
)

func TestEngine_DistributeNothingToAssign(t *testing.T) {
	e := NewEngine()

	assigned := newUnit("u1", 2, 50, 5, 3)
	assigned.AgentID = strPtr("a1")
	assigned.Status = models.UnitStatusAssigned

	inactive := newUnit("u2", 1, 20, 2, 1)
	inactive.Status = models.UnitStatusInactive

	result, err := e.Distribute([]models.Unit{assigned, inactive}, []models.Agent{{ID: "a1"}})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNothingToAssign, result.Outcome)
	assert.Empty(t, result.Pairings)
}

func TestEngine_DistributeEmptyRoster(t *testing.T) {
	e := NewEngine()

	u := newUnit("u1", 2, 50, 5, 3)

	result, err := e.Distribute([]models.Unit{u}, nil)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNoAgentsAvailable)
}

func TestEngine_DistributeEmptyRosterNoCandidates(t *testing.T) {
	e := NewEngine()

	// With nothing to assign the roster is never consulted
	result, err := e.Distribute(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNothingToAssign, result.Outcome)
}

func TestEngine_DistributeNeverTouchesIneligibleUnits(t *testing.T) {
	e := NewEngine()

	inactive := newUnit("u1", 2, 50, 5, 3)
	inactive.Status = models.UnitStatusInactive

	taken := newUnit("u2", 2, 50, 5, 3)
	taken.AgentID = strPtr("a1")
	taken.Status = models.UnitStatusAssigned

	free := newUnit("u3", 1, 20, 2, 1)

	result, err := e.Distribute([]models.Unit{inactive, taken, free}, []models.Agent{{ID: "a1"}, {ID: "a2"}})
	require.NoError(t, err)
	require.Len(t, result.Pairings, 1)
	assert.Equal(t, "u3", result.Pairings[0].Unit.ID)
}

func TestEngine_DistributeHardestFirst(t *testing.T) {
	e := NewEngine()

	easy := newUnit("easy", 1, 10, 1, 1)  // score 32
	hard := newUnit("hard", 4, 90, 12, 5) // score 184

	result, err := e.Distribute([]models.Unit{easy, hard}, []models.Agent{{ID: "a1"}})
	require.NoError(t, err)
	require.Len(t, result.Pairings, 2)
	assert.Equal(t, "hard", result.Pairings[0].Unit.ID)
	assert.Equal(t, "easy", result.Pairings[1].Unit.ID)
}

func TestEngine_DistributeSpreadsLoad(t *testing.T) {
	e := NewEngine()

	u1 := newUnit("u1", 2, 50, 5, 3)
	u2 := newUnit("u2", 2, 50, 5, 3)
	agents := []models.Agent{{ID: "a1"}, {ID: "a2"}}

	result, err := e.Distribute([]models.Unit{u1, u2}, agents)
	require.NoError(t, err)
	require.Len(t, result.Pairings, 2)
	assert.Equal(t, OutcomeAssigned, result.Outcome)

	// Equal units across an idle fleet land on different agents
	assert.NotEqual(t, result.Pairings[0].AgentID, result.Pairings[1].AgentID)

	// The simulated end state carries both placements
	assert.Equal(t, 1, result.Summaries["a1"].Units)
	assert.Equal(t, 1, result.Summaries["a2"].Units)
	assert.Equal(t, 100.0, GlobalBalance(result.Summaries))
}

func TestEngine_DistributeExcludesMalformed(t *testing.T) {
	e := NewEngine()

	bad := newUnit("bad", -1, 50, 5, 3)
	halfCoord := newUnit("half", 1, 20, 2, 1)
	halfCoord.Latitude = floatPtr(48.85)

	good := newUnit("good", 2, 50, 5, 3)

	result, err := e.Distribute([]models.Unit{bad, halfCoord, good}, []models.Agent{{ID: "a1"}})
	require.NoError(t, err)
	require.Len(t, result.Pairings, 1)
	assert.Equal(t, "good", result.Pairings[0].Unit.ID)
	assert.Equal(t, 2, result.Excluded)
}

func TestEngine_DistributeBalanceScoreFollowsSimulation(t *testing.T) {
	e := NewEngine()

	held := newUnit("held", 1, 20, 2, 1) // score 39
	held.AgentID = strPtr("a1")
	held.Status = models.UnitStatusAssigned

	incoming := newUnit("in", 2, 50, 5, 3) // score 100

	result, err := e.Distribute([]models.Unit{held, incoming}, []models.Agent{{ID: "a1"}})
	require.NoError(t, err)
	require.Len(t, result.Pairings, 1)

	// Totals after assignment: 3 rooms, 70 m2, 7 km, difficulty 4 -> 139
	assert.Equal(t, 139.0, result.Pairings[0].BalanceScore)
	assert.Equal(t, 100.0, result.Pairings[0].UnitScore)
}
