package distribution

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch-portal/internal/models"
)

func TestEngine_Aggregate(t *testing.T) {
	e := NewEngine()

	agents := []models.Agent{
		{ID: "a1", Name: "Alice"},
		{ID: "a2", Name: "Bob"},
	}

	u1 := newUnit("u1", 2, 50, 5, 3) // score 100
	u1.AgentID = strPtr("a1")
	u1.Status = models.UnitStatusAssigned

	u2 := newUnit("u2", 1, 20, 2, 1) // score 10+10+4+15 = 39
	u2.AgentID = strPtr("a1")
	u2.Status = models.UnitStatusAssigned

	u3 := newUnit("u3", 3, 80, 10, 5)
	// unassigned, must not count

	summaries := e.Aggregate(agents, []models.Unit{u1, u2, u3})

	require.Len(t, summaries, 2)

	s1 := summaries["a1"]
	assert.Equal(t, 2, s1.Units)
	assert.Equal(t, 3, s1.Rooms)
	assert.Equal(t, 70.0, s1.AreaM2)
	assert.Equal(t, 7.0, s1.DistanceKm)
	assert.Equal(t, 4, s1.Difficulty)
	// Score of the totals: 3*10 + 70*0.5 + 7*2 + 4*15 = 139
	assert.Equal(t, 139.0, s1.BalanceScore)

	s2 := summaries["a2"]
	assert.Equal(t, 0, s2.Units)
	assert.Equal(t, 0.0, s2.BalanceScore)
}

func TestEngine_AggregateUnknownAgentIgnored(t *testing.T) {
	e := NewEngine()

	agents := []models.Agent{{ID: "a1"}}

	u := newUnit("u1", 2, 50, 5, 3)
	u.AgentID = strPtr("ghost")
	u.Status = models.UnitStatusAssigned

	summaries := e.Aggregate(agents, []models.Unit{u})

	require.Len(t, summaries, 1)
	assert.Equal(t, 0, summaries["a1"].Units)
}

func TestEngine_AggregateAssignedCountMatches(t *testing.T) {
	e := NewEngine()

	agents := []models.Agent{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}}

	var units []models.Unit
	owners := []string{"a1", "a2", "a2", "a3", "ghost"}
	for i, owner := range owners {
		u := newUnit(fmt.Sprintf("u%d", i), 1, 10, 1, 1)
		u.AgentID = strPtr(owner)
		u.Status = models.UnitStatusAssigned
		units = append(units, u)
	}

	summaries := e.Aggregate(agents, units)

	total := 0
	for _, s := range summaries {
		total += s.Units
	}
	// The ghost-owned unit does not land anywhere
	assert.Equal(t, 4, total)
}
