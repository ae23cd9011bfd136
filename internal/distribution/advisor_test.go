package distribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch-portal/internal/models"
)

func TestEngine_RecommendEmptyRoster(t *testing.T) {
	e := NewEngine()

	u := newUnit("u1", 2, 50, 5, 3)
	id, ok := e.Recommend(u, nil, map[string]LoadSummary{})

	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestEngine_RecommendPicksLeastLoaded(t *testing.T) {
	e := NewEngine()

	agents := []models.Agent{{ID: "a1"}, {ID: "a2"}}
	summaries := map[string]LoadSummary{
		"a1": {AgentID: "a1", BalanceScore: 100},
		"a2": {AgentID: "a2", BalanceScore: 0},
	}

	u := newUnit("u1", 2, 50, 5, 3) // score 100

	// Fleet average 50: a1 would land at 200 (delta 150), a2 at 100 (delta 50)
	id, ok := e.Recommend(u, agents, summaries)
	require.True(t, ok)
	assert.Equal(t, "a2", id)
}

func TestEngine_RecommendMissingSummaryCountsAsZero(t *testing.T) {
	e := NewEngine()

	agents := []models.Agent{{ID: "a1"}, {ID: "a2"}}
	summaries := map[string]LoadSummary{
		"a1": {AgentID: "a1", BalanceScore: 200},
	}

	u := newUnit("u1", 0, 0, 0, 1) // score 15

	id, ok := e.Recommend(u, agents, summaries)
	require.True(t, ok)
	assert.Equal(t, "a2", id)
}

func TestEngine_RecommendSectorAffinity(t *testing.T) {
	e := NewEngine()

	agents := []models.Agent{
		{ID: "a1"},
		{ID: "a2", PreferredSector: "north"},
	}
	summaries := map[string]LoadSummary{
		"a1": {AgentID: "a1"},
		"a2": {AgentID: "a2"},
	}

	u := newUnit("u1", 3, 0, 0, 1) // score 45
	u.Sector = "north"

	// Without affinity a1 would win as the first agent in roster order; the
	// 20-point discount lands a2 at 25 (delta 25) against a1's 45.
	id, ok := e.Recommend(u, agents, summaries)
	require.True(t, ok)
	assert.Equal(t, "a2", id)
}

func TestEngine_RecommendNoAffinityOnEmptyLabels(t *testing.T) {
	e := NewEngine()

	// Neither agent nor unit carries a sector; no discount may apply, so the
	// tie goes to the first agent in roster order.
	agents := []models.Agent{{ID: "a1"}, {ID: "a2"}}
	summaries := map[string]LoadSummary{
		"a1": {AgentID: "a1"},
		"a2": {AgentID: "a2"},
	}

	u := newUnit("u1", 1, 0, 0, 1)

	id, ok := e.Recommend(u, agents, summaries)
	require.True(t, ok)
	assert.Equal(t, "a1", id)
}

func TestEngine_RecommendTieGoesToFirst(t *testing.T) {
	e := NewEngine()

	agents := []models.Agent{{ID: "a2"}, {ID: "a1"}}
	summaries := map[string]LoadSummary{
		"a1": {AgentID: "a1", BalanceScore: 40},
		"a2": {AgentID: "a2", BalanceScore: 40},
	}

	u := newUnit("u1", 2, 50, 5, 3)

	id, ok := e.Recommend(u, agents, summaries)
	require.True(t, ok)
	assert.Equal(t, "a2", id)
}
