package distribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGlobalBalance_Empty(t *testing.T) {
	assert.Equal(t, 0.0, GlobalBalance(nil))
	assert.Equal(t, 0.0, GlobalBalance(map[string]LoadSummary{}))
}

func TestGlobalBalance_EqualScores(t *testing.T) {
	summaries := map[string]LoadSummary{
		"a1": {AgentID: "a1", BalanceScore: 80},
		"a2": {AgentID: "a2", BalanceScore: 80},
	}
	assert.Equal(t, 100.0, GlobalBalance(summaries))
}

func TestGlobalBalance_MaxSkew(t *testing.T) {
	// mean 50, population stddev 50, cv 100% -> 0
	summaries := map[string]LoadSummary{
		"a1": {AgentID: "a1", BalanceScore: 100},
		"a2": {AgentID: "a2", BalanceScore: 0},
	}
	assert.Equal(t, 0.0, GlobalBalance(summaries))
}

func TestGlobalBalance_ZeroLoad(t *testing.T) {
	// No load at all means nothing is unequal
	summaries := map[string]LoadSummary{
		"a1": {AgentID: "a1", BalanceScore: 0},
		"a2": {AgentID: "a2", BalanceScore: 0},
	}
	assert.Equal(t, 100.0, GlobalBalance(summaries))
}

func TestGlobalBalance_ModerateSkew(t *testing.T) {
	summaries := map[string]LoadSummary{
		"a1": {AgentID: "a1", BalanceScore: 90},
		"a2": {AgentID: "a2", BalanceScore: 110},
	}
	// mean 100, stddev 10, cv 10% -> 90
	assert.InDelta(t, 90.0, GlobalBalance(summaries), 1e-9)
}
