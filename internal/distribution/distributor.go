package distribution

import (
	"errors"
	"sort"

	"dispatch-portal/internal/models"
)

// ErrNoAgentsAvailable is returned by Distribute when the agent roster is
// empty and there are units waiting for assignment.
var ErrNoAgentsAvailable = errors.New("no agents available for distribution")

// Outcome classifies the result of a batch distribution pass
type Outcome string

const (
	// OutcomeAssigned means at least one pairing was produced
	OutcomeAssigned Outcome = "assigned"
	// OutcomeNothingToAssign means no eligible unassigned units existed
	OutcomeNothingToAssign Outcome = "nothing_to_assign"
	// OutcomeNoViable means candidates existed but none could be placed
	OutcomeNoViable Outcome = "no_viable_assignment"
)

// Pairing is one accepted unit-to-agent assignment proposal. BalanceScore is
// the agent's simulated load score after taking the unit; the storage layer
// carries it into the assignment record when the pairing is committed.
type Pairing struct {
	Unit         models.Unit `json:"unit"`
	AgentID      string      `json:"agent_id"`
	UnitScore    float64     `json:"unit_score"`
	BalanceScore float64     `json:"balance_score"`
}

// DistributionResult is the outcome of one batch pass. Summaries holds the
// simulated per-agent loads as they stood after the last accepted pairing.
type DistributionResult struct {
	Outcome   Outcome                `json:"outcome"`
	Pairings  []Pairing              `json:"pairings"`
	Skipped   int                    `json:"skipped"`
	Excluded  int                    `json:"excluded"`
	Summaries map[string]LoadSummary `json:"summaries"`
}

// Distribute runs a single greedy assignment pass over all unassigned active
// units. Candidates are placed hardest-first (descending unit score) so the
// units least tolerant of a bad placement are decided while the simulated
// loads are still close to reality. The pass mutates only its own copy of the
// load summaries; nothing is persisted. Callers commit the returned pairings
// individually.
//
// Malformed units are excluded from the batch and counted in the result.
// Units for which no recommendation can be made are skipped, not fatal.
func (e *Engine) Distribute(units []models.Unit, agents []models.Agent) (*DistributionResult, error) {
	result := &DistributionResult{}

	// Eligible candidates: unassigned, not inactive, well-formed
	var candidates []models.Unit
	for _, u := range units {
		if !u.IsAssignable() {
			continue
		}
		if err := ValidateUnit(u); err != nil {
			result.Excluded++
			continue
		}
		candidates = append(candidates, u)
	}

	if len(candidates) == 0 {
		result.Outcome = OutcomeNothingToAssign
		return result, nil
	}

	if len(agents) == 0 {
		return nil, ErrNoAgentsAvailable
	}

	// Hardest units first
	sort.SliceStable(candidates, func(i, j int) bool {
		return e.UnitScore(candidates[i]) > e.UnitScore(candidates[j])
	})

	// Simulation copy of the current loads, owned by this call
	sim := e.Aggregate(agents, units)

	for _, c := range candidates {
		agentID, ok := e.Recommend(c, agents, sim)
		if !ok {
			result.Skipped++
			continue
		}

		sim[agentID] = e.AddUnit(sim[agentID], c)

		result.Pairings = append(result.Pairings, Pairing{
			Unit:         c,
			AgentID:      agentID,
			UnitScore:    e.UnitScore(c),
			BalanceScore: sim[agentID].BalanceScore,
		})
	}

	result.Summaries = sim
	if len(result.Pairings) == 0 {
		result.Outcome = OutcomeNoViable
	} else {
		result.Outcome = OutcomeAssigned
	}

	return result, nil
}
