package distribution

import (
	"math"

	"dispatch-portal/internal/models"
)

// Recommend returns the agent whose load after taking the unit would land
// closest to the current fleet average. A flat sector-affinity discount is
// subtracted from the candidate score when the agent's preferred sector
// matches the unit's sector (both labels must be non-empty), biasing the
// choice toward sector matches without making them a hard constraint. Ties
// resolve to the first agent in roster order. Returns ok=false only when the
// roster is empty.
//
// This is a greedy local heuristic: it never revisits earlier
// recommendations, so batch callers order units hardest-first to limit the
// damage of early choices (see Distribute).
func (e *Engine) Recommend(unit models.Unit, agents []models.Agent, summaries map[string]LoadSummary) (string, bool) {
	if len(agents) == 0 {
		return "", false
	}

	unitScore := e.UnitScore(unit)

	// Fleet average over the roster; agents missing from the summaries map
	// contribute zero.
	var total float64
	for _, a := range agents {
		total += summaries[a.ID].BalanceScore
	}
	fleetAverage := total / float64(len(agents))

	bestID := ""
	bestDelta := math.Inf(1)

	for _, a := range agents {
		candidate := summaries[a.ID].BalanceScore + unitScore
		if a.PreferredSector != "" && unit.Sector != "" && a.PreferredSector == unit.Sector {
			candidate -= e.sectorBonus
		}

		delta := math.Abs(candidate - fleetAverage)
		if delta < bestDelta {
			bestDelta = delta
			bestID = a.ID
		}
	}

	return bestID, true
}
