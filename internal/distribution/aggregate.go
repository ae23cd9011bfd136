package distribution

import "dispatch-portal/internal/models"

// LoadSummary is the per-agent aggregate of currently assigned units. It is
// derived data, recomputed from assignment state on demand and never stored.
type LoadSummary struct {
	AgentID      string  `json:"agent_id"`
	Units        int     `json:"units"`
	Rooms        int     `json:"rooms"`
	AreaM2       float64 `json:"area_m2"`
	DistanceKm   float64 `json:"distance_km"`
	Difficulty   int     `json:"difficulty"`
	BalanceScore float64 `json:"balance_score"`
}

// Aggregate folds the assigned units into one LoadSummary per agent. Every
// agent gets an entry, agents with no assigned units get a zero summary.
// Units referencing an unknown agent are ignored. The balance score is the
// weight formula applied once to each agent's totals, not a running sum of
// unit scores.
func (e *Engine) Aggregate(agents []models.Agent, units []models.Unit) map[string]LoadSummary {
	summaries := make(map[string]LoadSummary, len(agents))
	for _, a := range agents {
		summaries[a.ID] = LoadSummary{AgentID: a.ID}
	}

	for _, u := range units {
		if u.AgentID == nil {
			continue
		}
		s, ok := summaries[*u.AgentID]
		if !ok {
			continue
		}
		s.Units++
		s.Rooms += u.Rooms
		s.AreaM2 += u.AreaM2
		s.DistanceKm += u.DistanceKm
		s.Difficulty += u.Difficulty
		summaries[*u.AgentID] = s
	}

	for id, s := range summaries {
		s.BalanceScore = e.scoreTotals(s.Rooms, s.AreaM2, s.DistanceKm, s.Difficulty)
		summaries[id] = s
	}

	return summaries
}

// AddUnit accumulates a unit into the summary and recomputes the balance
// score from the new totals
func (e *Engine) AddUnit(s LoadSummary, u models.Unit) LoadSummary {
	s.Units++
	s.Rooms += u.Rooms
	s.AreaM2 += u.AreaM2
	s.DistanceKm += u.DistanceKm
	s.Difficulty += u.Difficulty
	s.BalanceScore = e.scoreTotals(s.Rooms, s.AreaM2, s.DistanceKm, s.Difficulty)
	return s
}
