// Package distribution implements the workload balancing engine: unit
// scoring, per-agent load aggregation, the fleet balance metric, single-unit
// recommendation, batch auto-distribution and nearest-neighbor route
// building. The engine works on plain in-memory collections and never touches
// storage; callers fetch state, run it, and commit the pairings it returns.
package distribution

import "dispatch-portal/internal/models"

// Weights are the relative costs of the four unit attributes. They are the
// single source of truth for "workload" everywhere in the engine: changing a
// weight changes recommendations and the balance metric at the same time.
type Weights struct {
	Rooms      float64 `yaml:"rooms" json:"rooms"`
	Area       float64 `yaml:"area" json:"area"`
	Distance   float64 `yaml:"distance" json:"distance"`
	Difficulty float64 `yaml:"difficulty" json:"difficulty"`
}

// DefaultWeights returns the standard attribute weighting
func DefaultWeights() Weights {
	return Weights{
		Rooms:      10,
		Area:       0.5,
		Distance:   2,
		Difficulty: 15,
	}
}

// DefaultSectorBonus is the flat discount applied to a candidate score when
// the agent's preferred sector matches the unit's sector.
const DefaultSectorBonus = 20.0

// Engine computes workload scores and assignment recommendations
type Engine struct {
	weights     Weights
	sectorBonus float64
}

// NewEngine creates an engine with the default weighting
func NewEngine() *Engine {
	return NewEngineWithConfig(DefaultWeights(), DefaultSectorBonus)
}

// NewEngineWithConfig creates an engine with custom weights and sector bonus
func NewEngineWithConfig(w Weights, sectorBonus float64) *Engine {
	return &Engine{
		weights:     w,
		sectorBonus: sectorBonus,
	}
}

// UnitScore computes the scalar workload cost of a single unit
func (e *Engine) UnitScore(u models.Unit) float64 {
	return e.scoreTotals(u.Rooms, u.AreaM2, u.DistanceKm, u.Difficulty)
}

// scoreTotals applies the weight formula to attribute totals. Per-agent
// balance scores use this over the agent's accumulated sums rather than
// summing individual unit scores; both collapse to the same number, but the
// aggregate form is the defined behavior.
func (e *Engine) scoreTotals(rooms int, area, distance float64, difficulty int) float64 {
	return float64(rooms)*e.weights.Rooms +
		area*e.weights.Area +
		distance*e.weights.Distance +
		float64(difficulty)*e.weights.Difficulty
}
