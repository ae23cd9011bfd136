package database

import "dispatch-portal/internal/models"

// UnitFilter narrows unit queries
type UnitFilter struct {
	Status  string
	Sector  string
	AgentID string
	SortBy  string
	Limit   int
}

// Repository is the storage boundary the distribution engine's callers work
// against. The engine itself only ever sees plain slices; callers fetch
// current state, run the engine, and commit each accepted pairing through
// CommitAssignment. Commits are independent of each other: a failed commit
// does not invalidate the rest of a batch.
type Repository interface {
	FetchUnits(filter UnitFilter) ([]models.Unit, error)
	FetchAgents() ([]models.Agent, error)

	// CommitAssignment moves a unit to the given agent (or back to the
	// available pool when agentID is nil), closes any open assignment record
	// for the unit and, for a real assignment, opens a new record carrying
	// the balance score the engine computed for the pairing.
	CommitAssignment(unitID string, agentID *string, balanceScore float64) error
}
