package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"dispatch-portal/internal/distribution"
	"dispatch-portal/internal/models"
)

// Standalone engine check: generates a synthetic fleet, runs one batch
// distribution pass and reports the resulting balance. No database needed.

type SimulationResult struct {
	Agents        int                                 `json:"agents"`
	Units         int                                 `json:"units"`
	Outcome       distribution.Outcome                `json:"outcome"`
	Assigned      int                                 `json:"assigned"`
	Skipped       int                                 `json:"skipped"`
	Excluded      int                                 `json:"excluded"`
	GlobalBalance float64                             `json:"global_balance"`
	Summaries     map[string]distribution.LoadSummary `json:"summaries"`
	ExecutedAt    time.Time                           `json:"executed_at"`
}

var sectors = []string{"nord", "sud", "est", "ouest", "centre"}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	agentCount := flag.Int("agents", 5, "number of synthetic agents")
	unitCount := flag.Int("units", 40, "number of synthetic units")
	seed := flag.Int64("seed", 0, "random seed (0 = time-based)")
	outFile := flag.String("out", "simulation_results.json", "output file")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))
	log.Printf("Simulation: agents=%d units=%d seed=%d", *agentCount, *unitCount, *seed)

	agents := make([]models.Agent, 0, *agentCount)
	for i := 0; i < *agentCount; i++ {
		agents = append(agents, models.Agent{
			ID:              fmt.Sprintf("agent-%02d", i+1),
			Name:            fmt.Sprintf("Agent %02d", i+1),
			Email:           fmt.Sprintf("agent%02d@example.com", i+1),
			PreferredSector: sectors[rng.Intn(len(sectors))],
		})
	}

	units := make([]models.Unit, 0, *unitCount)
	for i := 0; i < *unitCount; i++ {
		units = append(units, models.Unit{
			ID:         fmt.Sprintf("unit-%03d", i+1),
			Name:       fmt.Sprintf("Unit %03d", i+1),
			Sector:     sectors[rng.Intn(len(sectors))],
			Rooms:      1 + rng.Intn(5),
			AreaM2:     20 + rng.Float64()*120,
			DistanceKm: rng.Float64() * 30,
			Difficulty: 1 + rng.Intn(5),
			Status:     models.UnitStatusAvailable,
		})
	}

	engine := distribution.NewEngine()

	result, err := engine.Distribute(units, agents)
	if err != nil {
		log.Fatalf("Distribution failed: %v", err)
	}

	simResult := SimulationResult{
		Agents:        len(agents),
		Units:         len(units),
		Outcome:       result.Outcome,
		Assigned:      len(result.Pairings),
		Skipped:       result.Skipped,
		Excluded:      result.Excluded,
		GlobalBalance: distribution.GlobalBalance(result.Summaries),
		Summaries:     result.Summaries,
		ExecutedAt:    time.Now(),
	}

	log.Printf("Outcome: %s", simResult.Outcome)
	log.Printf("Assigned %d of %d units (skipped=%d excluded=%d)",
		simResult.Assigned, simResult.Units, simResult.Skipped, simResult.Excluded)
	for _, a := range agents {
		s := result.Summaries[a.ID]
		log.Printf("  %s: units=%d rooms=%d area=%.1f dist=%.1f score=%.1f",
			a.ID, s.Units, s.Rooms, s.AreaM2, s.DistanceKm, s.BalanceScore)
	}
	log.Printf("Global balance: %.1f", simResult.GlobalBalance)

	if err := saveResults(*outFile, simResult); err != nil {
		log.Fatalf("Failed to save results: %v", err)
	}
	log.Printf("Results written to %s", *outFile)
}

func saveResults(path string, result SimulationResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
