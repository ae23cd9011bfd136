package scheduler

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"dispatch-portal/internal/config"
	"dispatch-portal/internal/database"
	"dispatch-portal/internal/distribution"
	"dispatch-portal/internal/models"
)

// Scheduler runs the batch distribution on a daily cron. Runs are serialized:
// a manual trigger that lands while the daily job is executing waits for it.
type Scheduler struct {
	cron      *cron.Cron
	db        *database.GormDB
	engine    *distribution.Engine
	config    *config.Config
	isRunning bool
	runMu     sync.Mutex
}

// NewScheduler creates a new scheduler
func NewScheduler(db *database.GormDB, cfg *config.Config) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		db:     db,
		engine: cfg.Engine.NewEngine(),
		config: cfg,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	if !s.config.Distribution.DailyRunEnabled {
		log.Println("Scheduler: Daily run is disabled in configuration")
		return nil
	}

	// Parse daily run time (HH:MM format in config)
	cronSpec := s.parseDailyRunTime(s.config.Distribution.DailyRunTime)

	_, err := s.cron.AddFunc(cronSpec, func() {
		log.Println("Scheduler: Starting daily distribution job...")
		if _, _, err := s.RunDistribution(models.RunTriggerScheduler); err != nil {
			log.Printf("Scheduler: Daily distribution failed: %v", err)
		} else {
			log.Println("Scheduler: Daily distribution completed")
		}
	})

	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Scheduler: Started with daily run at %s (cron: %s)", s.config.Distribution.DailyRunTime, cronSpec)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		log.Println("Scheduler: Stopped")
	}
}

// RunDistribution executes one batch distribution run and records it. The
// returned run row reflects what was actually committed, which can be fewer
// pairings than the engine proposed if individual commits fail.
func (s *Scheduler) RunDistribution(trigger string) (*distribution.DistributionResult, *models.DistributionRun, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	run := &models.DistributionRun{
		Trigger:   trigger,
		Status:    models.RunStatusRunning,
		StartedAt: time.Now(),
	}
	if err := s.db.DB().Create(run).Error; err != nil {
		return nil, nil, err
	}

	result, err := s.distribute(run)
	if err != nil {
		run.Note = err.Error()
		run.MarkFinished(models.RunStatusFailed)
		if saveErr := s.db.DB().Save(run).Error; saveErr != nil {
			log.Printf("Scheduler: Failed to save run %d: %v", run.ID, saveErr)
		}
		return nil, run, err
	}

	switch result.Outcome {
	case distribution.OutcomeNothingToAssign:
		run.MarkFinished(models.RunStatusNoWork)
	case distribution.OutcomeNoViable:
		run.MarkFinished(models.RunStatusNoViable)
	default:
		run.MarkFinished(models.RunStatusDone)
	}
	run.GlobalBalance = distribution.GlobalBalance(result.Summaries)

	if err := s.db.DB().Save(run).Error; err != nil {
		log.Printf("Scheduler: Failed to save run %d: %v", run.ID, err)
	}

	log.Printf("Scheduler: Run %d finished: %s (candidates=%d assigned=%d skipped=%d excluded=%d failed=%d balance=%.1f)",
		run.ID, run.Status, run.Candidates, run.Assigned, run.Skipped, run.Excluded, run.Failed, run.GlobalBalance)

	return result, run, nil
}

// distribute fetches current state, runs the engine and commits the accepted
// pairings one by one. A failed commit is counted and skipped, not fatal.
func (s *Scheduler) distribute(run *models.DistributionRun) (*distribution.DistributionResult, error) {
	units, err := s.db.FetchUnits(database.UnitFilter{})
	if err != nil {
		return nil, err
	}

	agents, err := s.db.FetchAgents()
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Distribute(units, agents)
	if err != nil {
		return nil, err
	}

	pairings := result.Pairings
	if max := s.config.Distribution.MaxBatchSize; max > 0 && len(pairings) > max {
		log.Printf("Scheduler: Capping run at %d of %d proposed pairings", max, len(pairings))
		pairings = pairings[:max]
	}

	run.Candidates = len(result.Pairings) + result.Skipped
	run.Skipped = result.Skipped
	run.Excluded = result.Excluded

	for _, p := range pairings {
		agentID := p.AgentID
		if err := s.db.CommitAssignment(p.Unit.ID, &agentID, p.BalanceScore); err != nil {
			log.Printf("Scheduler: Failed to commit unit %s to agent %s: %v", p.Unit.ID, p.AgentID, err)
			run.Failed++
			continue
		}
		run.Assigned++
	}

	return result, nil
}

// parseDailyRunTime converts HH:MM format to cron specification
// Example: "06:00" -> "0 6 * * *" (run at 6:00 AM every day)
func (s *Scheduler) parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	// Default to 6:00 AM if parsing fails
	log.Printf("Scheduler: Failed to parse time '%s', using default 06:00", timeStr)
	return "0 6 * * *"
}
