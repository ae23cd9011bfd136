package models

import "time"

// DistributionRun tracks one batch auto-distribution pass over the
// unassigned units. One row is written per run, whether triggered by the
// scheduler or manually through the API.
type DistributionRun struct {
	ID         uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Trigger    string     `gorm:"type:varchar(20);not null" json:"trigger"`
	Status     string     `gorm:"type:varchar(20);not null;default:'running'" json:"status"`
	StartedAt  time.Time  `gorm:"type:datetime;not null;index" json:"started_at"`
	FinishedAt *time.Time `gorm:"type:datetime" json:"finished_at,omitempty"`

	// Run counters
	Candidates int `gorm:"type:int;not null;default:0" json:"candidates"`
	Assigned   int `gorm:"type:int;not null;default:0" json:"assigned"`
	Skipped    int `gorm:"type:int;not null;default:0" json:"skipped"`
	Excluded   int `gorm:"type:int;not null;default:0" json:"excluded"`
	Failed     int `gorm:"type:int;not null;default:0" json:"failed"`

	// GlobalBalance is the fleet equity percentage after the run committed
	GlobalBalance float64 `gorm:"type:decimal(5,2);not null;default:0" json:"global_balance"`

	Note string `gorm:"type:text" json:"note,omitempty"`
}

// TableName specifies the table name
func (DistributionRun) TableName() string {
	return "distribution_runs"
}

// Run trigger constants
const (
	RunTriggerScheduler = "scheduler"
	RunTriggerManual    = "manual"
)

// Run status constants
const (
	RunStatusRunning  = "running"
	RunStatusDone     = "done"
	RunStatusFailed   = "failed"
	RunStatusNoWork   = "no_work"
	RunStatusNoViable = "no_viable"
)

// MarkFinished sets the final status and timestamp
func (r *DistributionRun) MarkFinished(status string) {
	now := time.Now()
	r.Status = status
	r.FinishedAt = &now
}
