package models

import "time"

// AssignmentRecord is an append-only log entry binding one unit to one agent
// over a half-open time interval. EndedAt == nil means the assignment is still
// current; a unit has at most one open record at any time. Reassignment closes
// the open record and opens a new one.
type AssignmentRecord struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UnitID  string `gorm:"type:varchar(32);not null;index:idx_assignment_unit" json:"unit_id"`
	AgentID string `gorm:"type:varchar(32);not null;index:idx_assignment_agent" json:"agent_id"`

	StartedAt time.Time  `gorm:"type:datetime;not null" json:"started_at"`
	EndedAt   *time.Time `gorm:"type:datetime;index" json:"ended_at,omitempty"`

	// BalanceScore is the agent's weighted-load score at assignment time,
	// computed by the distribution engine when the pairing was committed.
	BalanceScore float64 `gorm:"type:decimal(12,2);not null;default:0" json:"balance_score"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime;index" json:"created_at"`
}

// TableName specifies the table name
func (AssignmentRecord) TableName() string {
	return "assignment_records"
}

// IsOpen reports whether this record is the unit's current assignment
func (r *AssignmentRecord) IsOpen() bool {
	return r.EndedAt == nil
}
