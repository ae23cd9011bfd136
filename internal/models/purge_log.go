package models

import "time"

// PurgeLog represents a physically deleted assignment record
type PurgeLog struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RecordID uint      `gorm:"not null;index" json:"record_id"`
	UnitID   string    `gorm:"type:varchar(32);not null;index" json:"unit_id"`
	AgentID  string    `gorm:"type:varchar(32);not null" json:"agent_id"`
	EndedAt  time.Time `gorm:"type:datetime" json:"ended_at"`
	PurgedAt time.Time `gorm:"type:datetime;not null;autoCreateTime;index" json:"purged_at"`
	Reason   string    `gorm:"type:varchar(50);not null" json:"reason"`
}

// TableName specifies the table name
func (PurgeLog) TableName() string {
	return "purge_logs"
}

// Purge reason constants
const (
	PurgeReasonExpired = "retention_expired"
	PurgeReasonManual  = "manual_purge"
)
