package models

import "time"

type Agent struct {
	ID    string `gorm:"type:varchar(32);primaryKey" json:"id"`
	Name  string `gorm:"type:varchar(100);not null" json:"name"`
	Email string `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`

	// PreferredSector biases recommendations toward this sector label.
	// Empty means no preference.
	PreferredSector string `gorm:"type:varchar(50)" json:"preferred_sector,omitempty"`

	// AssignmentsTotal counts every assignment ever committed to this agent,
	// including ones that were later reassigned.
	AssignmentsTotal int `gorm:"type:int;not null;default:0" json:"assignments_total"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:datetime;not null;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (Agent) TableName() string {
	return "agents"
}
