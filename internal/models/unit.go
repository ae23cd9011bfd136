package models

import "time"

type Unit struct {
	// Identity
	ID      string `gorm:"type:varchar(32);primaryKey" json:"id"`
	Name    string `gorm:"type:varchar(100);not null" json:"name"`
	Address string `gorm:"type:text" json:"address,omitempty"`
	Sector  string `gorm:"type:varchar(50);index" json:"sector,omitempty"`

	// Workload attributes
	Rooms      int     `gorm:"type:int;not null" json:"rooms"`
	AreaM2     float64 `gorm:"type:decimal(10,2);not null" json:"area_m2"`
	DistanceKm float64 `gorm:"type:decimal(10,2);not null" json:"distance_km"`
	Difficulty int     `gorm:"type:int;not null;default:1" json:"difficulty"`

	// Geographic position (both set or both absent)
	Latitude  *float64 `gorm:"type:decimal(10,7)" json:"latitude,omitempty"`
	Longitude *float64 `gorm:"type:decimal(10,7)" json:"longitude,omitempty"`

	// Assignment state
	AgentID *string    `gorm:"type:varchar(32);index" json:"agent_id,omitempty"`
	Status  UnitStatus `gorm:"type:varchar(20);not null;default:'available';index" json:"status"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime;index:idx_units_created_at,sort:desc" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:datetime;not null;autoUpdateTime" json:"updated_at"`
}

// UnitStatus is the assignment lifecycle state of a unit
type UnitStatus string

const (
	UnitStatusAvailable UnitStatus = "available"
	UnitStatusAssigned  UnitStatus = "assigned"
	UnitStatusInactive  UnitStatus = "inactive"
)

// TableName specifies the table name
func (Unit) TableName() string {
	return "units"
}

// IsAssignable reports whether a unit can take part in auto-distribution
func (u *Unit) IsAssignable() bool {
	return u.AgentID == nil && u.Status != UnitStatusInactive
}

// HasCoordinates reports whether both latitude and longitude are present
func (u *Unit) HasCoordinates() bool {
	return u.Latitude != nil && u.Longitude != nil
}
