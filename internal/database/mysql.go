package database

import (
	"crypto/md5"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dispatch-portal/internal/models"
)

// ErrUnitNotFound is returned when a commit references a missing unit
var ErrUnitNotFound = errors.New("unit not found")

// ErrAgentNotFound is returned when a commit references a missing agent
var ErrAgentNotFound = errors.New("agent not found")

type GormDB struct {
	db *gorm.DB
}

func NewGormDB(host, port, user, password, dbname string) (*GormDB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, dbname)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	})
	if err != nil {
		return nil, err
	}

	// Test connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	return &GormDB{db: db}, nil
}

// NewGormDBFromDB creates a GormDB wrapper from an existing gorm.DB instance
func NewGormDBFromDB(db *gorm.DB) *GormDB {
	return &GormDB{db: db}
}

// DB returns the underlying gorm.DB instance
func (gdb *GormDB) DB() *gorm.DB {
	return gdb.db
}

func (gdb *GormDB) Close() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema creates tables using GORM AutoMigrate
func (gdb *GormDB) InitSchema() error {
	return gdb.db.AutoMigrate(
		&models.Unit{},
		&models.Agent{},
		&models.AssignmentRecord{},
		&models.DistributionRun{},
		&models.PurgeLog{},
	)
}

// FetchUnits retrieves units matching the filter
func (gdb *GormDB) FetchUnits(filter UnitFilter) ([]models.Unit, error) {
	query := gdb.db.Model(&models.Unit{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Sector != "" {
		query = query.Where("sector = ?", filter.Sector)
	}
	if filter.AgentID != "" {
		query = query.Where("agent_id = ?", filter.AgentID)
	}

	switch filter.SortBy {
	case "difficulty_desc":
		query = query.Order("difficulty DESC")
	case "area_desc":
		query = query.Order("area_m2 DESC")
	case "name":
		query = query.Order("name ASC")
	default:
		query = query.Order("created_at DESC")
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var units []models.Unit
	err := query.Find(&units).Error
	return units, err
}

// FetchAgents retrieves the full agent roster in a stable order. Roster
// order matters: recommendation ties resolve to the first agent.
func (gdb *GormDB) FetchAgents() ([]models.Agent, error) {
	var agents []models.Agent
	err := gdb.db.Order("created_at ASC, id ASC").Find(&agents).Error
	return agents, err
}

// GetUnitByID retrieves a unit by ID
func (gdb *GormDB) GetUnitByID(id string) (*models.Unit, error) {
	var unit models.Unit
	if err := gdb.db.Where("id = ?", id).First(&unit).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

// SaveUnit creates or updates a unit, generating an ID when missing
func (gdb *GormDB) SaveUnit(u *models.Unit) error {
	if u.ID == "" {
		u.ID = generateMD5(fmt.Sprintf("%s|%s|%d", u.Name, u.Address, time.Now().UnixNano()))
	}
	if u.Status == "" {
		u.Status = models.UnitStatusAvailable
	}

	var existing models.Unit
	result := gdb.db.Where("id = ?", u.ID).First(&existing)

	if result.Error == gorm.ErrRecordNotFound {
		return gdb.db.Create(u).Error
	} else if result.Error != nil {
		return result.Error
	}

	// Assignment state is owned by CommitAssignment, not by unit updates
	u.CreatedAt = existing.CreatedAt
	u.AgentID = existing.AgentID
	u.Status = existing.Status
	return gdb.db.Save(u).Error
}

// SetUnitStatus updates only the lifecycle status of a unit. Deactivating an
// assigned unit releases it from its agent first.
func (gdb *GormDB) SetUnitStatus(id string, status models.UnitStatus) error {
	if status == models.UnitStatusInactive {
		unit, err := gdb.GetUnitByID(id)
		if err != nil {
			return err
		}
		if unit.AgentID != nil {
			if err := gdb.CommitAssignment(id, nil, 0); err != nil {
				return err
			}
		}
	}
	return gdb.db.Model(&models.Unit{}).Where("id = ?", id).Update("status", status).Error
}

// DeleteUnit removes a unit and closes its open assignment record
func (gdb *GormDB) DeleteUnit(id string) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := tx.Model(&models.AssignmentRecord{}).
			Where("unit_id = ? AND ended_at IS NULL", id).
			Update("ended_at", &now).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Unit{}).Error
	})
}

// GetAgentByID retrieves an agent by ID
func (gdb *GormDB) GetAgentByID(id string) (*models.Agent, error) {
	var agent models.Agent
	if err := gdb.db.Where("id = ?", id).First(&agent).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

// SaveAgent creates or updates an agent, generating an ID from the contact
// identifier when missing
func (gdb *GormDB) SaveAgent(a *models.Agent) error {
	if a.ID == "" {
		a.ID = generateMD5(a.Email)
	}

	var existing models.Agent
	result := gdb.db.Where("id = ?", a.ID).First(&existing)

	if result.Error == gorm.ErrRecordNotFound {
		return gdb.db.Create(a).Error
	} else if result.Error != nil {
		return result.Error
	}

	a.CreatedAt = existing.CreatedAt
	a.AssignmentsTotal = existing.AssignmentsTotal
	return gdb.db.Save(a).Error
}

// DeleteAgent removes an agent after releasing every unit it holds
func (gdb *GormDB) DeleteAgent(id string) error {
	var units []models.Unit
	if err := gdb.db.Where("agent_id = ?", id).Find(&units).Error; err != nil {
		return err
	}
	for _, u := range units {
		if err := gdb.CommitAssignment(u.ID, nil, 0); err != nil {
			return err
		}
	}
	return gdb.db.Where("id = ?", id).Delete(&models.Agent{}).Error
}

// CommitAssignment applies one accepted pairing (or an unassignment when
// agentID is nil) in a single transaction: unit state, record bookkeeping and
// the agent's cumulative counter move together.
func (gdb *GormDB) CommitAssignment(unitID string, agentID *string, balanceScore float64) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		var unit models.Unit
		if err := tx.Where("id = ?", unitID).First(&unit).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnitNotFound
			}
			return err
		}

		now := time.Now()

		// Close the open record, if any
		if err := tx.Model(&models.AssignmentRecord{}).
			Where("unit_id = ? AND ended_at IS NULL", unitID).
			Update("ended_at", &now).Error; err != nil {
			return err
		}

		if agentID == nil {
			return tx.Model(&models.Unit{}).Where("id = ?", unitID).
				Updates(map[string]interface{}{
					"agent_id": nil,
					"status":   models.UnitStatusAvailable,
				}).Error
		}

		var agent models.Agent
		if err := tx.Where("id = ?", *agentID).First(&agent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAgentNotFound
			}
			return err
		}

		if err := tx.Model(&models.Unit{}).Where("id = ?", unitID).
			Updates(map[string]interface{}{
				"agent_id": *agentID,
				"status":   models.UnitStatusAssigned,
			}).Error; err != nil {
			return err
		}

		record := models.AssignmentRecord{
			UnitID:       unitID,
			AgentID:      *agentID,
			StartedAt:    now,
			BalanceScore: balanceScore,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		return tx.Model(&models.Agent{}).Where("id = ?", *agentID).
			Update("assignments_total", gorm.Expr("assignments_total + 1")).Error
	})
}

// GetAssignedUnits retrieves the units currently held by an agent
func (gdb *GormDB) GetAssignedUnits(agentID string) ([]models.Unit, error) {
	var units []models.Unit
	err := gdb.db.Where("agent_id = ?", agentID).Order("created_at ASC").Find(&units).Error
	return units, err
}

// generateMD5 generates MD5 hash for a string
func generateMD5(text string) string {
	hash := md5.Sum([]byte(text))
	return fmt.Sprintf("%x", hash)
}
