package history

import (
	"time"

	"gorm.io/gorm"

	"dispatch-portal/internal/models"
)

// Service reads the assignment record log. Records themselves are written by
// the storage layer as part of each committed assignment; this service only
// exposes them.
type Service struct {
	db *gorm.DB
}

// NewService creates a new history service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// GetUnitHistory retrieves the assignment records of a unit, newest first
func (s *Service) GetUnitHistory(unitID string, limit int) ([]models.AssignmentRecord, error) {
	var records []models.AssignmentRecord
	query := s.db.Where("unit_id = ?", unitID).Order("started_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

// GetAgentHistory retrieves the assignment records of an agent, newest first
func (s *Service) GetAgentHistory(agentID string, limit int) ([]models.AssignmentRecord, error) {
	var records []models.AssignmentRecord
	query := s.db.Where("agent_id = ?", agentID).Order("started_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

// GetOpenRecord retrieves the unit's current assignment record, if any
func (s *Service) GetOpenRecord(unitID string) (*models.AssignmentRecord, error) {
	var record models.AssignmentRecord
	err := s.db.Where("unit_id = ? AND ended_at IS NULL", unitID).First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetRecentAssignments retrieves the latest records across all units
func (s *Service) GetRecentAssignments(limit int) ([]models.AssignmentRecord, error) {
	var records []models.AssignmentRecord
	query := s.db.Order("started_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

// GetRecentRuns retrieves the latest batch distribution runs
func (s *Service) GetRecentRuns(limit int) ([]models.DistributionRun, error) {
	var runs []models.DistributionRun
	query := s.db.Order("started_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&runs).Error; err != nil {
		return nil, err
	}

	return runs, nil
}

// CountSince counts assignments that started after the given time
func (s *Service) CountSince(since time.Time) (int64, error) {
	var count int64
	err := s.db.Model(&models.AssignmentRecord{}).
		Where("started_at >= ?", since).Count(&count).Error
	return count, err
}
