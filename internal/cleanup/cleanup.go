package cleanup

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"dispatch-portal/internal/models"
)

// Service handles physical deletion of old closed assignment records
type Service struct {
	db *gorm.DB
}

// NewService creates a new cleanup service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CleanupConfig holds configuration for cleanup operations
type CleanupConfig struct {
	RetentionDays    int  // Days to keep closed records before physical deletion
	MaxDeletionCount int  // Maximum number of records to delete in one run (safety limit)
	DryRun           bool // If true, only log what would be deleted without actually deleting
}

// DefaultCleanupConfig returns default configuration
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		RetentionDays:    365,
		MaxDeletionCount: 10000,
		DryRun:           false,
	}
}

// CleanupResult holds the result of a cleanup operation
type CleanupResult struct {
	TargetCount  int       `json:"target_count"`
	DeletedCount int       `json:"deleted_count"`
	ErrorCount   int       `json:"error_count"`
	DryRun       bool      `json:"dry_run"`
	ExecutedAt   time.Time `json:"executed_at"`
	Errors       []string  `json:"errors,omitempty"`
}

// FindExpiredRecords finds closed assignment records older than the
// retention window. Open records are never eligible.
func (s *Service) FindExpiredRecords(retentionDays int) ([]models.AssignmentRecord, error) {
	var records []models.AssignmentRecord

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	err := s.db.Where("ended_at IS NOT NULL AND ended_at < ?", cutoff).
		Order("ended_at ASC").
		Find(&records).Error

	return records, err
}

// Run purges expired records, writing one purge log row per deleted record
func (s *Service) Run(cfg CleanupConfig) (*CleanupResult, error) {
	result := &CleanupResult{
		DryRun:     cfg.DryRun,
		ExecutedAt: time.Now(),
	}

	records, err := s.FindExpiredRecords(cfg.RetentionDays)
	if err != nil {
		return nil, err
	}

	result.TargetCount = len(records)
	if len(records) == 0 {
		return result, nil
	}

	if cfg.MaxDeletionCount > 0 && len(records) > cfg.MaxDeletionCount {
		records = records[:cfg.MaxDeletionCount]
	}

	if cfg.DryRun {
		log.Printf("Cleanup: dry run, %d records would be purged", len(records))
		return result, nil
	}

	for _, record := range records {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			purgeLog := models.PurgeLog{
				RecordID: record.ID,
				UnitID:   record.UnitID,
				AgentID:  record.AgentID,
				EndedAt:  *record.EndedAt,
				Reason:   models.PurgeReasonExpired,
			}
			if err := tx.Create(&purgeLog).Error; err != nil {
				return err
			}
			return tx.Delete(&models.AssignmentRecord{}, record.ID).Error
		})

		if err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, fmt.Sprintf("record %d: %v", record.ID, err))
			continue
		}
		result.DeletedCount++
	}

	log.Printf("Cleanup: purged %d/%d expired assignment records (errors: %d)",
		result.DeletedCount, result.TargetCount, result.ErrorCount)

	return result, nil
}

// GetPurgeLogs retrieves recent purge log entries
func (s *Service) GetPurgeLogs(limit int) ([]models.PurgeLog, error) {
	var logs []models.PurgeLog
	query := s.db.Order("purged_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}

	return logs, nil
}

// GetPurgeStats returns aggregate purge counts for the admin dashboard
func (s *Service) GetPurgeStats() (map[string]interface{}, error) {
	var total int64
	if err := s.db.Model(&models.PurgeLog{}).Count(&total).Error; err != nil {
		return nil, err
	}

	last30 := time.Now().AddDate(0, 0, -30)
	var recent int64
	if err := s.db.Model(&models.PurgeLog{}).Where("purged_at >= ?", last30).Count(&recent).Error; err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"total":        total,
		"last_30_days": recent,
	}, nil
}
