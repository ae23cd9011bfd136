package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"dispatch-portal/internal/cleanup"
	"dispatch-portal/internal/database"
	"dispatch-portal/internal/distribution"
	"dispatch-portal/internal/history"
	"dispatch-portal/internal/models"
	"dispatch-portal/internal/ratelimit"
	"dispatch-portal/internal/scheduler"
)

// AdminHandler handles admin-related requests
type AdminHandler struct {
	db             *database.GormDB
	engine         *distribution.Engine
	scheduler      *scheduler.Scheduler
	historyService *history.Service
	cleanupService *cleanup.Service
	limiter        *ratelimit.RateLimiter
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *database.GormDB, engine *distribution.Engine, sched *scheduler.Scheduler, limiter *ratelimit.RateLimiter) *AdminHandler {
	return &AdminHandler{
		db:             db,
		engine:         engine,
		scheduler:      sched,
		historyService: history.NewService(db.DB()),
		cleanupService: cleanup.NewService(db.DB()),
		limiter:        limiter,
	}
}

// GetStats returns system statistics
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats := make(map[string]interface{})

	// Unit counts by status
	var availableCount, assignedCount, inactiveCount int64
	h.db.DB().Model(&models.Unit{}).Where("status = ?", models.UnitStatusAvailable).Count(&availableCount)
	h.db.DB().Model(&models.Unit{}).Where("status = ?", models.UnitStatusAssigned).Count(&assignedCount)
	h.db.DB().Model(&models.Unit{}).Where("status = ?", models.UnitStatusInactive).Count(&inactiveCount)

	stats["units"] = map[string]interface{}{
		"available": availableCount,
		"assigned":  assignedCount,
		"inactive":  inactiveCount,
		"total":     availableCount + assignedCount + inactiveCount,
	}

	var agentCount int64
	h.db.DB().Model(&models.Agent{}).Count(&agentCount)
	stats["agents"] = map[string]interface{}{
		"total": agentCount,
	}

	// Current fleet balance
	units, err := h.db.FetchUnits(database.UnitFilter{})
	if err == nil {
		agents, err := h.db.FetchAgents()
		if err == nil {
			summaries := h.engine.Aggregate(agents, units)
			stats["balance"] = map[string]interface{}{
				"global_score": distribution.GlobalBalance(summaries),
			}
		}
	}

	// Assignment activity (last 24 hours)
	last24h := time.Now().AddDate(0, 0, -1)
	assigned24h, err := h.historyService.CountSince(last24h)
	if err != nil {
		log.Printf("Failed to count recent assignments: %v", err)
	}
	stats["recent_activity"] = map[string]interface{}{
		"assigned_last_24h": assigned24h,
	}

	// Purge statistics
	purgeStats, err := h.cleanupService.GetPurgeStats()
	if err != nil {
		log.Printf("Failed to get purge stats: %v", err)
	} else {
		stats["purges"] = purgeStats
	}

	// Rate limiter state
	if h.limiter != nil {
		stats["rate_limit"] = h.limiter.GetStats()
	}

	c.JSON(http.StatusOK, stats)
}

// GetRecentAssignments returns the latest assignment records
func (h *AdminHandler) GetRecentAssignments(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "50")
	limit, _ := strconv.Atoi(limitStr)

	records, err := h.historyService.GetRecentAssignments(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"assignments": records,
		"count":       len(records),
	})
}

// GetRuns returns recent batch distribution runs
func (h *AdminHandler) GetRuns(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "20")
	limit, _ := strconv.Atoi(limitStr)

	runs, err := h.historyService.GetRecentRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":  runs,
		"count": len(runs),
	})
}

// TriggerDistribution manually runs a batch distribution
func (h *AdminHandler) TriggerDistribution(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Scheduler not available (MySQL/GORM required)",
		})
		return
	}

	if h.limiter != nil && !h.limiter.AllowRequest() {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
		return
	}

	log.Println("Admin: Manual distribution trigger requested")

	result, run, err := h.scheduler.RunDistribution(models.RunTriggerManual)
	if err != nil {
		log.Printf("Admin: Manual distribution failed: %v", err)
		status := http.StatusInternalServerError
		if err == distribution.ErrNoAgentsAvailable {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error(), "run": run})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"outcome":  result.Outcome,
		"run":      run,
		"pairings": result.Pairings,
	})
}

// RunCleanup executes physical deletion of old closed assignment records
func (h *AdminHandler) RunCleanup(c *gin.Context) {
	var req struct {
		RetentionDays    int  `json:"retention_days"`     // Days to keep (default: 365)
		MaxDeletionCount int  `json:"max_deletion_count"` // Safety limit (default: 10000)
		DryRun           bool `json:"dry_run"`            // Dry run mode
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.limiter != nil && !h.limiter.AllowRequest() {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
		return
	}

	config := cleanup.DefaultCleanupConfig()
	if req.RetentionDays > 0 {
		config.RetentionDays = req.RetentionDays
	}
	if req.MaxDeletionCount > 0 {
		config.MaxDeletionCount = req.MaxDeletionCount
	}
	config.DryRun = req.DryRun

	log.Printf("Admin: Running cleanup (retention: %d days, max: %d, dry-run: %v)",
		config.RetentionDays, config.MaxDeletionCount, config.DryRun)

	result, err := h.cleanupService.Run(config)
	if err != nil {
		log.Printf("Admin: Cleanup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Printf("Admin: Cleanup completed: %d/%d purged (dry-run: %v)",
		result.DeletedCount, result.TargetCount, result.DryRun)

	c.JSON(http.StatusOK, result)
}

// GetPurgeLogs returns recent purge log entries
func (h *AdminHandler) GetPurgeLogs(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "100")
	limit, _ := strconv.Atoi(limitStr)

	logs, err := h.cleanupService.GetPurgeLogs(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}

// GetSectorStats returns unit counts grouped by sector
func (h *AdminHandler) GetSectorStats(c *gin.Context) {
	type SectorStat struct {
		Sector string `json:"sector"`
		Count  int64  `json:"count"`
	}

	var stats []SectorStat
	err := h.db.DB().Model(&models.Unit{}).
		Select("sector, count(*) as count").
		Where("status != ? AND sector IS NOT NULL AND sector != ''", models.UnitStatusInactive).
		Group("sector").
		Order("count DESC").
		Limit(20).
		Scan(&stats).Error

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sector_stats": stats,
		"count":        len(stats),
	})
}

// GetDifficultyDistribution returns unit counts per difficulty grade
func (h *AdminHandler) GetDifficultyDistribution(c *gin.Context) {
	type DifficultyBucket struct {
		Difficulty int   `json:"difficulty"`
		Count      int64 `json:"count"`
	}

	buckets := make([]DifficultyBucket, 0, 5)
	for grade := 1; grade <= 5; grade++ {
		var count int64
		h.db.DB().Model(&models.Unit{}).
			Where("status != ? AND difficulty = ?", models.UnitStatusInactive, grade).
			Count(&count)
		buckets = append(buckets, DifficultyBucket{Difficulty: grade, Count: count})
	}

	c.JSON(http.StatusOK, gin.H{
		"difficulty_distribution": buckets,
	})
}
