package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"dispatch-portal/internal/config"
	"dispatch-portal/internal/database"
	"dispatch-portal/internal/distribution"
	"dispatch-portal/internal/handlers"
	"dispatch-portal/internal/history"
	"dispatch-portal/internal/models"
	"dispatch-portal/internal/ratelimit"
	"dispatch-portal/internal/scheduler"
	"dispatch-portal/internal/search"
)

var (
	db             *database.DB
	gormDB         *database.GormDB
	searchClient   *search.SearchClient
	appConfig      *config.Config
	engine         *distribution.Engine
	rateLimiter    *ratelimit.RateLimiter
	appScheduler   *scheduler.Scheduler
	indexWorker    *scheduler.IndexWorker
	historyService *history.Service
)

func main() {
	// Load configuration
	configPath := getEnv("CONFIG_PATH", "/app/config/dispatch_config.yaml")
	var err error
	appConfig, err = config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config from %s: %v. Using defaults.", configPath, err)
		appConfig = config.DefaultConfig()
	} else {
		log.Printf("Loaded configuration from %s", configPath)
	}

	engine = appConfig.Engine.NewEngine()

	// Initialize database based on configuration
	dbType := appConfig.Database.Type
	if dbType == "" {
		dbType = getEnv("DB_TYPE", "postgres")
	}

	if dbType == "mysql" {
		log.Println("Using MySQL with GORM")
		mysqlCfg := appConfig.Database.MySQL

		// Get port as string, handle 0 as empty
		portStr := ""
		if mysqlCfg.Port > 0 {
			portStr = fmt.Sprintf("%d", mysqlCfg.Port)
		}

		gormDB, err = database.NewGormDB(
			getEnvOrConfig(mysqlCfg.Host, "DB_HOST", "mysql"),
			getEnvOrConfig(portStr, "DB_PORT", "3306"),
			getEnvOrConfig(mysqlCfg.User, "DB_USER", "dispatch_user"),
			getEnvOrConfig(mysqlCfg.Password, "DB_PASSWORD", "dispatch_pass"),
			getEnvOrConfig(mysqlCfg.Database, "DB_NAME", "dispatch_db"),
		)
		if err != nil {
			log.Fatalf("Failed to connect to MySQL: %v", err)
		}
		defer gormDB.Close()

		// Initialize schema with GORM AutoMigrate
		if err := gormDB.InitSchema(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
	} else {
		log.Println("Using PostgreSQL")
		pgCfg := appConfig.Database.Postgres

		portStr := ""
		if pgCfg.Port > 0 {
			portStr = fmt.Sprintf("%d", pgCfg.Port)
		}

		db, err = database.NewDB(
			getEnvOrConfig(pgCfg.Host, "DB_HOST", "db"),
			getEnvOrConfig(portStr, "DB_PORT", "5432"),
			getEnvOrConfig(pgCfg.User, "DB_USER", "dispatch_user"),
			getEnvOrConfig(pgCfg.Password, "DB_PASSWORD", "dispatch_pass"),
			getEnvOrConfig(pgCfg.Database, "DB_NAME", "dispatch_db"),
		)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		// Initialize schema
		if err := db.InitSchema(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
	}

	// Initialize Meilisearch using config
	meilisearchHost := appConfig.Search.Meilisearch.Host
	if meilisearchHost == "" {
		meilisearchHost = getEnv("MEILISEARCH_HOST", "http://meilisearch:7700")
	}
	meilisearchKey := appConfig.Search.Meilisearch.APIKey
	if meilisearchKey == "" {
		meilisearchKey = getEnv("MEILISEARCH_KEY", "masterKey123")
	}

	searchClient = search.NewSearchClient(meilisearchHost, meilisearchKey)

	// Wait for Meilisearch to be ready
	time.Sleep(2 * time.Second)

	if err := searchClient.InitIndex(); err != nil {
		log.Printf("Warning: Failed to initialize search index: %v", err)
	}

	// Initialize rate limiter
	rateLimiter = ratelimit.NewRateLimiter(
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.RateLimit.Enabled,
	)
	log.Printf("Rate limiter initialized: %d req/min, %d req/hour (enabled: %v)",
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.RateLimit.Enabled,
	)

	// History service, scheduler and index worker need GORM
	if gormDB != nil {
		historyService = history.NewService(gormDB.DB())

		appScheduler = scheduler.NewScheduler(gormDB, appConfig)
		if err := appScheduler.Start(); err != nil {
			log.Printf("Warning: Failed to start scheduler: %v", err)
		}
		defer appScheduler.Stop()

		indexWorker = scheduler.NewIndexWorker(gormDB.DB(), searchClient)
		indexWorker.Start()
		defer indexWorker.Stop()
		log.Println("Index worker started")
	}

	// Setup Gin router
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	// Routes
	r.GET("/health", healthCheck)

	r.GET("/api/units", getUnits)
	r.GET("/api/units/:id", getUnit)
	r.POST("/api/units", createUnit)
	r.PUT("/api/units/:id", updateUnit)
	r.DELETE("/api/units/:id", deleteUnit)
	r.PUT("/api/units/:id/status", setUnitStatus)

	r.GET("/api/agents", getAgents)
	r.GET("/api/agents/:id", getAgent)
	r.POST("/api/agents", createAgent)
	r.PUT("/api/agents/:id", updateAgent)
	r.DELETE("/api/agents/:id", deleteAgent)

	// Assignment operations
	r.GET("/api/units/:id/recommendation", getRecommendation)
	r.POST("/api/units/:id/assign", assignUnit)
	r.POST("/api/units/:id/release", releaseUnit)

	// Load and routing
	r.GET("/api/load", getLoad)
	r.GET("/api/agents/:id/route", getAgentRoute)

	// Assignment history (requires MySQL/GORM)
	r.GET("/api/units/:id/history", getUnitHistory)
	r.GET("/api/agents/:id/history", getAgentHistory)

	// Search endpoints
	r.GET("/api/search", searchUnits)
	r.GET("/api/filter", filterUnits)
	r.POST("/api/search/advanced", advancedSearchUnits)
	r.GET("/api/search/facets", getSearchFacets)
	r.POST("/api/search/reindex", reindexAllUnits)

	// Rate limiter stats endpoint
	r.GET("/api/ratelimit/stats", getRateLimitStats)

	// Admin API routes (requires authentication in production)
	if gormDB != nil {
		adminHandler := handlers.NewAdminHandler(gormDB, engine, appScheduler, rateLimiter)

		// Batch distribution trigger, rate limited inside the handler
		r.POST("/api/distribute", adminHandler.TriggerDistribution)

		admin := r.Group("/api/admin")
		{
			// Statistics
			admin.GET("/stats", adminHandler.GetStats)
			admin.GET("/assignments", adminHandler.GetRecentAssignments)
			admin.GET("/runs", adminHandler.GetRuns)
			admin.GET("/sector-stats", adminHandler.GetSectorStats)
			admin.GET("/difficulty-distribution", adminHandler.GetDifficultyDistribution)

			// Distribution control
			admin.POST("/distribution/trigger", adminHandler.TriggerDistribution)

			// Cleanup operations
			admin.POST("/cleanup/run", adminHandler.RunCleanup)
			admin.GET("/cleanup/logs", adminHandler.GetPurgeLogs)
		}

		log.Println("Admin API routes registered at /api/admin/*")
	}

	port := getEnv("PORT", "8080")
	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now(),
	})
}

// fetchUnits hits whichever database backend is active
func fetchUnits(filter database.UnitFilter) ([]models.Unit, error) {
	if gormDB != nil {
		return gormDB.FetchUnits(filter)
	}
	return db.FetchUnits(filter)
}

func fetchAgents() ([]models.Agent, error) {
	if gormDB != nil {
		return gormDB.FetchAgents()
	}
	return db.FetchAgents()
}

func commitAssignment(unitID string, agentID *string, balanceScore float64) error {
	if gormDB != nil {
		return gormDB.CommitAssignment(unitID, agentID, balanceScore)
	}
	return db.CommitAssignment(unitID, agentID, balanceScore)
}

func getUnits(c *gin.Context) {
	filter := database.UnitFilter{
		Status:  c.Query("status"),
		Sector:  c.Query("sector"),
		AgentID: c.Query("agent_id"),
		SortBy:  c.Query("sort"),
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, parseErr := strconv.Atoi(limitStr); parseErr == nil && limit > 0 {
			filter.Limit = limit
		}
	}

	units, err := fetchUnits(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"units": units,
		"count": len(units),
	})
}

func getUnit(c *gin.Context) {
	id := c.Param("id")
	var unit *models.Unit
	var err error

	if gormDB != nil {
		unit, err = gormDB.GetUnitByID(id)
	} else {
		unit, err = db.GetUnitByID(id)
	}

	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unit not found"})
		return
	}

	response := gin.H{
		"unit":       unit,
		"unit_score": engine.UnitScore(*unit),
	}
	if err := distribution.ValidateUnit(*unit); err != nil {
		response["validation_error"] = err.Error()
	}

	c.JSON(http.StatusOK, response)
}

func createUnit(c *gin.Context) {
	var unit models.Unit
	if err := c.ShouldBindJSON(&unit); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if unit.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if unit.Difficulty == 0 {
		unit.Difficulty = 1
	}
	if err := distribution.ValidateUnit(unit); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// New units never arrive with assignment state
	unit.ID = ""
	unit.AgentID = nil
	unit.Status = models.UnitStatusAvailable

	var err error
	if gormDB != nil {
		err = gormDB.SaveUnit(&unit)
	} else {
		err = db.SaveUnit(&unit)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := searchClient.IndexUnit(&unit); err != nil {
		log.Printf("Warning: Failed to index unit %s: %v", unit.ID, err)
	}

	c.JSON(http.StatusCreated, gin.H{"unit": unit})
}

func updateUnit(c *gin.Context) {
	id := c.Param("id")

	var unit models.Unit
	if err := c.ShouldBindJSON(&unit); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	unit.ID = id

	if unit.Difficulty == 0 {
		unit.Difficulty = 1
	}
	if err := distribution.ValidateUnit(unit); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var err error
	if gormDB != nil {
		if _, err = gormDB.GetUnitByID(id); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unit not found"})
			return
		}
		err = gormDB.SaveUnit(&unit)
	} else {
		if _, err = db.GetUnitByID(id); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unit not found"})
			return
		}
		err = db.SaveUnit(&unit)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := searchClient.IndexUnit(&unit); err != nil {
		log.Printf("Warning: Failed to index unit %s: %v", unit.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{"unit": unit})
}

func deleteUnit(c *gin.Context) {
	if gormDB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Unit deletion requires MySQL/GORM",
		})
		return
	}

	id := c.Param("id")
	if _, err := gormDB.GetUnitByID(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unit not found"})
		return
	}

	if err := gormDB.DeleteUnit(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := searchClient.DeleteUnit(id); err != nil {
		log.Printf("Warning: Failed to remove unit %s from index: %v", id, err)
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func setUnitStatus(c *gin.Context) {
	if gormDB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Status updates require MySQL/GORM",
		})
		return
	}

	id := c.Param("id")

	var req struct {
		Status models.UnitStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.Status {
	case models.UnitStatusAvailable, models.UnitStatusAssigned, models.UnitStatusInactive:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	if _, err := gormDB.GetUnitByID(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unit not found"})
		return
	}

	if err := gormDB.SetUnitStatus(id, req.Status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	unit, err := gormDB.GetUnitByID(id)
	if err == nil {
		if indexErr := searchClient.IndexUnit(unit); indexErr != nil {
			log.Printf("Warning: Failed to index unit %s: %v", id, indexErr)
		}
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "status": req.Status})
}

func getAgents(c *gin.Context) {
	agents, err := fetchAgents()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"agents": agents,
		"count":  len(agents),
	})
}

// findAgent works against both backends; the raw SQL layer has no
// single-agent lookup.
func findAgent(id string) (*models.Agent, error) {
	if gormDB != nil {
		return gormDB.GetAgentByID(id)
	}

	agents, err := db.FetchAgents()
	if err != nil {
		return nil, err
	}
	for i := range agents {
		if agents[i].ID == id {
			return &agents[i], nil
		}
	}
	return nil, database.ErrAgentNotFound
}

func getAgent(c *gin.Context) {
	id := c.Param("id")

	agent, err := findAgent(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Agent not found"})
		return
	}

	var units []models.Unit
	if gormDB != nil {
		units, err = gormDB.GetAssignedUnits(id)
	} else {
		units, err = db.GetAssignedUnits(id)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	load := engine.Aggregate([]models.Agent{*agent}, units)[id]

	c.JSON(http.StatusOK, gin.H{
		"agent": agent,
		"units": units,
		"load":  load,
	})
}

func createAgent(c *gin.Context) {
	var agent models.Agent
	if err := c.ShouldBindJSON(&agent); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if agent.Name == "" || agent.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and email are required"})
		return
	}

	agent.ID = ""
	agent.AssignmentsTotal = 0

	var err error
	if gormDB != nil {
		err = gormDB.SaveAgent(&agent)
	} else {
		err = db.SaveAgent(&agent)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"agent": agent})
}

func updateAgent(c *gin.Context) {
	id := c.Param("id")

	if _, err := findAgent(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Agent not found"})
		return
	}

	var agent models.Agent
	if err := c.ShouldBindJSON(&agent); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	agent.ID = id

	if agent.Name == "" || agent.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and email are required"})
		return
	}

	var err error
	if gormDB != nil {
		err = gormDB.SaveAgent(&agent)
	} else {
		err = db.SaveAgent(&agent)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"agent": agent})
}

func deleteAgent(c *gin.Context) {
	if gormDB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Agent deletion requires MySQL/GORM",
		})
		return
	}

	id := c.Param("id")
	if _, err := gormDB.GetAgentByID(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Agent not found"})
		return
	}

	if err := gormDB.DeleteAgent(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func getRecommendation(c *gin.Context) {
	id := c.Param("id")

	var unit *models.Unit
	var err error
	if gormDB != nil {
		unit, err = gormDB.GetUnitByID(id)
	} else {
		unit, err = db.GetUnitByID(id)
	}
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unit not found"})
		return
	}

	if err := distribution.ValidateUnit(*unit); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	units, err := fetchUnits(database.UnitFilter{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	agents, err := fetchAgents()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	summaries := engine.Aggregate(agents, units)
	agentID, ok := engine.Recommend(*unit, agents, summaries)
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "No agents available"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"unit_id":    id,
		"agent_id":   agentID,
		"unit_score": engine.UnitScore(*unit),
	})
}

func assignUnit(c *gin.Context) {
	id := c.Param("id")

	var req struct {
		AgentID string `json:"agent_id"`
	}
	// Empty body means "pick the agent for me"
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var unit *models.Unit
	var err error
	if gormDB != nil {
		unit, err = gormDB.GetUnitByID(id)
	} else {
		unit, err = db.GetUnitByID(id)
	}
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unit not found"})
		return
	}

	if unit.Status == models.UnitStatusInactive {
		c.JSON(http.StatusConflict, gin.H{"error": "Unit is inactive"})
		return
	}

	units, err := fetchUnits(database.UnitFilter{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	agents, err := fetchAgents()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	summaries := engine.Aggregate(agents, units)

	agentID := req.AgentID
	if agentID == "" {
		if err := distribution.ValidateUnit(*unit); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		recommended, ok := engine.Recommend(*unit, agents, summaries)
		if !ok {
			c.JSON(http.StatusConflict, gin.H{"error": "No agents available"})
			return
		}
		agentID = recommended
	}

	balanceScore := engine.AddUnit(summaries[agentID], *unit).BalanceScore

	if err := commitAssignment(id, &agentID, balanceScore); err != nil {
		switch err {
		case database.ErrUnitNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Unit not found"})
		case database.ErrAgentNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Agent not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	reindexUnit(id)

	c.JSON(http.StatusOK, gin.H{
		"unit_id":       id,
		"agent_id":      agentID,
		"balance_score": balanceScore,
	})
}

func releaseUnit(c *gin.Context) {
	id := c.Param("id")

	if err := commitAssignment(id, nil, 0); err != nil {
		if err == database.ErrUnitNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	reindexUnit(id)

	c.JSON(http.StatusOK, gin.H{"unit_id": id, "status": models.UnitStatusAvailable})
}

// reindexUnit pushes a unit's current state into the search index,
// best effort
func reindexUnit(id string) {
	var unit *models.Unit
	var err error
	if gormDB != nil {
		unit, err = gormDB.GetUnitByID(id)
	} else {
		unit, err = db.GetUnitByID(id)
	}
	if err != nil {
		return
	}
	if err := searchClient.IndexUnit(unit); err != nil {
		log.Printf("Warning: Failed to index unit %s: %v", id, err)
	}
}

func getLoad(c *gin.Context) {
	units, err := fetchUnits(database.UnitFilter{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	agents, err := fetchAgents()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	summaries := engine.Aggregate(agents, units)

	c.JSON(http.StatusOK, gin.H{
		"summaries":      summaries,
		"global_balance": distribution.GlobalBalance(summaries),
	})
}

func getAgentRoute(c *gin.Context) {
	id := c.Param("id")

	if _, err := findAgent(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Agent not found"})
		return
	}

	var units []models.Unit
	var err error
	if gormDB != nil {
		units, err = gormDB.GetAssignedUnits(id)
	} else {
		units, err = db.GetAssignedUnits(id)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Optional starting point, both coordinates required
	var base *distribution.Coordinate
	latStr, lngStr := c.Query("base_lat"), c.Query("base_lng")
	if latStr != "" && lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr != nil || lngErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid base coordinates"})
			return
		}
		base = &distribution.Coordinate{Lat: lat, Lng: lng}
	}

	route := distribution.BuildRoute(id, units, base)

	c.JSON(http.StatusOK, route)
}

func getUnitHistory(c *gin.Context) {
	if historyService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "History is not available (requires MySQL/GORM)",
		})
		return
	}

	id := c.Param("id")
	limitStr := c.DefaultQuery("limit", "30")
	limit, _ := strconv.Atoi(limitStr)

	records, err := historyService.GetUnitHistory(id, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	current, err := historyService.GetOpenRecord(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"unit_id": id,
		"records": records,
		"current": current,
		"count":   len(records),
	})
}

func getAgentHistory(c *gin.Context) {
	if historyService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "History is not available (requires MySQL/GORM)",
		})
		return
	}

	id := c.Param("id")
	limitStr := c.DefaultQuery("limit", "30")
	limit, _ := strconv.Atoi(limitStr)

	records, err := historyService.GetAgentHistory(id, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"agent_id": id,
		"records":  records,
		"count":    len(records),
	})
}

func searchUnits(c *gin.Context) {
	query := c.Query("q")
	limitStr := c.DefaultQuery("limit", "20")

	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil {
		limit = 20
	}

	// If no query, get all from database
	if query == "" {
		units, err := fetchUnits(database.UnitFilter{Limit: int(limit)})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, units)
		return
	}

	// Search using Meilisearch
	units, err := searchClient.Search(query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, units)
}

func filterUnits(c *gin.Context) {
	query := c.Query("q")
	limitStr := c.DefaultQuery("limit", "20")

	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil {
		limit = 20
	}

	params := search.FilterParams{
		Query:  query,
		Status: c.Query("status"),
		Limit:  limit,
	}

	if sectors := c.QueryArray("sector"); len(sectors) > 0 {
		params.Sectors = sectors
	}

	if minDiffStr := c.Query("min_difficulty"); minDiffStr != "" {
		if minDiff, err := strconv.Atoi(minDiffStr); err == nil {
			params.MinDifficulty = &minDiff
		}
	}
	if maxDiffStr := c.Query("max_difficulty"); maxDiffStr != "" {
		if maxDiff, err := strconv.Atoi(maxDiffStr); err == nil {
			params.MaxDifficulty = &maxDiff
		}
	}
	if minRoomsStr := c.Query("min_rooms"); minRoomsStr != "" {
		if minRooms, err := strconv.Atoi(minRoomsStr); err == nil {
			params.MinRooms = &minRooms
		}
	}

	if sortBy := c.Query("sort_by"); sortBy != "" {
		params.SortBy = sortBy
	}

	// If no query and no filters, get all from database
	if query == "" && params.Status == "" && len(params.Sectors) == 0 &&
		params.MinDifficulty == nil && params.MaxDifficulty == nil && params.MinRooms == nil {
		units, err := fetchUnits(database.UnitFilter{Limit: int(limit)})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, units)
		return
	}

	// Search with filters using Meilisearch
	units, err := searchClient.FilterSearch(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, units)
}

func advancedSearchUnits(c *gin.Context) {
	var reqBody struct {
		Query         string   `json:"query"`
		Limit         int64    `json:"limit"`
		Offset        int64    `json:"offset"`
		Status        string   `json:"status"`
		Sectors       []string `json:"sectors"`
		MinDifficulty *int     `json:"min_difficulty"`
		MaxDifficulty *int     `json:"max_difficulty"`
		MinRooms      *int     `json:"min_rooms"`
		Sort          string   `json:"sort"` // "difficulty_desc", "area_desc", etc.
		Facets        []string `json:"facets"`
	}

	if err := c.ShouldBindJSON(&reqBody); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Build filter conditions
	filters := []string{}

	if reqBody.Status != "" {
		filters = append(filters, fmt.Sprintf("status = '%s'", reqBody.Status))
	}
	if reqBody.MinDifficulty != nil {
		filters = append(filters, fmt.Sprintf("difficulty >= %d", *reqBody.MinDifficulty))
	}
	if reqBody.MaxDifficulty != nil {
		filters = append(filters, fmt.Sprintf("difficulty <= %d", *reqBody.MaxDifficulty))
	}
	if reqBody.MinRooms != nil {
		filters = append(filters, fmt.Sprintf("rooms >= %d", *reqBody.MinRooms))
	}
	if len(reqBody.Sectors) > 0 {
		sectorFilters := make([]string, len(reqBody.Sectors))
		for i, sector := range reqBody.Sectors {
			sectorFilters[i] = fmt.Sprintf("sector = '%s'", sector)
		}
		filters = append(filters, "("+strings.Join(sectorFilters, " OR ")+")")
	}

	// Build sort conditions
	sortConditions := []string{}
	switch reqBody.Sort {
	case "difficulty_asc":
		sortConditions = append(sortConditions, "difficulty:asc")
	case "difficulty_desc":
		sortConditions = append(sortConditions, "difficulty:desc")
	case "area_desc":
		sortConditions = append(sortConditions, "area_m2:desc")
	case "distance_asc":
		sortConditions = append(sortConditions, "distance_km:asc")
	case "newest":
		sortConditions = append(sortConditions, "created_at:desc")
	}

	// Default facets
	facets := reqBody.Facets
	if len(facets) == 0 {
		facets = []string{"sector", "status"}
	}

	searchReq := search.SearchRequest{
		Query:        reqBody.Query,
		Limit:        reqBody.Limit,
		Offset:       reqBody.Offset,
		Filter:       filters,
		Sort:         sortConditions,
		FacetsFilter: facets,
	}

	if searchReq.Limit == 0 {
		searchReq.Limit = 20
	}

	result, err := searchClient.AdvancedSearch(searchReq)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hits":            result.Hits,
		"total_hits":      result.TotalHits,
		"facets":          result.Facets,
		"processing_time": result.ProcessingTime,
		"query":           reqBody.Query,
		"filters":         filters,
	})
}

// getSearchFacets retrieves facet distributions
func getSearchFacets(c *gin.Context) {
	facetsParam := c.DefaultQuery("facets", "sector,status")
	facets := strings.Split(facetsParam, ",")

	facetDist, err := searchClient.GetFacets(facets)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"facets": facetDist,
	})
}

// reindexAllUnits re-indexes all units from database to Meilisearch
func reindexAllUnits(c *gin.Context) {
	log.Println("[Reindex] Starting full reindex of all units")

	units, err := fetchUnits(database.UnitFilter{})
	if err != nil {
		log.Printf("[Reindex] Error fetching units from database: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch units from database",
		})
		return
	}

	log.Printf("[Reindex] Found %d units in database", len(units))

	successCount := 0
	failCount := 0

	for i, unit := range units {
		if err := searchClient.IndexUnit(&unit); err != nil {
			log.Printf("[Reindex] Error indexing unit %d (%s): %v", i+1, unit.ID, err)
			failCount++
		} else {
			successCount++
		}

		// Log progress every 100 units
		if (i+1)%100 == 0 {
			log.Printf("[Reindex] Progress: %d/%d indexed", i+1, len(units))
		}
	}

	log.Printf("[Reindex] Reindex complete. Success: %d, Failed: %d", successCount, failCount)

	c.JSON(http.StatusOK, gin.H{
		"message": "Reindex complete",
		"total":   len(units),
		"indexed": successCount,
		"failed":  failCount,
	})
}

// getRateLimitStats returns current rate limiter statistics
func getRateLimitStats(c *gin.Context) {
	stats := rateLimiter.GetStats()
	c.JSON(http.StatusOK, stats)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrConfig returns config value if set, otherwise falls back to environment variable, then default
func getEnvOrConfig(configValue, envKey, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	return getEnv(envKey, defaultValue)
}
