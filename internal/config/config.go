package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"dispatch-portal/internal/distribution"
)

// Config represents the application configuration
type Config struct {
	Database     DatabaseConfig     `yaml:"database"`
	Search       SearchConfig       `yaml:"search"`
	Engine       EngineConfig       `yaml:"engine"`
	Distribution DistributionConfig `yaml:"distribution"`
	Cleanup      CleanupConfig      `yaml:"cleanup"`
	RateLimit    RateLimitConfig    `yaml:"rate_limit"`
	Logging      LoggingConfig      `yaml:"logging"`
	Timezone     string             `yaml:"timezone"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Type     string         `yaml:"type"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// SearchConfig contains search engine settings
type SearchConfig struct {
	Meilisearch MeilisearchConfig `yaml:"meilisearch"`
}

// MeilisearchConfig contains Meilisearch connection settings
type MeilisearchConfig struct {
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key"`
}

// EngineConfig contains the workload scoring parameters
type EngineConfig struct {
	Weights             distribution.Weights `yaml:"weights"`
	SectorAffinityBonus float64              `yaml:"sector_affinity_bonus"`
}

// DistributionConfig contains batch distribution settings
type DistributionConfig struct {
	DailyRunEnabled bool   `yaml:"daily_run_enabled"`
	DailyRunTime    string `yaml:"daily_run_time"`
	MaxBatchSize    int    `yaml:"max_batch_size"`
}

// CleanupConfig contains assignment history retention settings
type CleanupConfig struct {
	RetentionDays    int `yaml:"retention_days"`
	MaxDeletionCount int `yaml:"max_deletion_count"`
}

// RateLimitConfig contains rate limiting settings for batch endpoints
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	RequestsPerHour   int  `yaml:"requests_per_hour"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level       string `yaml:"level"`
	LogRequests bool   `yaml:"log_requests"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Weights:             distribution.DefaultWeights(),
			SectorAffinityBonus: distribution.DefaultSectorBonus,
		},
		Distribution: DistributionConfig{
			DailyRunEnabled: false,
			DailyRunTime:    "06:00",
			MaxBatchSize:    500,
		},
		Cleanup: CleanupConfig{
			RetentionDays:    365,
			MaxDeletionCount: 10000,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 10,
			RequestsPerHour:   60,
		},
		Logging: LoggingConfig{
			Level:       "info",
			LogRequests: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	// Start with default config
	config := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// NewEngine builds a distribution engine from the configured parameters.
// Zero values fall back to the engine defaults so a partial YAML section
// cannot silently turn the weighting off.
func (c *EngineConfig) NewEngine() *distribution.Engine {
	w := c.Weights
	if w == (distribution.Weights{}) {
		w = distribution.DefaultWeights()
	}
	bonus := c.SectorAffinityBonus
	if bonus == 0 {
		bonus = distribution.DefaultSectorBonus
	}
	return distribution.NewEngineWithConfig(w, bonus)
}
