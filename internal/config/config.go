// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir                string // Base directory for all databases (always absolute)
	Port                   int
	LogLevel               string
	LogPretty              bool
	CORSAllowedOrigins     string  // Comma-separated list, "*" allows all
	ConcentrationThreshold float64 // Exposure percent at which a warning fires (inclusive)
	ExposureTopLimit       int     // Default cap on reported look-through entries, <=0 means unlimited
	HistoryRetentionDays   int     // Days of exposure history kept before pruning
	Refdata                *RefdataConfig
	Pricefeed              *PricefeedConfig
	Schedules              *ScheduleConfig
	Backup                 *BackupConfig
}

// RefdataConfig holds settings for the upstream reference-data API
type RefdataConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// PricefeedConfig holds settings for the live quote stream
type PricefeedConfig struct {
	Enabled bool
	URL     string
}

// ScheduleConfig holds cron expressions for the background jobs
type ScheduleConfig struct {
	Refresh     string
	Snapshot    string
	Maintenance string
	Backup      string
}

// BackupConfig holds S3-compatible backup storage settings
type BackupConfig struct {
	Enabled         bool
	Endpoint        string // Empty for AWS, set for S3-compatible stores
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	KeepDays        int // Remote backups older than this are pruned
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Determine data directory with fallback logic
	// 1. Check LENS_DATA_DIR environment variable
	// 2. If not set, default to ./data
	// 3. Always resolve to absolute path
	// 4. Ensure directory exists
	dataDir := getEnv("LENS_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:                absDataDir,
		Port:                   getEnvAsInt("PORT", 8080),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogPretty:              getEnvAsBool("LOG_PRETTY", false),
		CORSAllowedOrigins:     getEnv("CORS_ALLOWED_ORIGINS", "*"),
		ConcentrationThreshold: getEnvAsFloat("CONCENTRATION_THRESHOLD", 10.0),
		ExposureTopLimit:       getEnvAsInt("EXPOSURE_TOP_LIMIT", 20),
		HistoryRetentionDays:   getEnvAsInt("HISTORY_RETENTION_DAYS", 365),
		Refdata: &RefdataConfig{
			BaseURL: getEnv("REFDATA_API_URL", ""),
			APIKey:  getEnv("REFDATA_API_KEY", ""),
			Timeout: time.Duration(getEnvAsInt("REFDATA_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Pricefeed: &PricefeedConfig{
			Enabled: getEnvAsBool("PRICEFEED_ENABLED", false),
			URL:     getEnv("PRICEFEED_WS_URL", ""),
		},
		Schedules: &ScheduleConfig{
			Refresh:     getEnv("REFRESH_SCHEDULE", "0 6 * * *"),
			Snapshot:    getEnv("SNAPSHOT_SCHEDULE", "30 18 * * 1-5"),
			Maintenance: getEnv("MAINTENANCE_SCHEDULE", "0 3 * * 0"),
			Backup:      getEnv("BACKUP_SCHEDULE", "0 2 * * *"),
		},
		Backup: &BackupConfig{
			Enabled:         getEnvAsBool("BACKUP_ENABLED", false),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			Region:          getEnv("S3_REGION", "auto"),
			Bucket:          getEnv("S3_BUCKET", ""),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			KeepDays:        getEnvAsInt("BACKUP_KEEP_DAYS", 30),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	if c.ConcentrationThreshold <= 0 {
		return fmt.Errorf("concentration threshold must be positive, got %v", c.ConcentrationThreshold)
	}

	if c.Pricefeed.Enabled && c.Pricefeed.URL == "" {
		return fmt.Errorf("PRICEFEED_WS_URL is required when the price feed is enabled")
	}

	if c.Backup.Enabled {
		if c.Backup.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when backups are enabled")
		}
		if c.Backup.AccessKeyID == "" || c.Backup.SecretAccessKey == "" {
			return fmt.Errorf("S3 credentials are required when backups are enabled")
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
