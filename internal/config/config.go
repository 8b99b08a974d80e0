package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kapu/destiny-clan-bot-go/internal/constants"
)

type Config struct {
	Iris     IrisConfig
	Bungie   BungieConfig
	Schedule ScheduleConfig
	Storage  StorageConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Logging  LoggingConfig
	Bot      BotConfig
}

type IrisConfig struct {
	BaseURL string
	WSURL   string
}

type BungieConfig struct {
	APIKey  string
	GroupID string
	BaseURL string
}

type ScheduleConfig struct {
	ReconcileInterval   time.Duration
	ActivityTimeout     time.Duration
	ActivityConcurrency int
	OfflineCutoffDays   int
	RosterViewTTL       time.Duration
}

type StorageConfig struct {
	DataDir string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type PostgresConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type LoggingConfig struct {
	Level string
	File  string
}

type BotConfig struct {
	Prefix  string
	Name    string
	Version string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Iris: IrisConfig{
			BaseURL: getEnv("IRIS_BASE_URL", "http://localhost:3000"),
			WSURL:   getEnv("IRIS_WS_URL", "ws://localhost:3000/ws"),
		},
		Bungie: BungieConfig{
			APIKey:  getEnv("BUNGIE_API_KEY", ""),
			GroupID: getEnv("BUNGIE_GROUP_ID", ""),
			BaseURL: getEnv("BUNGIE_BASE_URL", constants.APIConfig.BungieBaseURL),
		},
		Schedule: ScheduleConfig{
			ReconcileInterval:   time.Duration(getEnvInt("RECONCILE_INTERVAL_SECONDS", int(constants.ScheduleConfig.ReconcileInterval/time.Second))) * time.Second,
			ActivityTimeout:     time.Duration(getEnvInt("ACTIVITY_TIMEOUT_SECONDS", int(constants.APIConfig.ActivityTimeout/time.Second))) * time.Second,
			ActivityConcurrency: getEnvInt("ACTIVITY_CONCURRENCY", constants.ScheduleConfig.ActivityConcurrency),
			OfflineCutoffDays:   getEnvInt("OFFLINE_CUTOFF_DAYS", constants.ScheduleConfig.OfflineCutoffDays),
			RosterViewTTL:       time.Duration(getEnvInt("ROSTER_VIEW_TTL_SECONDS", int(constants.CacheTTL.RosterView/time.Second))) * time.Second,
		},
		Storage: StorageConfig{
			DataDir: getEnv("DATA_DIR", "data"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			Enabled:  getEnvBool("POSTGRES_ENABLED", false),
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "clanbot"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "clanbot"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", "logs/bot.log"),
		},
		Bot: BotConfig{
			Prefix:  getEnv("BOT_PREFIX", "$"),
			Name:    getEnv("BOT_NAME", "BIG DRIFTER 2"),
			Version: getEnv("BOT_VERSION", "0.2.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Iris.BaseURL == "" {
		return fmt.Errorf("IRIS_BASE_URL is required")
	}
	if c.Iris.WSURL == "" {
		return fmt.Errorf("IRIS_WS_URL is required")
	}
	if c.Bungie.APIKey == "" {
		return fmt.Errorf("BUNGIE_API_KEY is required")
	}
	if c.Bungie.GroupID == "" {
		return fmt.Errorf("BUNGIE_GROUP_ID is required")
	}
	if c.Schedule.ReconcileInterval <= 0 {
		return fmt.Errorf("RECONCILE_INTERVAL_SECONDS must be positive")
	}
	if c.Schedule.ActivityTimeout <= 0 {
		return fmt.Errorf("ACTIVITY_TIMEOUT_SECONDS must be positive")
	}
	if c.Schedule.ActivityConcurrency <= 0 {
		return fmt.Errorf("ACTIVITY_CONCURRENCY must be positive")
	}
	if c.Schedule.OfflineCutoffDays <= 0 {
		return fmt.Errorf("OFFLINE_CUTOFF_DAYS must be positive")
	}
	if strings.TrimSpace(c.Storage.DataDir) == "" {
		return fmt.Errorf("DATA_DIR is required")
	}
	return nil
}

// DocumentPath resolves a persisted document name inside the data directory.
func (c *Config) DocumentPath(name string) string {
	return filepath.Join(c.Storage.DataDir, name)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
