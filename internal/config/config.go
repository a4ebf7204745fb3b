package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	APIKey      string `env:"API_KEY"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"`
	LogDir      string `env:"LOG_DIR"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"liveops"`
	Version     string `env:"VERSION" envDefault:"dev"`

	// HTTP hardening
	TrustedProxies []string      `env:"TRUSTED_PROXIES" envSeparator:","`
	RateLimit      int           `env:"RATE_LIMIT" envDefault:"1000"`
	RateWindow     time.Duration `env:"RATE_WINDOW" envDefault:"5m"`
	MaxBodyBytes   int64         `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	ShutdownWait   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Store
	StoreDriver  string        `env:"STORE_DRIVER" envDefault:"postgres"`
	DBUser       string        `env:"DB_USER" envDefault:"postgres"`
	DBPassword   string        `env:"DB_PASSWORD" envDefault:"postgres"`
	DBHost       string        `env:"DB_HOST" envDefault:"localhost"`
	DBPort       string        `env:"DB_PORT" envDefault:"5432"`
	DBName       string        `env:"DB_NAME" envDefault:"liveops"`
	DBMaxConns   int32         `env:"DB_MAX_CONNS" envDefault:"20"`
	SQLitePath   string        `env:"SQLITE_PATH" envDefault:"data/liveops.db"`
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`

	// Cache
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"90s"`
	CacheSize int           `env:"CACHE_SIZE" envDefault:"512"`

	// Background schedules: cron specs or "@every <duration>"
	SweepSchedule    string `env:"SWEEP_INTERVAL" envDefault:"@every 1m"`
	DailySchedule    string `env:"DAILY_CHECK" envDefault:"@every 10m"`
	WeeklySchedule   string `env:"WEEKLY_CHECK" envDefault:"@every 1h"`
	SeasonalSchedule string `env:"SEASONAL_CHECK" envDefault:"@every 6h"`
	WeatherSchedule  string `env:"WEATHER_CHECK" envDefault:"@every 30m"`
	SpecialSchedule  string `env:"SPECIAL_CHECK" envDefault:"0 */6 * * *"`
	PatternSchedule  string `env:"PATTERN_CHECK" envDefault:"@every 15m"`

	// Worker pool
	WorkerCount     int           `env:"WORKER_COUNT" envDefault:"4"`
	WorkerQueueSize int           `env:"WORKER_QUEUE_SIZE" envDefault:"64"`
	JobTimeout      time.Duration `env:"JOB_TIMEOUT" envDefault:"2m"`

	// External collaborators
	WeatherAPIURL  string  `env:"WEATHER_API_URL"`
	WeatherAPIKey  string  `env:"WEATHER_API_KEY"`
	WeatherLat     float64 `env:"WEATHER_LAT" envDefault:"51.5074"`
	WeatherLon     float64 `env:"WEATHER_LON" envDefault:"-0.1278"`
	EconomyAPIURL  string  `env:"ECONOMY_API_URL"`
	EconomyAPIKey  string  `env:"ECONOMY_API_KEY"`
	DiscordToken   string  `env:"DISCORD_TOKEN"`
	DiscordChannel string  `env:"DISCORD_CHANNEL_ID"`

	// Catalog and notifications
	CatalogPath     string        `env:"EVENT_CATALOG_PATH" envDefault:"configs/events/catalog.yaml"`
	DeadLetterPath  string        `env:"EVENT_DEAD_LETTER_PATH" envDefault:"logs/event_deadletter.jsonl"`
	EventMaxRetries int           `env:"EVENT_MAX_RETRIES" envDefault:"5"`
	EventRetryDelay time.Duration `env:"EVENT_RETRY_DELAY" envDefault:"2s"`

	// Progress
	ProgressMergeMode string `env:"PROGRESS_MERGE_MODE" envDefault:"overwrite"`
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.APIKey == "" {
		return nil, errors.New("API_KEY environment variable must be set for security")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT value: %d", cfg.Port)
	}

	cfg.StoreDriver = strings.ToLower(cfg.StoreDriver)
	switch cfg.StoreDriver {
	case StoreDriverPostgres, StoreDriverSQLite:
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q: want %s or %s", cfg.StoreDriver, StoreDriverPostgres, StoreDriverSQLite)
	}

	cfg.ProgressMergeMode = strings.ToLower(cfg.ProgressMergeMode)
	switch cfg.ProgressMergeMode {
	case MergeModeOverwrite, MergeModeAccumulate:
	default:
		return nil, fmt.Errorf("invalid PROGRESS_MERGE_MODE %q", cfg.ProgressMergeMode)
	}

	if cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("CACHE_TTL must be positive, got %s", cfg.CacheTTL)
	}
	return cfg, nil
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}

// WeatherEnabled reports whether a live weather provider is configured.
func (c *Config) WeatherEnabled() bool {
	return c.WeatherAPIURL != "" && c.WeatherAPIKey != ""
}

// DiscordEnabled reports whether Discord announcements are configured.
func (c *Config) DiscordEnabled() bool {
	return c.DiscordToken != "" && c.DiscordChannel != ""
}
