// Package config provides configuration management for the rugby predictor.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	LocalStore LocalStoreConfig `mapstructure:"local_store"`
	Models     ModelsConfig     `mapstructure:"models" validate:"required"`
	Features   FeaturesConfig   `mapstructure:"features" validate:"required"`
	Training   TrainingConfig   `mapstructure:"training" validate:"required"`
	Predictor  PredictorConfig  `mapstructure:"predictor" validate:"required"`
	Market     MarketConfig     `mapstructure:"market"`
	Ingestion  IngestionConfig  `mapstructure:"ingestion"`
	Backtest   BacktestConfig   `mapstructure:"backtest" validate:"required"`
	DocStore   DocStoreConfig   `mapstructure:"docstore" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name          string `mapstructure:"name" validate:"required"`
	Environment   string `mapstructure:"environment" validate:"required,environment"`
	LogLevel      string `mapstructure:"log_level" validate:"required,loglevel"`
	HistorySource string `mapstructure:"history_source" validate:"required,oneof=postgres sqlite"`
}

// DatabaseConfig represents the Postgres connection holding historical fixtures
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"omitempty,gt=0"`
}

// LocalStoreConfig represents the SQLite file used for offline runs
type LocalStoreConfig struct {
	Path string `mapstructure:"path"`
}

// ModelsConfig describes where trained league bundles live
type ModelsConfig struct {
	LocalDir               string `mapstructure:"local_dir" validate:"required"`
	ScratchDir             string `mapstructure:"scratch_dir"`
	RemoteEnabled          bool   `mapstructure:"remote_enabled"`
	RemoteBaseURL          string `mapstructure:"remote_base_url"`
	RemoteContainer        string `mapstructure:"remote_container"`
	DownloadTimeoutSeconds int    `mapstructure:"download_timeout_seconds" validate:"required,gt=0"`
	RetryAttempts          int    `mapstructure:"retry_attempts" validate:"gte=0,lte=10"`
}

// FeaturesConfig controls the rating and form columns of the feature table
type FeaturesConfig struct {
	RatingK       float64 `mapstructure:"rating_k" validate:"required,gt=0"`
	InitialRating float64 `mapstructure:"initial_rating" validate:"required,gt=0"`
	HomeAdvantage float64 `mapstructure:"home_advantage" validate:"gte=0"`
	NeutralVenue  bool    `mapstructure:"neutral_venue"`
	FormWindow    int     `mapstructure:"form_window" validate:"required,gt=0"`
}

// TrainingConfig controls classifier and regressor fitting
type TrainingConfig struct {
	Seed         int64   `mapstructure:"seed"`
	Iterations   int     `mapstructure:"iterations" validate:"required,gt=0"`
	LearningRate float64 `mapstructure:"learning_rate" validate:"required,gt=0"`
	L2           float64 `mapstructure:"l2" validate:"gte=0"`
}

// PredictorConfig holds ensemble defaults
type PredictorConfig struct {
	DefaultHomeScore  float64 `mapstructure:"default_home_score" validate:"gte=0"`
	DefaultAwayScore  float64 `mapstructure:"default_away_score" validate:"gte=0"`
	PlaceholderLean   float64 `mapstructure:"placeholder_lean" validate:"gte=0,lt=0.5"`
	NeutralConfidence float64 `mapstructure:"neutral_confidence" validate:"gte=0,lte=1"`
}

// MarketConfig describes the best-effort odds provider
type MarketConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	BaseURL        string  `mapstructure:"base_url"`
	APIKey         string  `mapstructure:"api_key"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"omitempty,gt=0"`
	MaxRetries     int     `mapstructure:"max_retries" validate:"gte=0,lte=5"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"omitempty,gt=0"`
}

// IngestionConfig describes the fixtures provider synced into the history store
type IngestionConfig struct {
	Enabled        bool              `mapstructure:"enabled"`
	BaseURL        string            `mapstructure:"base_url"`
	APIKey         string            `mapstructure:"api_key"`
	Seasons        []string          `mapstructure:"seasons"`
	Leagues        []int64           `mapstructure:"leagues"`
	SyncCron       string            `mapstructure:"sync_cron" validate:"omitempty,cron"`
	TeamAliases    map[string]string `mapstructure:"team_aliases"`
	TimeoutSeconds int               `mapstructure:"timeout_seconds" validate:"omitempty,gt=0"`
	MaxRetries     int               `mapstructure:"max_retries" validate:"gte=0,lte=5"`
	RateLimit      float64           `mapstructure:"rate_limit" validate:"omitempty,gt=0"`
}

// BacktestConfig represents walk-forward backtest configuration
type BacktestConfig struct {
	MinTrainGames      int     `mapstructure:"min_train_games" validate:"required,gt=0"`
	MaxDurationSeconds int     `mapstructure:"max_duration_seconds" validate:"required,gt=0"`
	CacheTTLMinutes    int     `mapstructure:"cache_ttl_minutes" validate:"gte=0"`
	RefreshCron        string  `mapstructure:"refresh_cron" validate:"omitempty,cron"`
	Leagues            []int64 `mapstructure:"leagues"`
	OutputPath         string  `mapstructure:"output_path"`
}

// DocStoreConfig selects the document store for metric documents and backtest results
type DocStoreConfig struct {
	Driver        string `mapstructure:"driver" validate:"required,oneof=memory redis"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" validate:"gte=0"`
	KeyPrefix     string `mapstructure:"key_prefix"`
}

// ServerConfig represents the HTTP adapter configuration
type ServerConfig struct {
	Port                int `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeoutSeconds  int `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSeconds int `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// DownloadTimeout returns the artifact download timeout
func (c *Config) DownloadTimeout() time.Duration {
	return time.Duration(c.Models.DownloadTimeoutSeconds) * time.Second
}

// BacktestBudget returns the maximum wall time of a single backtest run
func (c *Config) BacktestBudget() time.Duration {
	return time.Duration(c.Backtest.MaxDurationSeconds) * time.Second
}
