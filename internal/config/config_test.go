package config

import (
	"strings"
	"testing"
	"time"
)

const (
	validConfigPath              = "testdata/valid_config.yaml"
	expansionConfigPath          = "testdata/expansion_config.yaml"
	expansionConfigMissingPath   = "testdata/expansion_config_missing.yaml"
	nonexistentConfigPath        = "testdata/nonexistent_config.yaml"
	expectedNoErrorLoadingConfig = "expected no error loading config, got %v"
	expectedNoErrorMsg           = "expected no error, got %v"
	rugbyPredictorName           = "rugby-predictor"
	developmentEnv               = "development"
	testAppName                  = "test-app"
	testDBPassword               = "TEST_DB_PASSWORD"
	testMissingVar               = "TEST_MISSING_VAR"
	expandedSecretValue          = "expanded_secret_value"
)

func loadValid(t *testing.T) *Config {
	t.Helper()
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}
	return cfg
}

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg := loadValid(t)

	if cfg.App.Name != rugbyPredictorName {
		t.Errorf("expected app name '%s', got '%s'", rugbyPredictorName, cfg.App.Name)
	}
	if cfg.App.Environment != developmentEnv {
		t.Errorf("expected environment '%s', got '%s'", developmentEnv, cfg.App.Environment)
	}
	if cfg.App.HistorySource != "sqlite" {
		t.Errorf("expected history source 'sqlite', got '%s'", cfg.App.HistorySource)
	}
	if cfg.Backtest.MinTrainGames != 30 {
		t.Errorf("expected min_train_games 30, got %d", cfg.Backtest.MinTrainGames)
	}
	if len(cfg.Backtest.Leagues) != 2 {
		t.Errorf("expected 2 refresh leagues, got %v", cfg.Backtest.Leagues)
	}
	if cfg.Ingestion.BaseURL != "https://www.thesportsdb.com/api/v1/json" {
		t.Errorf("expected default fixtures base url, got '%s'", cfg.Ingestion.BaseURL)
	}
	// viper lowercases map keys
	if cfg.Ingestion.TeamAliases["bath"] != "Bath Rugby" {
		t.Errorf("expected team alias for bath, got %v", cfg.Ingestion.TeamAliases)
	}
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	if _, err := Load(nonexistentConfigPath); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestLoadWithDefaultsMissingFile falls back to built-in defaults
func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}
	if cfg.DocStore.Driver != "memory" {
		t.Errorf("expected memory docstore by default, got '%s'", cfg.DocStore.Driver)
	}
	if cfg.BacktestBudget() != 840*time.Second {
		t.Errorf("expected 840s budget, got %s", cfg.BacktestBudget())
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

// TestLoadConfigEnvironmentVariables tests environment variable override
func TestLoadConfigEnvironmentVariables(t *testing.T) {
	t.Setenv("RUGBY_PREDICTOR_APP_NAME", testAppName)

	cfg := loadValid(t)
	if cfg.App.Name != testAppName {
		t.Errorf("expected app name '%s' from environment, got '%s'", testAppName, cfg.App.Name)
	}
}

// TestValidateSuccess tests validation of a valid configuration
func TestValidateSuccess(t *testing.T) {
	if err := Validate(loadValid(t)); err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "invalid environment",
			mutate: func(c *Config) { c.App.Environment = "invalid" },
			want:   "Environment",
		},
		{
			name:   "invalid log level",
			mutate: func(c *Config) { c.App.LogLevel = "verbose" },
			want:   "LogLevel",
		},
		{
			name:   "bad cron expression",
			mutate: func(c *Config) { c.Backtest.RefreshCron = "every day" },
			want:   "RefreshCron",
		},
		{
			name:   "placeholder lean too large",
			mutate: func(c *Config) { c.Predictor.PlaceholderLean = 0.6 },
			want:   "PlaceholderLean",
		},
		{
			name:   "unknown docstore driver",
			mutate: func(c *Config) { c.DocStore.Driver = "mongo" },
			want:   "Driver",
		},
		{
			name: "remote storage without container",
			mutate: func(c *Config) {
				c.Models.RemoteEnabled = true
				c.Models.RemoteBaseURL = "https://blob.example.com"
			},
			want: "remote_container",
		},
		{
			name: "ingestion without api key",
			mutate: func(c *Config) {
				c.Ingestion.Enabled = true
				c.Ingestion.APIKey = ""
			},
			want: "ingestion.api_key",
		},
		{
			name:   "bad sync cron",
			mutate: func(c *Config) { c.Ingestion.SyncCron = "hourly-ish" },
			want:   "SyncCron",
		},
		{
			name:   "redis driver without address",
			mutate: func(c *Config) { c.DocStore.Driver = "redis" },
			want:   "redis_addr",
		},
		{
			name: "postgres idle exceeds max",
			mutate: func(c *Config) {
				c.App.HistorySource = "postgres"
				c.Database.MaxIdleConnections = 20
			},
			want: "max_idle_connections",
		},
		{
			name: "production without ssl",
			mutate: func(c *Config) {
				c.App.Environment = "production"
				c.App.HistorySource = "postgres"
			},
			want: "SSL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadValid(t)
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got: %v", tt.want, err)
			}
		})
	}
}

// TestGetDatabaseDSN tests DSN generation
func TestGetDatabaseDSN(t *testing.T) {
	dsn := loadValid(t).GetDatabaseDSN()
	if !strings.HasPrefix(dsn, "postgres://") {
		t.Errorf("expected DSN to start with 'postgres://', got '%s'", dsn)
	}
	if !strings.Contains(dsn, "sslmode=disable") {
		t.Errorf("expected sslmode in DSN, got '%s'", dsn)
	}
}

// TestIsDevelopment tests environment check function
func TestIsDevelopment(t *testing.T) {
	cfg := &Config{App: AppConfig{Environment: developmentEnv}}

	if !cfg.IsDevelopment() {
		t.Error("expected IsDevelopment() to return true")
	}
	if cfg.IsProduction() {
		t.Error("expected IsProduction() to return false")
	}
}

// TestLoadConfigEnvironmentVariableExpansion tests environment variable expansion in config file
func TestLoadConfigEnvironmentVariableExpansion(t *testing.T) {
	t.Setenv(testDBPassword, expandedSecretValue)

	cfg, err := Load(expansionConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config with expansion, got %v", err)
	}
	if cfg.Database.Password != expandedSecretValue {
		t.Errorf("expected password '%s' from environment expansion, got '%s'", expandedSecretValue, cfg.Database.Password)
	}
}

// TestLoadConfigMissingEnvironmentVariable tests handling of missing environment variables
func TestLoadConfigMissingEnvironmentVariable(t *testing.T) {
	t.Setenv(testMissingVar, "")

	cfg, err := Load(expansionConfigMissingPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}
	// os.ExpandEnv replaces unset variables with the empty string
	if cfg.Database.Password != "" {
		t.Errorf("expected empty password, got %q", cfg.Database.Password)
	}
}

func TestOverlaySecretsOnConfig(t *testing.T) {
	cfg := loadValid(t)
	overlaySecretsOnConfig(cfg, &SecretsOverlay{OddsAPIKey: "odds-key", FixturesAPIKey: "fixtures-key", RedisPassword: "r3dis"})

	if cfg.Database.Password != "rugby" {
		t.Errorf("expected database password untouched, got %q", cfg.Database.Password)
	}
	if cfg.Market.APIKey != "odds-key" {
		t.Errorf("expected odds key overlay, got %q", cfg.Market.APIKey)
	}
	if cfg.Ingestion.APIKey != "fixtures-key" {
		t.Errorf("expected fixtures key overlay, got %q", cfg.Ingestion.APIKey)
	}
	if cfg.DocStore.RedisPassword != "r3dis" {
		t.Errorf("expected redis password overlay, got %q", cfg.DocStore.RedisPassword)
	}
}
