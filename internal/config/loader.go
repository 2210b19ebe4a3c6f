package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "RUGBY_PREDICTOR"

// Load reads and parses the configuration from file and environment variables.
// Placeholders of the form ${VAR_NAME} in the YAML file are expanded before parsing.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	setDefaults(v)
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration, falling back to defaults and environment
// variables when the file does not exist
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "rugby-predictor")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.history_source", "sqlite")

	v.SetDefault("local_store.path", "data/rugby.db")

	v.SetDefault("models.local_dir", "models")
	v.SetDefault("models.download_timeout_seconds", 60)
	v.SetDefault("models.retry_attempts", 3)

	v.SetDefault("features.rating_k", 32.0)
	v.SetDefault("features.initial_rating", 1500.0)
	v.SetDefault("features.home_advantage", 50.0)
	v.SetDefault("features.form_window", 5)

	v.SetDefault("training.seed", 42)
	v.SetDefault("training.iterations", 500)
	v.SetDefault("training.learning_rate", 0.1)
	v.SetDefault("training.l2", 0.01)

	v.SetDefault("predictor.default_home_score", 24.0)
	v.SetDefault("predictor.default_away_score", 20.0)
	v.SetDefault("predictor.placeholder_lean", 0.05)
	v.SetDefault("predictor.neutral_confidence", 0.5)

	v.SetDefault("market.timeout_seconds", 10)
	v.SetDefault("market.max_retries", 2)
	v.SetDefault("market.rate_limit", 2.0)

	v.SetDefault("ingestion.base_url", "https://www.thesportsdb.com/api/v1/json")
	v.SetDefault("ingestion.api_key", "3")
	v.SetDefault("ingestion.timeout_seconds", 30)
	v.SetDefault("ingestion.max_retries", 3)
	v.SetDefault("ingestion.rate_limit", 0.5)

	v.SetDefault("backtest.min_train_games", 30)
	v.SetDefault("backtest.max_duration_seconds", 840)
	v.SetDefault("backtest.cache_ttl_minutes", 0)

	v.SetDefault("docstore.driver", "memory")
	v.SetDefault("docstore.key_prefix", "rugby")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 900)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
