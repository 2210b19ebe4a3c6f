package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("cron", validateCron)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	return NewValidator().Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	if err := cv.validator.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateCron(fl validator.FieldLevel) bool {
	_, err := cron.ParseStandard(fl.Field().String())
	return err == nil
}

func validateCrossField(cfg *Config) error {
	if cfg.App.HistorySource == "postgres" {
		if cfg.Database.Host == "" || cfg.Database.Name == "" || cfg.Database.User == "" {
			return fmt.Errorf("database host, name and user are required when history_source is postgres")
		}
		if cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections {
			return fmt.Errorf("max_idle_connections cannot exceed max_connections")
		}
	}

	if cfg.App.HistorySource == "sqlite" && cfg.LocalStore.Path == "" {
		return fmt.Errorf("local_store.path is required when history_source is sqlite")
	}

	if cfg.Models.RemoteEnabled {
		if cfg.Models.RemoteBaseURL == "" || cfg.Models.RemoteContainer == "" {
			return fmt.Errorf("models.remote_base_url and models.remote_container are required when remote storage is enabled")
		}
	}

	if cfg.Market.Enabled && cfg.Market.BaseURL == "" {
		return fmt.Errorf("market.base_url is required when the market signal is enabled")
	}

	if cfg.Ingestion.Enabled && (cfg.Ingestion.BaseURL == "" || cfg.Ingestion.APIKey == "") {
		return fmt.Errorf("ingestion.base_url and ingestion.api_key are required when ingestion is enabled")
	}

	if cfg.DocStore.Driver == "redis" && cfg.DocStore.RedisAddr == "" {
		return fmt.Errorf("docstore.redis_addr is required for the redis driver")
	}

	if cfg.IsProduction() && cfg.App.HistorySource == "postgres" && cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
	}

	return nil
}

func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var b strings.Builder
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()

		switch tag {
		case "required":
			b.WriteString(fmt.Sprintf("- Field '%s' is required\n", field))
		case "min", "max":
			b.WriteString(fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag))
		case "gt", "gte", "lt", "lte":
			b.WriteString(fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag))
		case "environment":
			b.WriteString(fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field))
		case "loglevel":
			b.WriteString(fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field))
		case "cron":
			b.WriteString(fmt.Sprintf("- Field '%s' must be a standard cron expression, got '%v'\n", field, fieldError.Value()))
		case "oneof":
			b.WriteString(fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, fieldError.Value()))
		default:
			b.WriteString(fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag))
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", b.String())
}
