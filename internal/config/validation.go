package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var supportedMarkets = map[string]bool{
	"h2h":    true,
	"totals": true,
	"btts":   true,
}

var profileNames = map[string]bool{
	"conservative": true,
	"balanced":     true,
	"aggressive":   true,
}

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	mustRegister(v, "environment", validateEnvironment)
	mustRegister(v, "loglevel", validateLogLevel)
	mustRegister(v, "markets", validateMarkets)
	mustRegister(v, "profile", validateProfile)

	return &CustomValidator{validator: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	return NewValidator().Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	if err := cv.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
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

func validateMarkets(fl validator.FieldLevel) bool {
	markets, ok := fl.Field().Interface().([]string)
	if !ok || len(markets) == 0 {
		return false
	}
	for _, market := range markets {
		if !supportedMarkets[market] {
			return false
		}
	}
	return true
}

func validateProfile(fl validator.FieldLevel) bool {
	return profileNames[fl.Field().String()]
}

// validateCrossField performs checks that span several fields
func validateCrossField(cfg *Config) error {
	m := cfg.Model
	if m.H2HClampMin >= m.H2HClampMax {
		return fmt.Errorf("model.h2h_clamp_min must be below h2h_clamp_max")
	}
	if 3*m.H2HClampMin > 1 || 3*m.H2HClampMax < 1 {
		return fmt.Errorf("model h2h clamp bounds [%.2f, %.2f] cannot hold three outcomes summing to 1", m.H2HClampMin, m.H2HClampMax)
	}
	if m.ClampMin >= m.ClampMax {
		return fmt.Errorf("model.clamp_min must be below clamp_max")
	}
	if 2*m.ClampMin > 1 || 2*m.ClampMax < 1 {
		return fmt.Errorf("model clamp bounds [%.2f, %.2f] cannot hold two outcomes summing to 1", m.ClampMin, m.ClampMax)
	}

	if cfg.Confidence.Floor > cfg.Confidence.Ceiling {
		return fmt.Errorf("confidence.floor cannot exceed confidence.ceiling")
	}

	switch cfg.Odds.Source {
	case "file":
		if cfg.Odds.FilePath == "" {
			return fmt.Errorf("odds.file_path is required when odds.source is 'file'")
		}
	case "odds_api":
		if cfg.Odds.APIURL == "" {
			return fmt.Errorf("odds.api_url is required when odds.source is 'odds_api'")
		}
	}

	switch cfg.History.Source {
	case "csv":
		if cfg.History.FilePath == "" {
			return fmt.Errorf("history.file_path is required when history.source is 'csv'")
		}
	case "postgres":
		if !cfg.Database.Enabled {
			return fmt.Errorf("history.source 'postgres' requires database.enabled")
		}
	}

	if cfg.Database.Enabled {
		if cfg.Database.Host == "" || cfg.Database.Name == "" || cfg.Database.User == "" {
			return fmt.Errorf("database host, name and user are required when the database is enabled")
		}
	}

	if cfg.Redis.Enabled && (cfg.Redis.Addr == "" || cfg.Redis.Stream == "") {
		return fmt.Errorf("redis addr and stream are required when redis is enabled")
	}

	if cfg.IsProduction() && cfg.Database.Enabled && cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "url":
			errMsg += fmt.Sprintf("- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "markets":
			errMsg += fmt.Sprintf("- Field '%s' must list markets from: h2h, totals, btts\n", field)
		case "profile":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: conservative, balanced, aggressive\n", field)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}
