package config

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// ConfigRequirements defines required configuration for each environment
type ConfigRequirements struct {
	RequireServer   bool
	RequireSecrets  bool
	RequirePostgres bool
}

var requirements = map[Environment]ConfigRequirements{
	Development: {},
	Test:        {},
	CI: {
		RequireServer:  true,
		RequireSecrets: true,
	},
	Production: {
		RequireServer:   true,
		RequireSecrets:  true,
		RequirePostgres: true,
	},
}

// ValidateConfig checks if the configuration meets the requirements for the given environment
func ValidateConfig(cfg *Config, env Environment) error {
	reqs := requirements[env]

	var errs ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if cfg.ServerPort == "" && reqs.RequireServer {
		add("SERVER_PORT", "is required")
	}

	switch cfg.DBDriver {
	case "sqlite":
		if reqs.RequirePostgres {
			add("DATABASE_DRIVER", "sqlite is not allowed in "+string(env))
		}
		if cfg.SQLitePath == "" {
			add("SQLITE_PATH", "is required for the sqlite driver")
		}
	case "postgres", "":
		if cfg.DBURL == "" && (cfg.DBHost == "" || cfg.DBName == "") {
			add("DATABASE_URL", "set DATABASE_URL or DB_HOST and DB_NAME")
		}
		if cfg.DBURL == "" && cfg.DBPassword == "" && reqs.RequireSecrets {
			add("DB_PASSWORD", "is required")
		}
	default:
		add("DATABASE_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver))
	}

	if cfg.JWTSecret == "" {
		add("JWT_SECRET", "is required")
	} else if reqs.RequireSecrets && len(cfg.JWTSecret) < 32 {
		add("JWT_SECRET", "must be at least 32 characters")
	}

	if cfg.ImportRateLimit < 0 {
		add("IMPORT_RATE_LIMIT", "must not be negative")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// IsValidationError reports whether err came from ValidateConfig
func IsValidationError(err error) bool {
	var v ValidationErrors
	return errors.As(err, &v)
}
