package config

import (
	"fmt"
	"time"

	"payflow-backend/internal/infrastructure/database"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// LoadDatabaseConfig reads the database settings from environment variables.
// DATABASE_URL is the single source of truth for the connection itself; the
// rest tunes the pool.
func LoadDatabaseConfig() (*database.DBConfig, error) {
	cfg := &database.DBConfig{
		URL:               getEnv("DATABASE_URL", ""),
		MaxConns:          int32(getEnvInt("DB_MAX_CONNS", 10)),
		MinConns:          int32(getEnvInt("DB_MIN_CONNS", 2)),
		MaxConnLifetime:   getEnvDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
		MaxConnIdleTime:   getEnvDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
		HealthCheckPeriod: getEnvDuration("DB_HEALTH_CHECK_PERIOD", time.Minute),
		MaxRetries:        getEnvInt("DB_MAX_RETRIES", 5),
		RetryDelay:        getEnvDuration("DB_RETRY_DELAY", 2*time.Second),
		ConnectTimeout:    getEnvDuration("DB_CONNECT_TIMEOUT", 10*time.Second),
	}

	if err := validation.ValidateStruct(cfg,
		validation.Field(&cfg.URL, validation.Required.Error("DATABASE_URL is required")),
	); err != nil {
		return nil, fmt.Errorf("database config validation failed: %w", err)
	}

	return cfg, nil
}
