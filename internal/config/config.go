package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Webhook processing modes. "enqueue" acknowledges fast and defers the
// pipeline to the worker; "inline" runs the pipeline in-request.
const (
	WebhookModeEnqueue = "enqueue"
	WebhookModeInline  = "inline"
)

// Config holds the whole application configuration, populated from
// environment variables.
type Config struct {
	App     AppConfig
	Stripe  StripeConfig
	Webhook WebhookConfig
	Worker  WorkerConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	LogLevel    string
}

type StripeConfig struct {
	APIKey        string // secret key for provider fetches
	WebhookSecret string // signing secret for webhook verification
}

type WebhookConfig struct {
	Mode string // enqueue or inline
}

type WorkerConfig struct {
	Concurrency    int
	BatchSize      int
	PollInterval   time.Duration
	ReaperInterval time.Duration
	JobMaxAttempts int
}

// Load reads config from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Payflow API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("PORT", "8080"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Stripe: StripeConfig{
			APIKey:        getEnv("STRIPE_API_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		},
		Webhook: WebhookConfig{
			Mode: getEnv("WEBHOOK_MODE", WebhookModeEnqueue),
		},
		Worker: WorkerConfig{
			Concurrency:    getEnvInt("WORKER_CONCURRENCY", 4),
			BatchSize:      getEnvInt("WORKER_BATCH_SIZE", 10),
			PollInterval:   getEnvDuration("WORKER_POLL_INTERVAL", time.Second),
			ReaperInterval: getEnvDuration("REAPER_INTERVAL", time.Minute),
			JobMaxAttempts: getEnvInt("JOB_MAX_ATTEMPTS", 5),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate rejects configurations the binaries cannot start with. Both
// Stripe secrets are hard requirements.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.Stripe,
		validation.Field(&c.Stripe.APIKey, validation.Required.Error("STRIPE_API_KEY is required")),
		validation.Field(&c.Stripe.WebhookSecret, validation.Required.Error("STRIPE_WEBHOOK_SECRET is required")),
	); err != nil {
		return err
	}

	if err := validation.ValidateStruct(&c.Webhook,
		validation.Field(&c.Webhook.Mode, validation.In(WebhookModeEnqueue, WebhookModeInline).Error("WEBHOOK_MODE must be enqueue or inline")),
	); err != nil {
		return err
	}

	return validation.ValidateStruct(&c.Worker,
		validation.Field(&c.Worker.Concurrency, validation.Min(1)),
		validation.Field(&c.Worker.BatchSize, validation.Min(1)),
		validation.Field(&c.Worker.JobMaxAttempts, validation.Min(1)),
	)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
