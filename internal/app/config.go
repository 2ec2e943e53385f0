package app

import (
	"os"
	"strings"
	"time"
)

// Config describes the runtime settings of the cancellation service.
type Config struct {
	HTTPAddr    string
	MetricsAddr string

	// StorageDriver selects the repository backend: "memory" or "postgres".
	StorageDriver string
	PostgresDSN   string

	KafkaBrokers []string

	EffectorTimeout time.Duration
	SessionTTL      time.Duration
}

// DefaultConfig returns the addresses and timeouts used when nothing is
// overridden.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:        ":8080",
		MetricsAddr:     ":9090",
		StorageDriver:   "memory",
		EffectorTimeout: 10 * time.Second,
		SessionTTL:      30 * time.Minute,
	}
}

// FromEnv overlays CANCEL_* environment variables onto the defaults.
func FromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("CANCEL_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("CANCEL_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("CANCEL_STORAGE_DRIVER"); v != "" {
		cfg.StorageDriver = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("CANCEL_POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	if v := os.Getenv("CANCEL_KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = strings.Split(v, ",")
	}
	if v := os.Getenv("CANCEL_EFFECTOR_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.EffectorTimeout = d
		}
	}
	if v := os.Getenv("CANCEL_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SessionTTL = d
		}
	}
	return cfg
}
