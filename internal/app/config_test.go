package app

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.HTTPAddr != ":8080" || cfg.MetricsAddr != ":9090" {
		t.Fatalf("addresses: %+v", cfg)
	}
	if cfg.StorageDriver != "memory" {
		t.Fatalf("storage driver: %q", cfg.StorageDriver)
	}
	if cfg.EffectorTimeout != 10*time.Second || cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("timeouts: %+v", cfg)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("CANCEL_HTTP_ADDR", ":9999")
	t.Setenv("CANCEL_STORAGE_DRIVER", "Postgres")
	t.Setenv("CANCEL_POSTGRES_DSN", "postgres://localhost/canteen")
	t.Setenv("CANCEL_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("CANCEL_EFFECTOR_TIMEOUT", "3s")
	t.Setenv("CANCEL_SESSION_TTL", "bogus")

	cfg := FromEnv()
	if cfg.HTTPAddr != ":9999" {
		t.Fatalf("http addr: %q", cfg.HTTPAddr)
	}
	if cfg.StorageDriver != "postgres" {
		t.Fatalf("storage driver must be lowercased: %q", cfg.StorageDriver)
	}
	if cfg.PostgresDSN != "postgres://localhost/canteen" {
		t.Fatalf("dsn: %q", cfg.PostgresDSN)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("brokers: %v", cfg.KafkaBrokers)
	}
	if cfg.EffectorTimeout != 3*time.Second {
		t.Fatalf("effector timeout: %s", cfg.EffectorTimeout)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("invalid ttl must keep the default, got %s", cfg.SessionTTL)
	}
}
