package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_LocalDefaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("APP_ENV", "local")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.AppEnv != EnvLocal {
		t.Errorf("Expected AppEnv=local, got %s", cfg.AppEnv)
	}
	if cfg.HTTPAddr != "127.0.0.1:8084" {
		t.Errorf("Expected HTTPAddr=127.0.0.1:8084, got %s", cfg.HTTPAddr)
	}
	if len(cfg.KafkaBrokers) != 1 || cfg.KafkaBrokers[0] != "localhost:19092" {
		t.Errorf("Expected KafkaBrokers=[localhost:19092], got %v", cfg.KafkaBrokers)
	}
	if cfg.RequestTopic != "warehouse.ingredients.requested" {
		t.Errorf("Expected RequestTopic=warehouse.ingredients.requested, got %s", cfg.RequestTopic)
	}
	if cfg.ReduceTopic != "warehouse.ingredients.reduce" {
		t.Errorf("Expected ReduceTopic=warehouse.ingredients.reduce, got %s", cfg.ReduceTopic)
	}
	if cfg.ProcurementBackoffDelay != 500*time.Millisecond {
		t.Errorf("Expected ProcurementBackoffDelay=500ms, got %s", cfg.ProcurementBackoffDelay)
	}
	if cfg.IdempotencyTTL != 24*time.Hour {
		t.Errorf("Expected IdempotencyTTL=24h, got %s", cfg.IdempotencyTTL)
	}
}

func TestLoad_DockerDefaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("APP_ENV", "docker")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.AppEnv != EnvDocker {
		t.Errorf("Expected AppEnv=docker, got %s", cfg.AppEnv)
	}
	if cfg.HTTPAddr != "0.0.0.0:8084" {
		t.Errorf("Expected HTTPAddr=0.0.0.0:8084, got %s", cfg.HTTPAddr)
	}
	if len(cfg.KafkaBrokers) != 1 || cfg.KafkaBrokers[0] != "kafka:9092" {
		t.Errorf("Expected KafkaBrokers=[kafka:9092], got %v", cfg.KafkaBrokers)
	}
	if cfg.FarmersMarketURL != "http://farmers-market:3100" {
		t.Errorf("Expected FarmersMarketURL=http://farmers-market:3100, got %s", cfg.FarmersMarketURL)
	}
}

func TestLoad_InvalidAppEnv(t *testing.T) {
	os.Clearenv()
	os.Setenv("APP_ENV", "staging")

	_, err := Load()
	if err == nil {
		t.Fatal("Expected error for invalid APP_ENV, got nil")
	}
}

func TestLoad_Overrides(t *testing.T) {
	os.Clearenv()
	os.Setenv("APP_ENV", "local")
	os.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	os.Setenv("PROCUREMENT_MAX_ATTEMPTS", "5")
	os.Setenv("FARMERS_MARKET_URL", "http://localhost:9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if len(cfg.KafkaBrokers) != 2 {
		t.Errorf("Expected 2 brokers, got %v", cfg.KafkaBrokers)
	}
	if cfg.ProcurementMaxAttempts != 5 {
		t.Errorf("Expected ProcurementMaxAttempts=5, got %d", cfg.ProcurementMaxAttempts)
	}
	if cfg.FarmersMarketURL != "http://localhost:9999" {
		t.Errorf("Expected FarmersMarketURL=http://localhost:9999, got %s", cfg.FarmersMarketURL)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	os.Clearenv()
	os.Setenv("APP_ENV", "local")
	os.Setenv("PROCUREMENT_BACKOFF_DELAY", "not-a-duration")

	_, err := Load()
	if err == nil {
		t.Fatal("Expected error for invalid PROCUREMENT_BACKOFF_DELAY, got nil")
	}
}
