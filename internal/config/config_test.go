package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"SESSION_TIMEOUT", "CACHE_TTL", "KAFKA_BROKERS", "SEED_DEMO_DATA", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}
	cfg := Load()

	if cfg.SessionTTL() != 12*time.Hour {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL())
	}
	if cfg.CacheDuration() != 30*time.Second {
		t.Errorf("CacheDuration = %v", cfg.CacheDuration())
	}
	if cfg.KafkaBrokers != nil {
		t.Errorf("KafkaBrokers = %v, want none", cfg.KafkaBrokers)
	}
	if cfg.SeedDemoData || cfg.LogFormat != "text" {
		t.Errorf("SeedDemoData=%v LogFormat=%q", cfg.SeedDemoData, cfg.LogFormat)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SESSION_TIMEOUT", "600")
	t.Setenv("REQUEST_TIMEOUT", "not-a-number")
	t.Setenv("KAFKA_BROKERS", " kafka-1:9092, ,kafka-2:9092 ")
	t.Setenv("SEED_DEMO_DATA", "true")

	cfg := Load()
	if cfg.SessionTTL() != 10*time.Minute {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL())
	}
	if cfg.RequestDuration() != 15*time.Second {
		t.Errorf("invalid REQUEST_TIMEOUT should fall back, got %v", cfg.RequestDuration())
	}
	if want := []string{"kafka-1:9092", "kafka-2:9092"}; !reflect.DeepEqual(cfg.KafkaBrokers, want) {
		t.Errorf("KafkaBrokers = %v, want %v", cfg.KafkaBrokers, want)
	}
	if !cfg.SeedDemoData {
		t.Error("SeedDemoData not read")
	}
}
