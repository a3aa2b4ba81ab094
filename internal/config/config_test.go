package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "5000" {
		t.Errorf("Expected default port 5000, got %s", cfg.Server.Port)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("Expected 24h token TTL, got %v", cfg.Auth.TokenTTL)
	}
	if len(cfg.Kafka.Brokers) != 0 {
		t.Errorf("Expected no kafka brokers, got %v", cfg.Kafka.Brokers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config with secret should validate, got: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("HEALTH_INTERVAL", "not-a-duration")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Auth.TokenTTL != 2*time.Hour {
		t.Errorf("Expected 2h, got %v", cfg.Auth.TokenTTL)
	}
	if cfg.SMTP.Port != 2525 {
		t.Errorf("Expected SMTP port 2525, got %d", cfg.SMTP.Port)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "http://b.test" {
		t.Errorf("Unexpected CORS origins %v", cfg.Server.CORSOrigins)
	}
	if cfg.Server.HealthInterval != 30*time.Second {
		t.Errorf("Malformed duration should fall back to default, got %v", cfg.Server.HealthInterval)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	cfg, _ := Load()
	if err := cfg.Validate(); err == nil {
		t.Error("Empty JWT secret should be rejected")
	}

	cfg.Auth.JWTSecret = "x"
	cfg.Storage.Backend = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Error("Unknown storage backend should be rejected")
	}

	for _, interval := range []string{"0s", "-5s"} {
		t.Setenv("HEALTH_INTERVAL", interval)
		cfg, _ := Load()
		cfg.Auth.JWTSecret = "x"
		if err := cfg.Validate(); err == nil {
			t.Errorf("HEALTH_INTERVAL=%s should be rejected", interval)
		}
	}
}
