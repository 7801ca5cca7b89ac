package config

import (
	"os"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if had {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, "DATABASE_URL", "postgres://localhost:5432/namoarogya")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if !cfg.IsDev() {
		t.Error("expected default env to be development")
	}
	if cfg.RecommendTimeout() != 10*time.Second {
		t.Errorf("expected 10s recommend timeout, got %v", cfg.RecommendTimeout())
	}
	if cfg.SearchTimeout() != 5*time.Second {
		t.Errorf("expected 5s search timeout, got %v", cfg.SearchTimeout())
	}
	if !cfg.AIBreakerEnabled {
		t.Error("expected breaker enabled by default")
	}
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	setEnv(t, "DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestValidate_ProductionRequiresAuth(t *testing.T) {
	cfg := &Config{
		Env:                "production",
		AIRecommendTimeout: 10,
		AIMappingTimeout:   10,
		AISearchTimeout:    5,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for production config without auth source")
	}

	cfg.JWTSecret = "secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error with JWT_SECRET set: %v", err)
	}
}

func TestValidate_DevAllowsNoAuth(t *testing.T) {
	cfg := &Config{
		Env:                "development",
		AIRecommendTimeout: 10,
		AIMappingTimeout:   10,
		AISearchTimeout:    5,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error in dev mode: %v", err)
	}
}

func TestValidate_RejectsZeroTimeouts(t *testing.T) {
	cfg := &Config{Env: "development", AIRecommendTimeout: 0, AIMappingTimeout: 10, AISearchTimeout: 5}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero AI timeout")
	}
}
