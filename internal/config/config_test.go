package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Server.Addr != "localhost:5001" {
		t.Errorf("Expected addr localhost:5001, got %s", cfg.Server.Addr)
	}
	if cfg.Market.Timeout != 5*time.Second {
		t.Errorf("Expected 5s market timeout, got %s", cfg.Market.Timeout)
	}
	if cfg.Market.CacheTTL != 5*time.Minute {
		t.Errorf("Expected 5m cache TTL, got %s", cfg.Market.CacheTTL)
	}
	if cfg.Planning.HorizonYears != 100 {
		t.Errorf("Expected 100 year horizon, got %d", cfg.Planning.HorizonYears)
	}
	if cfg.Reconcile.Tolerance.String() != "0.05" {
		t.Errorf("Expected tolerance 0.05, got %s", cfg.Reconcile.Tolerance)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 {
		t.Errorf("Expected 2 default origins, got %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.CORS.MaxAge != 300 {
		t.Errorf("Expected 300s preflight cache, got %d", cfg.CORS.MaxAge)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("MARKET_TIMEOUT", "2s")
	t.Setenv("FIRE_HORIZON_YEARS", "60")
	t.Setenv("MARKET_BENCHMARK", "vti")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Server.Addr != "localhost:8080" {
		t.Errorf("Expected addr localhost:8080, got %s", cfg.Server.Addr)
	}
	if cfg.Market.Timeout != 2*time.Second {
		t.Errorf("Expected 2s timeout, got %s", cfg.Market.Timeout)
	}
	if cfg.Planning.HorizonYears != 60 {
		t.Errorf("Expected 60 year horizon, got %d", cfg.Planning.HorizonYears)
	}
	if cfg.Market.BenchmarkTicker != "VTI" {
		t.Errorf("Expected upper-cased benchmark VTI, got %s", cfg.Market.BenchmarkTicker)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("Unexpected origins: %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad duration", key: "MARKET_TIMEOUT", value: "soon"},
		{name: "negative duration", key: "MARKET_CACHE_TTL", value: "-1m"},
		{name: "zero horizon", key: "FIRE_HORIZON_YEARS", value: "0"},
		{name: "tolerance above one", key: "RECONCILE_TOLERANCE", value: "1.5"},
		{name: "bad decimal", key: "FIRE_EXPECTED_RETURN", value: "seven"},
		{name: "bad bool", key: "SCHEDULER_ENABLED", value: "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}
