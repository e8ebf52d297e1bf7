package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("GinMode = %q", cfg.GinMode)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Fatalf("APIBasePath = %q", cfg.APIBasePath)
	}
	if cfg.HistoryWindow != 20 || cfg.MaxMessageRunes != 4000 {
		t.Fatalf("chat engine defaults: window=%d runes=%d", cfg.HistoryWindow, cfg.MaxMessageRunes)
	}
	if cfg.PromptCategory != "chat" {
		t.Fatalf("PromptCategory = %q", cfg.PromptCategory)
	}
	if cfg.Sweep.Cron != "0 9 * * *" || cfg.Sweep.Threshold != 65 || !cfg.Sweep.Enabled {
		t.Fatalf("sweep defaults: %+v", cfg.Sweep)
	}
	if cfg.Gemini.Timeout != 60*time.Second {
		t.Fatalf("Gemini.Timeout = %v", cfg.Gemini.Timeout)
	}
	if cfg.IdempotencyTTL != 24*time.Hour {
		t.Fatalf("IdempotencyTTL = %v", cfg.IdempotencyTTL)
	}
}

func TestLoad_EnvOverridesAndNormalization(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("GIN_MODE", "DEBUG")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("API_BASE_PATH", "api/v2/")
	t.Setenv("SWEEP_THRESHOLD", "50")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9999" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.GinMode != "debug" {
		t.Fatalf("GinMode = %q", cfg.GinMode)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q (warning should normalize)", cfg.LogLevel)
	}
	if cfg.APIBasePath != "/api/v2" {
		t.Fatalf("APIBasePath = %q", cfg.APIBasePath)
	}
	if cfg.Sweep.Threshold != 50 {
		t.Fatalf("Sweep.Threshold = %d", cfg.Sweep.Threshold)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("CORS origins = %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	t.Setenv("SWEEP_THRESHOLD", "150")
	if _, err := Load(); err == nil {
		t.Fatalf("threshold above 100 must fail validation")
	}
}

func TestLoad_BadGinModeFallsBack(t *testing.T) {
	t.Setenv("GIN_MODE", "bogus")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("GinMode = %q", cfg.GinMode)
	}
}
