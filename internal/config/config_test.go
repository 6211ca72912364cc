package config

import (
	"testing"
	"time"
)

func TestLoadAppliesPipelineDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("GEN_TEMPERATURE", "")
	t.Setenv("GEN_MAX_OUTPUT_TOKENS", "")
	t.Setenv("RETRY_MAX_ATTEMPTS", "")
	t.Setenv("RETRY_INITIAL_BACKOFF", "")
	t.Setenv("DIRECTORY_MAX_ROWS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Fatalf("expected default model gemini-2.5-flash, got %q", cfg.GeminiModel)
	}
	if cfg.GenTemperature != 0.3 {
		t.Fatalf("expected default temperature 0.3, got %g", cfg.GenTemperature)
	}
	if cfg.GenMaxOutputTokens != 2048 {
		t.Fatalf("expected default output cap 2048, got %d", cfg.GenMaxOutputTokens)
	}
	if cfg.RetryMaxAttempts != 3 {
		t.Fatalf("expected default retry attempts 3, got %d", cfg.RetryMaxAttempts)
	}
	if cfg.RetryInitialBackoff != 2*time.Second {
		t.Fatalf("expected default initial backoff 2s, got %s", cfg.RetryInitialBackoff)
	}
	if cfg.DirectoryMaxRows != 5 {
		t.Fatalf("expected default row cap 5, got %d", cfg.DirectoryMaxRows)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")
	t.Setenv("RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("RETRY_INITIAL_BACKOFF", "500ms")
	t.Setenv("DIRECTORY_MAX_ROWS", "3")
	t.Setenv("NATS_URL", "nats://localhost:4222")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GeminiModel != "gemini-2.5-pro" {
		t.Fatalf("expected model override, got %q", cfg.GeminiModel)
	}
	if cfg.RetryMaxAttempts != 5 {
		t.Fatalf("expected retry attempts 5, got %d", cfg.RetryMaxAttempts)
	}
	if cfg.RetryInitialBackoff != 500*time.Millisecond {
		t.Fatalf("expected initial backoff 500ms, got %s", cfg.RetryInitialBackoff)
	}
	if cfg.DirectoryMaxRows != 3 {
		t.Fatalf("expected row cap 3, got %d", cfg.DirectoryMaxRows)
	}
	if !cfg.Messaging() {
		t.Fatalf("expected messaging enabled when NATS_URL set")
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing GEMINI_API_KEY")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := Config{
		GeminiAPIKey:     "k",
		RetryMaxAttempts: 3,
		RetryMultiplier:  2,
		DirectoryMaxRows: 5,
		GenTemperature:   0.3,
	}

	bad := base
	bad.RetryMaxAttempts = 0
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for zero retry attempts")
	}

	bad = base
	bad.GenTemperature = 3.5
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for out-of-range temperature")
	}

	bad = base
	bad.DirectoryMaxRows = -1
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for negative row cap")
	}
}
