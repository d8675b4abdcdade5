package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Port != "8097" {
		t.Fatalf("expected default port 8097, got %q", cfg.Port)
	}
	if cfg.ChatMaxSteps != 5 {
		t.Fatalf("expected 5 max steps, got %d", cfg.ChatMaxSteps)
	}
	if cfg.ChatMaxDuration() != 60*time.Second {
		t.Fatalf("expected 60s ceiling, got %s", cfg.ChatMaxDuration())
	}
	if cfg.TranscriptionModel != "distil-whisper-large-v3-en" {
		t.Fatalf("unexpected transcription model %q", cfg.TranscriptionModel)
	}
	if cfg.ResumableStreams() {
		t.Fatalf("resumable streams should be off without REDIS_URL")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9000")
	t.Setenv("WORKER_CONCURRENCY", "8")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("DB_NAME", "clinic")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9000" || cfg.WorkerConcurrency != 8 {
		t.Fatalf("env overrides not applied: port=%q workers=%d", cfg.Port, cfg.WorkerConcurrency)
	}
	if !cfg.ResumableStreams() {
		t.Fatalf("expected resumable streams with REDIS_URL set")
	}
	want := "host=localhost port=5432 user=postgres password= dbname=clinic sslmode=disable"
	if cfg.DSN() != want {
		t.Fatalf("DSN = %q, want %q", cfg.DSN(), want)
	}
}

func TestValidateRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}
