package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playmatatu/gravityputt/internal/game"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("TICK_HZ", "120")
	t.Setenv("BROADCAST_HZ", "30")
	t.Setenv("MIGRATE_ON_START", "true")
	t.Setenv("IDLE_TIMEOUT_SECONDS", "not-a-number")

	cfg := Load()
	if cfg.Port != "9090" || cfg.TickHz != 120 || !cfg.MigrateOnStart {
		t.Errorf("Environment not applied: %+v", cfg)
	}
	if cfg.IdleTimeoutSecs != 300 {
		t.Errorf("Bad integer should fall back to default, got %d", cfg.IdleTimeoutSecs)
	}
	if cfg.BroadcastEvery() != 4 {
		t.Errorf("BroadcastEvery = %d, want 4", cfg.BroadcastEvery())
	}
}

func TestBroadcastEveryNeverZero(t *testing.T) {
	cfg := &Config{TickHz: 60, BroadcastHz: 0}
	if cfg.BroadcastEvery() != 1 {
		t.Errorf("Expected stride 1, got %d", cfg.BroadcastEvery())
	}
}

func TestLoadTuningDefaults(t *testing.T) {
	tuning, err := LoadTuning("", 30)
	if err != nil {
		t.Fatalf("LoadTuning failed: %v", err)
	}
	if tuning.TickRate != time.Second/30 {
		t.Errorf("TickRate %v, want %v", tuning.TickRate, time.Second/30)
	}
	if tuning.CameraMaxScale != game.DefaultTuning().CameraMaxScale {
		t.Errorf("Defaults not kept")
	}
}

func TestLoadTuningOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.toml")
	body := "camera_max_scale = 2.0\ndepth_layers = 8\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	tuning, err := LoadTuning(path, 60)
	if err != nil {
		t.Fatalf("LoadTuning failed: %v", err)
	}
	if tuning.CameraMaxScale != 2.0 || tuning.DepthLayers != 8 {
		t.Errorf("Overlay not applied: scale=%.1f layers=%d", tuning.CameraMaxScale, tuning.DepthLayers)
	}
	if tuning.BallRadius != game.DefaultTuning().BallRadius {
		t.Errorf("Missing key should keep default")
	}
}

func TestLoadTuningRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.toml")
	if err := os.WriteFile(path, []byte("camera_max_scale = 0.5\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadTuning(path, 60); !errors.Is(err, game.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration, got %v", err)
	}
}

func TestLoadTuningRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.toml")
	if err := os.WriteFile(path, []byte("camera_max_scale = = 1"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadTuning(path, 60); !errors.Is(err, game.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration, got %v", err)
	}
}
