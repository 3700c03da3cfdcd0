package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBPath != "./data/hauslist.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.DebounceWindow != 200*time.Millisecond {
		t.Errorf("DebounceWindow = %s, want 200ms", cfg.DebounceWindow)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %s, want 24h", cfg.TokenTTL)
	}
	if len(cfg.ExcludedCategories) != 1 || cfg.ExcludedCategories[0] != "Extra" {
		t.Errorf("ExcludedCategories = %v, want [Extra]", cfg.ExcludedCategories)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HAUSLIST_DB_PATH", "/tmp/test.db")
	t.Setenv("HAUSLIST_DEBOUNCE_WINDOW", "50ms")
	t.Setenv("HAUSLIST_EXCLUDED_CATEGORIES", "Extra,Pfand")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.DebounceWindow != 50*time.Millisecond {
		t.Errorf("DebounceWindow = %s, want 50ms", cfg.DebounceWindow)
	}
	if len(cfg.ExcludedCategories) != 2 {
		t.Errorf("ExcludedCategories = %v, want two entries", cfg.ExcludedCategories)
	}
}

func TestLoadRejectsZeroWindow(t *testing.T) {
	t.Setenv("HAUSLIST_DEBOUNCE_WINDOW", "0s")
	if _, err := Load(); err == nil {
		t.Error("expected error for zero debounce window")
	}
}
