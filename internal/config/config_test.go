package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("MODE", "")
	t.Setenv("TYPESET_TIMEOUT_MS", "")
	t.Setenv("CORS_ORIGINS", "")
	cfg := FromEnv()
	if cfg.Mode != ModeOffline || cfg.HTTPAddr != ":8080" || cfg.DBDriver != "sqlite" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.TypesetTimeout != 8*time.Second {
		t.Fatalf("typeset timeout = %v", cfg.TypesetTimeout)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:3000" {
		t.Fatalf("cors = %v", cfg.CORSOrigins)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MODE", "online")
	t.Setenv("TYPESET_TIMEOUT_MS", "250")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	cfg := FromEnv()
	if cfg.Mode != ModeOnline {
		t.Fatalf("mode = %s", cfg.Mode)
	}
	if cfg.TypesetTimeout != 250*time.Millisecond {
		t.Fatalf("typeset timeout = %v", cfg.TypesetTimeout)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("cors = %v", cfg.CORSOrigins)
	}
}

func TestLoadYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sheet.yaml")
	doc := "sheet:\n  institute_name: Vidya Coaching\n  watermark: vidya\n  options_per_row: 4\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SHEET_CONFIG_FILE", path)
	t.Setenv("SHEET_DURATION", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Sheet.InstituteName != "Vidya Coaching" || cfg.Sheet.Watermark != "vidya" || cfg.Sheet.OptionsPerRow != 4 {
		t.Fatalf("overlay not applied: %+v", cfg.Sheet)
	}
	if cfg.Sheet.Duration != "3 Hours" {
		t.Fatalf("unset keys must keep env defaults, got %q", cfg.Sheet.Duration)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("SHEET_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
