package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "5001" {
		t.Errorf("Port = %q, want 5001", cfg.Port)
	}
	if cfg.Contamination != 0.1 {
		t.Errorf("Contamination = %v, want 0.1", cfg.Contamination)
	}
	if cfg.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Seed)
	}
	if cfg.Trees != 100 {
		t.Errorf("Trees = %d, want 100", cfg.Trees)
	}
	if cfg.HighValueThreshold != 100000 {
		t.Errorf("HighValueThreshold = %v, want 100000", cfg.HighValueThreshold)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Errorf("MaxUploadBytes = %d, want %d", cfg.MaxUploadBytes, 10<<20)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("GSTOPT_PORT", "9001")
	t.Setenv("GSTOPT_CONTAMINATION", "0.2")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "9001" {
		t.Errorf("Port = %q, want 9001", cfg.Port)
	}
	if cfg.Contamination != 0.2 {
		t.Errorf("Contamination = %v, want 0.2", cfg.Contamination)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := "port: \"7777\"\ntrees: 50\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "7777" {
		t.Errorf("Port = %q, want 7777", cfg.Port)
	}
	if cfg.Trees != 50 {
		t.Errorf("Trees = %d, want 50", cfg.Trees)
	}
	// Untouched keys keep defaults.
	if cfg.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Seed)
	}
}

func TestLoad_InvalidContamination(t *testing.T) {
	t.Setenv("GSTOPT_CONTAMINATION", "1.5")
	if _, err := Load(""); err == nil {
		t.Fatal("Load() error = nil, want contamination bounds error")
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load() error = nil, want read failure")
	}
}
