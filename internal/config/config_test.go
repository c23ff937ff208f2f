package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "info" || cfg.OutputDir != "output" || cfg.Alpha != 0.05 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("log_level: debug\noutput_dir: /tmp/reports\nalpha: 0.1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("INTERPRET_EVAL_OUTPUT_DIR", "/tmp/env-wins")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q, want debug", cfg.LogLevel)
	}
	if cfg.OutputDir != "/tmp/env-wins" {
		t.Errorf("output dir = %q, environment should override the file", cfg.OutputDir)
	}
	if cfg.Alpha != 0.1 {
		t.Errorf("alpha = %v, want 0.1", cfg.Alpha)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("alpha: 2.0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for out-of-range alpha")
	}

	if err := os.WriteFile(path, []byte("log_format: xml\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown log format")
	}
}
