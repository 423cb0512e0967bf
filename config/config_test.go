package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestServiceConfigDefaults(t *testing.T) {
	cfg := ServiceConfig{Name: "svc"}
	cfg.ApplyDefaults()

	if cfg.Environment != "development" {
		t.Errorf("expected development default, got %q", cfg.Environment)
	}
	if !cfg.Debug {
		t.Error("expected debug enabled in development")
	}
	if cfg.Logging.ServiceName != "svc" {
		t.Errorf("expected service name propagated into logging, got %q", cfg.Logging.ServiceName)
	}
}

func TestServiceConfigValidate(t *testing.T) {
	cfg := ServiceConfig{Name: "svc", Environment: "production"}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	cfg = ServiceConfig{Environment: "production"}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing name")
	}

	cfg = ServiceConfig{Name: "svc", Environment: "qa"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid environment")
	} else if !strings.Contains(err.Error(), "Environment") {
		t.Errorf("expected Environment in error, got %v", err)
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := "name: demo\nenvironment: staging\nlogging:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	var cfg ServiceConfig
	if err := Load("demo", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Name != "demo" {
		t.Errorf("expected name 'demo', got %q", cfg.Name)
	}
	if cfg.Environment != "staging" {
		t.Errorf("expected environment 'staging', got %q", cfg.Environment)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected logging level 'debug', got %q", cfg.Logging.Level)
	}
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte("name: demo\nenvironment: staging\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENVIRONMENT", "production")

	var cfg ServiceConfig
	if err := Load("demo", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Environment != "production" {
		t.Errorf("expected env var to win, got %q", cfg.Environment)
	}
}

type fakeFS struct {
	files map[string]bool
}

func (f fakeFS) Exists(path string) bool { return f.files[path] }
func (f fakeFS) LoadEnv(path string) error {
	return nil
}

func TestLoadMissingFilesIsNotAnError(t *testing.T) {
	var cfg ServiceConfig
	if err := Load("ghost", &cfg, WithFileSystem(fakeFS{files: map[string]bool{}})); err != nil {
		t.Fatalf("Load with no files should succeed: %v", err)
	}
}
