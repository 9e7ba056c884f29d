package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (c *testConfig) Validate() error {
	if c.Port == 0 {
		return errors.New("port is required")
	}
	return nil
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_SERVICE_NAME", "journal")
	file := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(file, []byte("name: ${TEST_SERVICE_NAME}\nport: 8080\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var cfg testConfig
	if err := Load(file, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Name != "journal" || cfg.Port != 8080 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadValidationFailure(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(file, []byte("name: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var cfg testConfig
	if err := Load(file, &cfg); err == nil {
		t.Fatal("expected validation error for missing port")
	}
}

func TestLoadIfPresentMissingFileUsesDefaults(t *testing.T) {
	cfg := testConfig{Name: "default", Port: 9090}
	if err := LoadIfPresent(filepath.Join(t.TempDir(), "absent.yaml"), &cfg); err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
	if cfg.Name != "default" || cfg.Port != 9090 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadIfPresentValidatesDefaults(t *testing.T) {
	cfg := testConfig{}
	if err := LoadIfPresent(filepath.Join(t.TempDir(), "absent.yaml"), &cfg); err == nil {
		t.Fatal("invalid defaults should fail validation")
	}
}
