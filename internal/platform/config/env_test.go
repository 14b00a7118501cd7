package config

import (
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Port     int           `env:"WEDDING_TEST_PORT" envDefault:"123"`
	Deadline string        `env:"WEDDING_TEST_DEADLINE" envDefault:"2026-05-06"`
	Window   time.Duration `env:"WEDDING_TEST_WINDOW" envDefault:"5m"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
	if cfg.Window != 5*time.Minute {
		t.Fatalf("Window = %v, want %v", cfg.Window, 5*time.Minute)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("WEDDING_TEST_PORT", "not-an-int")
	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestParseEnvFromUsesExplicitMap(t *testing.T) {
	t.Setenv("WEDDING_TEST_DEADLINE", "2030-01-01")

	var cfg envTestConfig
	if err := ParseEnvFrom(&cfg, map[string]string{"WEDDING_TEST_PORT": "8080"}); err != nil {
		t.Fatalf("parse env from map: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("Port = %d, want %d", cfg.Port, 8080)
	}
	if cfg.Deadline != "2026-05-06" {
		t.Fatalf("Deadline = %q, want default %q", cfg.Deadline, "2026-05-06")
	}
}

func TestParseEnvFromNilMapUsesDefaults(t *testing.T) {
	var cfg envTestConfig
	if err := ParseEnvFrom(&cfg, nil); err != nil {
		t.Fatalf("parse env from nil map: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("Port = %d, want %d", cfg.Port, 123)
	}
}
