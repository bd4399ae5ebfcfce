package config

import (
	"testing"
	"time"
)

func TestLoadServerDefaults(t *testing.T) {
	t.Setenv("CHESS_ADDR", "")
	t.Setenv("ENGINE_URL", "")
	t.Setenv("CHESS_HEALTH_INTERVAL", "")

	cfg, err := LoadServer(nil)
	if err != nil {
		t.Fatalf("LoadServer: %v", err)
	}
	if cfg.Addr != ":3000" {
		t.Errorf("expected default addr :3000, got %q", cfg.Addr)
	}
	if cfg.EngineURL != "http://localhost:5000" {
		t.Errorf("unexpected engine url %q", cfg.EngineURL)
	}
	if cfg.HealthInterval != 30*time.Second {
		t.Errorf("expected 30s health interval, got %v", cfg.HealthInterval)
	}
}

func TestLoadServerEnvAndFlags(t *testing.T) {
	t.Setenv("ENGINE_URL", "http://engine:9000")
	t.Setenv("CHESS_HEALTH_INTERVAL", "5s")

	cfg, err := LoadServer([]string{"-addr", ":8080"})
	if err != nil {
		t.Fatalf("LoadServer: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("flag should win, got %q", cfg.Addr)
	}
	if cfg.EngineURL != "http://engine:9000" {
		t.Errorf("env should fill engine url, got %q", cfg.EngineURL)
	}
	if cfg.HealthInterval != 5*time.Second {
		t.Errorf("expected 5s, got %v", cfg.HealthInterval)
	}
}

func TestLoadEngine(t *testing.T) {
	t.Setenv("ENGINE_SKILL", "bogus")

	cfg, err := LoadEngine([]string{"-move-time", "500ms"})
	if err != nil {
		t.Fatalf("LoadEngine: %v", err)
	}
	if cfg.MoveTime != 500*time.Millisecond {
		t.Errorf("expected 500ms, got %v", cfg.MoveTime)
	}
	if cfg.SkillLevel != 20 {
		t.Errorf("unparseable env should fall back to default, got %d", cfg.SkillLevel)
	}
}
