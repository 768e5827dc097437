package config

import "testing"

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.StoreDriver != "sqlite" {
		t.Errorf("expected sqlite default driver, got %s", cfg.StoreDriver)
	}
	if cfg.TickInterval.Seconds() != 30 {
		t.Errorf("expected 30s default tick, got %v", cfg.TickInterval)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("TICK_INTERVAL", "not-a-duration")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed TICK_INTERVAL")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9999")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("SMTP_PORT", "587")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ListenAddr != ":9999" {
		t.Errorf("expected overridden listen addr, got %s", cfg.ListenAddr)
	}
	if cfg.StoreDriver != "postgres" {
		t.Errorf("expected overridden driver, got %s", cfg.StoreDriver)
	}
	if cfg.SMTPPort != 587 {
		t.Errorf("expected overridden smtp port, got %d", cfg.SMTPPort)
	}
}
