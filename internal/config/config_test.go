package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SnoozeMinutes != 10 || cfg.SnoozeDuration() != 10*time.Minute {
		t.Fatalf("unexpected snooze default: %d", cfg.SnoozeMinutes)
	}
	if !cfg.ExactAlarms || !cfg.Sound || cfg.DesktopNotifications {
		t.Fatalf("unexpected toggles: %#v", cfg)
	}
	if cfg.Buffer != 64 || cfg.WakeTimeout != 30*time.Second || cfg.FeedIdleTimeout != 5*time.Second {
		t.Fatalf("unexpected scheduler defaults: %#v", cfg)
	}
	home, err := homedir.Dir()
	if err != nil {
		t.Fatalf("home dir: %v", err)
	}
	if cfg.DBPath != filepath.Join(home, ".clockd.db") {
		t.Fatalf("expected expanded db path, got %q", cfg.DBPath)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "alarms.db")
	t.Setenv(EnvConfigPath, "")
	t.Setenv("CLOCKD_DB_PATH", dbPath)
	t.Setenv("CLOCKD_SNOOZE_MINUTES", "5")
	t.Setenv("CLOCKD_EXACT_ALARMS", "false")
	t.Setenv("CLOCKD_DESKTOP_NOTIFICATIONS", "true")
	t.Setenv("CLOCKD_SCHEDULER_BUFFER", "128")
	t.Setenv("CLOCKD_WAKE_TIMEOUT", "2s")
	t.Setenv("CLOCKD_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != dbPath {
		t.Fatalf("db path not overridden: %q", cfg.DBPath)
	}
	if cfg.SnoozeDuration() != 5*time.Minute {
		t.Fatalf("unexpected snooze: %s", cfg.SnoozeDuration())
	}
	if cfg.ExactAlarms || !cfg.DesktopNotifications {
		t.Fatalf("unexpected toggles: %#v", cfg)
	}
	if cfg.Buffer != 128 || cfg.WakeTimeout != 2*time.Second || cfg.Level != "debug" {
		t.Fatalf("unexpected overrides: %#v", cfg)
	}
}

func TestLoadIgnoresNonPositiveValues(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("CLOCKD_SNOOZE_MINUTES", "0")
	t.Setenv("CLOCKD_SCHEDULER_BUFFER", "-3")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SnoozeMinutes != 10 || cfg.Buffer != 64 {
		t.Fatalf("expected defaults for invalid values, got snooze=%d buffer=%d", cfg.SnoozeMinutes, cfg.Buffer)
	}
}

func TestLoadYAMLFileWithEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clockd.yml")
	body := "alarm:\n  snooze_minutes: 15\n  desktop_notifications: true\nscheduler:\n  buffer: 8\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(EnvConfigPath, path)
	t.Setenv("CLOCKD_SCHEDULER_BUFFER", "32")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SnoozeMinutes != 15 || !cfg.DesktopNotifications {
		t.Fatalf("yaml values not applied: %#v", cfg.Alarm)
	}
	if cfg.Buffer != 32 {
		t.Fatalf("env should win over yaml, got buffer=%d", cfg.Buffer)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestUsageListsVariables(t *testing.T) {
	if !strings.Contains(Usage(), "CLOCKD_SNOOZE_MINUTES") {
		t.Fatalf("usage should mention CLOCKD_SNOOZE_MINUTES")
	}
}
