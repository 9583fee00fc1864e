package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	os.Setenv("SESSION_SECRET", "test-secret-32-characters-long!")
	t.Cleanup(os.Clearenv)
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Port: got %q, want %q", cfg.Server.Port, "8080")
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("MaxAttempts: got %d, want 3", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.BaseDelay != 1*time.Second {
		t.Errorf("BaseDelay: got %v, want 1s", cfg.Retry.BaseDelay)
	}
	if cfg.Session.TTL != 12*time.Hour {
		t.Errorf("Session TTL: got %v, want 12h", cfg.Session.TTL)
	}
}

func TestLoad_MissingSessionSecret(t *testing.T) {
	os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() without SESSION_SECRET should fail")
	}
}

func TestLoad_WeakSessionSecretRejected(t *testing.T) {
	os.Setenv("SESSION_SECRET", "short")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() with weak SESSION_SECRET should fail")
	}
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("RETRY_MAX_ATTEMPTS", "not-a-number")
	os.Setenv("RETRY_BASE_DELAY", "not-a-duration")
	os.Setenv("SERVER_READ_TIMEOUT", "???")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("MaxAttempts with invalid value: got %d, want 3", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.BaseDelay != 1*time.Second {
		t.Errorf("BaseDelay with invalid value: got %v, want 1s", cfg.Retry.BaseDelay)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout with invalid value: got %v, want 15s", cfg.Server.ReadTimeout)
	}
}

func TestLoad_ZeroAttemptsClampedToOne(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("RETRY_MAX_ATTEMPTS", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Retry.MaxAttempts != 1 {
		t.Errorf("MaxAttempts: got %d, want 1", cfg.Retry.MaxAttempts)
	}
}

func TestLoadToolLinks(t *testing.T) {
	setRequiredEnv(t)

	toolsFile := filepath.Join(t.TempDir(), "tools.toml")
	content := `
[metrics_dashboard]
name = "Grafana"
url = "https://grafana.example.com/d/acm"
description = "Call volume dashboards"

[sip_capture]
name = "Homer"
url = "https://homer.example.com"

[[extra]]
name = "Runbook"
url = "https://wiki.example.com/acm-runbook"
`
	if err := os.WriteFile(toolsFile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	os.Setenv("TOOLS_FILE", toolsFile)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Tools.MetricsDashboard.Name != "Grafana" {
		t.Errorf("MetricsDashboard.Name: got %q", cfg.Tools.MetricsDashboard.Name)
	}
	if len(cfg.Tools.Extra) != 1 || cfg.Tools.Extra[0].Name != "Runbook" {
		t.Errorf("Extra links: got %+v", cfg.Tools.Extra)
	}
}

func TestLoad_MissingToolsFileFails(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("TOOLS_FILE", filepath.Join(t.TempDir(), "does-not-exist.toml"))

	if _, err := Load(); err == nil {
		t.Fatal("Load() with missing TOOLS_FILE should fail")
	}
}
