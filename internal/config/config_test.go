package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"skynest/internal/models"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("SKYNEST_SESSION_SECRET", "0123456789abcdef0123")

	yamlContent := `
backend:
  base_url: "http://backend.local:5000"
  timeout: 3s
portal:
  session:
    secret: "${SKYNEST_SESSION_SECRET}"
  wizard:
    max_nights: 14
database:
  path: "portal.db"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Backend.BaseURL != "http://backend.local:5000" {
		t.Errorf("unexpected base_url %s", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout != 3*time.Second {
		t.Errorf("expected timeout 3s, got %s", cfg.Backend.Timeout)
	}
	if cfg.Portal.Session.Secret != "0123456789abcdef0123" {
		t.Errorf("expected env expansion of session secret, got %q", cfg.Portal.Session.Secret)
	}
	if cfg.Portal.Wizard.MaxNights != 14 {
		t.Errorf("expected max_nights 14, got %d", cfg.Portal.Wizard.MaxNights)
	}
	if cfg.Portal.HTTP.Port != 8080 {
		t.Errorf("expected default http port 8080, got %d", cfg.Portal.HTTP.Port)
	}
	if cfg.Portal.Wizard.TTL != models.DefaultWizardTTL {
		t.Errorf("expected default wizard ttl, got %s", cfg.Portal.Wizard.TTL)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidateConfig(t *testing.T) {
	valid := func() Config {
		return Config{
			Backend:  BackendConfig{BaseURL: "https://api.skynest.example"},
			Portal:   PortalConfig{Session: SessionConfig{Secret: "a-very-long-secret"}, Wizard: WizardConfig{MaxNights: 30}},
			Database: DatabaseConfig{Path: "portal.db"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(*Config) {}, wantErr: false},
		{name: "missing backend", mutate: func(c *Config) { c.Backend.BaseURL = "" }, wantErr: true},
		{name: "relative backend", mutate: func(c *Config) { c.Backend.BaseURL = "/api" }, wantErr: true},
		{name: "short secret", mutate: func(c *Config) { c.Portal.Session.Secret = "short" }, wantErr: true},
		{name: "missing db path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{name: "bad max nights", mutate: func(c *Config) { c.Portal.Wizard.MaxNights = -1 }, wantErr: true},
		{
			name: "duplicate api key",
			mutate: func(c *Config) {
				c.Portal.Auth.APIKeys = []APIClientKey{{Key: "k", Name: "a"}, {Key: "k", Name: "b"}}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{Monitoring: MonitoringConfig{PrometheusEnabled: true}}
	cfg.applyDefaults()

	if cfg.Monitoring.PrometheusPort != 9090 {
		t.Errorf("expected prometheus port 9090, got %d", cfg.Monitoring.PrometheusPort)
	}
	if cfg.Portal.Auth.HeaderAPIKey != "x-api-key" {
		t.Errorf("expected default api key header, got %s", cfg.Portal.Auth.HeaderAPIKey)
	}
	if cfg.Portal.RateLimit.Mutations != models.RateLimitRequests {
		t.Errorf("expected default mutation limit, got %d", cfg.Portal.RateLimit.Mutations)
	}
	if cfg.Database.ActivityRetention != 90*24*time.Hour {
		t.Errorf("expected 90 day activity retention, got %s", cfg.Database.ActivityRetention)
	}
	if cfg.Portal.Session.Issuer != "skynest-portal" {
		t.Errorf("expected issuer to default to app name, got %s", cfg.Portal.Session.Issuer)
	}
}

func TestFeatureToggles(t *testing.T) {
	if (GoogleConfig{}).Enabled() {
		t.Error("empty google config must be disabled")
	}
	if !(GoogleConfig{GoogleCredentialsFile: "c.json", LedgerSpreadsheetID: "x"}).Enabled() {
		t.Error("google config with credentials and ledger must be enabled")
	}
	if (TelegramConfig{BotToken: "t"}).Enabled() {
		t.Error("telegram without staff chat must be disabled")
	}
}
