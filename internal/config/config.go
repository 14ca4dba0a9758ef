package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"skynest/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Backend    BackendConfig    `yaml:"backend"`
	Portal     PortalConfig     `yaml:"portal"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Exports    ExportConfig     `yaml:"exports"`
	Google     GoogleConfig     `yaml:"google"`
	Telegram   TelegramConfig   `yaml:"telegram"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

// BackendConfig points at the SkyNest REST backend.
type BackendConfig struct {
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// ServiceToken is used for calls made outside a user session (ops gRPC API).
	ServiceToken string `yaml:"service_token"`
}

type PortalConfig struct {
	HTTP      PortalHTTPConfig `yaml:"http"`
	GRPC      APIGRPCConfig    `yaml:"grpc"`
	Session   SessionConfig    `yaml:"session"`
	Wizard    WizardConfig     `yaml:"wizard"`
	Auth      APIAuthConfig    `yaml:"auth"`
	RateLimit RateLimitConfig  `yaml:"rate_limit"`
}

type PortalHTTPConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type SessionConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
	Issuer string        `yaml:"issuer"`
}

type WizardConfig struct {
	TTL       time.Duration `yaml:"ttl"`
	MaxNights int           `yaml:"max_nights"`
}

type APIGRPCConfig struct {
	Enabled    bool         `yaml:"enabled"`
	Port       int          `yaml:"port"`
	Reflection bool         `yaml:"reflection"`
	TLS        APITLSConfig `yaml:"tls"`
}

type APITLSConfig struct {
	Enabled           bool   `yaml:"enabled"`
	CertFile          string `yaml:"cert_file"`
	KeyFile           string `yaml:"key_file"`
	ClientCAFile      string `yaml:"client_ca_file"`
	RequireClientCert bool   `yaml:"require_client_cert"`
}

// APIAuthConfig guards the ops gRPC API with static API keys.
type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	HeaderExtra  string         `yaml:"header_extra"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Extra       string   `yaml:"extra"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
	// Mutations caps writes of one session per window.
	Mutations int           `yaml:"mutations"`
	Window    time.Duration `yaml:"window"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
	// ActivityRetention bounds the audit log; older entries are purged daily.
	ActivityRetention time.Duration `yaml:"activity_retention"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type GoogleConfig struct {
	GoogleCredentialsFile string `yaml:"credentials_file"`
	LedgerSpreadsheetID   string `yaml:"ledger_spreadsheet_id"`
	ReportsSpreadsheetID  string `yaml:"reports_spreadsheet_id"`
}

func (g GoogleConfig) Enabled() bool {
	return g.GoogleCredentialsFile != "" && g.LedgerSpreadsheetID != ""
}

// TelegramConfig configures staff notifications. Empty token disables them.
type TelegramConfig struct {
	BotToken    string `yaml:"bot_token"`
	StaffChatID int64  `yaml:"staff_chat_id"`
	Debug       bool   `yaml:"debug"`
}

func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.StaffChatID != 0
}

func Load(configPath string) (*Config, error) {
	// .env is optional; variables already in the environment win.
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("backend base_url is required")
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend base_url %q is not an absolute URL", c.Backend.BaseURL)
	}

	if len(c.Portal.Session.Secret) < 16 {
		return errors.New("portal session secret must be at least 16 characters")
	}

	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Portal.Wizard.MaxNights < 1 {
		return fmt.Errorf("wizard max_nights must be positive, got %d", c.Portal.Wizard.MaxNights)
	}

	return ValidateAPIKeys(c.Portal.Auth.APIKeys)
}

func ValidateAPIKeys(keys []APIClientKey) error {
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if k.Key == "" {
			return fmt.Errorf("api key '%s' is empty", k.Name)
		}
		if seen[k.Key] {
			return fmt.Errorf("duplicate api key for client '%s'", k.Name)
		}
		seen[k.Key] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "skynest-portal"
	}
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = models.DefaultBackendTimeout
	}
	if c.Backend.CacheTTL == 0 {
		c.Backend.CacheTTL = models.DefaultCacheTTL
	}
	if c.Portal.HTTP.Port == 0 {
		c.Portal.HTTP.Port = 8080
	}
	if c.Portal.GRPC.Port == 0 {
		c.Portal.GRPC.Port = 8081
	}
	if c.Portal.Session.TTL == 0 {
		c.Portal.Session.TTL = models.DefaultSessionTTL
	}
	if c.Portal.Session.Issuer == "" {
		c.Portal.Session.Issuer = c.App.Name
	}
	if c.Portal.Wizard.TTL == 0 {
		c.Portal.Wizard.TTL = models.DefaultWizardTTL
	}
	if c.Portal.Wizard.MaxNights == 0 {
		c.Portal.Wizard.MaxNights = models.DefaultMaxNights
	}
	if c.Portal.Auth.HeaderAPIKey == "" {
		c.Portal.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.Portal.Auth.HeaderExtra == "" {
		c.Portal.Auth.HeaderExtra = "x-api-extra"
	}
	if c.Portal.RateLimit.Mutations == 0 {
		c.Portal.RateLimit.Mutations = models.RateLimitRequests
	}
	if c.Portal.RateLimit.Window == 0 {
		c.Portal.RateLimit.Window = models.RateLimitWindow
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Database.ActivityRetention == 0 {
		c.Database.ActivityRetention = 90 * 24 * time.Hour
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
