// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SheetsConfig provides settings for the spreadsheet sink.
type SheetsConfig interface {
	GetSheetsSpreadsheetID() string
	GetSheetsCredentialsJSON() []byte
	GetSheetsSheetName() string
	GetSinkTimeout() time.Duration
	IsSheetsEnabled() bool
}

// FallbackConfig provides settings for the fallback webhook.
type FallbackConfig interface {
	GetFallbackWebhookURL() string
	GetFallbackWebhookSecret() string
}

// IntakeConfig provides settings for the lead intake pipeline.
type IntakeConfig interface {
	GetLeadRateLimit() int
	GetLeadRateWindow() time.Duration
	GetIdempotencyTTL() time.Duration
	IsDevBypassEnabled() bool
}

// RedisConfig provides shared Redis connection settings.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	IsRedisEnabled() bool
}

// SchedulerConfig provides settings for the replay queue and its worker.
type SchedulerConfig interface {
	RedisConfig
	GetReplayQueue() string
	GetReplayMaxRetry() int
	GetWorkerConcurrency() int
}

// WhatsAppConfig provides settings for the WhatsApp gateway.
type WhatsAppConfig interface {
	GetWhatsAppURL() string
	GetWhatsAppDeviceID() string
	GetWhatsAppUsername() string
	GetWhatsAppPassword() string
}

// SMTPConfig provides settings for outbound ops email.
type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetSMTPFrom() string
	GetSMTPFromName() string
	GetOpsEmail() string
	IsSMTPEnabled() bool
}

// ContactConfig provides the public contact numbers shown to customers.
type ContactConfig interface {
	GetContactPhone() string
	GetContactWhatsApp() string
}

// JWTConfig provides JWT validation settings for the admin middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// AdminConfig controls access to diagnostics endpoints.
type AdminConfig interface {
	JWTConfig
	IsAdminAuthEnabled() bool
}

// ClientConfig provides settings for the terminal intake tool.
type ClientConfig interface {
	GetIntakeAPIURL() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds every setting read from the environment.
type Config struct {
	Env            string
	HTTPAddr       string
	CORSAllowAll   bool
	CORSOrigins    []string
	CORSAllowCreds bool

	SheetsSpreadsheetID   string
	SheetsCredentialsJSON []byte
	SheetsSheetName       string
	SinkTimeout           time.Duration
	DevBypass             bool

	FallbackWebhookURL    string
	FallbackWebhookSecret string

	LeadRateLimit  int
	LeadRateWindow time.Duration
	IdempotencyTTL time.Duration

	RedisURL          string
	RedisTLSInsecure  bool
	ReplayQueue       string
	ReplayMaxRetry    int
	WorkerConcurrency int

	WhatsAppURL      string
	WhatsAppDeviceID string
	WhatsAppUsername string
	WhatsAppPassword string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	OpsEmail     string

	ContactPhone    string
	ContactWhatsApp string

	JWTAccessSecret string

	IntakeAPIURL string
}

// Compile-time checks.
var (
	_ HTTPConfig      = (*Config)(nil)
	_ SheetsConfig    = (*Config)(nil)
	_ FallbackConfig  = (*Config)(nil)
	_ IntakeConfig    = (*Config)(nil)
	_ SchedulerConfig = (*Config)(nil)
	_ WhatsAppConfig  = (*Config)(nil)
	_ SMTPConfig      = (*Config)(nil)
	_ ContactConfig   = (*Config)(nil)
	_ AdminConfig     = (*Config)(nil)
	_ ClientConfig    = (*Config)(nil)
)

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool { return strings.EqualFold(c.Env, "production") }

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool { return strings.EqualFold(c.Env, "development") }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

func (c *Config) GetSheetsSpreadsheetID() string   { return c.SheetsSpreadsheetID }
func (c *Config) GetSheetsCredentialsJSON() []byte { return c.SheetsCredentialsJSON }
func (c *Config) GetSheetsSheetName() string       { return c.SheetsSheetName }
func (c *Config) GetSinkTimeout() time.Duration    { return c.SinkTimeout }
func (c *Config) IsSheetsEnabled() bool {
	return c.SheetsSpreadsheetID != "" && len(c.SheetsCredentialsJSON) > 0
}

func (c *Config) GetFallbackWebhookURL() string    { return c.FallbackWebhookURL }
func (c *Config) GetFallbackWebhookSecret() string { return c.FallbackWebhookSecret }

func (c *Config) GetLeadRateLimit() int             { return c.LeadRateLimit }
func (c *Config) GetLeadRateWindow() time.Duration  { return c.LeadRateWindow }
func (c *Config) GetIdempotencyTTL() time.Duration  { return c.IdempotencyTTL }
func (c *Config) IsDevBypassEnabled() bool          { return c.DevBypass && c.IsDevelopment() }

func (c *Config) GetRedisURL() string        { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool  { return c.RedisTLSInsecure }
func (c *Config) IsRedisEnabled() bool       { return c.RedisURL != "" }
func (c *Config) GetReplayQueue() string     { return c.ReplayQueue }
func (c *Config) GetReplayMaxRetry() int     { return c.ReplayMaxRetry }
func (c *Config) GetWorkerConcurrency() int  { return c.WorkerConcurrency }

func (c *Config) GetWhatsAppURL() string      { return c.WhatsAppURL }
func (c *Config) GetWhatsAppDeviceID() string { return c.WhatsAppDeviceID }
func (c *Config) GetWhatsAppUsername() string { return c.WhatsAppUsername }
func (c *Config) GetWhatsAppPassword() string { return c.WhatsAppPassword }

func (c *Config) GetSMTPHost() string     { return c.SMTPHost }
func (c *Config) GetSMTPPort() int        { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string { return c.SMTPPassword }
func (c *Config) GetSMTPFrom() string     { return c.SMTPFrom }
func (c *Config) GetSMTPFromName() string { return c.SMTPFromName }
func (c *Config) GetOpsEmail() string     { return c.OpsEmail }
func (c *Config) IsSMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != "" && c.OpsEmail != ""
}

func (c *Config) GetContactPhone() string    { return c.ContactPhone }
func (c *Config) GetContactWhatsApp() string { return c.ContactWhatsApp }

func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }
func (c *Config) IsAdminAuthEnabled() bool   { return c.JWTAccessSecret != "" }

func (c *Config) GetIntakeAPIURL() string { return c.IntakeAPIURL }

// Load reads configuration from the environment, after applying an optional
// .env file from the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	credentials, err := loadCredentials(
		getEnv("GOOGLE_SHEETS_CREDENTIALS_JSON", ""),
		getEnv("GOOGLE_SHEETS_CREDENTIALS_FILE", ""),
	)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		CORSAllowAll:          corsAllowAll,
		CORSOrigins:           corsOrigins,
		CORSAllowCreds:        strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		SheetsSpreadsheetID:   getEnv("GOOGLE_SHEETS_ID", ""),
		SheetsCredentialsJSON: credentials,
		SheetsSheetName:       getEnv("GOOGLE_SHEETS_SHEET_NAME", "fresh leads"),
		SinkTimeout:           mustDuration(getEnv("SINK_TIMEOUT", "15s")),
		DevBypass:             strings.EqualFold(getEnv("SINK_DEV_BYPASS", "true"), "true"),
		FallbackWebhookURL:    getEnv("MAKE_WEBHOOK_URL", ""),
		FallbackWebhookSecret: getEnv("FALLBACK_WEBHOOK_SECRET", ""),
		LeadRateLimit:         mustInt(getEnv("LEAD_RATE_LIMIT", "5")),
		LeadRateWindow:        mustDuration(getEnv("LEAD_RATE_WINDOW", "60s")),
		IdempotencyTTL:        mustDuration(getEnv("IDEMPOTENCY_TTL", "24h")),
		RedisURL:              getEnv("REDIS_URL", ""),
		RedisTLSInsecure:      strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		ReplayQueue:           getEnv("REPLAY_QUEUE", "leads"),
		ReplayMaxRetry:        mustInt(getEnv("REPLAY_MAX_RETRY", "12")),
		WorkerConcurrency:     mustInt(getEnv("WORKER_CONCURRENCY", "4")),
		WhatsAppURL:           getEnv("WHATSAPP_URL", ""),
		WhatsAppDeviceID:      getEnv("WHATSAPP_DEVICE_ID", ""),
		WhatsAppUsername:      getEnv("WHATSAPP_USERNAME", ""),
		WhatsAppPassword:      getEnv("WHATSAPP_PASSWORD", ""),
		SMTPHost:              getEnv("SMTP_HOST", ""),
		SMTPPort:              mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:          getEnv("SMTP_USERNAME", ""),
		SMTPPassword:          getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:              getEnv("SMTP_FROM", ""),
		SMTPFromName:          getEnv("SMTP_FROM_NAME", "نقل العفش"),
		OpsEmail:              getEnv("OPS_EMAIL", ""),
		ContactPhone:          getEnv("CONTACT_PHONE", "966543654700"),
		ContactWhatsApp:       getEnv("CONTACT_WHATSAPP", "966543654700"),
		JWTAccessSecret:       getEnv("ADMIN_JWT_SECRET", ""),
		IntakeAPIURL:          getEnv("INTAKE_API_URL", "http://localhost:8080"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadClient reads only the settings the terminal intake tool needs, so it
// runs without server credentials.
func LoadClient() *Config {
	_ = godotenv.Load()
	return &Config{
		Env:          getEnv("APP_ENV", "development"),
		IntakeAPIURL: getEnv("INTAKE_API_URL", "http://localhost:8080"),
	}
}

func (c *Config) validate() error {
	if c.IsProduction() && !c.IsSheetsEnabled() {
		return fmt.Errorf("GOOGLE_SHEETS_ID and sheet credentials are required in production")
	}
	if c.LeadRateLimit <= 0 {
		return fmt.Errorf("LEAD_RATE_LIMIT must be a positive integer")
	}
	if c.LeadRateWindow <= 0 {
		return fmt.Errorf("LEAD_RATE_WINDOW must be a positive duration")
	}
	if c.SinkTimeout <= 0 {
		return fmt.Errorf("SINK_TIMEOUT must be a positive duration")
	}
	if c.CORSAllowAll && c.CORSAllowCreds {
		return fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if c.WorkerConcurrency <= 0 {
		c.WorkerConcurrency = 1
	}
	if c.IdempotencyTTL <= 0 {
		c.IdempotencyTTL = 24 * time.Hour
	}
	return nil
}

// loadCredentials prefers inline JSON and falls back to a file path.
func loadCredentials(inline, path string) ([]byte, error) {
	if strings.TrimSpace(inline) != "" {
		return []byte(inline), nil
	}
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read GOOGLE_SHEETS_CREDENTIALS_FILE: %w", err)
	}
	return data, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
