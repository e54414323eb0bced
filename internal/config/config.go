package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds all application configuration
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	RedisURL    string
	TimeZone    string
	Location    *time.Location

	LogLevel  string
	LogFormat string

	SessionSecret  string
	SessionTTL     time.Duration
	CookieSecure   bool
	LoginRateLimit string

	CORSAllowedOrigins []string
	LedgerCacheTTL     time.Duration
	MetricsNamespace   string
	TracingStdout      bool

	VNPay VNPayConfig
}

// VNPayConfig holds the payment gateway merchant settings
type VNPayConfig struct {
	TmnCode         string
	HashSecret      string
	PayURL          string
	ReturnURL       string
	Locale          string
	VerifySignature bool
}

// Load reads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	return fromKoanf(k)
}

func fromKoanf(k *koanf.Koanf) (*Config, error) {
	cfg := &Config{
		AppEnv:      valueOrDefault(k.String("APP_ENV"), "development"),
		Port:        valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL: strings.TrimSpace(k.String("DATABASE_URL")),
		RedisURL:    strings.TrimSpace(k.String("REDIS_URL")),
		TimeZone:    valueOrDefault(k.String("TIMEZONE"), "Asia/Ho_Chi_Minh"),

		LogLevel:  valueOrDefault(k.String("LOG_LEVEL"), "info"),
		LogFormat: valueOrDefault(k.String("LOG_FORMAT"), "json"),

		SessionSecret:  k.String("SESSION_SECRET"),
		SessionTTL:     parseDuration(k.String("SESSION_TTL"), "168h"),
		CookieSecure:   parseBool(k.String("COOKIE_SECURE")),
		LoginRateLimit: valueOrDefault(k.String("LOGIN_RATE_LIMIT"), "10-M"),

		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		LedgerCacheTTL:     parseDuration(k.String("LEDGER_CACHE_TTL"), "10m"),
		MetricsNamespace:   valueOrDefault(k.String("METRICS_NAMESPACE"), "antruanao"),
		TracingStdout:      parseBool(k.String("TRACING_STDOUT")),

		VNPay: VNPayConfig{
			TmnCode:         strings.TrimSpace(k.String("VNPAY_TMN_CODE")),
			HashSecret:      strings.TrimSpace(k.String("VNPAY_HASH_SECRET")),
			PayURL:          valueOrDefault(k.String("VNPAY_PAY_URL"), "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"),
			ReturnURL:       strings.TrimSpace(k.String("VNPAY_RETURN_URL")),
			Locale:          valueOrDefault(k.String("VNPAY_LOCALE"), "vn"),
			VerifySignature: parseBoolDefault(k.String("VNPAY_VERIFY_SIGNATURE"), true),
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if strings.TrimSpace(cfg.SessionSecret) == "" {
		return nil, errors.New("SESSION_SECRET is required")
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.TimeZone, err)
	}
	cfg.Location = loc

	return cfg, nil
}

// SeedConfig holds what the seed command needs
type SeedConfig struct {
	DatabaseURL   string
	AdminUserName string
	AdminPassword string
	LogLevel      string
	LogFormat     string
}

// LoadSeed reads the seed command configuration
func LoadSeed() (*SeedConfig, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &SeedConfig{
		DatabaseURL:   strings.TrimSpace(k.String("DATABASE_URL")),
		AdminUserName: valueOrDefault(k.String("ADMIN_USERNAME"), "Admin"),
		AdminPassword: k.String("ADMIN_PASSWORD"),
		LogLevel:      valueOrDefault(k.String("LOG_LEVEL"), "info"),
		LogFormat:     valueOrDefault(k.String("LOG_FORMAT"), "console"),
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.AdminPassword == "" {
		return nil, errors.New("ADMIN_PASSWORD is required")
	}
	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// IsProduction reports whether the app runs with APP_ENV=production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseBoolDefault(value string, fallback bool) bool {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return parseBool(value)
}
