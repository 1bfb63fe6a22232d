// Package config loads process configuration from the environment, an optional .env
// file and an optional config.yaml, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvProduction is the APP_ENV value that enables production hardening.
const EnvProduction = "production"

// Config is the typed view of every setting the server reads at startup.
type Config struct {
	AppEnv  string
	Addr    string
	Release string

	DatabaseURL    string
	DBMaxOpenConns int
	SlowQuery      time.Duration
	SlowRequest    time.Duration

	CSRFKey            string
	RateLimitPerSecond float64
	RateLimitBurst     int
	RedisURL           string
	SentryDSN          string

	AdminEmail    string
	AdminPassword string

	StudioTimezone   string
	StaffNotifyEmail string

	OpenAIKey   string
	OpenAIModel string

	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayWebhookSecret string

	ResendAPIKey string
	EmailFrom    string
	EmailReplyTo string

	WhatsAppToken   string
	WhatsAppPhoneID string

	OutboxSchedule    string
	RecurringSchedule string
	RecurringWeeks    int

	location *time.Location
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_ADDR", ":8080")
	v.SetDefault("APP_RELEASE", "dev")
	v.SetDefault("DATABASE_URL", "fitstudio.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("SLOW_QUERY_MS", 50)
	v.SetDefault("SLOW_REQUEST_MS", 200)
	v.SetDefault("RATE_LIMIT_PER_SECOND", 10.0)
	v.SetDefault("RATE_LIMIT_BURST", 30)
	v.SetDefault("STUDIO_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("EMAIL_FROM", "Studio <hello@example.com>")
	v.SetDefault("OUTBOX_SCHEDULE", "@every 1m")
	v.SetDefault("RECURRING_SCHEDULE", "")
	v.SetDefault("RECURRING_WEEKS", 4)
}

// Load reads .env (if present), config.yaml (if present) and the environment.
// POST: Returns a validated Config or the first validation error
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	setDefaults(v)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		AppEnv:                strings.ToLower(v.GetString("APP_ENV")),
		Addr:                  v.GetString("APP_ADDR"),
		Release:               v.GetString("APP_RELEASE"),
		DatabaseURL:           v.GetString("DATABASE_URL"),
		DBMaxOpenConns:        v.GetInt("DB_MAX_OPEN_CONNS"),
		SlowQuery:             time.Duration(v.GetInt("SLOW_QUERY_MS")) * time.Millisecond,
		SlowRequest:           time.Duration(v.GetInt("SLOW_REQUEST_MS")) * time.Millisecond,
		CSRFKey:               v.GetString("CSRF_KEY"),
		RateLimitPerSecond:    v.GetFloat64("RATE_LIMIT_PER_SECOND"),
		RateLimitBurst:        v.GetInt("RATE_LIMIT_BURST"),
		RedisURL:              v.GetString("REDIS_URL"),
		SentryDSN:             v.GetString("SENTRY_DSN"),
		AdminEmail:            v.GetString("ADMIN_EMAIL"),
		AdminPassword:         v.GetString("ADMIN_PASSWORD"),
		StudioTimezone:        v.GetString("STUDIO_TIMEZONE"),
		StaffNotifyEmail:      v.GetString("STAFF_NOTIFY_EMAIL"),
		OpenAIKey:             v.GetString("OPENAI_API_KEY"),
		OpenAIModel:           v.GetString("OPENAI_MODEL"),
		RazorpayKeyID:         v.GetString("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:     v.GetString("RAZORPAY_KEY_SECRET"),
		RazorpayWebhookSecret: v.GetString("RAZORPAY_WEBHOOK_SECRET"),
		ResendAPIKey:          v.GetString("RESEND_API_KEY"),
		EmailFrom:             v.GetString("EMAIL_FROM"),
		EmailReplyTo:          v.GetString("EMAIL_REPLY_TO"),
		WhatsAppToken:         v.GetString("WHATSAPP_TOKEN"),
		WhatsAppPhoneID:       v.GetString("WHATSAPP_PHONE_ID"),
		OutboxSchedule:        v.GetString("OUTBOX_SCHEDULE"),
		RecurringSchedule:     v.GetString("RECURRING_SCHEDULE"),
		RecurringWeeks:        v.GetInt("RECURRING_WEEKS"),
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	loc, err := time.LoadLocation(c.StudioTimezone)
	if err != nil {
		return fmt.Errorf("STUDIO_TIMEZONE %q: %w", c.StudioTimezone, err)
	}
	c.location = loc

	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.RecurringWeeks < 1 || c.RecurringWeeks > 12 {
		return fmt.Errorf("RECURRING_WEEKS must be between 1 and 12, got %d", c.RecurringWeeks)
	}
	if c.RateLimitPerSecond <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("RATE_LIMIT_PER_SECOND and RATE_LIMIT_BURST must be positive")
	}
	if c.IsProduction() {
		if len(c.CSRFKey) < 32 {
			return errors.New("CSRF_KEY of at least 32 bytes is required in production")
		}
		if (c.AdminEmail == "") != (c.AdminPassword == "") {
			return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
		}
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// Location returns the studio's time zone, falling back to UTC before validation.
func (c Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// CSRFKeyBytes returns the CSRF key, or a fixed development key outside production.
func (c Config) CSRFKeyBytes() []byte {
	if c.CSRFKey != "" {
		return []byte(c.CSRFKey)
	}
	return []byte("fitstudio-dev-only-csrf-key-0032")
}
