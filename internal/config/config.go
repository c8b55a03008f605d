package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v6"
	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	StoreSqlite   = "sqlite"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type Config struct {
	IsTestMode     bool     `env:"TEST_MODE"`
	Port           int      `env:"PORT" envDefault:"8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	TimeZone       string   `env:"TIME_ZONE" envDefault:"Local"`
	LogDevelopment bool     `env:"LOG_DEVELOPMENT"`

	StoreBackend  string `env:"STORE_BACKEND" envDefault:"sqlite"`
	StoreKey      string `env:"STORE_KEY" envDefault:"times"`
	SqlitePath    string `env:"SQLITE_PATH" envDefault:"waterreminder.db"`
	PostgresqlURL string `env:"POSTGRESQL_URL"`
	RedisURL      string `env:"REDIS_URL"`

	// RabbitMQ is optional, the in-process alarm clock is used without it.
	RabbitmqURL             string `env:"RABBITMQ_URL"`
	RabbitmqDelayedExchange string `env:"RABBITMQ_DELAYED_EXCHANGE" envDefault:"waterreminder-delayed"`
	RabbitmqAlarmQueue      string `env:"RABBITMQ_ALARM_QUEUE" envDefault:"waterreminder-alarms"`

	ExactAlarmsAllowed   bool          `env:"EXACT_ALARMS_ALLOWED" envDefault:"true"`
	NotificationsAllowed bool          `env:"NOTIFICATIONS_ALLOWED" envDefault:"true"`
	AlertTimeout         time.Duration `env:"ALERT_TIMEOUT" envDefault:"30s"`
	AlertSoundCommand    string        `env:"ALERT_SOUND_COMMAND"`
	SseStream            string        `env:"SSE_STREAM" envDefault:"alerts"`

	TelegramToken          string        `env:"TELEGRAM_TOKEN"`
	TelegramChatID         int64         `env:"TELEGRAM_CHAT_ID"`
	TelegramRequestTimeout time.Duration `env:"TELEGRAM_REQUEST_TIMEOUT" envDefault:"10s"`

	AwsRegion             string `env:"AWS_REGION"`
	AwsAccessKey          string `env:"AWS_ACCESS_KEY"`
	AwsSecretKey          string `env:"AWS_SECRET_KEY"`
	AwsEmailSender        string `env:"AWS_EMAIL_SENDER"`
	AwsEmailRecipient     string `env:"AWS_EMAIL_RECIPIENT"`
	AwsEmailAlertTemplate string `env:"AWS_EMAIL_ALERT_TEMPLATE" envDefault:"WaterReminderAlert"`

	BaseURL   url.URL  `env:"BASE_URL" envDefault:"http://localhost:8080"`
	SentryDsn *url.URL `env:"SENTRY_DSN"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("could not parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.TimeZone, validation.Required, validation.By(validateTimeZone)),
		validation.Field(
			&c.StoreBackend,
			validation.Required,
			validation.In(StoreSqlite, StoreRedis, StorePostgres),
		),
		validation.Field(&c.StoreKey, validation.Required),
		validation.Field(&c.SqlitePath, requiredIf(c.StoreBackend == StoreSqlite)...),
		validation.Field(&c.RedisURL, requiredIf(c.StoreBackend == StoreRedis)...),
		validation.Field(&c.PostgresqlURL, requiredIf(c.StoreBackend == StorePostgres)...),
		validation.Field(&c.RabbitmqDelayedExchange, requiredIf(c.IsRabbitmqEnabled())...),
		validation.Field(&c.RabbitmqAlarmQueue, requiredIf(c.IsRabbitmqEnabled())...),
		validation.Field(&c.AlertTimeout, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.TelegramChatID, requiredIf(c.IsTelegramEnabled())...),
		validation.Field(&c.TelegramRequestTimeout, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.AwsRegion, requiredIf(c.IsEmailEnabled())...),
		validation.Field(&c.AwsEmailSender, requiredIf(c.IsEmailEnabled())...),
		validation.Field(&c.AwsEmailAlertTemplate, requiredIf(c.IsEmailEnabled())...),
	)
}

func (c *Config) IsRabbitmqEnabled() bool {
	return c.RabbitmqURL != ""
}

func (c *Config) IsTelegramEnabled() bool {
	return c.TelegramToken != ""
}

func (c *Config) IsEmailEnabled() bool {
	return c.AwsEmailRecipient != ""
}

func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.TimeZone)
}

func requiredIf(condition bool) []validation.Rule {
	if condition {
		return []validation.Rule{validation.Required}
	}
	return nil
}

func validateTimeZone(value interface{}) error {
	name, ok := value.(string)
	if !ok {
		return errors.New("must be a string")
	}
	if _, err := time.LoadLocation(name); err != nil {
		return errors.New("unknown time zone")
	}
	return nil
}
