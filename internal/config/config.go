package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every runtime setting of the service.
type Config struct {
	AppPort        string
	DatabaseDriver string
	DatabaseDSN    string
	JWTSecret      string
	TokenTTL       time.Duration
	RabbitMQURL    string
	MailQueue      string
	MailFrom       string
	MailFailLoudly bool
	SMTPAddr       string
	PageSize       int
	MaxPageSize    int
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "ulasan.db?_foreign_keys=on")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("MAIL_QUEUE", "mail_queue")
	v.SetDefault("MAIL_FROM", "noreply@ulasan.local")
	v.SetDefault("MAIL_FAIL_LOUDLY", false)
	v.SetDefault("SMTP_ADDR", "")
	v.SetDefault("PAGE_SIZE", 10)
	v.SetDefault("MAX_PAGE_SIZE", 100)
}

// Load reads configuration from the environment and an optional config.yaml.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/ulasan")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := Config{
		AppPort:        v.GetString("APP_PORT"),
		DatabaseDriver: v.GetString("DATABASE_DRIVER"),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		TokenTTL:       v.GetDuration("TOKEN_TTL"),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
		MailQueue:      v.GetString("MAIL_QUEUE"),
		MailFrom:       v.GetString("MAIL_FROM"),
		MailFailLoudly: v.GetBool("MAIL_FAIL_LOUDLY"),
		SMTPAddr:       v.GetString("SMTP_ADDR"),
		PageSize:       v.GetInt("PAGE_SIZE"),
		MaxPageSize:    v.GetInt("MAX_PAGE_SIZE"),
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL must be positive, got %s", v.GetString("TOKEN_TTL"))
	}
	if cfg.PageSize <= 0 || cfg.MaxPageSize < cfg.PageSize {
		return Config{}, fmt.Errorf("invalid page sizes: PAGE_SIZE=%d MAX_PAGE_SIZE=%d", cfg.PageSize, cfg.MaxPageSize)
	}
	return cfg, nil
}

// Validate checks settings that only the HTTP server needs.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}
