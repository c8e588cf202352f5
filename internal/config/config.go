package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port             string `mapstructure:"PORT"`
	DatabaseURL      string `mapstructure:"DATABASE_URL"`
	MigrationsPath   string `mapstructure:"MIGRATIONS_PATH"`
	AutoMigrate      bool   `mapstructure:"AUTO_MIGRATE"`
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`
	RedisDB          int    `mapstructure:"REDIS_DB"`
	SessionKeyPrefix string `mapstructure:"SESSION_KEY_PREFIX"`
	SessionTTLHours  int    `mapstructure:"SESSION_TTL_HOURS"`
	VisionURL        string `mapstructure:"VISION_URL"`
	VisionAPIKey     string `mapstructure:"VISION_API_KEY"`
	SpeechURL        string `mapstructure:"SPEECH_URL"`
	TelegramToken    string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `mapstructure:"TELEGRAM_CHAT_ID"`
	DefaultWardID    string `mapstructure:"DEFAULT_WARD_ID"`
	ReportFontPath   string `mapstructure:"REPORT_FONT_PATH"`
	LogLevel         string `mapstructure:"LOG_LEVEL"`
	LogFormat        string `mapstructure:"LOG_FORMAT"`
}

var keys = []string{
	"PORT", "DATABASE_URL", "MIGRATIONS_PATH", "AUTO_MIGRATE",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"SESSION_KEY_PREFIX", "SESSION_TTL_HOURS",
	"VISION_URL", "VISION_API_KEY", "SPEECH_URL",
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
	"DEFAULT_WARD_ID", "REPORT_FONT_PATH",
	"LOG_LEVEL", "LOG_FORMAT",
}

// Load reads configuration from the environment and an optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("AUTO_MIGRATE", true)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_KEY_PREFIX", "cathshield:workflow:")
	v.SetDefault("SESSION_TTL_HOURS", 12)
	v.SetDefault("DEFAULT_WARD_ID", "WARD-1")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// .env is optional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings required to reach the database.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.SessionTTLHours <= 0 {
		return fmt.Errorf("SESSION_TTL_HOURS must be positive, got %d", c.SessionTTLHours)
	}
	return nil
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// NotificationsEnabled reports whether critical alerts are pushed to Telegram.
func (c *Config) NotificationsEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}
