package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the bot
type Config struct {
	Bot        BotConfig        `mapstructure:"bot"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Dictionary DictionaryConfig `mapstructure:"dictionary"`
	Session    SessionConfig    `mapstructure:"session"`
	Reminder   ReminderConfig   `mapstructure:"reminder"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Log        LogConfig        `mapstructure:"log"`
}

// BotConfig holds Telegram settings
type BotConfig struct {
	Token          string `mapstructure:"token"`
	PollingTimeout int    `mapstructure:"polling_timeout" validate:"gte=0"`
	Debug          bool   `mapstructure:"debug"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=sqlite3 postgres"`
	DSN    string `mapstructure:"dsn" validate:"required"`
}

// DictionaryConfig holds settings of the external dictionary provider
type DictionaryConfig struct {
	BaseURL   string        `mapstructure:"base_url" validate:"required,url"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
	UserAgent string        `mapstructure:"user_agent"`
	AudioDir  string        `mapstructure:"audio_dir"`
}

// SessionConfig holds review/test settings
type SessionConfig struct {
	// Threshold is the number of confirmations after which a word is mastered.
	Threshold int `mapstructure:"threshold" validate:"min=1"`
}

// ReminderConfig holds the daily reminder settings
type ReminderConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Hour     int    `mapstructure:"hour" validate:"min=0,max=23"`
	Minute   int    `mapstructure:"minute" validate:"min=0,max=59"`
	Timezone string `mapstructure:"timezone" validate:"required,timezone"`
}

// Location resolves the configured reminder timezone.
func (c ReminderConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// MetricsConfig holds the prometheus listener settings. Empty Addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn warning error fatal panic"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// Load reads configuration from an optional file, a .env file and environment variables.
// Environment variables use the WORDBOT_ prefix, e.g. WORDBOT_DATABASE_DSN.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("WORDBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// TELEGRAM_BOT_TOKEN is kept for existing deployments
	if err := v.BindEnv("bot.token", "WORDBOT_BOT_TOKEN", "TELEGRAM_BOT_TOKEN"); err != nil {
		return nil, fmt.Errorf("error binding bot token: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct tags of the whole configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.token", "")
	v.SetDefault("bot.polling_timeout", 60)
	v.SetDefault("bot.debug", false)

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "data/wordbot.db")

	v.SetDefault("dictionary.base_url", "https://api.shanbay.com/bdc/search/")
	v.SetDefault("dictionary.timeout", 5*time.Second)
	v.SetDefault("dictionary.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_12_6) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/60.0.3112.101 Safari/537.36")
	v.SetDefault("dictionary.audio_dir", "data/audio")

	v.SetDefault("session.threshold", 5)

	v.SetDefault("reminder.enabled", true)
	v.SetDefault("reminder.hour", 23)
	v.SetDefault("reminder.minute", 0)
	v.SetDefault("reminder.timezone", "UTC")

	v.SetDefault("metrics.addr", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
