// Package config reads the bot's deployment settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	_ "time/tzdata"

	"glock/internal/usecase"
)

type Config struct {
	TelegramToken          string `env:"TELEGRAM_API_TOKEN"`
	TelegramTokenParameter string `env:"TELEGRAM_TOKEN_PARAMETER"`

	RestrictionDuration time.Duration `env:"RESTRICTIONS_DURATION" envDefault:"5m"`
	TempLifetime        time.Duration `env:"TEMP_MESSAGES_LIFETIME" envDefault:"3s"`
	HealingConstant     int64         `env:"HEALING_CONSTANT" envDefault:"7"`
	HealingTimeZone     string        `env:"HEALING_TIME_ZONE" envDefault:"Asia/Jerusalem"`
	WindowSize          int           `env:"RECENT_WINDOW_SIZE" envDefault:"12"`
	StrictTargets       bool          `env:"STRICT_TARGETS" envDefault:"true"`

	ActivityTable string `env:"ACTIVITY_TABLE"`

	RestrictionsSweepPeriod time.Duration `env:"RESTRICTIONS_SWEEP_PERIOD" envDefault:"1s"`
	TempSweepPeriod         time.Duration `env:"TEMP_SWEEP_PERIOD" envDefault:"2s"`
	PollTimeout             time.Duration `env:"POLL_TIMEOUT" envDefault:"30s"`
	APIRatePerSecond        float64       `env:"API_RATE_PER_SECOND" envDefault:"25"`

	MetricsAddr string `env:"METRICS_ADDR"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads an optional .env file, then the environment, and validates the result.
func Load(dotenv ...string) (Config, error) {
	if err := loadDotEnv(dotenv...); err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	token := strings.TrimSpace(c.TelegramToken)
	param := strings.TrimSpace(c.TelegramTokenParameter)
	switch {
	case token == "" && param == "":
		return errors.New("config: one of TELEGRAM_API_TOKEN or TELEGRAM_TOKEN_PARAMETER is required")
	case token != "" && param != "":
		return errors.New("config: TELEGRAM_API_TOKEN and TELEGRAM_TOKEN_PARAMETER are mutually exclusive")
	}
	if c.RestrictionsSweepPeriod <= 0 {
		return errors.New("config: RESTRICTIONS_SWEEP_PERIOD must be positive")
	}
	if c.TempSweepPeriod <= 0 {
		return errors.New("config: TEMP_SWEEP_PERIOD must be positive")
	}
	if c.PollTimeout < 0 {
		return errors.New("config: POLL_TIMEOUT must not be negative")
	}
	if c.APIRatePerSecond < 0 {
		return errors.New("config: API_RATE_PER_SECOND must not be negative")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("config: LOG_LEVEL: %w", err)
	}

	settings, err := c.Settings()
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Settings converts the game parameters into usecase.Settings.
func (c Config) Settings() (usecase.Settings, error) {
	loc, err := time.LoadLocation(c.HealingTimeZone)
	if err != nil {
		return usecase.Settings{}, fmt.Errorf("config: HEALING_TIME_ZONE: %w", err)
	}
	return usecase.Settings{
		RestrictionDuration: c.RestrictionDuration,
		TempLifetime:        c.TempLifetime,
		HealingConstant:     c.HealingConstant,
		HealingLocation:     loc,
		WindowSize:          c.WindowSize,
		StrictTargets:       c.StrictTargets,
	}, nil
}
