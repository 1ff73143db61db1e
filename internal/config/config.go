package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config keeps runtime settings for the homecare daemon.
type Config struct {
	DatabasePath     string
	PhotoDir         string
	TelegramToken    string
	TelegramChatID   int64
	ReminderInterval time.Duration
}

const defaultConfigPath = "homecare.toml"

// Load reads configuration from an optional TOML file, then applies
// environment-variable overrides and defaults. A missing file is not an
// error; a file that exists but fails to parse is.
func Load(path string) (Config, error) {
	cfg := Config{}

	if path == "" {
		path = defaultConfigPath
	}
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Defaults plus env are enough to run.
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		var file struct {
			DatabasePath          string `toml:"database_path"`
			PhotoDir              string `toml:"photo_dir"`
			TelegramToken         string `toml:"telegram_token"`
			TelegramChatID        int64  `toml:"telegram_chat_id"`
			ReminderIntervalHours int    `toml:"reminder_interval_hours"`
		}
		if err := toml.Unmarshal(raw, &file); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
		cfg.DatabasePath = strings.TrimSpace(file.DatabasePath)
		cfg.PhotoDir = strings.TrimSpace(file.PhotoDir)
		cfg.TelegramToken = strings.TrimSpace(file.TelegramToken)
		cfg.TelegramChatID = file.TelegramChatID
		if file.ReminderIntervalHours > 0 {
			cfg.ReminderInterval = time.Duration(file.ReminderIntervalHours) * time.Hour
		}
	}

	if v := strings.TrimSpace(os.Getenv("HOMECARE_DB")); v != "" {
		cfg.DatabasePath = v
	}
	if v := strings.TrimSpace(os.Getenv("HOMECARE_PHOTO_DIR")); v != "" {
		cfg.PhotoDir = v
	}
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")); v != "" {
		cfg.TelegramToken = v
	}
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("parse TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}
	if v := strings.TrimSpace(os.Getenv("REMINDER_INTERVAL_HOURS")); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil || hours < 0 {
			return cfg, fmt.Errorf("invalid REMINDER_INTERVAL_HOURS %q", v)
		}
		cfg.ReminderInterval = time.Duration(hours) * time.Hour
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "homecare.db"
	}
	if cfg.PhotoDir == "" {
		cfg.PhotoDir = "photos"
	}

	return cfg, nil
}
