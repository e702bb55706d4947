package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/titanous/json5"
)

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Prefix: ".",
		Storage: StorageConfig{
			Path: "~/.selfgo/selfgo.db",
		},
		AFK: AFKConfig{
			CooldownSeconds: 60,
		},
		Polling: PollingConfig{
			ReminderSeconds: 15,
			ScheduleSeconds: 30,
		},
		Log: LogConfig{
			File: "~/.selfgo/selfgo.log",
		},
	}
}

// Load reads config from a JSON file, then overlays env vars.
// A missing file is not an error — defaults plus env apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json5.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides overlays env vars onto the config.
// Env vars take precedence over file values.
func (c *Config) applyEnvOverrides() {
	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	envStr("SELFGO_TELEGRAM_TOKEN", &c.Telegram.Token)
	envStr("SELFGO_PREFIX", &c.Prefix)
	envStr("SELFGO_OWNER_USERNAME", &c.Owner.Username)
	envStr("SELFGO_DB_PATH", &c.Storage.Path)
	envStr("SELFGO_LOG_FILE", &c.Log.File)
	envStr("SELFGO_WEATHER_API_KEY", &c.Services.WeatherAPIKey)

	if v := os.Getenv("SELFGO_OWNER_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id != 0 {
			c.Owner.ID = id
		}
	}
	if v := os.Getenv("SELFGO_AFK_COOLDOWN_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			c.AFK.CooldownSeconds = secs
		}
	}
}

// Validate reports configuration problems that prevent startup.
// Missing optional service credentials are NOT validation errors.
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram token not set (SELFGO_TELEGRAM_TOKEN)")
	}
	if c.Owner.ID == 0 {
		return fmt.Errorf("owner id not set (SELFGO_OWNER_ID)")
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user home directory.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, _ := os.UserHomeDir()
	if len(path) > 1 && path[1] == '/' {
		return home + path[1:]
	}
	return home
}
