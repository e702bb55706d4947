package config

import (
	"sync"
	"time"
)

// Config is the root configuration for the selfgo userbot.
type Config struct {
	Prefix   string         `json:"prefix"`
	Owner    OwnerConfig    `json:"owner"`
	Telegram TelegramConfig `json:"telegram"`
	Storage  StorageConfig  `json:"storage"`
	AFK      AFKConfig      `json:"afk,omitempty"`
	Polling  PollingConfig  `json:"polling,omitempty"`
	Services ServicesConfig `json:"services,omitempty"`
	Log      LogConfig      `json:"log,omitempty"`
	mu       sync.RWMutex
}

// OwnerConfig identifies the account the bot acts for. Only messages from
// this identity may trigger commands.
type OwnerConfig struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
}

// TelegramConfig holds the Telegram credentials.
// Token is NEVER read from the config file — only from env SELFGO_TELEGRAM_TOKEN.
type TelegramConfig struct {
	Token string `json:"-"`
	Proxy string `json:"proxy,omitempty"`
}

// StorageConfig configures the embedded record store.
type StorageConfig struct {
	Path string `json:"path"` // sqlite database file (default: ~/.selfgo/selfgo.db)
}

// AFKConfig tunes the AFK auto-reply subsystem.
type AFKConfig struct {
	CooldownSeconds int `json:"cooldown_seconds,omitempty"` // per-counterpart window (default 60)
}

// PollingConfig tunes the deferred-delivery loops.
type PollingConfig struct {
	ReminderSeconds int `json:"reminder_seconds,omitempty"` // reminder poll interval (default 15)
	ScheduleSeconds int `json:"schedule_seconds,omitempty"` // scheduled-message poll interval (default 30)
}

// ServicesConfig holds credentials for external content APIs.
// A missing key degrades that one command ("service not configured"),
// never startup. Keys come from env only.
type ServicesConfig struct {
	WeatherAPIKey string `json:"-"` // env SELFGO_WEATHER_API_KEY (OpenWeatherMap)
}

// LogConfig configures the log sink.
type LogConfig struct {
	File string `json:"file,omitempty"` // also mirror logs to this file (enables .logs)
}

// CooldownWindow returns the AFK cooldown as a duration.
func (c *Config) CooldownWindow() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	secs := c.AFK.CooldownSeconds
	if secs <= 0 {
		secs = 60
	}
	return time.Duration(secs) * time.Second
}

// ReminderInterval returns the reminder poll interval.
func (c *Config) ReminderInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	secs := c.Polling.ReminderSeconds
	if secs <= 0 {
		secs = 15
	}
	return time.Duration(secs) * time.Second
}

// ScheduleInterval returns the scheduled-message poll interval.
func (c *Config) ScheduleInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	secs := c.Polling.ScheduleSeconds
	if secs <= 0 {
		secs = 30
	}
	return time.Duration(secs) * time.Second
}

// CommandPrefix returns the configured command prefix (default ".").
func (c *Config) CommandPrefix() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Prefix == "" {
		return "."
	}
	return c.Prefix
}

// OwnerID returns the configured owner identity.
func (c *Config) OwnerID() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Owner.ID
}

// WeatherKey returns the OpenWeatherMap API key, if configured.
func (c *Config) WeatherKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Services.WeatherAPIKey
}

// ReplaceFrom copies all data fields from src into c, preserving c's mutex.
// Used by the config watcher on hot reload.
func (c *Config) ReplaceFrom(src *Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Prefix = src.Prefix
	c.Owner = src.Owner
	c.Telegram = src.Telegram
	c.Storage = src.Storage
	c.AFK = src.AFK
	c.Polling = src.Polling
	c.Services = src.Services
	c.Log = src.Log
}
