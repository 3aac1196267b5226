// Package config loads application settings from a .env file and environment variables.
// Environment variables always take precedence over .env file values.
// File: config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	// Server
	ApplicationURL string
	WebsocketURL   string
	Port           string
	Env            string
	LogDir         string
	Debug          bool

	// Storage. Empty DatabaseURL runs against the in-memory source.
	DatabaseURL string
	DBDebug     bool

	// Admin gate
	SessionSecret     string
	AdminPasswordHash string

	// Display timing
	RefreshInterval     time.Duration
	DwellInterval       time.Duration
	ProgressInterval    time.Duration
	LeaderboardInterval time.Duration

	// Displays kiosks may open and how long one outlives its last kiosk
	DisplayNames     []string
	DisplayIdleGrace time.Duration

	// Display layout
	ItemHeight     int
	ChromeOverhead int
	CheckedInLimit int

	// Leaderboard
	LatestEntries int

	// Event defaults used when the event_state row is first created
	ProtestDeadline string
	PrizegivingTime string

	// CloudWatch
	MetricsEnabled   bool
	MetricsNamespace string
}

// Load reads configuration from a .env file (if present) and then from
// environment variables. Environment variables always win.
func Load() (*Config, error) {
	v := newViper()

	// Defaults
	v.SetDefault("APPLICATION_URL", "http://localhost:8080")
	v.SetDefault("WEBSOCKET_URL", "ws://localhost:8080/display/ws")
	v.SetDefault("PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_DIR", "./logs")
	v.SetDefault("DEBUG", false)
	v.SetDefault("DB_DEBUG", false)
	v.SetDefault("SESSION_SECRET", "change-me")
	v.SetDefault("REFRESH_INTERVAL", "5s")
	v.SetDefault("DWELL_INTERVAL", "8s")
	v.SetDefault("PROGRESS_INTERVAL", "100ms")
	v.SetDefault("LEADERBOARD_INTERVAL", "10s")
	v.SetDefault("DISPLAY_NAMES", "main")
	v.SetDefault("DISPLAY_IDLE_GRACE", "30s")
	v.SetDefault("ITEM_HEIGHT", 96)
	v.SetDefault("CHROME_OVERHEAD", 320)
	v.SetDefault("CHECKED_IN_LIMIT", 20)
	v.SetDefault("LATEST_ENTRIES", 3)
	v.SetDefault("PROTEST_DEADLINE", "5:00 PM")
	v.SetDefault("PRIZEGIVING_TIME", "6:30 PM")
	v.SetDefault("METRICS_ENABLED", false)
	v.SetDefault("METRICS_NAMESPACE", "CatfishCull")

	cfg := &Config{
		ApplicationURL:      strings.TrimRight(v.GetString("APPLICATION_URL"), "/"),
		WebsocketURL:        v.GetString("WEBSOCKET_URL"),
		Port:                normalisePort(v.GetString("PORT")),
		Env:                 v.GetString("APP_ENV"),
		LogDir:              v.GetString("LOG_DIR"),
		Debug:               v.GetBool("DEBUG"),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		DBDebug:             v.GetBool("DB_DEBUG"),
		SessionSecret:       v.GetString("SESSION_SECRET"),
		AdminPasswordHash:   v.GetString("ADMIN_PASSWORD_HASH"),
		RefreshInterval:     v.GetDuration("REFRESH_INTERVAL"),
		DwellInterval:       v.GetDuration("DWELL_INTERVAL"),
		ProgressInterval:    v.GetDuration("PROGRESS_INTERVAL"),
		LeaderboardInterval: v.GetDuration("LEADERBOARD_INTERVAL"),
		DisplayNames:        splitList(v.GetString("DISPLAY_NAMES")),
		DisplayIdleGrace:    v.GetDuration("DISPLAY_IDLE_GRACE"),
		ItemHeight:          v.GetInt("ITEM_HEIGHT"),
		ChromeOverhead:      v.GetInt("CHROME_OVERHEAD"),
		CheckedInLimit:      v.GetInt("CHECKED_IN_LIMIT"),
		LatestEntries:       v.GetInt("LATEST_ENTRIES"),
		ProtestDeadline:     v.GetString("PROTEST_DEADLINE"),
		PrizegivingTime:     v.GetString("PRIZEGIVING_TIME"),
		MetricsEnabled:      v.GetBool("METRICS_ENABLED"),
		MetricsNamespace:    v.GetString("METRICS_NAMESPACE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the timing and layout settings.
func (c *Config) Validate() error {
	var errs []error
	if c.RefreshInterval <= 0 {
		errs = append(errs, errors.New("REFRESH_INTERVAL must be positive"))
	}
	if c.DwellInterval <= 0 {
		errs = append(errs, errors.New("DWELL_INTERVAL must be positive"))
	}
	if c.ProgressInterval <= 0 {
		errs = append(errs, errors.New("PROGRESS_INTERVAL must be positive"))
	} else if c.DwellInterval < c.ProgressInterval {
		errs = append(errs, errors.New("DWELL_INTERVAL must not be shorter than PROGRESS_INTERVAL"))
	}
	if c.LeaderboardInterval <= 0 {
		errs = append(errs, errors.New("LEADERBOARD_INTERVAL must be positive"))
	}
	if c.DisplayIdleGrace < 0 {
		errs = append(errs, errors.New("DISPLAY_IDLE_GRACE must not be negative"))
	}
	if c.ItemHeight <= 0 {
		errs = append(errs, errors.New("ITEM_HEIGHT must be positive"))
	}
	if c.ChromeOverhead < 0 {
		errs = append(errs, errors.New("CHROME_OVERHEAD must not be negative"))
	}
	if c.CheckedInLimit < 0 {
		errs = append(errs, errors.New("CHECKED_IN_LIMIT must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// UsesDatabase reports whether a Postgres DSN was configured.
func (c *Config) UsesDatabase() bool {
	return c.DatabaseURL != ""
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func newViper() *viper.Viper {
	// OK if the file doesn't exist; production uses real env vars.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	return v
}

// splitList reads a comma separated setting, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func normalisePort(p string) string {
	p = strings.TrimSpace(p)
	if p != "" && !strings.Contains(p, ":") {
		return ":" + p
	}
	return p
}
