package config

import (
	"strings"
	"time"
	_ "time/tzdata"
)

// Config is the full service configuration.
type Config struct {
	App    AppConfig    `yaml:"app"`
	HTTP   HTTPConfig   `yaml:"http"`
	Report ReportConfig `yaml:"report"`
	Render RenderConfig `yaml:"render"`

	// Source is the file the config was read from, empty when only defaults and env were used.
	Source string `yaml:"-"`
}

type AppConfig struct {
	Env      string `yaml:"env" validate:"required"`
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn warning error"`
	LogPath  string `yaml:"log_path"`
}

type HTTPConfig struct {
	Addr         string `yaml:"addr" validate:"required"`
	Route        string `yaml:"route" validate:"required,startswith=/"`
	MaxBodyBytes int64  `yaml:"max_body_bytes" validate:"gt=0"`
}

// ReportConfig controls the calculation side of a report.
type ReportConfig struct {
	// Timezone is an IANA name used for month bucketing and for "now".
	Timezone string `yaml:"timezone" validate:"required"`
}

// Location resolves Timezone, falling back to UTC when it is blank.
func (r ReportConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(r.Timezone)
	if name == "" || strings.EqualFold(name, "utc") {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

// RenderConfig controls the headless-browser image pipeline.
type RenderConfig struct {
	Enabled        bool `yaml:"enabled"`
	TimeoutSeconds int  `yaml:"timeout_seconds" validate:"gt=0"`
	SettleMillis   int  `yaml:"settle_millis" validate:"gte=0"`
	WidthPx        int  `yaml:"width_px" validate:"gte=320,lte=8000"`
	HeightPx       int  `yaml:"height_px" validate:"gte=320,lte=12000"`
	// MaxPerMinute of 0 disables rate limiting.
	MaxPerMinute  int `yaml:"max_per_minute" validate:"gte=0"`
	MaxConcurrent int `yaml:"max_concurrent" validate:"gte=1"`
	// MAPeriod of 0 hides the moving-average overlay on the balance panel.
	MAPeriod int `yaml:"ma_period" validate:"gte=0"`
	// BreakerThreshold of 0 keeps the render circuit closed forever.
	BreakerThreshold       int `yaml:"breaker_threshold" validate:"gte=0"`
	BreakerCooldownSeconds int `yaml:"breaker_cooldown_seconds" validate:"gte=0"`
}

func (r RenderConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

func (r RenderConfig) Settle() time.Duration {
	return time.Duration(r.SettleMillis) * time.Millisecond
}

func (r RenderConfig) BreakerCooldown() time.Duration {
	return time.Duration(r.BreakerCooldownSeconds) * time.Second
}

// keySet tracks the key paths explicitly set by the file or the environment.
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
