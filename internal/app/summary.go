package app

import (
	"fmt"
	"strings"
	"time"

	"myfxreport/internal/config"
)

type StartupSummary struct {
	Env      string
	Source   string
	Addr     string
	Route    string
	MaxBody  int64
	Timezone string
	Render   RenderSummary
}

type RenderSummary struct {
	Enabled       bool
	Viewport      string
	Timeout       time.Duration
	MaxPerMinute  int
	MaxConcurrent int
	MAPeriod      int
	Breaker       string
}

func newStartupSummary(cfg *config.Config, loc *time.Location) *StartupSummary {
	return &StartupSummary{
		Env:      cfg.App.Env,
		Source:   cfg.Source,
		Addr:     cfg.HTTP.Addr,
		Route:    cfg.HTTP.Route,
		MaxBody:  cfg.HTTP.MaxBodyBytes,
		Timezone: loc.String(),
		Render: RenderSummary{
			Enabled:       cfg.Render.Enabled,
			Viewport:      fmt.Sprintf("%dx%d", cfg.Render.WidthPx, cfg.Render.HeightPx),
			Timeout:       cfg.Render.Timeout(),
			MaxPerMinute:  cfg.Render.MaxPerMinute,
			MaxConcurrent: cfg.Render.MaxConcurrent,
			MAPeriod:      cfg.Render.MAPeriod,
			Breaker:       breakerSummary(cfg.Render),
		},
	}
}

func (s *StartupSummary) Print() {
	fmt.Print(s.String())
}

func (s *StartupSummary) String() string {
	var b strings.Builder
	rule := strings.Repeat("=", 80)
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "%*s\n", 40+len("STARTUP SUMMARY")/2, "STARTUP SUMMARY")
	fmt.Fprintln(&b, rule)

	fmt.Fprintln(&b, "[SERVICE]")
	fmt.Fprintf(&b, "  env:       %s\n", s.Env)
	fmt.Fprintf(&b, "  config:    %s\n", orDash(s.Source))
	fmt.Fprintf(&b, "  listen:    %s\n", s.Addr)
	fmt.Fprintf(&b, "  route:     POST %s\n", s.Route)
	fmt.Fprintf(&b, "  max body:  %d bytes\n", s.MaxBody)
	fmt.Fprintf(&b, "  timezone:  %s\n", s.Timezone)
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "[RENDER]")
	if !s.Render.Enabled {
		fmt.Fprintln(&b, "  disabled (stats endpoint only)")
	} else {
		limit := "unlimited"
		if s.Render.MaxPerMinute > 0 {
			limit = fmt.Sprintf("%d/min", s.Render.MaxPerMinute)
		}
		ma := "off"
		if s.Render.MAPeriod > 1 {
			ma = fmt.Sprintf("SMA %d", s.Render.MAPeriod)
		}
		fmt.Fprintf(&b, "  viewport:  %s\n", s.Render.Viewport)
		fmt.Fprintf(&b, "  timeout:   %s\n", s.Render.Timeout)
		fmt.Fprintf(&b, "  rate:      %s, %d parallel\n", limit, s.Render.MaxConcurrent)
		fmt.Fprintf(&b, "  balance:   %s\n", ma)
		fmt.Fprintf(&b, "  breaker:   %s\n", s.Render.Breaker)
	}
	fmt.Fprintln(&b, rule)
	return b.String()
}

func breakerSummary(cfg config.RenderConfig) string {
	if cfg.BreakerThreshold <= 0 {
		return "off"
	}
	return fmt.Sprintf("open after %d failures for %s", cfg.BreakerThreshold, cfg.BreakerCooldown())
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "- (defaults + env)"
	}
	return s
}
