package app

import (
	"context"
	"fmt"
	"time"

	"myfxreport/internal/analysis/visual"
	"myfxreport/internal/config"
	cfgloader "myfxreport/internal/config/loader"
	"myfxreport/internal/logger"
	"myfxreport/internal/reporting"
	reporthttp "myfxreport/internal/transport/http/report"
)

type AppBuilder struct {
	cfg *config.Config

	rendererFn func(config.RenderConfig) reporting.Renderer
	watcherFn  func(string) (*cfgloader.Watcher, error)
	nowFn      func() time.Time
}

type AppBuilderOption func(*AppBuilder)

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:        cfg,
		rendererFn: buildChromeRenderer,
		watcherFn:  cfgloader.NewWatcher,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func buildChromeRenderer(cfg config.RenderConfig) reporting.Renderer {
	return reporting.ChromeRenderer{Options: visual.Options{
		WidthPx:  cfg.WidthPx,
		HeightPx: cfg.HeightPx,
		Timeout:  cfg.Timeout(),
		Settle:   cfg.Settle(),
		MAPeriod: cfg.MAPeriod,
	}}
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg
	loc, err := cfg.Report.Location()
	if err != nil {
		return nil, fmt.Errorf("report timezone: %w", err)
	}

	svc, err := reporting.NewService(reporting.ServiceConfig{
		Renderer:      b.rendererFn(cfg.Render),
		Location:      loc,
		Now:           b.nowFn,
		Enabled:       cfg.Render.Enabled,
		MaxPerMinute:  cfg.Render.MaxPerMinute,
		MaxConcurrent: cfg.Render.MaxConcurrent,
		Timeout:       cfg.Render.Timeout(),

		BreakerThreshold: cfg.Render.BreakerThreshold,
		BreakerCooldown:  cfg.Render.BreakerCooldown(),
	})
	if err != nil {
		return nil, err
	}

	server, err := reporthttp.NewServer(reporthttp.ServerConfig{
		Addr:         cfg.HTTP.Addr,
		Route:        cfg.HTTP.Route,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		Service:      svc,
	})
	if err != nil {
		return nil, err
	}

	var watcher *cfgloader.Watcher
	if cfg.Source != "" && b.watcherFn != nil {
		watcher, err = b.watcherFn(cfg.Source)
		if err != nil {
			logger.Warnf("config hot reload disabled (%s): %v", cfg.Source, err)
			watcher = nil
		}
	}

	return &App{
		cfg:     cfg,
		service: svc,
		http:    server,
		watcher: watcher,
		Summary: newStartupSummary(cfg, loc),
	}, nil
}

// WithRenderer replaces the headless-browser renderer.
func WithRenderer(fn func(config.RenderConfig) reporting.Renderer) AppBuilderOption {
	return func(b *AppBuilder) {
		if fn != nil {
			b.rendererFn = fn
		}
	}
}

// WithWatcher replaces the config watcher factory; nil disables hot reload.
func WithWatcher(fn func(string) (*cfgloader.Watcher, error)) AppBuilderOption {
	return func(b *AppBuilder) {
		b.watcherFn = fn
	}
}

// WithClock pins "now" for the monthly table.
func WithClock(fn func() time.Time) AppBuilderOption {
	return func(b *AppBuilder) {
		b.nowFn = fn
	}
}

type appBuilderDeps interface {
	Build(context.Context) (*App, error)
}

func provideAppFromBuilder(b appBuilderDeps, ctx context.Context) (*App, error) {
	return b.Build(ctx)
}

func provideAppBuilder(cfg *config.Config) *AppBuilder {
	return NewAppBuilder(cfg)
}
