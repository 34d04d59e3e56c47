package app

import (
	"context"
	"fmt"

	"myfxreport/internal/config"
	cfgloader "myfxreport/internal/config/loader"
	"myfxreport/internal/logger"
	"myfxreport/internal/reporting"
	reporthttp "myfxreport/internal/transport/http/report"

	"golang.org/x/sync/errgroup"
)

// App wires the report service to its HTTP front and the config watcher.
type App struct {
	cfg     *config.Config
	service *reporting.Service
	http    *reporthttp.Server
	watcher *cfgloader.Watcher
	Summary *StartupSummary
}

// NewApp builds the application without starting it.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// Run serves until ctx is cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil || a.http == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.Summary != nil {
		a.Summary.Print()
	}
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := a.http.Start(ctx); err != nil {
			return fmt.Errorf("report http server error: %w", err)
		}
		return nil
	})

	if a.watcher != nil {
		a.watcher.Subscribe(applyLogLevel)
		group.Go(func() error {
			if err := a.watcher.Start(ctx); err != nil {
				logger.Warnf("config watcher stopped: %v", err)
			}
			return nil
		})
	}

	group.Go(func() error {
		if err := a.service.Warmup(ctx); err != nil {
			logger.Warnf("headless browser unavailable, image requests will fail: %v", err)
		}
		return nil
	})

	return group.Wait()
}

func applyLogLevel(snap cfgloader.Snapshot) {
	level := snap.Config.App.LogLevel
	if logger.ParseLevel(level) == logger.Level() {
		return
	}
	logger.SetLevel(level)
	logger.Infof("config v%d reloaded, log level now %s", snap.Version, level)
}

// Service exposes the report service (for tests and embedding).
func (a *App) Service() *reporting.Service {
	if a == nil {
		return nil
	}
	return a.service
}
