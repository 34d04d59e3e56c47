// Package reporting glues the calculator to the image renderer and bounds how
// many browser renders may run.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"myfxreport/internal/analysis/visual"
	"myfxreport/internal/logger"
	"myfxreport/internal/pkg/circuit"
	"myfxreport/internal/report"

	"golang.org/x/time/rate"
)

var (
	// ErrRateLimited is returned when the per-minute render budget is spent.
	ErrRateLimited = errors.New("render rate limit exceeded")
	// ErrRenderDisabled is returned when render.enabled is false.
	ErrRenderDisabled = errors.New("image rendering is disabled")
	// ErrRenderUnavailable is returned while the render circuit is open.
	ErrRenderUnavailable = errors.New("renderer unavailable after repeated failures")
)

// Renderer turns a calculated report into an image.
type Renderer interface {
	Render(ctx context.Context, rep report.Report) (visual.ImageResult, error)
}

// ChromeRenderer renders through headless Chrome.
type ChromeRenderer struct {
	Options visual.Options
}

func (r ChromeRenderer) Render(ctx context.Context, rep report.Report) (visual.ImageResult, error) {
	return visual.RenderReport(ctx, rep, r.Options)
}

type ServiceConfig struct {
	Renderer      Renderer
	Location      *time.Location
	Now           func() time.Time
	Enabled       bool
	MaxPerMinute  int
	MaxConcurrent int
	Timeout       time.Duration
	// BreakerThreshold consecutive render failures open the circuit for
	// BreakerCooldown. A threshold of 0 disables the breaker.
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// Service owns the render limiter and semaphore shared by all requests.
type Service struct {
	renderer Renderer
	opts     report.Options
	enabled  bool
	timeout  time.Duration

	limiter *rate.Limiter
	sem     chan struct{}
	breaker *circuit.CircuitBreaker
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Enabled && cfg.Renderer == nil {
		return nil, fmt.Errorf("renderer required when rendering is enabled")
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}
	svc := &Service{
		renderer: cfg.Renderer,
		opts:     report.Options{Location: cfg.Location, Now: cfg.Now},
		enabled:  cfg.Enabled,
		timeout:  cfg.Timeout,
		sem:      make(chan struct{}, maxConcurrent),
		breaker:  circuit.NewCircuitBreaker("render", cfg.BreakerThreshold, cfg.BreakerCooldown),
	}
	if cfg.MaxPerMinute > 0 {
		burst := cfg.MaxPerMinute / 6
		if burst < 1 {
			burst = 1
		}
		svc.limiter = rate.NewLimiter(rate.Limit(float64(cfg.MaxPerMinute)/60.0), burst)
	}
	return svc, nil
}

// Calculate runs the calculator only.
func (s *Service) Calculate(raw []byte) (report.Report, error) {
	return report.Calculate(raw, s.opts)
}

// Render calculates the report and draws it. The rate check happens after a
// successful calculation so malformed payloads never spend render budget.
func (s *Service) Render(ctx context.Context, raw []byte) (visual.ImageResult, report.Report, error) {
	rep, err := s.Calculate(raw)
	if err != nil {
		return visual.ImageResult{}, report.Report{}, err
	}
	if !s.enabled {
		return visual.ImageResult{}, rep, ErrRenderDisabled
	}
	if s.limiter != nil && !s.limiter.Allow() {
		return visual.ImageResult{}, rep, ErrRateLimited
	}

	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return visual.ImageResult{}, rep, ctx.Err()
	}
	defer func() { <-s.sem }()

	if !s.breaker.Allow() {
		return visual.ImageResult{}, rep, ErrRenderUnavailable
	}
	renderCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		renderCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	started := time.Now()
	img, err := s.renderer.Render(renderCtx, rep)
	if err != nil {
		// a caller that went away says nothing about the browser
		if ctx.Err() == nil {
			s.breaker.RecordFailure()
		} else {
			s.breaker.Abandon()
		}
		return visual.ImageResult{}, rep, fmt.Errorf("render report: %w", err)
	}
	s.breaker.RecordSuccess()
	logger.Debugf("[render] %s trades=%d bytes=%d dur=%s", img.Filename, len(rep.Points), len(img.Bytes), time.Since(started))
	return img, rep, nil
}

// Warmup checks that a headless browser can start.
func (s *Service) Warmup(ctx context.Context) error {
	if !s.enabled {
		return nil
	}
	if _, ok := s.renderer.(ChromeRenderer); !ok {
		return nil
	}
	return visual.EnsureHeadlessAvailable(ctx)
}
