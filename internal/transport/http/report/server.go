package reporthttp

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"myfxreport/internal/analysis/visual"
	"myfxreport/internal/logger"
	"myfxreport/internal/report"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultAddr    = ":5000"
	defaultRoute   = "/myfx_report"
	defaultMaxBody = 8 << 20

	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// ReportService is what the handlers need from the reporting layer.
type ReportService interface {
	Calculate(raw []byte) (report.Report, error)
	Render(ctx context.Context, raw []byte) (visual.ImageResult, report.Report, error)
}

// Server serves the report image endpoint plus stats and health routes.
type Server struct {
	addr   string
	router *gin.Engine
}

type ServerConfig struct {
	Addr         string
	Route        string
	MaxBodyBytes int64
	Service      ReportService
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Service == nil {
		return nil, errors.New("report http server requires a service")
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.Route = strings.TrimSpace(cfg.Route); cfg.Route == "" {
		cfg.Route = defaultRoute
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBody
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	h := &handler{svc: cfg.Service, maxBody: cfg.MaxBodyBytes}
	router.POST(cfg.Route, h.handleReportImage)
	router.POST("/api/report/stats", h.handleReportStats)

	return &Server{addr: cfg.Addr, router: router}, nil
}

// requestID reuses the caller's X-Request-ID or mints one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		client := c.ClientIP()
		c.Next()
		dur := time.Since(start)
		status := c.Writer.Status()
		fullPath := path
		if query != "" {
			fullPath = path + "?" + query
		}
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s id=%s", method, fullPath, status, client, dur, c.GetString(requestIDKey))
	}
}

func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
