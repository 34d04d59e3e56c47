package reporthttp

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"myfxreport/internal/logger"
	"myfxreport/internal/pkg/text"
	"myfxreport/internal/report"
	"myfxreport/internal/reporting"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"
)

const bodyPreviewBytes = 256

type handler struct {
	svc     ReportService
	maxBody int64
}

type imageResponse struct {
	Base64Image string `json:"base64_image"`
}

type statsResponse struct {
	Stats   report.Stats        `json:"stats" yaml:"stats"`
	Account report.AccountInfo  `json:"account" yaml:"account"`
	Series  []report.Point      `json:"series" yaml:"series"`
	Curve   report.EquityCurve  `json:"curve" yaml:"curve"`
	Monthly report.MonthlyTable `json:"monthly" yaml:"monthly"`
}

func (h *handler) handleReportImage(c *gin.Context) {
	log := logger.With("request_id", c.GetString(requestIDKey))
	raw, ok := h.readBody(c)
	if !ok {
		return
	}
	started := time.Now()
	img, rep, err := h.svc.Render(c.Request.Context(), raw)
	if err != nil {
		log.Warn("report render failed", "err", err, "trades", len(rep.Points))
		if errors.Is(err, report.ErrMalformedPayload) {
			log.Debug("rejected body", "preview", text.Preview(raw, bodyPreviewBytes))
		}
		writeError(c, err)
		return
	}
	log.Info("report rendered", "trades", len(rep.Points), "bytes", len(img.Bytes), "dur", time.Since(started))
	c.JSON(http.StatusOK, imageResponse{Base64Image: img.EnsureBase64()})
}

func (h *handler) handleReportStats(c *gin.Context) {
	raw, ok := h.readBody(c)
	if !ok {
		return
	}
	rep, err := h.svc.Calculate(raw)
	if err != nil {
		logger.With("request_id", c.GetString(requestIDKey)).Warn("report stats failed",
			"err", err, "preview", text.Preview(raw, bodyPreviewBytes))
		writeError(c, err)
		return
	}
	resp := statsResponse{
		Stats:   rep.Stats,
		Account: rep.Account,
		Series:  rep.Points,
		Curve:   rep.Curve,
		Monthly: rep.Monthly,
	}
	if resp.Series == nil {
		resp.Series = []report.Point{}
	}
	if strings.EqualFold(c.Query("format"), "yaml") {
		out, err := yaml.Marshal(resp)
		if err != nil {
			writeError(c, fmt.Errorf("encode yaml: %w", err))
			return
		}
		c.Data(http.StatusOK, "application/yaml; charset=utf-8", out)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// readBody enforces the size cap. It writes the error response itself.
func (h *handler) readBody(c *gin.Context) ([]byte, bool) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)
	raw, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.String(http.StatusRequestEntityTooLarge, "Error: request body exceeds %d bytes", tooLarge.Limit)
			return nil, false
		}
		writeError(c, fmt.Errorf("read body: %w", err))
		return nil, false
	}
	return raw, true
}

// writeError keeps the legacy plain-text "Error: ..." body for every failure.
func writeError(c *gin.Context, err error) {
	c.String(statusFor(err), "Error: %s", err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, reporting.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, reporting.ErrRenderDisabled), errors.Is(err, reporting.ErrRenderUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
