// Package visual renders a calculated report into a single PNG dashboard.
// Panels are built with go-echarts and screenshotted by headless Chrome.
package visual

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/go-echarts/go-echarts/v2/components"

	"myfxreport/internal/report"
)

type ImageResult struct {
	Bytes       []byte `json:"-"`
	Base64      string `json:"base64"`
	Filename    string `json:"filename"`
	Description string `json:"description"`
}

// EnsureBase64 fills Base64 from Bytes when it has not been encoded yet.
func (r *ImageResult) EnsureBase64() string {
	if r == nil {
		return ""
	}
	if r.Base64 == "" && len(r.Bytes) > 0 {
		r.Base64 = base64.StdEncoding.EncodeToString(r.Bytes)
	}
	return r.Base64
}

func (r *ImageResult) DataURI() string {
	if r.EnsureBase64() == "" {
		return ""
	}
	return "data:image/png;base64," + r.Base64
}

// Options sizes the page and bounds the browser work.
type Options struct {
	WidthPx  int
	HeightPx int
	Timeout  time.Duration
	Settle   time.Duration
	// MAPeriod is the SMA window drawn over the balance curve; below 2 disables it.
	MAPeriod int
}

const (
	defaultWidthPx  = 2000
	defaultHeightPx = 2800
	defaultTimeout  = 20 * time.Second
	defaultSettle   = 1500 * time.Millisecond
	minPageWidthPx  = 320
	minPageHeightPx = 320
)

func (o Options) normalized() Options {
	if o.WidthPx < minPageWidthPx {
		o.WidthPx = defaultWidthPx
	}
	if o.HeightPx < minPageHeightPx {
		o.HeightPx = defaultHeightPx
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.Settle < 0 {
		o.Settle = defaultSettle
	}
	return o
}

// RenderReport draws rep and returns the PNG.
func RenderReport(ctx context.Context, rep report.Report, opt Options) (ImageResult, error) {
	if err := EnsureHeadlessAvailable(ctx); err != nil {
		return ImageResult{}, err
	}
	opt = opt.normalized()
	html, err := BuildReportHTML(rep, opt)
	if err != nil {
		return ImageResult{}, err
	}
	png, err := renderHTMLToPNG(ctx, html, opt)
	if err != nil {
		return ImageResult{}, err
	}
	return ImageResult{
		Bytes:       png,
		Base64:      base64.StdEncoding.EncodeToString(png),
		Filename:    reportFilename(rep.Account),
		Description: describe(rep),
	}, nil
}

// BuildReportHTML lays the six panels out on one flex page.
func BuildReportHTML(rep report.Report, opt Options) ([]byte, error) {
	opt = opt.normalized()
	l := newLayout(opt)

	page := components.NewPage()
	page.SetPageTitle(headline(rep.Account))
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(
		buildGrowthChart(rep, l),
		buildSummaryChart(rep, l),
		buildRadarChart(rep, l),
		buildBalanceChart(rep, l, opt.MAPeriod),
		buildGrowthPctChart(rep, l),
		buildMonthlyChart(rep, l),
	)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("render report page: %w", err)
	}
	return buf.Bytes(), nil
}

// headlessCheck remembers a successful browser start. Failures are not cached, so a
// Chrome that was missing or slow at startup is retried by the next caller.
type headlessCheck struct {
	mu    sync.Mutex
	ok    bool
	start func(context.Context) error
}

func (h *headlessCheck) ensure(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ok {
		return nil
	}
	if err := h.start(ctx); err != nil {
		return err
	}
	h.ok = true
	return nil
}

var headless = &headlessCheck{start: startChrome}

func startChrome(ctx context.Context) error {
	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()
	return chromedp.Run(parent)
}

// EnsureHeadlessAvailable checks that Chrome can start. Once a check succeeds the
// result is kept for the life of the process.
func EnsureHeadlessAvailable(ctx context.Context) error {
	return headless.ensure(ctx)
}

func renderHTMLToPNG(ctx context.Context, html []byte, opt Options) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()

	timeoutCtx, cancelTimeout := context.WithTimeout(parent, opt.Timeout)
	defer cancelTimeout()

	dataURI := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)
	var screenshot []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opt.WidthPx), int64(opt.HeightPx)),
		chromedp.Navigate(dataURI),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(opt.Settle),
		// quality 100 selects PNG encoding
		chromedp.FullScreenshot(&screenshot, 100),
	}
	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		return nil, err
	}
	return screenshot, nil
}

func reportFilename(acc report.AccountInfo) string {
	id := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(acc.Number))
	if id == "" {
		id = "account"
	}
	return fmt.Sprintf("myfx_report_%s.png", id)
}

func describe(rep report.Report) string {
	return fmt.Sprintf("%s | trades=%d | growth=%.1f%% | win=%.1f%% | maxdd=%.1f%%",
		headline(rep.Account), len(rep.Points), rep.Stats.Growth, rep.Stats.WinRate, rep.Stats.MaxDDPct)
}
