package visual

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	talib "github.com/markcheno/go-talib"

	"myfxreport/internal/report"
)

const (
	colorBackground    = "#ffffff"
	colorTitle         = "#203864"
	colorTextSecondary = "#6b7280"
	colorPlaceholder   = "#888888"
	colorGrowth        = "#4472C4"
	colorBalance       = "#00B050"
	colorMA            = "#f59e0b"
	colorRadar         = "#1f77b4"
	colorGainFill      = "#bbf7d0"
	colorLossFill      = "#fecaca"
	colorNeutralFill   = "#f8fafc"

	waitingLabel  = "Waiting for first trade..."
	noTradesLabel = "No trades yet"
	timeLayout    = "2006-01-02 15:04"

	radarAxisMax  = 110
	algoScore     = 98
	activityScore = 41.8
)

// summaryBars keeps the bar order and colors of the account summary panel.
var summaryBars = []struct {
	label string
	color string
}{
	{"Deposits", "#4472C4"},
	{"Withdraws", "#FF5050"},
	{"Initial", "#BFBFBF"},
	{"Profit", "#00B0F0"},
	{"Equity", "#00B050"},
}

// layout splits the page height 1:2:2:1 between the four panel rows.
type layout struct {
	full string
	half string
	row  [4]string
}

func newLayout(opt Options) layout {
	unit := opt.HeightPx / 6
	half := (opt.WidthPx - 40) / 2
	px := func(v int) string { return fmt.Sprintf("%dpx", v) }
	return layout{
		full: px(opt.WidthPx - 20),
		half: px(half),
		row:  [4]string{px(unit), px(unit * 2), px(unit * 2), px(unit)},
	}
}

func initOpts(width, height string) opts.Initialization {
	return opts.Initialization{
		Theme:           types.ThemeWesteros,
		Width:           width,
		Height:          height,
		BackgroundColor: colorBackground,
	}
}

func panelTitle(title, subtitle string, size int) opts.Title {
	return opts.Title{
		Title:         title,
		Subtitle:      subtitle,
		Left:          "center",
		Top:           "10",
		TitleStyle:    &opts.TextStyle{Color: colorTitle, FontSize: size},
		SubtitleStyle: &opts.TextStyle{Color: colorTextSecondary, FontSize: size / 2},
	}
}

func headline(acc report.AccountInfo) string {
	return fmt.Sprintf("%s / %s #%s", acc.Broker, acc.Server, acc.Number)
}

func money(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}

func timeAxis(points []report.Point) []string {
	x := make([]string, len(points))
	for i, p := range points {
		x[i] = p.Time.Format(timeLayout)
	}
	return x
}

func lineData(series []float64) []opts.LineData {
	out := make([]opts.LineData, len(series))
	for i, v := range series {
		out[i] = opts.LineData{Value: round(v, 4)}
	}
	return out
}

func buildGrowthChart(rep report.Report, l layout) *charts.Line {
	growth := rep.Curve.Growth
	x := timeAxis(rep.Points)
	if len(x) == 0 {
		x = []string{"start"}
	}
	peak := 100.0
	for _, g := range growth {
		peak = math.Max(peak, g)
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts(l.full, l.row[0])),
		charts.WithTitleOpts(panelTitle(
			headline(rep.Account),
			fmt.Sprintf("Growth → %.1f%% • Equity $%s", rep.Stats.Growth, money(rep.Account.Equity)),
			30,
		)),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithGridOpts(opts.Grid{Top: "110", Bottom: "20", Left: "20", Right: "20"}),
		charts.WithXAxisOpts(opts.XAxis{Show: opts.Bool(false)}),
		charts.WithYAxisOpts(opts.YAxis{Show: opts.Bool(false), Min: 80, Max: round(peak+30, 2)}),
	)
	line.SetXAxis(x)
	line.AddSeries("Growth", lineData(growth),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorGrowth, Width: 5}),
		charts.WithAreaStyleOpts(opts.AreaStyle{Color: colorGrowth, Opacity: opts.Float(0.3)}),
	)
	return line
}

func buildSummaryChart(rep report.Report, l layout) *charts.Bar {
	acc := rep.Account
	values := []float64{acc.Deposits, acc.Withdraws, acc.Initial, rep.Stats.Profit, acc.Equity}
	labels := make([]string, len(summaryBars))
	data := make([]opts.BarData, len(summaryBars))
	for i, b := range summaryBars {
		labels[i] = b.label
		data[i] = opts.BarData{
			Value:     round(values[i], 2),
			ItemStyle: &opts.ItemStyle{Color: b.color},
			Label: &opts.Label{
				Show:      opts.Bool(true),
				Position:  "right",
				FontSize:  15,
				Formatter: money(values[i]),
			},
		}
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts(l.half, l.row[1])),
		charts.WithTitleOpts(panelTitle(fmt.Sprintf("Account Summary (%s)", acc.Currency), "", 20)),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithGridOpts(opts.Grid{Top: "70", Left: "110", Right: "110", Bottom: "40"}),
		charts.WithYAxisOpts(opts.YAxis{AxisLabel: &opts.AxisLabel{Show: opts.Bool(true), Color: colorTitle}}),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Show: opts.Bool(true), Color: colorTextSecondary}}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries("Summary", data, charts.WithBarChartOpts(opts.BarChart{BarCategoryGap: "30%"}))
	bar.XYReversal()
	return bar
}

// radarScores returns the four radar values in indicator order.
func radarScores(stats report.Stats) [4]float64 {
	return [4]float64{algoScore, stats.WinRate, activityScore, 100 - stats.MaxDDPct}
}

func buildRadarChart(rep report.Report, l layout) *charts.Radar {
	scores := radarScores(rep.Stats)
	names := [4]string{"Algo", "Win Rate", "Activity", "Risk (1/DD)"}
	indicators := make([]*opts.Indicator, len(names))
	values := make([]float64, len(scores))
	for i, name := range names {
		indicators[i] = &opts.Indicator{Name: fmt.Sprintf("%s\n%.1f", name, scores[i]), Max: radarAxisMax}
		values[i] = round(scores[i], 2)
	}
	radar := charts.NewRadar()
	radar.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts(l.half, l.row[1])),
		charts.WithTitleOpts(panelTitle("Performance Radar", "", 20)),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithRadarComponentOpts(opts.RadarComponent{
			Indicator:   indicators,
			Shape:       "polygon",
			SplitNumber: 5,
			SplitArea:   &opts.SplitArea{Show: opts.Bool(true), AreaStyle: &opts.AreaStyle{Color: colorNeutralFill}},
			SplitLine:   &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Width: 2}},
		}),
	)
	radar.AddSeries("Scores", []opts.RadarData{{Name: "Scores", Value: values}},
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorRadar, Width: 6}),
		charts.WithAreaStyleOpts(opts.AreaStyle{Color: colorRadar, Opacity: opts.Float(0.3)}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: colorRadar}),
	)
	return radar
}

func buildBalanceChart(rep report.Report, l layout, maPeriod int) *charts.Line {
	line := timeSeriesChart(rep, l, "Balance Curve", "USD")
	if rep.Empty() {
		return line
	}
	balance := rep.Curve.Balance
	line.SetXAxis(timeAxis(rep.Points))
	line.AddSeries("Balance", lineData(balance),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorBalance, Width: 5}),
		charts.WithAreaStyleOpts(opts.AreaStyle{Color: colorBalance, Opacity: opts.Float(0.2)}),
	)
	if ma := movingAverage(balance, maPeriod); ma != nil {
		line.AddSeries(fmt.Sprintf("SMA %d", maPeriod), ma,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: colorMA, Width: 2, Type: "dashed"}),
		)
	}
	return line
}

func buildGrowthPctChart(rep report.Report, l layout) *charts.Line {
	line := timeSeriesChart(rep, l, "Growth %", "%")
	if rep.Empty() {
		return line
	}
	pct := make([]float64, len(rep.Curve.Growth))
	for i, g := range rep.Curve.Growth {
		pct[i] = g - 100
	}
	line.SetXAxis(timeAxis(rep.Points))
	line.AddSeries("Growth %", lineData(pct),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorGrowth, Width: 5}),
		charts.WithAreaStyleOpts(opts.AreaStyle{Color: colorGrowth, Opacity: opts.Float(0.2), Origin: "auto"}),
	)
	return line
}

// timeSeriesChart is the shared frame of the balance and growth panels.
// Without trades it only carries the placeholder subtitle.
func timeSeriesChart(rep report.Report, l layout, title, unit string) *charts.Line {
	subtitle := ""
	if rep.Empty() {
		subtitle = waitingLabel
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts(l.half, l.row[2])),
		charts.WithTitleOpts(panelTitle(title, subtitle, 20)),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(!rep.Empty()), Top: "bottom"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithGridOpts(opts.Grid{Top: "80", Left: "80", Right: "30", Bottom: "70"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      unit,
			Scale:     opts.Bool(true),
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Opacity: opts.Float(0.4)}},
		}),
	)
	return line
}

// movingAverage returns the SMA aligned to series, nil before the window fills.
func movingAverage(series []float64, period int) []opts.LineData {
	if period < 2 || len(series) < period {
		return nil
	}
	sma := talib.Sma(series, period)
	out := make([]opts.LineData, len(series))
	for i := range out {
		if i < period-1 || i >= len(sma) || math.IsNaN(sma[i]) {
			out[i] = opts.LineData{Value: nil}
			continue
		}
		out[i] = opts.LineData{Value: round(sma[i], 4)}
	}
	return out
}

// monthlyCells flattens the table into heatmap cells [column, row, value].
// Blank cells are omitted; the label comes from the cell's own text.
func monthlyCells(table report.MonthlyTable) (years []string, cells []opts.HeatMapData, extent float64) {
	years = make([]string, len(table.Rows))
	for y, row := range table.Rows {
		years[y] = fmt.Sprintf("%d", row.Year)
		texts := append(row.Months[:], row.YTD)
		for col, text := range texts {
			if text == "" {
				continue
			}
			v, ok := parseSigned(text)
			if !ok {
				continue
			}
			extent = math.Max(extent, math.Abs(v))
			cells = append(cells, opts.HeatMapData{Name: text, Value: [3]any{col, y, v}})
		}
	}
	if extent == 0 {
		extent = 1
	}
	return years, cells, extent
}

func buildMonthlyChart(rep report.Report, l layout) *charts.HeatMap {
	hm := charts.NewHeatMap()
	years, cells, extent := monthlyCells(rep.Monthly)
	subtitle := ""
	if len(years) == 0 {
		subtitle = noTradesLabel
	}
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts(l.full, l.row[3])),
		charts.WithTitleOpts(panelTitle("Monthly P&L", subtitle, 20)),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithGridOpts(opts.Grid{Top: "60", Left: "80", Right: "30", Bottom: "20"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			Position:  "top",
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
			AxisLabel: &opts.AxisLabel{Color: colorTitle},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			Data:      years,
			Inverse:   opts.Bool(true),
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
			AxisLabel: &opts.AxisLabel{Color: colorTitle},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Type:       "continuous",
			Calculable: opts.Bool(false),
			Show:       opts.Bool(false),
			Min:        float32(-extent),
			Max:        float32(extent),
			InRange:    &opts.VisualMapInRange{Color: []string{colorLossFill, colorNeutralFill, colorGainFill}},
		}),
	)
	hm.SetXAxis(report.MonthLabels[:])
	hm.AddSeries("Monthly", cells,
		charts.WithLabelOpts(opts.Label{
			Show:      opts.Bool(true),
			FontSize:  13,
			Color:     colorTitle,
			Formatter: "{b}",
		}),
		charts.WithItemStyleOpts(opts.ItemStyle{BorderColor: colorBackground}),
	)
	return hm
}

// parseSigned reads a "+12.3" or "-4.0" cell back into a number.
func parseSigned(text string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func round(val float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(val)
	}
	scale := math.Pow10(decimals)
	return math.Round(val*scale) / scale
}
