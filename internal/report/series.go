package report

import (
	"math"
	"sort"
	"time"
)

// maxUnixSeconds bounds timestamps to what a nanosecond clock can represent
// (roughly the years 1678 to 2262).
const maxUnixSeconds = float64(math.MaxInt64) / 1e9

// BuildSeries drops records without a usable timestamp, orders the rest by time
// (ties keep their ingest order) and re-indexes them.
func BuildSeries(trades []Trade, loc *time.Location) []Trade {
	if loc == nil {
		loc = time.UTC
	}
	series := make([]Trade, 0, len(trades))
	for _, t := range trades {
		ts, ok := unixTime(t.Ctime)
		if !ok {
			continue
		}
		t.Time = ts.In(loc)
		series = append(series, t)
	}
	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Ctime < series[j].Ctime
	})
	for i := range series {
		series[i].Index = i
	}
	return series
}

func unixTime(seconds float64) (time.Time, bool) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || math.Abs(seconds) >= maxUnixSeconds {
		return time.Time{}, false
	}
	whole, frac := math.Modf(seconds)
	return time.Unix(int64(whole), int64(math.Round(frac*1e9))), true
}

// Derive computes per-trade net P&L and the running cumulative sum.
func Derive(series []Trade) []Point {
	points := make([]Point, len(series))
	cum := 0.0
	for i, t := range series {
		net := t.Net()
		cum += net
		points[i] = Point{Trade: t, NetPL: net, CumProfit: cum}
	}
	return points
}

// BuildCurve reconstructs the account balance after each trade.
func BuildCurve(account AccountInfo, points []Point) EquityCurve {
	base := account.BaseBalance()
	if len(points) == 0 {
		return EquityCurve{
			Balance:        []float64{base},
			Growth:         []float64{100},
			GrowthFromBase: []float64{100},
		}
	}
	curve := EquityCurve{
		Balance:        make([]float64, len(points)),
		Growth:         make([]float64, len(points)),
		GrowthFromBase: make([]float64, len(points)),
	}
	for i, p := range points {
		curve.Balance[i] = base + p.CumProfit
	}
	first := curve.Balance[0]
	for i, bal := range curve.Balance {
		curve.Growth[i] = normalise(bal, first)
		curve.GrowthFromBase[i] = normalise(bal, base)
	}
	return curve
}

// normalise expresses v as a percentage of ref. A zero reference cannot be normalised,
// so the point is reported flat at 100.
func normalise(v, ref float64) float64 {
	if ref == 0 {
		return 100
	}
	return v / ref * 100
}
