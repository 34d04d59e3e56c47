package report

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSeriesStableSort(t *testing.T) {
	trades := []Trade{
		{Ticket: "late", Ctime: 300},
		{Ticket: "tie-a", Ctime: 100},
		{Ticket: "broken", Ctime: math.NaN()},
		{Ticket: "tie-b", Ctime: 100},
		{Ticket: "early", Ctime: 50},
		{Ticket: "tie-c", Ctime: 100},
		{Ticket: "too-far", Ctime: 1e12},
	}
	series := BuildSeries(trades, time.UTC)
	require.Len(t, series, 5)

	tickets := make([]string, len(series))
	for i, s := range series {
		tickets[i] = s.Ticket
		assert.Equal(t, i, s.Index)
	}
	assert.Equal(t, []string{"early", "tie-a", "tie-b", "tie-c", "late"}, tickets)
	for i := 1; i < len(series); i++ {
		assert.LessOrEqual(t, series[i-1].Ctime, series[i].Ctime)
	}
}

func TestBuildSeriesTime(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	series := BuildSeries([]Trade{{Ctime: 1700000000.5}}, tokyo)
	require.Len(t, series, 1)
	assert.Equal(t, int64(1700000000), series[0].Time.Unix())
	assert.Equal(t, 500*time.Millisecond, time.Duration(series[0].Time.Nanosecond()))
	assert.Equal(t, tokyo, series[0].Time.Location())
}

func TestDeriveCumulative(t *testing.T) {
	series := []Trade{
		{Profit: 100, Commission: -5, Swap: -1},
		{Profit: -30, Commission: -2},
		{Profit: 12.5, Swap: 0.5},
	}
	points := Derive(series)
	require.Len(t, points, 3)

	assert.Equal(t, 94.0, points[0].NetPL)
	assert.Equal(t, -32.0, points[1].NetPL)
	assert.Equal(t, 13.0, points[2].NetPL)

	total := 0.0
	for i, p := range points {
		total += p.NetPL
		assert.InDelta(t, total, p.CumProfit, 1e-9, "index %d", i)
	}
	assert.InDelta(t, 75.0, points[len(points)-1].CumProfit, 1e-9)
}

func TestBuildCurveEmpty(t *testing.T) {
	curve := BuildCurve(AccountInfo{Initial: 1000, Deposits: 500, Withdraws: 200}, nil)
	assert.Equal(t, []float64{1300}, curve.Balance)
	assert.Equal(t, []float64{100}, curve.Growth)
	assert.Equal(t, []float64{100}, curve.GrowthFromBase)
}

func TestBuildCurve(t *testing.T) {
	account := AccountInfo{Initial: 1000, Deposits: 200, Withdraws: 200}
	points := Derive([]Trade{{Profit: 100}, {Profit: -50}, {Profit: 150}})
	curve := BuildCurve(account, points)

	assert.Equal(t, []float64{1100, 1050, 1200}, curve.Balance)
	assert.Equal(t, 100.0, curve.Growth[0])
	assert.InDelta(t, 1050.0/1100*100, curve.Growth[1], 1e-9)
	assert.InDelta(t, 120.0, curve.GrowthFromBase[2], 1e-9)
}

func TestBuildCurveZeroReference(t *testing.T) {
	points := Derive([]Trade{{Profit: 0}, {Profit: 10}})
	curve := BuildCurve(AccountInfo{}, points)
	assert.Equal(t, []float64{0, 10}, curve.Balance)
	assert.Equal(t, []float64{100, 100}, curve.Growth)
	assert.Equal(t, []float64{100, 100}, curve.GrowthFromBase)
}
