package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedOptions() Options {
	return Options{Location: time.UTC, Now: func() time.Time { return fixedNow }}
}

func TestCalculateEmptyPayload(t *testing.T) {
	rep, err := Calculate([]byte(`{"account_info": {}, "trade_data": {}}`), fixedOptions())
	require.NoError(t, err)

	assert.True(t, rep.Empty())
	assert.Equal(t, Stats{}, rep.Stats)
	assert.Empty(t, rep.Monthly.Rows)
	assert.Equal(t, []float64{0}, rep.Curve.Balance)
	assert.Equal(t, []float64{100}, rep.Curve.Growth)
	assert.Equal(t, UnknownLabel, rep.Account.Broker)
}

func TestCalculateSingleBuy(t *testing.T) {
	body := `{
		"account_info": {"Broker": "Demo", "Initial": 1000, "Deposits": 0, "Withdraws": 0, "Equity": 1094},
		"trade_data": {"closed": [
			{"Type": "Buy", "Profit": 100, "Commission": -5, "Swap": -1, "Ctime": 1700000000, "Ticket": 42}
		]}
	}`
	rep, err := Calculate([]byte(body), fixedOptions())
	require.NoError(t, err)
	require.Len(t, rep.Points, 1)

	p := rep.Points[0]
	assert.Equal(t, "42", p.Ticket)
	assert.Equal(t, 94.0, p.NetPL)
	assert.Equal(t, 94.0, p.CumProfit)
	assert.Equal(t, []float64{1094}, rep.Curve.Balance)
	assert.Equal(t, 100.0, rep.Curve.Growth[0])
	assert.InDelta(t, 109.4, rep.Curve.GrowthFromBase[0], 1e-9)

	assert.Equal(t, 1094.0, rep.Stats.Equity)
	assert.Equal(t, 94.0, rep.Stats.Profit)
	assert.Equal(t, 100.0, rep.Stats.WinRate)
	assert.Zero(t, rep.Stats.MaxDDPct)
	assert.InDelta(t, 9.4, rep.Stats.Growth, 1e-9)

	require.Len(t, rep.Monthly.Rows, 1)
	assert.Equal(t, 2023, rep.Monthly.Rows[0].Year)
	assert.Equal(t, "+94.0", rep.Monthly.Rows[0].Months[time.November-1])
}

func TestCalculateDropsUnparsableCtime(t *testing.T) {
	clean := `{
		"account_info": {"Initial": 1000, "Equity": 1030},
		"trade_data": {"closed": [
			{"Type": "Buy", "Profit": 50, "Ctime": 1672531200},
			{"Type": "Sell", "Profit": -20, "Ctime": 1672617600}
		]}
	}`
	dirty := `{
		"account_info": {"Initial": 1000, "Equity": 1030},
		"trade_data": {"closed": [
			{"Type": "Buy", "Profit": 50, "Ctime": 1672531200},
			{"Type": "Sell", "Profit": 9999, "Ctime": "last tuesday"},
			{"Type": "Sell", "Profit": -20, "Ctime": 1672617600}
		]}
	}`
	want, err := Calculate([]byte(clean), fixedOptions())
	require.NoError(t, err)
	got, err := Calculate([]byte(dirty), fixedOptions())
	require.NoError(t, err)

	assert.Equal(t, want.Stats, got.Stats)
	assert.Equal(t, want.Curve, got.Curve)
	assert.Equal(t, want.Monthly, got.Monthly)
	require.Len(t, got.Points, 2)
	assert.Equal(t, "+30.0", got.Monthly.Rows[0].Months[time.January-1])
	assert.Equal(t, "+30.0", got.Monthly.Rows[0].YTD)
	assert.Equal(t, 50.0, got.Stats.WinRate)
}

func TestCalculateIgnoresOtherTradeKinds(t *testing.T) {
	body := `{
		"account_info": {"Initial": 1000},
		"trade_data": {
			"deals": [
				{"Type": "Deposit", "Profit": 5000, "Ctime": 1672531200},
				{"Type": "Buy", "Profit": 10, "Ctime": 1672531300},
				{"Type": "SELL", "Profit": -700, "Ctime": 1672531400}
			],
			"count": 3
		}
	}`
	rep, err := Calculate([]byte(body), fixedOptions())
	require.NoError(t, err)
	require.Len(t, rep.Points, 1)
	assert.Equal(t, 10.0, rep.Stats.Profit)
	assert.Equal(t, []float64{1010}, rep.Curve.Balance)
}

func TestCalculateMalformed(t *testing.T) {
	_, err := Calculate([]byte(`[{"Type": "Buy"}]`), fixedOptions())
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestBuildDefaultsToUTC(t *testing.T) {
	rep := Build(Payload{TradeData: []TradeBucket{{Name: "h", Value: []any{
		map[string]any{"Type": "Buy", "Profit": 1.0, "Ctime": float64(time.Date(2020, 5, 31, 23, 0, 0, 0, time.UTC).Unix())},
	}}}}, Options{})
	require.Len(t, rep.Monthly.Rows, 1)
	assert.Equal(t, "+1.0", rep.Monthly.Rows[0].Months[time.May-1])
	assert.Equal(t, time.UTC, rep.Points[0].Time.Location())
}

func TestCalculateRepeatedBucketCountsOnce(t *testing.T) {
	body := `{
		"account_info": {"Initial": 1000},
		"trade_data": {
			"h": [{"Type": "Buy", "Profit": 10, "Ctime": 1672531200}],
			"h": [{"Type": "Buy", "Profit": 10, "Ctime": 1672531200}]
		}
	}`
	rep, err := Calculate([]byte(body), fixedOptions())
	require.NoError(t, err)
	require.Len(t, rep.Points, 1)
	assert.Equal(t, 10.0, rep.Stats.Profit)
	assert.Equal(t, []float64{1010}, rep.Curve.Balance)
}

func TestCalculateKeepsWideTicket(t *testing.T) {
	body := `{"trade_data": {"h": [{"Type": "Buy", "Ticket": 123456789012345678, "Profit": 1, "Ctime": 1672531200}]}}`
	rep, err := Calculate([]byte(body), fixedOptions())
	require.NoError(t, err)
	require.Len(t, rep.Points, 1)
	assert.Equal(t, "123456789012345678", rep.Points[0].Ticket)
}
