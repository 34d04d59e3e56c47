package report

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestAccountDefaults(t *testing.T) {
	acc := IngestAccount(map[string]any{})
	assert.Equal(t, AccountInfo{
		Broker:   UnknownLabel,
		Server:   UnknownLabel,
		Number:   UnknownLabel,
		Currency: UnknownLabel,
	}, acc)

	acc = IngestAccount(nil)
	assert.Equal(t, UnknownLabel, acc.Broker)
	assert.Zero(t, acc.Equity)
}

func TestIngestAccountTolerantNumbers(t *testing.T) {
	acc := IngestAccount(map[string]any{
		"Broker":    "ICMarkets",
		"Number":    float64(51234567),
		"Currency":  "USD",
		"Equity":    "1094.5",
		"Balance":   "n/a",
		"Initial":   1000.0,
		"Deposits":  nil,
		"Withdraws": []any{1},
	})
	assert.Equal(t, "ICMarkets", acc.Broker)
	assert.Equal(t, "51234567", acc.Number)
	assert.Equal(t, UnknownLabel, acc.Server)
	assert.Equal(t, 1094.5, acc.Equity)
	assert.Zero(t, acc.Balance)
	assert.Equal(t, 1000.0, acc.Initial)
	assert.Zero(t, acc.Deposits)
	assert.Zero(t, acc.Withdraws)
	assert.Equal(t, 1000.0, acc.BaseBalance())
}

func TestIngestTradesFiltersTypes(t *testing.T) {
	buckets := []TradeBucket{
		{Name: "history", Value: []any{
			map[string]any{"Type": "Buy", "Profit": 10.0, "Ctime": 100.0},
			map[string]any{"Type": "buy", "Profit": 99.0},
			map[string]any{"Type": "Balance", "Profit": 5000.0},
			map[string]any{"Profit": 1.0},
			map[string]any{"Type": 1.0},
			"not an object",
			map[string]any{"Type": "Sell", "Profit": "-4", "Commission": "-1", "Swap": "bad", "Ctime": "200"},
		}},
		{Name: "summary", Value: map[string]any{"Type": "Buy"}},
		{Name: "open", Value: []any{
			map[string]any{"Type": "Buy", "Ticket": 778899.0, "Ctime": 50.0},
		}},
	}
	trades := IngestTrades(buckets)
	require.Len(t, trades, 3)

	assert.Equal(t, SideBuy, trades[0].Type)
	assert.Equal(t, "0", trades[0].Ticket)
	assert.Equal(t, 10.0, trades[0].Profit)

	assert.Equal(t, SideSell, trades[1].Type)
	assert.Equal(t, "1", trades[1].Ticket)
	assert.Equal(t, -4.0, trades[1].Profit)
	assert.Equal(t, -1.0, trades[1].Commission)
	assert.Zero(t, trades[1].Swap)
	assert.Equal(t, 200.0, trades[1].Ctime)

	assert.Equal(t, "778899", trades[2].Ticket)
	assert.Equal(t, 2, trades[2].Index)
}

func TestIngestTradesCtime(t *testing.T) {
	trades := IngestTrades([]TradeBucket{{Name: "h", Value: []any{
		map[string]any{"Type": "Buy"},
		map[string]any{"Type": "Buy", "Ctime": nil},
		map[string]any{"Type": "Buy", "Ctime": "yesterday"},
		map[string]any{"Type": "Buy", "Ctime": " 1700000000 "},
	}}})
	require.Len(t, trades, 4)
	assert.Zero(t, trades[0].Ctime)
	assert.Zero(t, trades[1].Ctime)
	assert.True(t, math.IsNaN(trades[2].Ctime))
	assert.Equal(t, 1700000000.0, trades[3].Ctime)
}

func TestIngestTradesEmpty(t *testing.T) {
	assert.Empty(t, IngestTrades(nil))
	assert.Empty(t, IngestTrades([]TradeBucket{{Name: "x", Value: nil}}))
}
