package report

import (
	"math"
	"strconv"

	"myfxreport/internal/pkg/convert"
	"myfxreport/internal/pkg/maputil"
)

// IngestAccount reads the account snapshot. Missing or unreadable fields default to
// "Unknown" for text and 0 for numbers.
func IngestAccount(info map[string]any) AccountInfo {
	return AccountInfo{
		Broker:    maputil.String(info, "Broker", UnknownLabel),
		Server:    maputil.String(info, "Server", UnknownLabel),
		Number:    maputil.String(info, "Number", UnknownLabel),
		Currency:  maputil.String(info, "Currency", UnknownLabel),
		Equity:    maputil.Float(info, "Equity", 0),
		Balance:   maputil.Float(info, "Balance", 0),
		Initial:   maputil.Float(info, "Initial", 0),
		Deposits:  maputil.Float(info, "Deposits", 0),
		Withdraws: maputil.Float(info, "Withdraws", 0),
	}
}

// IngestTrades flattens every list bucket into one sequence of Buy/Sell records.
// Buckets that are not lists and entries that are not objects are skipped.
func IngestTrades(buckets []TradeBucket) []Trade {
	var trades []Trade
	for _, bucket := range buckets {
		items, ok := bucket.Value.([]any)
		if !ok {
			continue
		}
		for _, item := range items {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			side, ok := tradeSide(entry["Type"])
			if !ok {
				continue
			}
			trades = append(trades, Trade{
				Index:      len(trades),
				Ticket:     ticketOf(entry, len(trades)),
				Type:       side,
				Profit:     maputil.Float(entry, "Profit", 0),
				Commission: maputil.Float(entry, "Commission", 0),
				Swap:       maputil.Float(entry, "Swap", 0),
				Ctime:      ctimeOf(entry),
			})
		}
	}
	return trades
}

func tradeSide(raw any) (Side, bool) {
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	switch Side(s) {
	case SideBuy, SideSell:
		return Side(s), true
	default:
		return "", false
	}
}

func ticketOf(entry map[string]any, position int) string {
	if raw, ok := entry["Ticket"]; ok && raw != nil {
		return maputil.String(entry, "Ticket", "")
	}
	return strconv.Itoa(position)
}

// ctimeOf defaults a missing or null timestamp to the epoch but marks a present,
// unreadable one as NaN so BuildSeries can drop the record.
func ctimeOf(entry map[string]any) float64 {
	raw, ok := entry["Ctime"]
	if !ok || raw == nil {
		return 0
	}
	if f, ok := convert.ToFloat64(raw); ok {
		return f
	}
	return math.NaN()
}
