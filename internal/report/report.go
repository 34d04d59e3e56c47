// Package report turns an account snapshot and its trade history into the statistics,
// equity curve and monthly P&L table shown on the performance report.
//
// Everything here is pure and request scoped: a Report is built from one payload and
// shares no state with any other.
package report

import "time"

// Options controls the calendar interpretation of trade timestamps.
type Options struct {
	// Location is used for month bucketing and for "now"; nil means UTC.
	Location *time.Location
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

// Build runs the full calculation over an already decoded payload. It never fails:
// malformed fields degrade to their defaults.
func Build(p Payload, opts Options) Report {
	loc := opts.location()
	account := IngestAccount(p.AccountInfo)
	series := BuildSeries(IngestTrades(p.TradeData), loc)
	points := Derive(series)
	curve := BuildCurve(account, points)
	return Report{
		Account: account,
		Points:  points,
		Curve:   curve,
		Stats:   ComputeStats(account, points, curve),
		Monthly: BuildMonthlyTable(points, loc, opts.now()),
	}
}

// Calculate decodes a raw request body and builds its report.
func Calculate(raw []byte, opts Options) (Report, error) {
	payload, err := DecodePayload(raw)
	if err != nil {
		return Report{}, err
	}
	return Build(payload, opts), nil
}
