package report

import "math"

// ComputeStats derives the headline statistics from the ordered series and its curve.
func ComputeStats(account AccountInfo, points []Point, curve EquityCurve) Stats {
	stats := Stats{
		Equity:  account.Equity,
		WinRate: winRate(points),
		Growth:  growthPct(account),
	}
	if len(points) == 0 {
		return stats
	}
	for _, p := range points {
		stats.Profit += p.NetPL
	}
	stats.MaxDDPct = maxDrawdownPct(curve.Balance)
	return stats
}

// winRate counts a trade as a win on gross Profit, before commission and swap.
func winRate(points []Point) float64 {
	if len(points) == 0 {
		return 0
	}
	wins := 0
	for _, p := range points {
		if p.Profit > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(points)) * 100
}

func growthPct(account AccountInfo) float64 {
	if account.Initial <= 0 {
		return 0
	}
	return (account.Equity/account.Initial - 1) * 100
}

// maxDrawdownPct locates the deepest drawdown (first occurrence on ties) and expresses
// it against the running peak at that same point.
func maxDrawdownPct(balance []float64) float64 {
	if len(balance) == 0 {
		return 0
	}
	peak := balance[0]
	worstDD, worstPeak := 0.0, peak
	for i, bal := range balance {
		if i == 0 || bal > peak {
			peak = bal
		}
		if dd := bal - peak; dd < worstDD {
			worstDD, worstPeak = dd, peak
		}
	}
	if worstDD == 0 || worstPeak == 0 {
		return 0
	}
	return math.Abs(worstDD / worstPeak * 100)
}
