package report

import "time"

// UnknownLabel fills text fields of the account snapshot that were not supplied.
const UnknownLabel = "Unknown"

// Side is the direction of a trade record. Only Buy and Sell are reportable.
type Side string

const (
	SideBuy  Side = "Buy"
	SideSell Side = "Sell"
)

// AccountInfo is the account snapshot that accompanies the trade history.
type AccountInfo struct {
	Broker    string  `json:"broker" yaml:"broker"`
	Server    string  `json:"server" yaml:"server"`
	Number    string  `json:"number" yaml:"number"`
	Currency  string  `json:"currency" yaml:"currency"`
	Equity    float64 `json:"equity" yaml:"equity"`
	Balance   float64 `json:"balance" yaml:"balance"`
	Initial   float64 `json:"initial" yaml:"initial"`
	Deposits  float64 `json:"deposits" yaml:"deposits"`
	Withdraws float64 `json:"withdraws" yaml:"withdraws"`
}

// BaseBalance is the capital the account trades from before any realised P&L.
func (a AccountInfo) BaseBalance() float64 {
	return a.Initial + a.Deposits - a.Withdraws
}

// Trade is one ingested Buy/Sell record.
// Ctime is NaN when the supplied timestamp could not be read as a number.
type Trade struct {
	Index      int       `json:"index" yaml:"index"`
	Ticket     string    `json:"ticket" yaml:"ticket"`
	Type       Side      `json:"type" yaml:"type"`
	Profit     float64   `json:"profit" yaml:"profit"`
	Commission float64   `json:"commission" yaml:"commission"`
	Swap       float64   `json:"swap" yaml:"swap"`
	Ctime      float64   `json:"ctime" yaml:"ctime"`
	Time       time.Time `json:"time" yaml:"time"`
}

// Net is the realised result of the trade after costs.
func (t Trade) Net() float64 {
	return t.Profit + t.Commission + t.Swap
}

// Point is the per-trade row of the derived series, in chronological order.
type Point struct {
	Trade     `yaml:",inline"`
	NetPL     float64 `json:"net_pl" yaml:"net_pl"`
	CumProfit float64 `json:"cum_profit" yaml:"cum_profit"`
}

// EquityCurve holds one value per Point, or exactly one value for an empty series.
//
// Growth is normalised to the first balance (always 100 at index 0); GrowthFromBase is
// normalised to the starting capital (Initial + Deposits - Withdraws).
type EquityCurve struct {
	Balance        []float64 `json:"balance" yaml:"balance"`
	Growth         []float64 `json:"growth" yaml:"growth"`
	GrowthFromBase []float64 `json:"growth_from_base" yaml:"growth_from_base"`
}

// Stats is the headline statistics bundle. JSON keys follow the legacy report payload.
type Stats struct {
	Equity   float64 `json:"Equity" yaml:"equity"`
	Profit   float64 `json:"Profit" yaml:"profit"`
	WinRate  float64 `json:"WinRate" yaml:"win_rate"`
	MaxDDPct float64 `json:"MaxDD_pct" yaml:"max_dd_pct"`
	Growth   float64 `json:"Growth" yaml:"growth"`
}

// MonthlyRow is one calendar year of the monthly P&L table.
// A blank month cell is the empty string.
type MonthlyRow struct {
	Year   int        `json:"year" yaml:"year"`
	Months [12]string `json:"months" yaml:"months"`
	YTD    string     `json:"ytd" yaml:"ytd"`
}

// MonthlyTable lists years in ascending order.
type MonthlyTable struct {
	Rows []MonthlyRow `json:"rows" yaml:"rows"`
}

// MonthLabels are the column headers of the monthly table, YTD included.
var MonthLabels = [13]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec", "YTD"}

// Report is everything the renderer needs for a single request.
type Report struct {
	Account AccountInfo  `json:"account" yaml:"account"`
	Points  []Point      `json:"series" yaml:"series"`
	Curve   EquityCurve  `json:"curve" yaml:"curve"`
	Stats   Stats        `json:"stats" yaml:"stats"`
	Monthly MonthlyTable `json:"monthly" yaml:"monthly"`
}

// Empty reports whether the request carried no usable trades.
func (r Report) Empty() bool {
	return len(r.Points) == 0
}
