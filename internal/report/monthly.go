package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type yearMonth struct {
	year  int
	month time.Month
}

// BuildMonthlyTable buckets net P&L by calendar month in loc. Months after now's month
// in now's year are always left blank; YTD sums only the visible cells.
func BuildMonthlyTable(points []Point, loc *time.Location, now time.Time) MonthlyTable {
	if len(points) == 0 {
		return MonthlyTable{}
	}
	if loc == nil {
		loc = time.UTC
	}
	sums := make(map[yearMonth]decimal.Decimal)
	years := make(map[int]struct{})
	for _, p := range points {
		ts := p.Time.In(loc)
		key := yearMonth{year: ts.Year(), month: ts.Month()}
		sums[key] = sums[key].Add(decimal.NewFromFloat(p.NetPL))
		years[key.year] = struct{}{}
	}

	ordered := make([]int, 0, len(years))
	for y := range years {
		ordered = append(ordered, y)
	}
	sort.Ints(ordered)

	current := now.In(loc)
	table := MonthlyTable{Rows: make([]MonthlyRow, 0, len(ordered))}
	for _, year := range ordered {
		row := MonthlyRow{Year: year}
		ytd := decimal.Zero
		for m := time.January; m <= time.December; m++ {
			sum, ok := sums[yearMonth{year: year, month: m}]
			if !ok {
				continue
			}
			if year == current.Year() && m > current.Month() {
				continue
			}
			cell := roundCell(sum)
			ytd = ytd.Add(cell)
			row.Months[m-1] = signed(cell, sum.IsNegative())
		}
		row.YTD = signed(ytd, ytd.IsNegative())
		table.Rows = append(table.Rows, row)
	}
	return table
}

// roundCell rounds to cents first and then to one decimal, so 0.049 reads as 0.1.
// Ties round away from zero on the exact decimal sum (7.25 reads +7.3), whereas
// rounding the binary float would print +7.2.
func roundCell(sum decimal.Decimal) decimal.Decimal {
	return sum.Round(2).Round(1)
}

// signed prints d with an explicit sign. A loss that rounds to zero keeps its minus
// sign ("-0.0") because decimal has no negative zero of its own.
func signed(d decimal.Decimal, negative bool) string {
	if negative {
		return "-" + d.Abs().StringFixed(1)
	}
	return "+" + d.StringFixed(1)
}
