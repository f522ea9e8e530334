package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyStats summarises the orders whose order_date falls in one calendar month,
// compared against the month before.
type MonthlyStats struct {
	Year            int             `json:"year"`
	Month           int             `json:"month"`
	TotalOrders     int             `json:"total_orders"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalItems      int             `json:"total_items"`
	Completed       int             `json:"completed"`
	Pending         int             `json:"pending"`
	HighPriority    int             `json:"high_priority"`
	StatusCounts    map[string]int  `json:"status_counts"`
	PreviousOrders  int             `json:"previous_orders"`
	PreviousRevenue decimal.Decimal `json:"previous_revenue"`
	OrderGrowth     decimal.Decimal `json:"order_growth"`
	RevenueGrowth   decimal.Decimal `json:"revenue_growth"`
}

var hundred = decimal.NewFromInt(100)

// Summarize computes MonthlyStats for year/month. "Pending" here means not yet sent to
// Delhi, which is narrower than the pending listing filter.
func Summarize(orders []Order, year int, month time.Month) MonthlyStats {
	stats := MonthlyStats{
		Year:            year,
		Month:           int(month),
		TotalRevenue:    decimal.Zero,
		PreviousRevenue: decimal.Zero,
		StatusCounts:    map[string]int{},
	}
	prevYear, prevMonth := year, month-1
	if prevMonth < time.January {
		prevYear, prevMonth = year-1, time.December
	}

	for _, o := range orders {
		d, ok := ParseOrderDate(o.OrderDate)
		if !ok {
			continue
		}
		amount := decimal.NewFromFloat(o.Amount)
		switch {
		case d.Year() == year && d.Month() == month:
			stats.TotalOrders++
			stats.TotalRevenue = stats.TotalRevenue.Add(amount)
			for _, it := range o.ProductItems {
				stats.TotalItems += it.Quantity
			}
			if o.Stages.Delivered {
				stats.Completed++
			}
			if !o.Stages.SentToDelhi {
				stats.Pending++
			}
			if o.IsHighPriority {
				stats.HighPriority++
			}
			stats.StatusCounts[o.Stages.Label()]++
		case d.Year() == prevYear && d.Month() == prevMonth:
			stats.PreviousOrders++
			stats.PreviousRevenue = stats.PreviousRevenue.Add(amount)
		}
	}

	stats.OrderGrowth = growth(decimal.NewFromInt(int64(stats.TotalOrders)), decimal.NewFromInt(int64(stats.PreviousOrders)))
	stats.RevenueGrowth = growth(stats.TotalRevenue, stats.PreviousRevenue)
	return stats
}

// growth is the percentage change from prev to cur at one decimal, 0 when prev is not positive.
func growth(cur, prev decimal.Decimal) decimal.Decimal {
	if !prev.IsPositive() {
		return decimal.Zero
	}
	return cur.Sub(prev).Div(prev).Mul(hundred).Round(1)
}

// ParseOrderDate reads an order_date, which is a calendar date optionally followed by a time.
func ParseOrderDate(s string) (time.Time, bool) {
	if len(s) >= 10 {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t, true
		}
	}
	return ParseTimestamp(s)
}
