package orders

import "time"

// StaleAfter is how long an order may go without an update before it is reminded.
const StaleAfter = 5 * 24 * time.Hour

const day = 24 * time.Hour

// ScanStale lists orders whose last update is older than StaleAfter at now.
// Orders without a usable last_updated fall back to created_at; with neither they are skipped.
func ScanStale(orders []Order, now time.Time) []Reminder {
	cutoff := now.Add(-StaleAfter)
	reminders := make([]Reminder, 0)
	for _, o := range orders {
		touched := o.LastUpdated
		if touched.IsZero() {
			touched = o.CreatedAt
		}
		if touched.IsZero() || !touched.Before(cutoff) {
			continue
		}
		reminders = append(reminders, Reminder{
			OrderID:         o.ID,
			CustomerName:    o.CustomerName,
			DaysSinceUpdate: int(now.Sub(touched) / day),
			Amount:          o.Amount,
		})
	}
	return reminders
}
