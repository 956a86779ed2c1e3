package projection

import (
	"time"

	"github.com/buyerboard/finance-engine/pkg/constants"
	"github.com/buyerboard/finance-engine/pkg/datetime"
	"github.com/buyerboard/finance-engine/pkg/normalize"
)

// RecurringDailySpend estimates the aggregate expected daily media spend as
// the sum of each buyer's trailing average over the last 7 calendar days
// ending today. Used as the projection's recurring outflow when the caller
// supplies no explicit figure.
func RecurringDailySpend(records []normalize.PerformanceRecord, today time.Time) float64 {
	end := datetime.Day(today)
	start := end.AddDate(0, 0, -(constants.TrailingSpendDays - 1))
	window := constants.TrailingSpendDays

	perBuyer := make(map[string]float64)
	for _, rec := range records {
		if rec.Date.IsZero() {
			continue
		}
		day := datetime.Day(rec.Date)
		if day.Before(start) || day.After(end) {
			continue
		}
		perBuyer[normalize.Key(rec.MediaBuyer)] += rec.AdSpend
	}

	total := 0.0
	for _, spend := range perBuyer {
		total += spend / float64(window)
	}
	return total
}
