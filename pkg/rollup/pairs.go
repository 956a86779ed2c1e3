package rollup

import (
	"time"

	"github.com/buyerboard/finance-engine/pkg/constants"
	"github.com/buyerboard/finance-engine/pkg/datetime"
	"github.com/buyerboard/finance-engine/pkg/normalize"
)

// Pair identifies a network+offer combination, the granularity daily spend
// caps apply at.
type Pair struct {
	Network string `json:"network"`
	Offer   string `json:"offer"`
}

// Label is a display name for the pair.
func (p Pair) Label() string {
	return p.Network + " / " + p.Offer
}

// PairMetrics sums revenue, spend, and profit per network+offer pair over a
// period.
func PairMetrics(records []normalize.PerformanceRecord, period Period) map[Pair]EntityMetric {
	metrics := make(map[Pair]EntityMetric)
	for _, rec := range records {
		if rec.Date.IsZero() || !period.Contains(datetime.Day(rec.Date)) {
			continue
		}
		pair := Pair{
			Network: normalize.Entity(rec.Network, constants.UnknownEntity),
			Offer:   normalize.Entity(rec.Offer, constants.UnknownEntity),
		}
		m := metrics[pair]
		m.Revenue += rec.TotalRevenue
		m.Spend += rec.AdSpend
		m.Profit = m.Revenue - m.Spend
		metrics[pair] = m
	}
	return metrics
}

// SpendOnDay sums ad spend per network+offer pair for a single day.
func SpendOnDay(records []normalize.PerformanceRecord, day time.Time) map[Pair]float64 {
	day = datetime.Day(day)
	spend := make(map[Pair]float64)
	for _, rec := range records {
		if rec.Date.IsZero() || !datetime.Day(rec.Date).Equal(day) {
			continue
		}
		pair := Pair{
			Network: normalize.Entity(rec.Network, constants.UnknownEntity),
			Offer:   normalize.Entity(rec.Offer, constants.UnknownEntity),
		}
		spend[pair] += rec.AdSpend
	}
	return spend
}

// BuyerSpendOnDay sums ad spend per media buyer for a single day.
func BuyerSpendOnDay(records []normalize.PerformanceRecord, day time.Time) map[string]float64 {
	day = datetime.Day(day)
	spend := make(map[string]float64)
	for _, rec := range records {
		if rec.Date.IsZero() || !datetime.Day(rec.Date).Equal(day) {
			continue
		}
		buyer := normalize.Entity(rec.MediaBuyer, constants.UnknownEntity)
		spend[buyer] += rec.AdSpend
	}
	return spend
}
