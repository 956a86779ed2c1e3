// Package rollup groups normalized performance records by day and entity and
// applies commission and expense rules to produce daily and monthly
// profit rollups.
package rollup

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/buyerboard/finance-engine/pkg/constants"
	"github.com/buyerboard/finance-engine/pkg/datetime"
	"github.com/buyerboard/finance-engine/pkg/normalize"
	"go.uber.org/zap"
)

// CommissionTable maps media-buyer identity to a commission rate in [0,1].
// Lookups are case-insensitive and trimmed; a buyer absent from the table
// pays the default rate. The table is read-only once built.
type CommissionTable struct {
	rates map[string]float64
}

// NewCommissionTable builds a table from buyer-name → rate pairs. Keys are
// normalized so later lookups never depend on casing or stray whitespace.
func NewCommissionTable(rates map[string]float64) CommissionTable {
	normalized := make(map[string]float64, len(rates))
	for name, rate := range rates {
		normalized[normalize.Key(name)] = rate
	}
	return CommissionTable{rates: normalized}
}

// Rate returns the commission rate for a buyer, falling back to the default
// rate when the buyer has no rule.
func (t CommissionTable) Rate(buyer string) float64 {
	if rate, ok := t.rates[normalize.Key(buyer)]; ok {
		return rate
	}
	return constants.DefaultCommissionRate
}

// EntitySums holds revenue and spend accumulated for one entity.
type EntitySums struct {
	Revenue float64 `json:"revenue"`
	Spend   float64 `json:"spend"`
}

// Profit is revenue minus spend, before commission and overhead.
func (e EntitySums) Profit() float64 {
	return e.Revenue - e.Spend
}

// DayTotals holds the flat per-day sums across all entities.
type DayTotals struct {
	TotalRevenue float64 `json:"totalRevenue"`
	TotalAdSpend float64 `json:"totalAdSpend"`
	ACARevenue   float64 `json:"acaRevenue"`
}

// Aggregation is the output of the single-pass grouping stage: per-day
// per-entity sums along each of the three entity dimensions, plus flat
// per-day totals.
type Aggregation struct {
	ByMediaBuyer map[time.Time]map[string]EntitySums
	ByNetwork    map[time.Time]map[string]EntitySums
	ByOffer      map[time.Time]map[string]EntitySums
	Totals       map[time.Time]DayTotals
}

// Days returns the sorted list of days present in the aggregation.
func (a Aggregation) Days() []time.Time {
	days := make([]time.Time, 0, len(a.Totals))
	for day := range a.Totals {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// IsACANetwork reports whether a network name carries the legacy ACA marker.
// Matched as a case-insensitive substring.
func IsACANetwork(network string) bool {
	return strings.Contains(strings.ToLower(network), constants.ACAMarker)
}

// Aggregate groups records in a single O(n) pass. Records whose date failed
// normalization carry a zero date and cannot be bucketed by day; they are
// skipped. Blank entity names land in the "Unknown" bucket rather than being
// dropped, since they surface attribution gaps that must stay visible.
func Aggregate(records []normalize.PerformanceRecord) Aggregation {
	agg := Aggregation{
		ByMediaBuyer: make(map[time.Time]map[string]EntitySums),
		ByNetwork:    make(map[time.Time]map[string]EntitySums),
		ByOffer:      make(map[time.Time]map[string]EntitySums),
		Totals:       make(map[time.Time]DayTotals),
	}

	for _, rec := range records {
		if rec.Date.IsZero() {
			continue
		}
		day := datetime.Day(rec.Date)

		accumulate(agg.ByMediaBuyer, day, normalize.Entity(rec.MediaBuyer, constants.UnknownEntity), rec)
		accumulate(agg.ByNetwork, day, normalize.Entity(rec.Network, constants.UnknownEntity), rec)
		accumulate(agg.ByOffer, day, normalize.Entity(rec.Offer, constants.UnknownEntity), rec)

		totals := agg.Totals[day]
		totals.TotalRevenue += rec.TotalRevenue
		totals.TotalAdSpend += rec.AdSpend
		if IsACANetwork(rec.Network) {
			totals.ACARevenue += rec.TotalRevenue
		}
		agg.Totals[day] = totals
	}

	return agg
}

func accumulate(dim map[time.Time]map[string]EntitySums, day time.Time, entity string, rec normalize.PerformanceRecord) {
	entities, ok := dim[day]
	if !ok {
		entities = make(map[string]EntitySums)
		dim[day] = entities
	}
	sums := entities[entity]
	sums.Revenue += rec.TotalRevenue
	sums.Spend += rec.AdSpend
	entities[entity] = sums
}

// EntityMetric holds one entity's performance within a period.
type EntityMetric struct {
	Revenue float64 `json:"revenue"`
	Spend   float64 `json:"spend"`
	Profit  float64 `json:"profit"`
}

// Period is an inclusive day range.
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether a day falls inside the period.
func (p Period) Contains(day time.Time) bool {
	return !day.Before(p.Start) && !day.After(p.End)
}

// PreviousPeriod returns the equal-length period ending the day before this
// one starts.
func (p Period) PreviousPeriod() Period {
	length := int(p.End.Sub(p.Start).Hours()/24) + 1
	end := p.Start.AddDate(0, 0, -1)
	return Period{Start: end.AddDate(0, 0, -(length - 1)), End: end}
}

// Dimension selects which entity field a metric set is keyed by.
type Dimension int

const (
	ByMediaBuyer Dimension = iota
	ByNetwork
	ByOffer
)

// EntityMetrics sums revenue, spend, and profit per entity over a period
// along the given dimension.
func EntityMetrics(records []normalize.PerformanceRecord, dim Dimension, period Period) map[string]EntityMetric {
	metrics := make(map[string]EntityMetric)
	for _, rec := range records {
		if rec.Date.IsZero() || !period.Contains(datetime.Day(rec.Date)) {
			continue
		}
		var name string
		switch dim {
		case ByMediaBuyer:
			name = rec.MediaBuyer
		case ByNetwork:
			name = rec.Network
		case ByOffer:
			name = rec.Offer
		}
		name = normalize.Entity(name, constants.UnknownEntity)
		m := metrics[name]
		m.Revenue += rec.TotalRevenue
		m.Spend += rec.AdSpend
		m.Profit = m.Revenue - m.Spend
		metrics[name] = m
	}
	return metrics
}

// Calculator applies commission and expense rules to aggregated records.
type Calculator struct {
	logger *zap.Logger
}

// NewCalculator creates a calculator with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewCalculator(logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{logger: logger}
}

// DailyAggregate is one day's commission-adjusted rollup. FinalProfit
// excludes the fixed daily overhead on purpose: daily rows show profit after
// commission and surcharges only, while monthly rows fold the overhead in.
type DailyAggregate struct {
	Date                 time.Time `json:"date"`
	TotalRevenue         float64   `json:"totalRevenue"`
	TotalAdSpend         float64   `json:"totalAdSpend"`
	ACARevenue           float64   `json:"acaRevenue"`
	MediaBuyerCommission float64   `json:"mediaBuyerCommission"`
	RingbaExpense        float64   `json:"ringbaExpense"`
	DailyExpenses        float64   `json:"dailyExpenses"`
	BaseProfit           float64   `json:"baseProfit"`
	FinalProfit          float64   `json:"finalProfit"`
}

// RingbaExpense returns the legacy surcharge on ACA revenue for a day.
// The cutover is hard: days on or after it never carry the surcharge.
func RingbaExpense(day time.Time, acaRevenue float64) float64 {
	if day.Before(constants.RingbaCutover) {
		return acaRevenue * constants.RingbaRate
	}
	return 0
}

// DailyAggregates computes the commission-adjusted rollup for every day
// present in the records, sorted by date.
func (c *Calculator) DailyAggregates(records []normalize.PerformanceRecord, commissions CommissionTable) []DailyAggregate {
	agg := Aggregate(records)
	days := agg.Days()

	dailies := make([]DailyAggregate, 0, len(days))
	for _, day := range days {
		totals := agg.Totals[day]

		// A buyer's losing day earns no commission; it never offsets the
		// commissions other buyers earned, so total expenses stay non-negative
		// and finalProfit can never exceed baseProfit.
		commission := 0.0
		for buyer, sums := range agg.ByMediaBuyer[day] {
			commission += math.Max(0, sums.Profit()) * commissions.Rate(buyer)
		}

		d := DailyAggregate{
			Date:                 day,
			TotalRevenue:         totals.TotalRevenue,
			TotalAdSpend:         totals.TotalAdSpend,
			ACARevenue:           totals.ACARevenue,
			MediaBuyerCommission: commission,
			RingbaExpense:        RingbaExpense(day, totals.ACARevenue),
			DailyExpenses:        constants.MonthlyFixedExpenses / constants.AssumedWorkingDays,
		}
		d.BaseProfit = d.TotalRevenue - d.TotalAdSpend
		d.FinalProfit = d.BaseProfit - d.MediaBuyerCommission - d.RingbaExpense

		c.logger.Debug("daily rollup",
			zap.String("op", "rollup.DailyAggregates"),
			zap.String("date", day.Format(datetime.DayLayout)),
			zap.Float64("baseProfit", d.BaseProfit),
			zap.Float64("finalProfit", d.FinalProfit),
		)

		dailies = append(dailies, d)
	}

	return dailies
}
