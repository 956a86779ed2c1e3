package rollup

import (
	"sort"
	"time"

	"github.com/buyerboard/finance-engine/pkg/constants"
	"github.com/buyerboard/finance-engine/pkg/datetime"
	"go.uber.org/zap"
)

// MonthState tags a month as still accumulating data or closed. The fixed
// overhead allocation branches on the tag: an open month spreads the monthly
// constant over the days observed so far, a closed month over the assumed
// working-day count.
type MonthState struct {
	Open         bool `json:"open"`
	DaysObserved int  `json:"daysObserved,omitempty"`
}

// OpenMonth tags a month still in progress with the distinct data-days seen
// so far.
func OpenMonth(daysObserved int) MonthState {
	return MonthState{Open: true, DaysObserved: daysObserved}
}

// ClosedMonth tags a completed month.
func ClosedMonth() MonthState {
	return MonthState{}
}

// PerDayOverhead returns the fixed-overhead allocation for one data day
// under this state. Zero observed days in an open month returns 0; callers
// skip such months entirely before reaching here.
func (s MonthState) PerDayOverhead() float64 {
	if s.Open {
		if s.DaysObserved == 0 {
			return 0
		}
		return constants.MonthlyFixedExpenses / float64(s.DaysObserved)
	}
	return constants.MonthlyFixedExpenses / float64(constants.AssumedWorkingDays)
}

// MonthlyAggregate is one month's rollup: sums of the contained daily
// aggregates plus the allocated fixed overhead. FinalProfitWithDaily is the
// month view of profit; it includes the overhead that daily rows omit.
type MonthlyAggregate struct {
	Month                string     `json:"month"`
	State                MonthState `json:"state"`
	DataDays             int        `json:"dataDays"`
	TotalRevenue         float64    `json:"totalRevenue"`
	TotalAdSpend         float64    `json:"totalAdSpend"`
	ACARevenue           float64    `json:"acaRevenue"`
	MediaBuyerCommission float64    `json:"mediaBuyerCommission"`
	RingbaExpense        float64    `json:"ringbaExpense"`
	BaseProfit           float64    `json:"baseProfit"`
	FinalProfit          float64    `json:"finalProfit"`
	DailyExpenses        float64    `json:"dailyExpenses"`
	FinalProfitWithDaily float64    `json:"finalProfitWithDaily"`
}

// MonthlyAggregates rolls daily aggregates into months, sorted by month key.
// The month containing now is tagged open and prorated accordingly. A month
// with zero data days is skipped rather than risking a zero division.
func (c *Calculator) MonthlyAggregates(dailies []DailyAggregate, now time.Time) []MonthlyAggregate {
	byMonth := make(map[string][]DailyAggregate)
	for _, d := range dailies {
		key := datetime.MonthKey(d.Date)
		byMonth[key] = append(byMonth[key], d)
	}

	keys := make([]string, 0, len(byMonth))
	for key := range byMonth {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	monthlies := make([]MonthlyAggregate, 0, len(keys))
	for _, key := range keys {
		days := byMonth[key]
		if len(days) == 0 {
			c.logger.Warn("skipping month with no data days",
				zap.String("op", "rollup.MonthlyAggregates"),
				zap.String("month", key),
			)
			continue
		}

		state := ClosedMonth()
		if datetime.SameMonth(days[0].Date, now) {
			state = OpenMonth(len(days))
		}

		m := MonthlyAggregate{
			Month:    key,
			State:    state,
			DataDays: len(days),
		}
		for _, d := range days {
			m.TotalRevenue += d.TotalRevenue
			m.TotalAdSpend += d.TotalAdSpend
			m.ACARevenue += d.ACARevenue
			m.MediaBuyerCommission += d.MediaBuyerCommission
			m.RingbaExpense += d.RingbaExpense
			m.BaseProfit += d.BaseProfit
			m.FinalProfit += d.FinalProfit
		}
		m.DailyExpenses = state.PerDayOverhead() * float64(len(days))
		m.FinalProfitWithDaily = m.FinalProfit - m.DailyExpenses

		monthlies = append(monthlies, m)
	}

	return monthlies
}
