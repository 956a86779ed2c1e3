// Package engine wires the pipeline stages into a single run producing a
// complete report: rollups, insights, break-even verdict, budget
// recommendations, cash-flow projection, and credit view.
package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/buyerboard/finance-engine/internal/config"
	"github.com/buyerboard/finance-engine/pkg/advisor"
	"github.com/buyerboard/finance-engine/pkg/constants"
	"github.com/buyerboard/finance-engine/pkg/datetime"
	"github.com/buyerboard/finance-engine/pkg/normalize"
	"github.com/buyerboard/finance-engine/pkg/projection"
	"github.com/buyerboard/finance-engine/pkg/rollup"
	"github.com/buyerboard/finance-engine/pkg/trend"
	"go.uber.org/zap"
)

// Input is one engine invocation: a batch of raw records plus the
// financial-resource snapshot, both supplied whole by the caller. Now is
// injectable for deterministic runs; the zero value means the wall clock.
type Input struct {
	Records    []normalize.RawRecord `json:"records"`
	Snapshot   projection.Snapshot   `json:"snapshot"`
	Now        time.Time             `json:"now,omitempty"`
	PeriodDays int                   `json:"periodDays,omitempty"` // trend comparison window, default 7
}

// BuyerSpendLimit is one buyer's maximum sustainable daily spend.
type BuyerSpendLimit struct {
	MediaBuyer string  `json:"mediaBuyer"`
	MaxDaily   float64 `json:"maxDaily"`
}

// Report is the full engine output, plain data for the presentation layer
// and notification dispatcher.
type Report struct {
	Dailies         []rollup.DailyAggregate      `json:"dailies"`
	Monthlies       []rollup.MonthlyAggregate    `json:"monthlies"`
	BuyerInsights   []trend.Insight              `json:"buyerInsights"`
	NetworkInsights []trend.Insight              `json:"networkInsights"`
	OfferInsights   []trend.Insight              `json:"offerInsights"`
	BreakEven       advisor.BreakEvenReport      `json:"breakEven"`
	Budgets         []advisor.BudgetSuggestion   `json:"budgets"`
	SpendLimits     []BuyerSpendLimit            `json:"spendLimits"`
	Projection      []projection.Day             `json:"projection"`
	Credit          projection.CreditReport      `json:"credit"`
	Exposure        []projection.NetworkExposure `json:"exposure"`
}

// Engine coordinates the pipeline stages.
type Engine struct {
	normalizer *normalize.Normalizer
	calculator *rollup.Calculator
	classifier *trend.Classifier
	advisor    *advisor.Advisor
	projector  *projection.Projector
	logger     *zap.Logger
}

// New creates an engine with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func New(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		normalizer: normalize.NewNormalizer(logger),
		calculator: rollup.NewCalculator(logger),
		classifier: trend.NewClassifier(logger),
		advisor:    advisor.NewAdvisor(logger),
		projector:  projection.NewProjector(logger),
		logger:     logger,
	}
}

// Run executes the full pipeline over one input snapshot. The only hard
// failure is structurally invalid input; data-quality problems degrade
// inside the stages.
func (e *Engine) Run(in Input, conf *config.Configuration) (Report, error) {
	if in.Records == nil {
		return Report{}, fmt.Errorf("records must be a collection, got nil")
	}
	if conf == nil {
		conf = &config.Configuration{}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	today := datetime.Day(now)

	periodDays := in.PeriodDays
	if periodDays <= 0 {
		periodDays = constants.TrailingSpendDays
	}

	records := e.normalizer.Records(in.Records)
	commissions := conf.CommissionTable()
	caps := conf.CapsTable()

	dailies := e.calculator.DailyAggregates(records, commissions)
	monthlies := e.calculator.MonthlyAggregates(dailies, now)

	currentPeriod := rollup.Period{
		Start: today.AddDate(0, 0, -(periodDays - 1)),
		End:   today,
	}
	previousPeriod := currentPeriod.PreviousPeriod()

	report := Report{
		Dailies:   dailies,
		Monthlies: monthlies,
		BuyerInsights: e.classifier.Insights(
			rollup.EntityMetrics(records, rollup.ByMediaBuyer, currentPeriod),
			rollup.EntityMetrics(records, rollup.ByMediaBuyer, previousPeriod),
		),
		NetworkInsights: e.classifier.Insights(
			rollup.EntityMetrics(records, rollup.ByNetwork, currentPeriod),
			rollup.EntityMetrics(records, rollup.ByNetwork, previousPeriod),
		),
		OfferInsights: e.classifier.Insights(
			rollup.EntityMetrics(records, rollup.ByOffer, currentPeriod),
			rollup.EntityMetrics(records, rollup.ByOffer, previousPeriod),
		),
		Credit:   projection.CreditUtilization(in.Snapshot.CreditCards),
		Exposure: projection.ExposureByNetwork(in.Snapshot.Invoices),
	}

	report.BreakEven = e.breakEven(dailies, monthlies, now)
	report.Budgets = e.budgets(records, caps, currentPeriod, previousPeriod)
	report.SpendLimits = e.spendLimits(records, in.Snapshot, dailies)

	dailySpend := conf.Projection.DailyMediaSpend
	if dailySpend <= 0 {
		dailySpend = projection.RecurringDailySpend(records, today)
	}
	report.Projection = e.projector.Project(projection.Input{
		StartingBalance: in.Snapshot.TotalCash(),
		Today:           today,
		HorizonDays:     conf.HorizonDays(),
		DailyMediaSpend: dailySpend,
		Snapshot:        in.Snapshot,
	})

	e.logger.Info("engine run complete",
		zap.String("op", "engine.Run"),
		zap.Int("records", len(records)),
		zap.Int("days", len(dailies)),
		zap.Int("months", len(monthlies)),
	)

	return report, nil
}

// breakEven assembles the advisor input from the current open month.
func (e *Engine) breakEven(dailies []rollup.DailyAggregate, monthlies []rollup.MonthlyAggregate, now time.Time) advisor.BreakEvenReport {
	var current, previous *rollup.MonthlyAggregate
	for i := range monthlies {
		m := &monthlies[i]
		if m.State.Open {
			current = m
		} else if current == nil {
			previous = m
		}
	}
	if current == nil {
		return advisor.BreakEvenReport{Status: "No data for the current month"}
	}

	latestDayBase := 0.0
	if len(dailies) > 0 {
		latestDayBase = dailies[len(dailies)-1].BaseProfit
	}

	direction := trend.Neutral
	if previous != nil {
		direction = trend.ClassifyDirection(current.FinalProfit, previous.FinalProfit, true)
	}

	return e.advisor.BreakEven(advisor.BreakEvenInput{
		CurrentProfit:       current.FinalProfitWithDaily,
		BreakEvenPoint:      current.MediaBuyerCommission + current.DailyExpenses,
		LatestDayBaseProfit: latestDayBase,
		Trend:               direction,
		Today:               datetime.Day(now),
	})
}

// budgets suggests a daily budget per network+offer pair active in the
// current period, sorted by pair label for deterministic output.
func (e *Engine) budgets(records []normalize.PerformanceRecord, caps advisor.CapsTable, current, previous rollup.Period) []advisor.BudgetSuggestion {
	currentMetrics := rollup.PairMetrics(records, current)
	previousMetrics := rollup.PairMetrics(records, previous)
	lastDaySpend := rollup.SpendOnDay(records, current.End)

	pairs := make([]rollup.Pair, 0, len(currentMetrics))
	for pair, metric := range currentMetrics {
		if metric.Spend > 0 {
			pairs = append(pairs, pair)
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Label() < pairs[j].Label() })

	suggestions := make([]advisor.BudgetSuggestion, 0, len(pairs))
	for _, pair := range pairs {
		cur := currentMetrics[pair]
		prev, hasPrev := previousMetrics[pair]

		direction := trend.ClassifyDirection(cur.Profit, prev.Profit, hasPrev)
		consistency := trend.InsufficientData
		if hasPrev {
			consistency = trend.ClassifyConsistency([]float64{cur.Profit, prev.Profit})
		}

		roi := 0.0
		if cur.Spend > 0 {
			roi = cur.Profit / cur.Spend * constants.PercentageMultiplier
		}

		suggestions = append(suggestions, e.advisor.SuggestDailyBudget(advisor.BudgetInput{
			Entity:       pair.Label(),
			Network:      pair.Network,
			Offer:        pair.Offer,
			LastDaySpend: lastDaySpend[pair],
			ROI:          roi,
			Trend:        direction,
			Consistency:  consistency,
		}, caps))
	}

	return suggestions
}

// spendLimits computes each buyer's maximum sustainable daily spend against
// cash plus available credit, holding the other buyers' latest-day spend
// fixed.
func (e *Engine) spendLimits(records []normalize.PerformanceRecord, snapshot projection.Snapshot, dailies []rollup.DailyAggregate) []BuyerSpendLimit {
	if len(dailies) == 0 {
		return nil
	}
	latestDay := dailies[len(dailies)-1].Date
	currentSpend := rollup.BuyerSpendOnDay(records, latestDay)

	funds := snapshot.TotalCash()
	for _, card := range snapshot.CreditCards {
		funds += card.Available
	}

	buyers := make([]string, 0, len(currentSpend))
	for buyer := range currentSpend {
		buyers = append(buyers, buyer)
	}
	sort.Strings(buyers)

	limits := make([]BuyerSpendLimit, 0, len(buyers))
	for _, buyer := range buyers {
		limits = append(limits, BuyerSpendLimit{
			MediaBuyer: buyer,
			MaxDaily:   e.advisor.MaxSustainableSpend(buyer, currentSpend, funds),
		})
	}
	return limits
}
