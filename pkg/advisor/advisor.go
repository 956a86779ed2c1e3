// Package advisor computes break-even progress and bounded daily budget
// recommendations from rollup and trend output.
package advisor

import (
	"math"
	"time"

	"github.com/buyerboard/finance-engine/pkg/constants"
	"github.com/buyerboard/finance-engine/pkg/trend"
	"go.uber.org/zap"
)

// BreakEvenInput carries the current month's position. CurrentProfit is the
// month's profit including overhead (FinalProfitWithDaily); BreakEvenPoint is
// the period's total expenses (commission plus overhead allocation).
type BreakEvenInput struct {
	CurrentProfit       float64
	BreakEvenPoint      float64
	LatestDayBaseProfit float64
	Trend               trend.Direction
	Today               time.Time
}

// BreakEvenReport is the advisor's verdict. Status is a plain string for the
// notification dispatcher. ProjectedDate is nil unless a break-even date is
// computable: the latest day earned a positive base profit while the month is
// still underwater.
type BreakEvenReport struct {
	Status              string     `json:"status"`
	ProgressToBreakEven float64    `json:"progressToBreakEven"`
	DaysToBreakEven     int        `json:"daysToBreakEven,omitempty"`
	ProjectedDate       *time.Time `json:"projectedDate,omitempty"`
}

// Advisor computes break-even and budget recommendations.
type Advisor struct {
	logger *zap.Logger
}

// NewAdvisor creates an advisor with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewAdvisor(logger *zap.Logger) *Advisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Advisor{logger: logger}
}

// BreakEven classifies the month's position and projects a break-even date
// where one is computable.
func (a *Advisor) BreakEven(in BreakEvenInput) BreakEvenReport {
	report := BreakEvenReport{
		ProgressToBreakEven: progressToBreakEven(in.CurrentProfit, in.BreakEvenPoint),
	}

	switch {
	case in.CurrentProfit >= 0:
		if in.Trend.Improving() {
			report.Status = "Already profitable and growing"
		} else {
			report.Status = "Already profitable and stable"
		}
	case in.LatestDayBaseProfit > 0:
		switch {
		case report.ProgressToBreakEven > 90:
			report.Status = "Break even"
		case report.ProgressToBreakEven > 50:
			report.Status = "On track for a profitable month"
		default:
			report.Status = "On track to break even"
		}
		days := int(math.Ceil(math.Abs(in.CurrentProfit) / in.LatestDayBaseProfit))
		projected := in.Today.AddDate(0, 0, days)
		report.DaysToBreakEven = days
		report.ProjectedDate = &projected
	default:
		switch {
		case in.Trend.Improving():
			report.Status = "Operating at a loss but improving"
		case in.Trend.Declining():
			report.Status = "Operating at a loss and declining"
		default:
			report.Status = "Operating at a loss"
		}
	}

	a.logger.Debug("break-even verdict",
		zap.String("op", "advisor.BreakEven"),
		zap.String("status", report.Status),
		zap.Float64("progress", report.ProgressToBreakEven),
	)

	return report
}

// progressToBreakEven is the share of the break-even point already covered.
// A month at -1000 against a 10000 break-even point is 90% of the way there.
func progressToBreakEven(currentProfit, breakEvenPoint float64) float64 {
	if breakEvenPoint <= 0 {
		return 0
	}
	if currentProfit >= 0 {
		return 100
	}
	return (breakEvenPoint - math.Abs(currentProfit)) / breakEvenPoint * constants.PercentageMultiplier
}
