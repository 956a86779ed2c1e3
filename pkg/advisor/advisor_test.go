package advisor

import (
	"math"
	"testing"

	"github.com/buyerboard/finance-engine/pkg/datetime"
	"github.com/buyerboard/finance-engine/pkg/trend"
	"go.uber.org/zap"
)

func TestBreakEvenAlreadyProfitable(t *testing.T) {
	a := NewAdvisor(zap.NewNop())

	report := a.BreakEven(BreakEvenInput{
		CurrentProfit:       5000,
		BreakEvenPoint:      10000,
		LatestDayBaseProfit: 200,
		Trend:               trend.Up,
		Today:               datetime.MustParseDay("2026-09-01"),
	})

	if report.Status != "Already profitable and growing" {
		t.Errorf("status = %q", report.Status)
	}
	if report.ProgressToBreakEven != 100 {
		t.Errorf("progress = %v, expected 100", report.ProgressToBreakEven)
	}
	if report.ProjectedDate != nil {
		t.Errorf("profitable month must not project a break-even date")
	}
}

func TestBreakEvenProjectedDate(t *testing.T) {
	// -1000 against a 100/day base profit breaks even in 10 days.
	a := NewAdvisor(nil)
	today := datetime.MustParseDay("2026-09-01")

	report := a.BreakEven(BreakEvenInput{
		CurrentProfit:       -1000,
		BreakEvenPoint:      10000,
		LatestDayBaseProfit: 100,
		Trend:               trend.Stable,
		Today:               today,
	})

	if report.DaysToBreakEven != 10 {
		t.Errorf("daysToBreakEven = %d, expected 10", report.DaysToBreakEven)
	}
	if report.ProjectedDate == nil {
		t.Fatal("expected a projected break-even date")
	}
	if !report.ProjectedDate.Equal(datetime.MustParseDay("2026-09-11")) {
		t.Errorf("projectedDate = %v, expected 2026-09-11", report.ProjectedDate)
	}
	// 90% of the way to a 10000 break-even point.
	if math.Abs(report.ProgressToBreakEven-90) > 1e-9 {
		t.Errorf("progress = %v, expected 90", report.ProgressToBreakEven)
	}
	if report.Status != "On track for a profitable month" {
		t.Errorf("status = %q", report.Status)
	}
}

func TestBreakEvenStatusThresholds(t *testing.T) {
	a := NewAdvisor(nil)
	today := datetime.MustParseDay("2026-09-01")

	tests := []struct {
		name          string
		currentProfit float64
		expected      string
	}{
		{
			name:          "over 90 percent covered",
			currentProfit: -500, // 95%
			expected:      "Break even",
		},
		{
			name:          "between 50 and 90",
			currentProfit: -3000, // 70%
			expected:      "On track for a profitable month",
		},
		{
			name:          "under 50 percent",
			currentProfit: -8000, // 20%
			expected:      "On track to break even",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := a.BreakEven(BreakEvenInput{
				CurrentProfit:       tt.currentProfit,
				BreakEvenPoint:      10000,
				LatestDayBaseProfit: 50,
				Trend:               trend.Stable,
				Today:               today,
			})
			if report.Status != tt.expected {
				t.Errorf("status = %q, expected %q", report.Status, tt.expected)
			}
		})
	}
}

func TestBreakEvenLossWithTrend(t *testing.T) {
	a := NewAdvisor(nil)
	today := datetime.MustParseDay("2026-09-01")

	tests := []struct {
		name     string
		dir      trend.Direction
		expected string
	}{
		{name: "declining", dir: trend.StrongDown, expected: "Operating at a loss and declining"},
		{name: "improving", dir: trend.Up, expected: "Operating at a loss but improving"},
		{name: "flat", dir: trend.Stable, expected: "Operating at a loss"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := a.BreakEven(BreakEvenInput{
				CurrentProfit:       -2000,
				BreakEvenPoint:      10000,
				LatestDayBaseProfit: -100,
				Trend:               tt.dir,
				Today:               today,
			})
			if report.Status != tt.expected {
				t.Errorf("status = %q, expected %q", report.Status, tt.expected)
			}
			if report.ProjectedDate != nil {
				t.Errorf("no break-even date is computable on a losing day")
			}
		})
	}
}
