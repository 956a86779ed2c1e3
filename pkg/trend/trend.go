// Package trend classifies period-over-period entity performance into
// direction and consistency labels and synthesizes per-entity insight
// statuses. All outputs are deterministic and locale-free; downstream
// formatting never changes them.
package trend

import (
	"math"
	"sort"

	"github.com/buyerboard/finance-engine/pkg/mathutil"
	"github.com/buyerboard/finance-engine/pkg/rollup"
	"go.uber.org/zap"
)

// Direction labels the period-over-period profit movement.
type Direction string

const (
	StrongUp   Direction = "strong_up"
	Up         Direction = "up"
	Stable     Direction = "stable"
	Down       Direction = "down"
	StrongDown Direction = "strong_down"
	Neutral    Direction = "neutral"
)

// Improving reports whether the direction is upward.
func (d Direction) Improving() bool {
	return d == StrongUp || d == Up
}

// Declining reports whether the direction is downward.
func (d Direction) Declining() bool {
	return d == StrongDown || d == Down
}

// Consistency labels profit variability over a sample.
type Consistency string

const (
	VeryStable       Consistency = "very_stable"
	ConsistentStable Consistency = "stable"
	Moderate         Consistency = "moderate"
	Inconsistent     Consistency = "inconsistent"
	InsufficientData Consistency = "insufficient_data"
)

// ClassifyDirection labels the change from previous to current profit.
// A change of exactly +20% is up, not strong_up; the strong bands are strict
// inequalities. Missing or zero previous profit yields neutral, since the
// percentage is undefined for a brand-new entity.
func ClassifyDirection(current, previous float64, hasPrevious bool) Direction {
	if !hasPrevious || previous == 0 {
		return Neutral
	}
	pct := (current - previous) / math.Abs(previous) * 100

	switch {
	case pct > 20:
		return StrongUp
	case pct >= 5:
		return Up
	case pct > -5:
		return Stable
	case pct >= -20:
		return Down
	default:
		return StrongDown
	}
}

// ClassifyConsistency labels the coefficient of variation of the sample.
// Fewer than two samples, or a zero mean (undefined CV), yield
// insufficient_data rather than a division error.
func ClassifyConsistency(sample []float64) Consistency {
	if len(sample) < 2 {
		return InsufficientData
	}
	mean := mathutil.Mean(sample)
	if mean == 0 {
		return InsufficientData
	}
	cv := mathutil.StdDev(sample) / math.Abs(mean) * 100

	switch {
	case cv < 20:
		return VeryStable
	case cv < 40:
		return ConsistentStable
	case cv < 60:
		return Moderate
	default:
		return Inconsistent
	}
}

// Insight is one entity's classified performance for the current period.
// Status is a plain already-formatted string suitable for direct inclusion
// in a dispatched message.
type Insight struct {
	Entity      string      `json:"entity"`
	Revenue     float64     `json:"revenue"`
	Spend       float64     `json:"spend"`
	Profit      float64     `json:"profit"`
	ROI         float64     `json:"roi"`
	Trend       Direction   `json:"trend"`
	Consistency Consistency `json:"consistency"`
	Status      string      `json:"status"`
}

// Classifier builds entity insights from period metrics.
type Classifier struct {
	logger *zap.Logger
}

// NewClassifier creates a classifier with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewClassifier(logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{logger: logger}
}

// Insights classifies every active entity: those with spend > 0 in the
// current period. Entities present only in the previous period are excluded.
// Output is sorted by entity name so repeated runs are bit-identical.
func (c *Classifier) Insights(current, previous map[string]rollup.EntityMetric) []Insight {
	names := make([]string, 0, len(current))
	for name, metric := range current {
		if metric.Spend > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	insights := make([]Insight, 0, len(names))
	for _, name := range names {
		cur := current[name]
		prev, hasPrev := previous[name]

		direction := ClassifyDirection(cur.Profit, prev.Profit, hasPrev)
		consistency := InsufficientData
		if hasPrev {
			consistency = ClassifyConsistency([]float64{cur.Profit, prev.Profit})
		}

		insight := Insight{
			Entity:      name,
			Revenue:     cur.Revenue,
			Spend:       cur.Spend,
			Profit:      cur.Profit,
			ROI:         mathutil.CalculatePercentage(cur.Profit, cur.Spend),
			Trend:       direction,
			Consistency: consistency,
		}
		insight.Status = statusFor(cur.Profit, direction)

		c.logger.Debug("entity insight",
			zap.String("op", "trend.Insights"),
			zap.String("entity", name),
			zap.String("trend", string(direction)),
			zap.String("consistency", string(consistency)),
		)

		insights = append(insights, insight)
	}

	return insights
}

// statusFor crosses profitability with trend. Wording is fixed; the
// notification dispatcher sends these verbatim.
func statusFor(profit float64, direction Direction) string {
	if profit > 0 {
		switch {
		case direction.Improving():
			return "Profitable and growing"
		case direction.Declining():
			return "Profitable but declining"
		case direction == Neutral:
			return "Profitable, no prior period to compare"
		default:
			return "Profitable and stable"
		}
	}
	switch {
	case direction.Improving():
		return "Unprofitable but improving"
	case direction.Declining():
		return "Unprofitable and declining"
	case direction == Neutral:
		return "Unprofitable, no prior period to compare"
	default:
		return "Unprofitable and flat"
	}
}
