package advisor

import (
	"math"
	"strings"

	"github.com/buyerboard/finance-engine/pkg/constants"
	"github.com/buyerboard/finance-engine/pkg/mathutil"
	"github.com/buyerboard/finance-engine/pkg/normalize"
	"github.com/buyerboard/finance-engine/pkg/trend"
	"go.uber.org/zap"
)

// CapRule is one network+offer daily spend cap as supplied by the
// configuration provider. Cap is kept as the raw string because upstream
// sheets mix numbers with markers like "Uncapped", "N/A", and "TBC".
type CapRule struct {
	Network string `mapstructure:"network" json:"network" yaml:"network"`
	Offer   string `mapstructure:"offer" json:"offer" yaml:"offer"`
	Cap     string `mapstructure:"cap" json:"cap" yaml:"cap"`
}

// CapsTable looks up daily caps by normalized network+offer key.
type CapsTable struct {
	caps map[string]string
}

// NewCapsTable builds a lookup table from cap rules.
func NewCapsTable(rules []CapRule) CapsTable {
	caps := make(map[string]string, len(rules))
	for _, rule := range rules {
		caps[capKey(rule.Network, rule.Offer)] = rule.Cap
	}
	return CapsTable{caps: caps}
}

func capKey(network, offer string) string {
	return normalize.Key(network) + "|" + normalize.Key(offer)
}

// uncappedMarkers are cap values that impose no clamp.
var uncappedMarkers = map[string]bool{
	"uncapped": true,
	"n/a":      true,
	"na":       true,
	"tbc":      true,
	"":         true,
}

// Cap returns the numeric daily cap for a network+offer pair. The second
// return is false when no rule exists or the rule is a non-numeric marker,
// meaning no clamp applies.
func (t CapsTable) Cap(network, offer string) (float64, bool) {
	raw, ok := t.caps[capKey(network, offer)]
	if !ok {
		return 0, false
	}
	if uncappedMarkers[strings.ToLower(strings.TrimSpace(raw))] {
		return 0, false
	}
	cap, parsed := normalize.Money(raw)
	if !parsed {
		return 0, false
	}
	return cap, true
}

// BudgetInput is one entity's recent performance for budget suggestion.
type BudgetInput struct {
	Entity       string
	Network      string
	Offer        string
	LastDaySpend float64
	ROI          float64 // percent
	Trend        trend.Direction
	Consistency  trend.Consistency
}

// BudgetSuggestion is a bounded daily budget recommendation.
type BudgetSuggestion struct {
	Entity     string  `json:"entity"`
	Suggested  float64 `json:"suggested"`
	Multiplier float64 `json:"multiplier"`
	Capped     bool    `json:"capped"`
	Cap        float64 `json:"cap,omitempty"`
}

// SuggestDailyBudget scales the entity's last-day spend by a multiplier from
// its ROI, trend, and consistency, rounds to the nearest 100, then clamps to
// the network+offer daily cap when a numeric one exists.
func (a *Advisor) SuggestDailyBudget(in BudgetInput, caps CapsTable) BudgetSuggestion {
	multiplier := budgetMultiplier(in)

	suggested := mathutil.RoundToNearest(in.LastDaySpend*multiplier, constants.BudgetRounding)

	suggestion := BudgetSuggestion{
		Entity:     in.Entity,
		Suggested:  suggested,
		Multiplier: multiplier,
	}

	if cap, ok := caps.Cap(in.Network, in.Offer); ok && suggested > cap {
		suggestion.Suggested = cap
		suggestion.Capped = true
		suggestion.Cap = cap
		a.logger.Debug("budget clamped to network cap",
			zap.String("op", "advisor.SuggestDailyBudget"),
			zap.String("entity", in.Entity),
			zap.Float64("cap", cap),
		)
	}

	return suggestion
}

// budgetMultiplier applies the first matching rule, top down.
func budgetMultiplier(in BudgetInput) float64 {
	switch {
	case in.ROI > 100 && in.Trend.Improving():
		return 1.5
	case in.ROI > 50 && in.Trend == trend.Stable:
		return 1.25
	case in.ROI < 0 || in.Trend.Declining():
		return 0.5
	case in.Consistency == trend.Inconsistent:
		return 0.75
	default:
		return 1.0
	}
}

// MaxSustainableSpend returns the most a buyer can spend per day without the
// combined spend of all buyers exceeding a 14-day coverage of total available
// funds, holding every other buyer's current spend fixed. Marginal, not
// simultaneous: each buyer's ceiling is computed against the others as-is.
func (a *Advisor) MaxSustainableSpend(buyer string, currentSpend map[string]float64, totalAvailableFunds float64) float64 {
	otherSpend := 0.0
	for name, spend := range currentSpend {
		if normalize.Key(name) != normalize.Key(buyer) {
			otherSpend += spend
		}
	}
	ceiling := totalAvailableFunds/constants.CoverageDays - otherSpend
	return mathutil.RoundToNearest(math.Max(0, ceiling), constants.BudgetRounding)
}
