// Package normalize parses heterogeneous upstream record representations into
// the engine's canonical shapes. Upstream exports mix date dialects and
// currency strings with symbol noise; normalization degrades malformed fields
// to zero values so a single bad record never aborts a batch.
package normalize

import (
	"math"
	"strings"
	"time"

	"github.com/buyerboard/finance-engine/pkg/datetime"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// RawRecord is one entity-day observation as delivered by the data source
// adapter, before any parsing. Numeric fields may arrive as strings with
// currency symbols, as numbers, or missing entirely.
type RawRecord struct {
	Date           interface{} `json:"date"`
	MediaBuyer     string      `json:"mediaBuyer"`
	Network        string      `json:"network"`
	Offer          string      `json:"offer"`
	AdSpend        interface{} `json:"adSpend"`
	TotalRevenue   interface{} `json:"totalRevenue"`
	CommentRevenue interface{} `json:"commentRevenue"`
}

// PerformanceRecord is the canonical entity-day observation. Date is midnight
// UTC, or the zero time when the raw date was unparseable. Immutable once
// produced; downstream stages read it only.
type PerformanceRecord struct {
	Date           time.Time `json:"date"`
	MediaBuyer     string    `json:"mediaBuyer"`
	Network        string    `json:"network"`
	Offer          string    `json:"offer"`
	AdSpend        float64   `json:"adSpend"`
	TotalRevenue   float64   `json:"totalRevenue"`
	CommentRevenue float64   `json:"commentRevenue"`
}

// Normalizer converts raw records into canonical ones.
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer creates a normalizer with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewNormalizer(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger}
}

// Record normalizes a single raw record. Parse failures degrade: an
// unparseable date yields a zero Date, an unparseable money field yields 0,
// and the record's remaining valid fields still contribute.
func (n *Normalizer) Record(raw RawRecord) PerformanceRecord {
	rec := PerformanceRecord{
		MediaBuyer: strings.TrimSpace(raw.MediaBuyer),
		Network:    strings.TrimSpace(raw.Network),
		Offer:      strings.TrimSpace(raw.Offer),
	}

	rec.Date = n.day(raw.Date)
	rec.AdSpend = n.money(raw.AdSpend, "adSpend")
	rec.TotalRevenue = n.money(raw.TotalRevenue, "totalRevenue")
	rec.CommentRevenue = n.money(raw.CommentRevenue, "commentRevenue")

	return rec
}

// Records normalizes a batch, preserving order and length.
func (n *Normalizer) Records(raws []RawRecord) []PerformanceRecord {
	records := make([]PerformanceRecord, len(raws))
	for i, raw := range raws {
		records[i] = n.Record(raw)
	}
	return records
}

func (n *Normalizer) day(value interface{}) time.Time {
	switch v := value.(type) {
	case nil:
		return time.Time{}
	case time.Time:
		return datetime.Day(v)
	case string:
		day, ok := datetime.ParseDay(v)
		if !ok {
			n.logger.Warn("unparseable record date",
				zap.String("op", "normalize.Record"),
				zap.String("value", v),
			)
		}
		return day
	default:
		n.logger.Warn("unsupported record date type",
			zap.String("op", "normalize.Record"),
			zap.Any("value", value),
		)
		return time.Time{}
	}
}

func (n *Normalizer) money(value interface{}, field string) float64 {
	amount, ok := Money(value)
	if !ok {
		n.logger.Warn("unparseable money field, defaulting to 0",
			zap.String("op", "normalize.Record"),
			zap.String("field", field),
			zap.Any("value", value),
		)
	}
	return amount
}

// Money parses a money value from any upstream representation: numeric types
// pass through, strings are stripped of currency symbols, commas, and spaces
// before conversion. Missing or unparseable values yield (0, false); NaN and
// infinities also collapse to 0 so they never reach downstream sums.
func Money(value interface{}) (float64, bool) {
	if value == nil {
		return 0, true
	}

	if s, isString := value.(string); isString {
		cleaned := strings.TrimSpace(s)
		cleaned = strings.NewReplacer("$", "", ",", "", " ", "").Replace(cleaned)
		if cleaned == "" {
			return 0, true
		}
		// Accounting-style negatives: (123.45)
		if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
			cleaned = "-" + cleaned[1:len(cleaned)-1]
		}
		value = cleaned
	}

	amount, err := cast.ToFloat64E(value)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, false
	}
	return amount, true
}

// Key lowercases and trims an identity string for lookup-table matching.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Entity returns the trimmed entity name, or the provided fallback when the
// name is blank. Blank entities stay visible under the fallback bucket
// because they surface attribution gaps.
func Entity(name, fallback string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}
