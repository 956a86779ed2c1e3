// Package constants provides shared constants for the finance-engine.
package constants

import "time"

// DayLayout is the canonical internal date format; every date string accepted
// by the engine is normalized to this before any comparison.
const DayLayout = "2006-01-02"

// MonthLayout is the format used for monthly rollup keys.
const MonthLayout = "2006-01"

// USDayLayout is the US-style date format accepted from upstream exports.
const USDayLayout = "1/2/2006"

// Commission and expense constants
const (
	// DefaultCommissionRate applies to any media buyer absent from the
	// commission table.
	DefaultCommissionRate = 0.10

	// RingbaRate is the legacy surcharge applied to ACA revenue for dates
	// before RingbaCutover.
	RingbaRate = 0.02

	// MonthlyFixedExpenses is the full-month fixed overhead allocation.
	MonthlyFixedExpenses = 15000.0

	// AssumedWorkingDays divides the monthly overhead for closed months.
	AssumedWorkingDays = 30

	// ACAMarker identifies networks whose revenue carries the legacy
	// surcharge; matched case-insensitively as a substring.
	ACAMarker = "aca"

	// UnknownEntity buckets records with a blank buyer, network, or offer.
	// These stay visible in output because they signal attribution gaps.
	UnknownEntity = "Unknown"
)

// RingbaCutover is the hard cutover date; the surcharge applies strictly
// before it. Not configurable.
var RingbaCutover = time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)

// Advisor constants
const (
	// CoverageDays is the funds-coverage window for sustainable spend.
	CoverageDays = 14

	// BudgetRounding is the granularity suggested budgets snap to.
	BudgetRounding = 100.0

	// TrailingSpendDays is the window for the recurring-spend baseline.
	TrailingSpendDays = 7
)

// Projection constants
const (
	// DefaultProjectionHorizonDays is the length of the cash-flow series.
	DefaultProjectionHorizonDays = 30
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for
	// record batches (1 MB)
	DefaultMaxUploadSizeBytes int64 = 1024 * 1024
)

// Validation constants
const (
	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100
)
