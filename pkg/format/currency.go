// Package format renders raw engine numbers as dispatcher-ready strings.
// The engine itself returns raw values only; these helpers exist for the
// notification dispatcher, which does no further computation.
package format

import (
	"fmt"
	"math"
	"strings"
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 {
		return "-$" + formatted
	}
	return "$" + formatted
}

// Percent returns a percentage string with one decimal (e.g., "42.5%").
func Percent(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}

// PercentOrPlaceholder renders a possibly-undefined percentage; nil renders
// as the placeholder rather than 0%.
func PercentOrPlaceholder(value *float64) string {
	if value == nil {
		return "N/A"
	}
	return Percent(*value)
}

func formatPositiveCurrency(value float64) string {
	formatted := fmt.Sprintf("%.2f", value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}
