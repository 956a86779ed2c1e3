// Package validation provides input validation helpers for the CLI surface.
package validation

import (
	"fmt"

	"github.com/buyerboard/finance-engine/pkg/constants"
)

// ValidateOutputFormat checks that the requested output format is supported.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV:
		return nil
	default:
		return fmt.Errorf("unknown output format %q; expected %s or %s",
			format, constants.OutputFormatPretty, constants.OutputFormatCSV)
	}
}
