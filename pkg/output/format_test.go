package output

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/buyerboard/finance-engine/internal/engine"
	"github.com/buyerboard/finance-engine/pkg/advisor"
	"github.com/buyerboard/finance-engine/pkg/datetime"
	"github.com/buyerboard/finance-engine/pkg/projection"
	"github.com/buyerboard/finance-engine/pkg/rollup"
	"github.com/buyerboard/finance-engine/pkg/trend"
	"github.com/fatih/color"
)

func testReport() engine.Report {
	util := 45.0
	return engine.Report{
		Monthlies: []rollup.MonthlyAggregate{
			{
				Month:                "2026-09",
				State:                rollup.OpenMonth(2),
				TotalRevenue:         3000,
				TotalAdSpend:         1000,
				FinalProfit:          1800,
				FinalProfitWithDaily: -13200,
			},
		},
		BuyerInsights: []trend.Insight{
			{Entity: "Alice", Profit: 900, Trend: trend.Up, Consistency: trend.ConsistentStable, Status: "Profitable and growing"},
		},
		BreakEven: advisor.BreakEvenReport{Status: "On track to break even", ProgressToBreakEven: 12.0},
		Budgets: []advisor.BudgetSuggestion{
			{Entity: "NetA / O1", Suggested: 400, Capped: true, Cap: 400},
		},
		Projection: []projection.Day{
			{Date: datetime.MustParseDay("2026-09-01"), Balance: 9750},
		},
		Credit: projection.CreditReport{
			Issuers: []projection.IssuerCredit{
				{Issuer: "Amex", Owing: 9000, Limit: 20000, Utilization: &util},
				{Issuer: "Charge", Owing: 500, Limit: 0},
			},
		},
	}
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func TestPrettyFormat(t *testing.T) {
	color.NoColor = true

	out := captureStdout(t, func() { PrettyFormat(testReport()) })

	for _, want := range []string{
		"--- Monthly rollup ---",
		"2026-09 (open)",
		"On track to break even",
		"Alice: Profitable and growing",
		"NetA / O1: $400.00 (clamped to $400.00 cap)",
		"--- Cash-flow projection ---",
		"Amex: owing $9,000.00 of $20,000.00 (utilization 45.0%)",
		"Charge: owing $500.00 of $0.00 (utilization N/A)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("PrettyFormat output missing %q", want)
		}
	}
}

func TestCsvFormat(t *testing.T) {
	out := captureStdout(t, func() { CsvFormat(testReport()) })

	if !strings.Contains(out, `"month","totalRevenue"`) {
		t.Errorf("CsvFormat missing header: %s", out)
	}
	if !strings.Contains(out, `"2026-09","3000.00","1000.00"`) {
		t.Errorf("CsvFormat missing monthly row: %s", out)
	}
}
