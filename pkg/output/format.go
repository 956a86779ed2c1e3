// Package output provides utilities for formatting and displaying engine
// reports.
package output

import (
	"fmt"
	"strings"

	"github.com/buyerboard/finance-engine/internal/engine"
	"github.com/buyerboard/finance-engine/pkg/datetime"
	"github.com/buyerboard/finance-engine/pkg/format"
	"github.com/fatih/color"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	profitColor = color.New(color.FgGreen)
	lossColor   = color.New(color.FgRed)
)

func profitString(amount float64) string {
	s := format.Currency(amount)
	if amount < 0 {
		return lossColor.Sprint(s)
	}
	return profitColor.Sprint(s)
}

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(report engine.Report) {
	p := message.NewPrinter(language.English)

	fmt.Printf("--- Monthly rollup ---\n")
	fmt.Printf("Month   | Revenue       | Spend         | Final Profit  | With Overhead\n")
	fmt.Printf("_____   | _______       | _____         | ____________  | _____________\n")
	for _, m := range report.Monthlies {
		state := ""
		if m.State.Open {
			state = " (open)"
		}
		_, _ = p.Printf("%s%s | %s | %s | %s | %s\n",
			m.Month, state,
			format.Currency(m.TotalRevenue),
			format.Currency(m.TotalAdSpend),
			profitString(m.FinalProfit),
			profitString(m.FinalProfitWithDaily),
		)
	}

	fmt.Printf("\n--- Break even ---\n")
	fmt.Printf("%s (%.1f%% of the way there)\n", report.BreakEven.Status, report.BreakEven.ProgressToBreakEven)
	if report.BreakEven.ProjectedDate != nil {
		fmt.Printf("Projected break-even date: %s\n", report.BreakEven.ProjectedDate.Format(datetime.DayLayout))
	}

	fmt.Printf("\n--- Media buyer insights ---\n")
	for _, in := range report.BuyerInsights {
		fmt.Printf("%s: %s (profit %s, trend %s, consistency %s)\n",
			in.Entity, in.Status, profitString(in.Profit), in.Trend, in.Consistency)
	}

	fmt.Printf("\n--- Suggested daily budgets ---\n")
	for _, b := range report.Budgets {
		capped := ""
		if b.Capped {
			capped = fmt.Sprintf(" (clamped to %s cap)", format.Currency(b.Cap))
		}
		fmt.Printf("%s: %s%s\n", b.Entity, format.Currency(b.Suggested), capped)
	}

	fmt.Printf("\n--- Cash-flow projection ---\n")
	fmt.Printf("Date       | Inflows       | Outflows      | Balance\n")
	fmt.Printf("____       | _______       | ________      | _______\n")
	for _, day := range report.Projection {
		inflows, outflows := 0.0, 0.0
		for _, f := range day.Inflows {
			inflows += f.Amount
		}
		for _, f := range day.Outflows {
			outflows += f.Amount
		}
		_, _ = p.Printf("%s | %s | %s | %s\n",
			day.Date.Format(datetime.DayLayout),
			format.Currency(inflows),
			format.Currency(outflows),
			profitString(day.Balance),
		)
	}

	fmt.Printf("\n--- Credit lines ---\n")
	for _, issuer := range report.Credit.Issuers {
		fmt.Printf("%s: owing %s of %s (utilization %s)\n",
			issuer.Issuer,
			format.Currency(issuer.Owing),
			format.Currency(issuer.Limit),
			format.PercentOrPlaceholder(issuer.Utilization),
		)
	}
}

// CsvFormat outputs the monthly rollup in comma-separated value format.
func CsvFormat(report engine.Report) {
	fmt.Printf(`"month","totalRevenue","totalAdSpend","mediaBuyerCommission","ringbaExpense","baseProfit","finalProfit","dailyExpenses","finalProfitWithDaily"`)
	fmt.Printf("\n")
	for _, m := range report.Monthlies {
		fields := []string{
			m.Month,
			fmt.Sprintf("%.2f", m.TotalRevenue),
			fmt.Sprintf("%.2f", m.TotalAdSpend),
			fmt.Sprintf("%.2f", m.MediaBuyerCommission),
			fmt.Sprintf("%.2f", m.RingbaExpense),
			fmt.Sprintf("%.2f", m.BaseProfit),
			fmt.Sprintf("%.2f", m.FinalProfit),
			fmt.Sprintf("%.2f", m.DailyExpenses),
			fmt.Sprintf("%.2f", m.FinalProfitWithDaily),
		}
		fmt.Printf(`"%s"`, strings.Join(fields, `","`))
		fmt.Printf("\n")
	}
}
