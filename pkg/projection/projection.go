// Package projection builds a fixed-horizon daily cash-flow series with a
// running balance from a financial-resource snapshot, plus the companion
// credit-line utilization view.
package projection

import (
	"sort"
	"time"

	"github.com/buyerboard/finance-engine/pkg/constants"
	"github.com/buyerboard/finance-engine/pkg/datetime"
	"github.com/buyerboard/finance-engine/pkg/normalize"
	"go.uber.org/zap"
)

// CashAccount is one cash position in the snapshot.
type CashAccount struct {
	Name      string  `mapstructure:"name" json:"name" yaml:"name"`
	Available float64 `mapstructure:"available" json:"available" yaml:"available"`
}

// CreditCard is one credit line in the snapshot. DueDate, when present,
// schedules the owing amount as a projection outflow.
type CreditCard struct {
	Name      string  `mapstructure:"name" json:"name" yaml:"name"`
	Issuer    string  `mapstructure:"issuer" json:"issuer" yaml:"issuer"`
	Available float64 `mapstructure:"available" json:"available" yaml:"available"`
	Owing     float64 `mapstructure:"owing" json:"owing" yaml:"owing"`
	Limit     float64 `mapstructure:"limit" json:"limit" yaml:"limit"`
	DueDate   string  `mapstructure:"dueDate" json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
}

// Invoice is one receivable owed by a network.
type Invoice struct {
	Network string  `mapstructure:"network" json:"network" yaml:"network"`
	Amount  float64 `mapstructure:"amount" json:"amount" yaml:"amount"`
	DueDate string  `mapstructure:"dueDate" json:"dueDate" yaml:"dueDate"`
}

// PayrollItem is one scheduled payroll outflow.
type PayrollItem struct {
	Description string  `mapstructure:"description" json:"description" yaml:"description"`
	Amount      float64 `mapstructure:"amount" json:"amount" yaml:"amount"`
	DueDate     string  `mapstructure:"dueDate" json:"dueDate" yaml:"dueDate"`
}

// Snapshot is the point-in-time financial-resource state supplied whole by
// the caller. The engine reads it and never retains or mutates it.
type Snapshot struct {
	CashAccounts []CashAccount `mapstructure:"cashAccounts" json:"cashAccounts" yaml:"cashAccounts"`
	CreditCards  []CreditCard  `mapstructure:"creditCards" json:"creditCards" yaml:"creditCards"`
	Invoices     []Invoice     `mapstructure:"invoices" json:"invoices" yaml:"invoices"`
	Payroll      []PayrollItem `mapstructure:"payroll" json:"payroll" yaml:"payroll"`
}

// TotalCash sums the available balances across cash accounts.
func (s Snapshot) TotalCash() float64 {
	total := 0.0
	for _, account := range s.CashAccounts {
		total += account.Available
	}
	return total
}

// FlowType tags a projection flow with its origin.
type FlowType string

const (
	FlowReceivable FlowType = "receivable"
	FlowCardPay    FlowType = "credit_card_payment"
	FlowPayroll    FlowType = "payroll"
	FlowMediaSpend FlowType = "media_spend"
)

// Flow is one typed inflow or outflow within a projection day.
type Flow struct {
	Type        FlowType `json:"type"`
	Description string   `json:"description"`
	Amount      float64  `json:"amount"`
}

// Day is one day of the projection series. Balance carries the running total
// after this day's flows. A day with no scheduled items still appears: it
// carries the recurring media-spend outflow and an updated balance.
type Day struct {
	Date     time.Time `json:"date"`
	Inflows  []Flow    `json:"inflows"`
	Outflows []Flow    `json:"outflows"`
	Balance  float64   `json:"balance"`
}

// Input configures one projection run.
type Input struct {
	StartingBalance float64
	Today           time.Time
	HorizonDays     int // 0 means the default horizon
	DailyMediaSpend float64
	Snapshot        Snapshot
}

// Projector builds cash-flow projections.
type Projector struct {
	logger *zap.Logger
}

// NewProjector creates a projector with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewProjector(logger *zap.Logger) *Projector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projector{logger: logger}
}

// scheduledFlow pairs a flow with its normalized due day.
type scheduledFlow struct {
	day  time.Time
	flow Flow
}

// Project emits one Day per horizon day starting at today, matching every
// scheduled item whose normalized due date falls exactly on that calendar
// day. Due dates arrive in mixed dialects; each is parsed to the canonical
// day before comparison so format drift never silently drops an item. Items
// whose due date cannot be parsed at all are dropped with a warning.
func (p *Projector) Project(in Input) []Day {
	horizon := in.HorizonDays
	if horizon <= 0 {
		horizon = constants.DefaultProjectionHorizonDays
	}
	today := datetime.Day(in.Today)

	inflows := p.schedule(flowsFromInvoices(in.Snapshot.Invoices))
	outflows := p.schedule(append(flowsFromCards(in.Snapshot.CreditCards), flowsFromPayroll(in.Snapshot.Payroll)...))

	balance := in.StartingBalance
	series := make([]Day, 0, horizon)
	for i := 0; i < horizon; i++ {
		date := today.AddDate(0, 0, i)
		day := Day{Date: date}

		for _, item := range inflows {
			if item.day.Equal(date) {
				day.Inflows = append(day.Inflows, item.flow)
			}
		}
		for _, item := range outflows {
			if item.day.Equal(date) {
				day.Outflows = append(day.Outflows, item.flow)
			}
		}
		if in.DailyMediaSpend > 0 {
			day.Outflows = append(day.Outflows, Flow{
				Type:        FlowMediaSpend,
				Description: "Projected media spend",
				Amount:      in.DailyMediaSpend,
			})
		}

		inflowSum, outflowSum := 0.0, 0.0
		for _, f := range day.Inflows {
			inflowSum += f.Amount
		}
		for _, f := range day.Outflows {
			outflowSum += f.Amount
		}
		balance += inflowSum - outflowSum
		day.Balance = balance

		series = append(series, day)
	}

	return series
}

// schedule normalizes due dates, dropping unparseable ones with a warning.
func (p *Projector) schedule(items []rawFlow) []scheduledFlow {
	scheduled := make([]scheduledFlow, 0, len(items))
	for _, item := range items {
		day, ok := datetime.ParseDay(item.dueDate)
		if !ok {
			p.logger.Warn("dropping scheduled item with unparseable due date",
				zap.String("op", "projection.Project"),
				zap.String("description", item.flow.Description),
				zap.String("dueDate", item.dueDate),
			)
			continue
		}
		scheduled = append(scheduled, scheduledFlow{day: day, flow: item.flow})
	}
	return scheduled
}

type rawFlow struct {
	dueDate string
	flow    Flow
}

func flowsFromInvoices(invoices []Invoice) []rawFlow {
	flows := make([]rawFlow, 0, len(invoices))
	for _, inv := range invoices {
		flows = append(flows, rawFlow{
			dueDate: inv.DueDate,
			flow: Flow{
				Type:        FlowReceivable,
				Description: normalize.Entity(inv.Network, constants.UnknownEntity) + " invoice",
				Amount:      inv.Amount,
			},
		})
	}
	return flows
}

func flowsFromCards(cards []CreditCard) []rawFlow {
	flows := make([]rawFlow, 0, len(cards))
	for _, card := range cards {
		if card.DueDate == "" || card.Owing == 0 {
			continue
		}
		flows = append(flows, rawFlow{
			dueDate: card.DueDate,
			flow: Flow{
				Type:        FlowCardPay,
				Description: card.Name + " payment",
				Amount:      card.Owing,
			},
		})
	}
	return flows
}

func flowsFromPayroll(payroll []PayrollItem) []rawFlow {
	flows := make([]rawFlow, 0, len(payroll))
	for _, item := range payroll {
		flows = append(flows, rawFlow{
			dueDate: item.DueDate,
			flow: Flow{
				Type:        FlowPayroll,
				Description: item.Description,
				Amount:      item.Amount,
			},
		})
	}
	return flows
}

// ExposureByNetwork totals outstanding receivables per network, sorted by
// network name.
type NetworkExposure struct {
	Network string  `json:"network"`
	Amount  float64 `json:"amount"`
}

// ExposureByNetwork sums invoice amounts per network.
func ExposureByNetwork(invoices []Invoice) []NetworkExposure {
	totals := make(map[string]float64)
	for _, inv := range invoices {
		totals[normalize.Entity(inv.Network, constants.UnknownEntity)] += inv.Amount
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	exposures := make([]NetworkExposure, 0, len(names))
	for _, name := range names {
		exposures = append(exposures, NetworkExposure{Network: name, Amount: totals[name]})
	}
	return exposures
}
