// Package export renders the full report as an xlsx workbook or into a
// Google spreadsheet.
package export

import (
	"time"

	"github.com/shopspring/decimal"

	"ibms/internal/services"
)

const (
	TabSummary      = "Summary"
	TabInvestments  = "Investments"
	TabMarketers    = "Marketers"
	TabSubMarketors = "SubMarketors"
)

// Table is one tab of an export. Cells hold string, int, time.Time or
// decimal.Decimal values; each writer converts them to its own cell type.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Values returns the header followed by the rows.
func (t Table) Values() [][]any {
	out := make([][]any, 0, len(t.Rows)+1)
	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	out = append(out, header)
	return append(out, t.Rows...)
}

// money rounds to paise; the engine keeps full precision.
func money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Tables lays out every report tab in workbook order.
func Tables(rep services.Report) []Table {
	return []Table{
		SummaryTable(rep),
		InvestmentsTable(rep),
		MarketersTable(rep),
		SubMarketorsTable(rep),
	}
}

func SummaryTable(rep services.Report) Table {
	o := rep.Overall
	return Table{
		Name:   TabSummary,
		Header: []string{"Metric", "Value"},
		Rows: [][]any{
			{"Generated At", rep.GeneratedAt.UTC().Format(time.RFC3339)},
			{"Total Capital", money(o.TotalCapital)},
			{"Total Investors", o.TotalInvestors},
			{"Active Deals", o.TotalActiveDeals},
			{"Average Ticket", money(o.AverageTicket)},
			{"Monthly Investor Payout", money(o.Liability.Investor)},
			{"Monthly Marketer Commission", money(o.Liability.Marketer)},
			{"Monthly Sub-Marketer Commission", money(o.Liability.SubMarketer)},
			{"Total Monthly Liability", money(o.Liability.TotalMonthly)},
			{"Projected Annual Liability", money(o.Liability.ProjectedAnnual)},
		},
	}
}

func InvestmentsTable(rep services.Report) Table {
	t := Table{
		Name:   TabInvestments,
		Header: []string{"Investment ID", "Investor", "Amount", "Interest Rate %", "Monthly Payout", "Start Date", "End Date", "Marketer"},
	}
	for _, r := range rep.Investments {
		t.Rows = append(t.Rows, []any{
			r.InvestmentID,
			r.InvestorName,
			money(r.Amount),
			r.InterestRate,
			money(r.MonthlyPayout),
			r.StartDate,
			r.EndDate,
			r.MarketerLabel,
		})
	}
	return t
}

func MarketersTable(rep services.Report) Table {
	t := Table{
		Name:   TabMarketers,
		Header: []string{"Portfolio ID", "Marketer", "Total Raised", "Investors", "Active Deals", "Monthly Commission", "Effective Rate %"},
	}
	for _, r := range rep.Marketers {
		t.Rows = append(t.Rows, []any{
			r.PortfolioID,
			r.Name,
			money(r.TotalRaised),
			r.InvestorCount,
			r.ActiveDeals,
			money(r.MonthlyCommission),
			money(r.EffectiveCommissionRate),
		})
	}
	return t
}

func SubMarketorsTable(rep services.Report) Table {
	t := Table{
		Name:   TabSubMarketors,
		Header: []string{"Sub-Marketor ID", "Sub-Marketor", "Portfolio", "Total Raised", "Investors", "Active Deals", "Monthly Commission", "Effective Rate %"},
	}
	for _, r := range rep.SubMarketors {
		t.Rows = append(t.Rows, []any{
			r.SubMarketorID,
			r.Name,
			r.PortfolioName,
			money(r.TotalRaised),
			r.InvestorCount,
			r.ActiveDeals,
			money(r.MonthlyCommission),
			money(r.EffectiveCommissionRate),
		})
	}
	return t
}
