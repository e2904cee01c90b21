package rollup

import (
	"time"

	"github.com/shopspring/decimal"

	"ibms/internal/core"
)

// DirectLabel marks investments not sourced through any marketer.
const DirectLabel = "Direct"

// InvestmentRow is one line of the investment payout report.
type InvestmentRow struct {
	InvestmentID  string          `json:"investmentId"`
	InvestorID    string          `json:"investorId"`
	InvestorName  string          `json:"investorName"`
	Amount        decimal.Decimal `json:"amount"`
	InterestRate  decimal.Decimal `json:"interestRate"`
	MonthlyPayout decimal.Decimal `json:"monthlyPayout"`
	StartDate     string          `json:"startDate"`
	EndDate       string          `json:"endDate"`
	MarketerLabel string          `json:"marketerLabel"`
}

// OverallStats is the headline summary of the reports screen.
type OverallStats struct {
	TotalCapital     decimal.Decimal `json:"totalCapital"`
	TotalInvestors   int             `json:"totalInvestors"`
	TotalActiveDeals int             `json:"totalActiveDeals"`
	AverageTicket    decimal.Decimal `json:"averageTicket"`
	Liability        Liability       `json:"liability"`
}

// DashboardStats combines the figures shown on the landing dashboard.
type DashboardStats struct {
	TotalFunds     decimal.Decimal   `json:"totalFunds"`
	RecentFunds    decimal.Decimal   `json:"recentFunds"`
	WindowDays     int               `json:"windowDays"`
	TotalInvestors int               `json:"totalInvestors"`
	Liability      Liability         `json:"liability"`
	TopPortfolios  []PortfolioRollup `json:"topPortfolios"`
}

func lenient(s string) decimal.Decimal {
	return core.LenientDecimal(s)
}

// marketerLabel names who sourced an investment: the portfolio, the
// portfolio and its sub-marketor, or DirectLabel.
func marketerLabel(idx *index, inv *core.Investment) string {
	p := idx.portfolio(inv.PortfolioID)
	if p == nil {
		return DirectLabel
	}
	if inv.SubMarketorID != "" {
		if sm, ok := p.FindSubMarketor(inv.SubMarketorID); ok {
			return p.Name + " / " + sm.Name
		}
	}
	return p.Name
}

// InvestmentReport lists every investment with its monthly interest payout,
// in investor order.
func InvestmentReport(s Snapshot) []InvestmentRow {
	idx := buildIndex(s)
	var rows []InvestmentRow
	for ii := range s.Investors {
		investor := &s.Investors[ii]
		for ji := range investor.Investments {
			inv := &investor.Investments[ji]
			rows = append(rows, InvestmentRow{
				InvestmentID:  inv.ID,
				InvestorID:    investor.ID,
				InvestorName:  investor.FullName(),
				Amount:        lenient(inv.Amount),
				InterestRate:  lenient(inv.InterestRate),
				MonthlyPayout: MonthlyPayout(*inv).Interest,
				StartDate:     inv.StartDate,
				EndDate:       inv.EndDate,
				MarketerLabel: marketerLabel(idx, inv),
			})
		}
	}
	return rows
}

// Overall summarises the whole book.
func Overall(s Snapshot) OverallStats {
	deals := 0
	for _, investor := range s.Investors {
		deals += len(investor.Investments)
	}
	total := TotalFunds(s)
	avg := decimal.Zero
	if deals > 0 {
		avg = total.Div(decimal.NewFromInt(int64(deals)))
	}
	return OverallStats{
		TotalCapital:     total,
		TotalInvestors:   len(s.Investors),
		TotalActiveDeals: deals,
		AverageTicket:    avg,
		Liability:        Liabilities(s),
	}
}

// Dashboard computes the landing page figures with a trailing window of
// windowDays (TrailingWindowDays when windowDays <= 0) and the top
// portfolios, limited to topN.
func Dashboard(s Snapshot, now time.Time, windowDays, topN int) DashboardStats {
	if windowDays <= 0 {
		windowDays = TrailingWindowDays
	}
	top := portfolioRollups(buildIndex(s))
	if topN > 0 && topN < len(top) {
		top = top[:topN]
	}
	return DashboardStats{
		TotalFunds:     TotalFunds(s),
		RecentFunds:    FundsRaisedSince(s, now, windowDays),
		WindowDays:     windowDays,
		TotalInvestors: len(s.Investors),
		Liability:      Liabilities(s),
		TopPortfolios:  top,
	}
}
