package http

import (
	"github.com/shopspring/decimal"

	"ibms/internal/core"
	"ibms/internal/rollup"
	"ibms/internal/services"
	"ibms/internal/table"
)

// investorTotal is the sum of an investor's investment amounts.
func investorTotal(inv core.Investor) decimal.Decimal {
	total := decimal.Zero
	for _, deal := range inv.Investments {
		total = total.Add(core.LenientDecimal(deal.Amount))
	}
	return total
}

var investorTable = table.Table[core.Investor]{
	Columns: []table.Column[core.Investor]{
		{Key: "name", Value: func(i core.Investor) any { return i.FullName() }, Sortable: true},
		{Key: "email", Value: func(i core.Investor) any { return i.Email }, Sortable: true},
		{Key: "mobile", Value: func(i core.Investor) any { return i.Mobile }},
		{Key: "pan", Value: func(i core.Investor) any { return i.PAN }},
		{Key: "city", Value: func(i core.Investor) any { return i.City }, Sortable: true},
		{Key: "state", Value: func(i core.Investor) any { return i.State }, Sortable: true},
		{Key: "kycStatus", Value: func(i core.Investor) any { return string(i.KYCStatus) }, Sortable: true},
		{Key: "investments", Value: func(i core.Investor) any { return len(i.Investments) }, Sortable: true},
		{Key: "totalInvested", Value: func(i core.Investor) any { return investorTotal(i) }, Sortable: true},
	},
	Fields: func(i core.Investor) []any {
		return []any{i.FullName(), i.Email, i.Mobile, i.PAN, i.City, i.State}
	},
}

var portfolioTable = table.Table[services.PortfolioView]{
	Columns: []table.Column[services.PortfolioView]{
		{Key: "name", Value: func(p services.PortfolioView) any { return p.Name }, Sortable: true},
		{Key: "email", Value: func(p services.PortfolioView) any { return p.Email }},
		{Key: "phone", Value: func(p services.PortfolioView) any { return p.Phone }},
		{Key: "city", Value: func(p services.PortfolioView) any { return p.City }, Sortable: true},
		{Key: "defaultCommissionRate", Value: func(p services.PortfolioView) any {
			return core.LenientDecimal(p.DefaultCommissionRate)
		}, Sortable: true},
		{Key: "totalRaised", Value: func(p services.PortfolioView) any { return p.TotalRaised }, Sortable: true},
		{Key: "investorCount", Value: func(p services.PortfolioView) any { return p.InvestorCount }, Sortable: true},
		{Key: "isActive", Value: func(p services.PortfolioView) any { return p.IsActive }, Sortable: true},
	},
}

var subMarketorTable = table.Table[services.SubMarketorView]{
	Columns: []table.Column[services.SubMarketorView]{
		{Key: "name", Value: func(s services.SubMarketorView) any { return s.Name }, Sortable: true},
		{Key: "portfolioName", Value: func(s services.SubMarketorView) any { return s.PortfolioName }, Sortable: true},
		{Key: "phone", Value: func(s services.SubMarketorView) any { return s.Phone }},
		{Key: "city", Value: func(s services.SubMarketorView) any { return s.City }, Sortable: true},
		{Key: "commissionRate", Value: func(s services.SubMarketorView) any {
			return core.LenientDecimal(s.CommissionRate)
		}, Sortable: true},
		{Key: "isActive", Value: func(s services.SubMarketorView) any { return s.IsActive }, Sortable: true},
	},
}

var investmentReportTable = table.Table[rollup.InvestmentRow]{
	Columns: []table.Column[rollup.InvestmentRow]{
		{Key: "investorName", Value: func(r rollup.InvestmentRow) any { return r.InvestorName }, Sortable: true},
		{Key: "amount", Value: func(r rollup.InvestmentRow) any { return r.Amount }, Sortable: true},
		{Key: "interestRate", Value: func(r rollup.InvestmentRow) any { return r.InterestRate }, Sortable: true},
		{Key: "monthlyPayout", Value: func(r rollup.InvestmentRow) any { return r.MonthlyPayout }, Sortable: true},
		{Key: "startDate", Value: func(r rollup.InvestmentRow) any { return r.StartDate }, Sortable: true},
		{Key: "endDate", Value: func(r rollup.InvestmentRow) any { return r.EndDate }, Sortable: true},
		{Key: "marketerLabel", Value: func(r rollup.InvestmentRow) any { return r.MarketerLabel }, Sortable: true},
	},
}

var marketerReportTable = table.Table[rollup.PortfolioRollup]{
	Columns: []table.Column[rollup.PortfolioRollup]{
		{Key: "name", Value: func(r rollup.PortfolioRollup) any { return r.Name }, Sortable: true},
		{Key: "totalRaised", Value: func(r rollup.PortfolioRollup) any { return r.TotalRaised }, Sortable: true},
		{Key: "investorCount", Value: func(r rollup.PortfolioRollup) any { return r.InvestorCount }, Sortable: true},
		{Key: "activeDeals", Value: func(r rollup.PortfolioRollup) any { return r.ActiveDeals }, Sortable: true},
		{Key: "monthlyCommission", Value: func(r rollup.PortfolioRollup) any { return r.MonthlyCommission }, Sortable: true},
		{Key: "effectiveCommissionRate", Value: func(r rollup.PortfolioRollup) any { return r.EffectiveCommissionRate }, Sortable: true},
	},
}

var subMarketorReportTable = table.Table[rollup.SubMarketorRollup]{
	Columns: []table.Column[rollup.SubMarketorRollup]{
		{Key: "name", Value: func(r rollup.SubMarketorRollup) any { return r.Name }, Sortable: true},
		{Key: "portfolioName", Value: func(r rollup.SubMarketorRollup) any { return r.PortfolioName }, Sortable: true},
		{Key: "totalRaised", Value: func(r rollup.SubMarketorRollup) any { return r.TotalRaised }, Sortable: true},
		{Key: "investorCount", Value: func(r rollup.SubMarketorRollup) any { return r.InvestorCount }, Sortable: true},
		{Key: "activeDeals", Value: func(r rollup.SubMarketorRollup) any { return r.ActiveDeals }, Sortable: true},
		{Key: "monthlyCommission", Value: func(r rollup.SubMarketorRollup) any { return r.MonthlyCommission }, Sortable: true},
	},
}
