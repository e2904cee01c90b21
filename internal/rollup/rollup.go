// Package rollup computes dashboard and report aggregates over an in-memory
// snapshot of investors and portfolios.
//
// Every function here is pure: it reads the snapshot, never mutates it, and
// never fails. Amounts and percentages that do not parse count as zero and
// references to unknown portfolios or sub-marketors drop the record from
// that grouping only.
package rollup

import (
	"time"

	"github.com/shopspring/decimal"

	"ibms/internal/core"
)

// TrailingWindowDays is the default look-back of the "recently raised" figure.
const TrailingWindowDays = 30

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// Snapshot is the read-only input of every rollup.
type Snapshot struct {
	Investors  []core.Investor
	Portfolios []core.Portfolio
}

// Payout is the projected monthly cash outflow of a single investment.
type Payout struct {
	Interest              decimal.Decimal `json:"interest"`
	MarketerCommission    decimal.Decimal `json:"marketerCommission"`
	SubMarketerCommission decimal.Decimal `json:"subMarketerCommission"`
}

// Total is the sum of the three payout components.
func (p Payout) Total() decimal.Decimal {
	return p.Interest.Add(p.MarketerCommission).Add(p.SubMarketerCommission)
}

// Liability aggregates monthly payouts across the whole book.
type Liability struct {
	Investor        decimal.Decimal `json:"investor"`
	Marketer        decimal.Decimal `json:"marketer"`
	SubMarketer     decimal.Decimal `json:"subMarketer"`
	TotalMonthly    decimal.Decimal `json:"totalMonthly"`
	ProjectedAnnual decimal.Decimal `json:"projectedAnnual"`
}

// annualShare is amount * pct / 100, the yearly value of a percentage rate.
func annualShare(amount decimal.Decimal, pct string) decimal.Decimal {
	return amount.Mul(core.LenientDecimal(pct)).Div(hundred)
}

// MonthlyPayout treats every stored rate as an annual percentage paid out in
// twelve equal instalments, regardless of the remaining tenure.
func MonthlyPayout(inv core.Investment) Payout {
	amount := core.LenientDecimal(inv.Amount)
	return Payout{
		Interest:              annualShare(amount, inv.InterestRate).Div(twelve),
		MarketerCommission:    annualShare(amount, inv.MarketorCommission).Div(twelve),
		SubMarketerCommission: annualShare(amount, inv.SubMarketorCommission).Div(twelve),
	}
}

// TotalFunds sums the amount of every investment of every investor.
func TotalFunds(s Snapshot) decimal.Decimal {
	total := decimal.Zero
	for _, investor := range s.Investors {
		for _, inv := range investor.Investments {
			total = total.Add(core.LenientDecimal(inv.Amount))
		}
	}
	return total
}

// FundsRaisedSince sums investments whose start date is on or after the
// calendar day that lies days before now. The comparison is made on calendar
// days in now's location; investments with unparseable dates are skipped.
func FundsRaisedSince(s Snapshot, now time.Time, days int) decimal.Decimal {
	cutoff := core.DayOf(now).AddDays(-days)
	total := decimal.Zero
	for _, investor := range s.Investors {
		for _, inv := range investor.Investments {
			start, err := core.ParseDate(inv.StartDate)
			if err != nil {
				continue
			}
			if !start.Before(cutoff.Time) {
				total = total.Add(core.LenientDecimal(inv.Amount))
			}
		}
	}
	return total
}

// FundsRaisedTrailing is FundsRaisedSince over the default 30 day window.
func FundsRaisedTrailing(s Snapshot, now time.Time) decimal.Decimal {
	return FundsRaisedSince(s, now, TrailingWindowDays)
}

// Liabilities sums monthly payouts across all investments. Each component is
// accumulated as an annual figure and divided once, so that the monthly total
// stays the exact sum of its parts and the annual projection is exactly
// twelve times the monthly total.
func Liabilities(s Snapshot) Liability {
	var interest, marketer, sub decimal.Decimal
	for _, investor := range s.Investors {
		for _, inv := range investor.Investments {
			amount := core.LenientDecimal(inv.Amount)
			interest = interest.Add(annualShare(amount, inv.InterestRate))
			marketer = marketer.Add(annualShare(amount, inv.MarketorCommission))
			sub = sub.Add(annualShare(amount, inv.SubMarketorCommission))
		}
	}
	l := Liability{
		Investor:    interest.Div(twelve),
		Marketer:    marketer.Div(twelve),
		SubMarketer: sub.Div(twelve),
	}
	l.TotalMonthly = l.Investor.Add(l.Marketer).Add(l.SubMarketer)
	l.ProjectedAnnual = l.TotalMonthly.Mul(twelve)
	return l
}
