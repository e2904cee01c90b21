package rollup

import (
	"sort"

	"github.com/shopspring/decimal"
)

// PortfolioRollup is the derived performance of one marketer.
type PortfolioRollup struct {
	PortfolioID             string          `json:"portfolioId"`
	Name                    string          `json:"name"`
	TotalRaised             decimal.Decimal `json:"totalRaised"`
	InvestorCount           int             `json:"investorCount"`
	ActiveDeals             int             `json:"activeDeals"`
	MonthlyCommission       decimal.Decimal `json:"monthlyCommission"`
	EffectiveCommissionRate decimal.Decimal `json:"effectiveCommissionRate"`
}

// DealRow is one investment attributed to a sub-marketor.
type DealRow struct {
	InvestmentID      string          `json:"investmentId"`
	InvestorID        string          `json:"investorId"`
	InvestorName      string          `json:"investorName"`
	Amount            decimal.Decimal `json:"amount"`
	StartDate         string          `json:"startDate"`
	EndDate           string          `json:"endDate"`
	CommissionPercent decimal.Decimal `json:"commissionPercent"`
	MonthlyCommission decimal.Decimal `json:"monthlyCommission"`
}

// SubMarketorRollup mirrors PortfolioRollup for a sub-marketor and carries the
// deals behind the figures for drill-down.
type SubMarketorRollup struct {
	SubMarketorID           string          `json:"subMarketorId"`
	Name                    string          `json:"name"`
	PortfolioID             string          `json:"portfolioId"`
	PortfolioName           string          `json:"portfolioName"`
	TotalRaised             decimal.Decimal `json:"totalRaised"`
	InvestorCount           int             `json:"investorCount"`
	ActiveDeals             int             `json:"activeDeals"`
	MonthlyCommission       decimal.Decimal `json:"monthlyCommission"`
	EffectiveCommissionRate decimal.Decimal `json:"effectiveCommissionRate"`
	Deals                   []DealRow       `json:"deals"`
}

// accumulator folds deals into the shared rollup figures.
type accumulator struct {
	total     decimal.Decimal
	annual    decimal.Decimal
	deals     int
	investors map[string]struct{}
}

func newAccumulator() *accumulator {
	return &accumulator{investors: make(map[string]struct{})}
}

func (a *accumulator) add(investorKey string, amount decimal.Decimal, commissionPct string) decimal.Decimal {
	share := annualShare(amount, commissionPct)
	a.total = a.total.Add(amount)
	a.annual = a.annual.Add(share)
	a.deals++
	a.investors[investorKey] = struct{}{}
	return share
}

func (a *accumulator) monthly() decimal.Decimal {
	return a.annual.Div(twelve)
}

// effectiveRate is annual commission over total raised, in percent; zero when
// nothing was raised.
func (a *accumulator) effectiveRate() decimal.Decimal {
	if a.total.IsZero() {
		return decimal.Zero
	}
	return a.annual.Div(a.total).Mul(hundred)
}

// PortfolioRollups computes one rollup per portfolio, ordered by total raised
// descending. Portfolios with equal totals keep their snapshot order.
func PortfolioRollups(s Snapshot) []PortfolioRollup {
	return portfolioRollups(buildIndex(s))
}

func portfolioRollups(idx *index) []PortfolioRollup {
	out := make([]PortfolioRollup, 0, len(idx.s.Portfolios))
	for _, p := range idx.s.Portfolios {
		acc := newAccumulator()
		for _, ref := range idx.byPortfolio[p.ID] {
			inv := idx.investment(ref)
			acc.add(idx.investorKey(ref), lenient(inv.Amount), inv.MarketorCommission)
		}
		out = append(out, PortfolioRollup{
			PortfolioID:             p.ID,
			Name:                    p.Name,
			TotalRaised:             acc.total,
			InvestorCount:           len(acc.investors),
			ActiveDeals:             acc.deals,
			MonthlyCommission:       acc.monthly(),
			EffectiveCommissionRate: acc.effectiveRate(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalRaised.GreaterThan(out[j].TotalRaised)
	})
	return out
}

// TopPortfolios returns the n best-raising portfolios; n <= 0 returns all.
func TopPortfolios(s Snapshot, n int) []PortfolioRollup {
	all := PortfolioRollups(s)
	if n > 0 && n < len(all) {
		return all[:n]
	}
	return all
}

// SubMarketorRollups computes one rollup per sub-marketor in portfolio order.
// Commission figures use each deal's sub-marketor commission.
func SubMarketorRollups(s Snapshot) []SubMarketorRollup {
	return subMarketorRollups(buildIndex(s))
}

func subMarketorRollups(idx *index) []SubMarketorRollup {
	var out []SubMarketorRollup
	for _, p := range idx.s.Portfolios {
		for _, sm := range p.SubMarketors {
			acc := newAccumulator()
			refs := idx.bySub[sm.ID]
			deals := make([]DealRow, 0, len(refs))
			for _, ref := range refs {
				investor := idx.investor(ref)
				inv := idx.investment(ref)
				amount := lenient(inv.Amount)
				share := acc.add(idx.investorKey(ref), amount, inv.SubMarketorCommission)
				deals = append(deals, DealRow{
					InvestmentID:      inv.ID,
					InvestorID:        investor.ID,
					InvestorName:      investor.FullName(),
					Amount:            amount,
					StartDate:         inv.StartDate,
					EndDate:           inv.EndDate,
					CommissionPercent: lenient(inv.SubMarketorCommission),
					MonthlyCommission: share.Div(twelve),
				})
			}
			out = append(out, SubMarketorRollup{
				SubMarketorID:           sm.ID,
				Name:                    sm.Name,
				PortfolioID:             p.ID,
				PortfolioName:           p.Name,
				TotalRaised:             acc.total,
				InvestorCount:           len(acc.investors),
				ActiveDeals:             acc.deals,
				MonthlyCommission:       acc.monthly(),
				EffectiveCommissionRate: acc.effectiveRate(),
				Deals:                   deals,
			})
		}
	}
	return out
}
