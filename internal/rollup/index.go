package rollup

import (
	"strconv"

	"ibms/internal/core"
)

// dealRef points at one investment inside the snapshot.
type dealRef struct {
	investor   int
	investment int
}

// index groups investments by portfolio and sub-marketor in a single pass so
// that per-entity rollups never rescan the whole book.
type index struct {
	s           Snapshot
	byPortfolio map[string][]dealRef
	bySub       map[string][]dealRef
	portfolios  map[string]int
}

func buildIndex(s Snapshot) *index {
	idx := &index{
		s:           s,
		byPortfolio: make(map[string][]dealRef),
		bySub:       make(map[string][]dealRef),
		portfolios:  make(map[string]int, len(s.Portfolios)),
	}
	for pi, p := range s.Portfolios {
		if _, dup := idx.portfolios[p.ID]; !dup {
			idx.portfolios[p.ID] = pi
		}
	}
	for ii, investor := range s.Investors {
		for ji, inv := range investor.Investments {
			ref := dealRef{investor: ii, investment: ji}
			if inv.PortfolioID != "" {
				idx.byPortfolio[inv.PortfolioID] = append(idx.byPortfolio[inv.PortfolioID], ref)
			}
			if inv.SubMarketorID != "" {
				idx.bySub[inv.SubMarketorID] = append(idx.bySub[inv.SubMarketorID], ref)
			}
		}
	}
	return idx
}

func (idx *index) investor(ref dealRef) *core.Investor {
	return &idx.s.Investors[ref.investor]
}

func (idx *index) investment(ref dealRef) *core.Investment {
	return &idx.s.Investors[ref.investor].Investments[ref.investment]
}

// portfolio resolves a portfolio id, or nil when it is unknown.
func (idx *index) portfolio(id string) *core.Portfolio {
	pi, ok := idx.portfolios[id]
	if !ok {
		return nil
	}
	return &idx.s.Portfolios[pi]
}

// investorKey identifies an investor for distinct counting; records without an
// id fall back to their position in the snapshot.
func (idx *index) investorKey(ref dealRef) string {
	if id := idx.investor(ref).ID; id != "" {
		return id
	}
	return "#" + strconv.Itoa(ref.investor)
}
