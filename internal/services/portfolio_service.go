package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ibms/internal/amqp"
	"ibms/internal/core"
	"ibms/internal/ports"
	"ibms/internal/rollup"
)

// PortfolioView is a portfolio with the totals derived from current investments.
type PortfolioView struct {
	core.Portfolio
	TotalRaised   decimal.Decimal `json:"totalRaised"`
	InvestorCount int             `json:"investorCount"`
}

// SubMarketorView is a sub-marketor listed together with its parent's name.
type SubMarketorView struct {
	core.SubMarketor
	PortfolioName string `json:"portfolioName"`
}

type PortfolioStore interface {
	ports.PortfolioStore
	ports.InvestorStore
}

// PortfolioService manages portfolios and the sub-marketors nested in them.
type PortfolioService struct {
	store  PortfolioStore
	notify notifier
	locks  keyedMutex
	newID  func() string
}

func NewPortfolioService(store PortfolioStore, publisher Publisher, gen *Generation) *PortfolioService {
	if gen == nil {
		gen = &Generation{}
	}
	return &PortfolioService{
		store:  store,
		notify: notifier{publisher: publisher, gen: gen},
		newID:  uuid.NewString,
	}
}

// List returns every portfolio with totalRaised and investorCount computed
// from the investment book at read time.
func (s *PortfolioService) List(ctx context.Context) ([]PortfolioView, error) {
	portfolios, err := s.store.ListPortfolios(ctx)
	if err != nil {
		return nil, err
	}
	investors, err := s.store.ListInvestors(ctx)
	if err != nil {
		return nil, err
	}
	return withTotals(rollup.Snapshot{Investors: investors, Portfolios: portfolios}), nil
}

func (s *PortfolioService) Get(ctx context.Context, id string) (PortfolioView, error) {
	p, err := s.store.GetPortfolio(ctx, id)
	if err != nil {
		return PortfolioView{}, err
	}
	investors, err := s.store.ListInvestors(ctx)
	if err != nil {
		return PortfolioView{}, err
	}
	return withTotals(rollup.Snapshot{Investors: investors, Portfolios: []core.Portfolio{p}})[0], nil
}

func withTotals(s rollup.Snapshot) []PortfolioView {
	byID := make(map[string]rollup.PortfolioRollup)
	for _, r := range rollup.PortfolioRollups(s) {
		byID[r.PortfolioID] = r
	}
	out := make([]PortfolioView, len(s.Portfolios))
	for i, p := range s.Portfolios {
		r := byID[p.ID]
		out[i] = PortfolioView{Portfolio: p, TotalRaised: r.TotalRaised, InvestorCount: r.InvestorCount}
	}
	return out
}

func (s *PortfolioService) Create(ctx context.Context, p core.Portfolio) (core.Portfolio, error) {
	p.ID = s.newID()
	fillAccountIDs(p.BankAccounts, s.newID)
	for i := range p.SubMarketors {
		if p.SubMarketors[i].ID == "" {
			p.SubMarketors[i].ID = s.newID()
		}
		p.SubMarketors[i].PortfolioID = p.ID
		fillAccountIDs(p.SubMarketors[i].BankAccounts, s.newID)
	}

	if err := p.Validate(); err != nil {
		return core.Portfolio{}, err
	}
	for _, sm := range p.SubMarketors {
		if err := sm.Validate(); err != nil {
			return core.Portfolio{}, err
		}
	}
	if err := s.store.CreatePortfolio(ctx, p); err != nil {
		return core.Portfolio{}, fmt.Errorf("create portfolio: %w", err)
	}
	s.notify.changed(ctx, amqp.EntityPortfolio, amqp.ActionCreated, p.ID)
	return s.store.GetPortfolio(ctx, p.ID)
}

// Update replaces the portfolio's own fields and bank accounts. Sub-marketors
// are managed through their own operations and are kept as stored.
func (s *PortfolioService) Update(ctx context.Context, id string, p core.Portfolio) (core.Portfolio, error) {
	defer s.locks.lock(id)()

	existing, err := s.store.GetPortfolio(ctx, id)
	if err != nil {
		return core.Portfolio{}, err
	}
	p.ID = id
	p.SubMarketors = existing.SubMarketors
	p.CreatedAt = existing.CreatedAt
	fillAccountIDs(p.BankAccounts, s.newID)

	if err := p.Validate(); err != nil {
		return core.Portfolio{}, err
	}
	if err := s.store.UpdatePortfolio(ctx, p); err != nil {
		return core.Portfolio{}, fmt.Errorf("update portfolio: %w", err)
	}
	s.notify.changed(ctx, amqp.EntityPortfolio, amqp.ActionUpdated, id)
	return s.store.GetPortfolio(ctx, id)
}

// Delete removes the portfolio with its sub-marketors. Investments keep their
// reference and fall out of every rollup.
func (s *PortfolioService) Delete(ctx context.Context, id string) error {
	defer s.locks.lock(id)()

	if err := s.store.DeletePortfolio(ctx, id); err != nil {
		return fmt.Errorf("delete portfolio: %w", err)
	}
	s.notify.changed(ctx, amqp.EntityPortfolio, amqp.ActionDeleted, id)
	return nil
}

func (s *PortfolioService) AddSubMarketor(ctx context.Context, portfolioID string, sm core.SubMarketor) (core.SubMarketor, error) {
	defer s.locks.lock(portfolioID)()

	p, err := s.store.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return core.SubMarketor{}, err
	}
	sm.ID = s.newID()
	sm.PortfolioID = portfolioID
	fillAccountIDs(sm.BankAccounts, s.newID)
	if err := sm.Validate(); err != nil {
		return core.SubMarketor{}, err
	}

	p.SubMarketors = append(p.SubMarketors, sm)
	if err := s.store.UpdatePortfolio(ctx, p); err != nil {
		return core.SubMarketor{}, fmt.Errorf("add sub-marketor: %w", err)
	}
	s.notify.changed(ctx, amqp.EntitySubMarketor, amqp.ActionCreated, sm.ID)
	return sm, nil
}

func (s *PortfolioService) UpdateSubMarketor(ctx context.Context, portfolioID, subID string, sm core.SubMarketor) (core.SubMarketor, error) {
	defer s.locks.lock(portfolioID)()

	p, err := s.store.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return core.SubMarketor{}, err
	}
	idx := subIndex(p, subID)
	if idx < 0 {
		return core.SubMarketor{}, fmt.Errorf("sub-marketor %s: %w", subID, core.ErrNotFound)
	}
	sm.ID = subID
	sm.PortfolioID = portfolioID
	fillAccountIDs(sm.BankAccounts, s.newID)
	if err := sm.Validate(); err != nil {
		return core.SubMarketor{}, err
	}

	p.SubMarketors[idx] = sm
	if err := s.store.UpdatePortfolio(ctx, p); err != nil {
		return core.SubMarketor{}, fmt.Errorf("update sub-marketor: %w", err)
	}
	s.notify.changed(ctx, amqp.EntitySubMarketor, amqp.ActionUpdated, subID)
	return sm, nil
}

func (s *PortfolioService) DeleteSubMarketor(ctx context.Context, portfolioID, subID string) error {
	defer s.locks.lock(portfolioID)()

	p, err := s.store.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return err
	}
	idx := subIndex(p, subID)
	if idx < 0 {
		return fmt.Errorf("sub-marketor %s: %w", subID, core.ErrNotFound)
	}
	p.SubMarketors = append(p.SubMarketors[:idx], p.SubMarketors[idx+1:]...)
	if err := s.store.UpdatePortfolio(ctx, p); err != nil {
		return fmt.Errorf("delete sub-marketor: %w", err)
	}
	s.notify.changed(ctx, amqp.EntitySubMarketor, amqp.ActionDeleted, subID)
	return nil
}

// ListSubMarketors flattens sub-marketors across portfolios, optionally
// restricted to one portfolio.
func (s *PortfolioService) ListSubMarketors(ctx context.Context, portfolioID string) ([]SubMarketorView, error) {
	portfolios, err := s.store.ListPortfolios(ctx)
	if err != nil {
		return nil, err
	}
	var out []SubMarketorView
	for _, p := range portfolios {
		if portfolioID != "" && p.ID != portfolioID {
			continue
		}
		for _, sm := range p.SubMarketors {
			sm.PortfolioID = p.ID
			out = append(out, SubMarketorView{SubMarketor: sm, PortfolioName: p.Name})
		}
	}
	return out, nil
}

func subIndex(p core.Portfolio, id string) int {
	for i, sm := range p.SubMarketors {
		if sm.ID == id {
			return i
		}
	}
	return -1
}
