package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"ibms/internal/core"
)

// Store keeps the whole book in memory. Values are copied on the way in and
// out so callers never share slices with the store.
type Store struct {
	mu         sync.RWMutex
	investors  []core.Investor
	portfolios []core.Portfolio
	profile    core.AdminProfile
	admins     []core.Admin
	now        func() time.Time
}

func New() *Store {
	return &Store{now: time.Now}
}

func (s *Store) ListInvestors(_ context.Context) ([]core.Investor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Investor, len(s.investors))
	for i, inv := range s.investors {
		out[i] = cloneInvestor(inv)
	}
	return out, nil
}

func (s *Store) GetInvestor(_ context.Context, id string) (core.Investor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.investorIndex(id)
	if i < 0 {
		return core.Investor{}, fmt.Errorf("investor %s: %w", id, core.ErrNotFound)
	}
	return cloneInvestor(s.investors[i]), nil
}

func (s *Store) CreateInvestor(_ context.Context, inv core.Investor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.investorIndex(inv.ID) >= 0 {
		return fmt.Errorf("investor %s: %w", inv.ID, core.ErrConflict)
	}
	s.investors = append(s.investors, cloneInvestor(inv))
	return nil
}

func (s *Store) UpdateInvestor(_ context.Context, inv core.Investor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.investorIndex(inv.ID)
	if i < 0 {
		return fmt.Errorf("investor %s: %w", inv.ID, core.ErrNotFound)
	}
	s.investors[i] = cloneInvestor(inv)
	return nil
}

func (s *Store) DeleteInvestor(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.investorIndex(id)
	if i < 0 {
		return fmt.Errorf("investor %s: %w", id, core.ErrNotFound)
	}
	s.investors = append(s.investors[:i], s.investors[i+1:]...)
	return nil
}

func (s *Store) ListPortfolios(_ context.Context) ([]core.Portfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Portfolio, len(s.portfolios))
	for i, p := range s.portfolios {
		out[i] = clonePortfolio(p)
	}
	return out, nil
}

func (s *Store) GetPortfolio(_ context.Context, id string) (core.Portfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.portfolioIndex(id)
	if i < 0 {
		return core.Portfolio{}, fmt.Errorf("portfolio %s: %w", id, core.ErrNotFound)
	}
	return clonePortfolio(s.portfolios[i]), nil
}

func (s *Store) CreatePortfolio(_ context.Context, p core.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.portfolioIndex(p.ID) >= 0 {
		return fmt.Errorf("portfolio %s: %w", p.ID, core.ErrConflict)
	}
	now := s.now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.portfolios = append(s.portfolios, clonePortfolio(p))
	return nil
}

func (s *Store) UpdatePortfolio(_ context.Context, p core.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.portfolioIndex(p.ID)
	if i < 0 {
		return fmt.Errorf("portfolio %s: %w", p.ID, core.ErrNotFound)
	}
	p.CreatedAt = s.portfolios[i].CreatedAt
	p.UpdatedAt = s.now().UTC()
	s.portfolios[i] = clonePortfolio(p)
	return nil
}

func (s *Store) DeletePortfolio(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.portfolioIndex(id)
	if i < 0 {
		return fmt.Errorf("portfolio %s: %w", id, core.ErrNotFound)
	}
	s.portfolios = append(s.portfolios[:i], s.portfolios[i+1:]...)
	return nil
}

func (s *Store) GetProfile(_ context.Context) (core.AdminProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.profile
	p.BankAccounts = cloneAccounts(p.BankAccounts)
	return p, nil
}

func (s *Store) SaveProfile(_ context.Context, p core.AdminProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.BankAccounts = cloneAccounts(p.BankAccounts)
	s.profile = p
	return nil
}

func (s *Store) FindAdminByEmail(_ context.Context, email string) (core.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.admins {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return core.Admin{}, fmt.Errorf("admin %s: %w", email, core.ErrNotFound)
}

func (s *Store) CreateAdmin(_ context.Context, a core.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.admins {
		if strings.EqualFold(existing.Email, a.Email) {
			return fmt.Errorf("admin %s: %w", a.Email, core.ErrConflict)
		}
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now().UTC()
	}
	s.admins = append(s.admins, a)
	return nil
}

func (s *Store) CountAdmins(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.admins), nil
}

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) investorIndex(id string) int {
	for i, inv := range s.investors {
		if inv.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) portfolioIndex(id string) int {
	for i, p := range s.portfolios {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func cloneAccounts(in []core.BankAccount) []core.BankAccount {
	if in == nil {
		return nil
	}
	return append([]core.BankAccount(nil), in...)
}

func cloneInvestor(inv core.Investor) core.Investor {
	if inv.Investments != nil {
		inv.Investments = append([]core.Investment(nil), inv.Investments...)
	}
	inv.BankAccounts = cloneAccounts(inv.BankAccounts)
	return inv
}

func clonePortfolio(p core.Portfolio) core.Portfolio {
	p.BankAccounts = cloneAccounts(p.BankAccounts)
	if p.SubMarketors != nil {
		subs := make([]core.SubMarketor, len(p.SubMarketors))
		for i, sm := range p.SubMarketors {
			sm.BankAccounts = cloneAccounts(sm.BankAccounts)
			subs[i] = sm
		}
		p.SubMarketors = subs
	}
	return p
}
