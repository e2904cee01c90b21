package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"ibms/internal/amqp"
	"ibms/internal/core"
	"ibms/internal/ports"
)

// InvestorStore is the slice of storage the investor service needs.
type InvestorStore interface {
	ports.InvestorStore
	ports.PortfolioStore
}

// InvestorService validates and persists investors and their investments.
type InvestorService struct {
	store  InvestorStore
	notify notifier
	locks  keyedMutex
	newID  func() string
}

func NewInvestorService(store InvestorStore, publisher Publisher, gen *Generation) *InvestorService {
	if gen == nil {
		gen = &Generation{}
	}
	return &InvestorService{
		store:  store,
		notify: notifier{publisher: publisher, gen: gen},
		newID:  uuid.NewString,
	}
}

func (s *InvestorService) List(ctx context.Context) ([]core.Investor, error) {
	return s.store.ListInvestors(ctx)
}

func (s *InvestorService) Get(ctx context.Context, id string) (core.Investor, error) {
	return s.store.GetInvestor(ctx, id)
}

// Create assigns ids, validates the investor and every investment reference,
// and stores it.
func (s *InvestorService) Create(ctx context.Context, inv core.Investor) (core.Investor, error) {
	inv.ID = s.newID()
	if inv.KYCStatus == "" {
		inv.KYCStatus = core.KYCPending
	}
	for i := range inv.Investments {
		if inv.Investments[i].ID == "" {
			inv.Investments[i].ID = s.newID()
		}
	}
	fillAccountIDs(inv.BankAccounts, s.newID)

	if err := inv.Validate(); err != nil {
		return core.Investor{}, err
	}
	for _, deal := range inv.Investments {
		if err := checkInvestmentRefs(ctx, s.store, deal); err != nil {
			return core.Investor{}, err
		}
	}
	if err := s.store.CreateInvestor(ctx, inv); err != nil {
		return core.Investor{}, fmt.Errorf("create investor: %w", err)
	}
	s.notify.changed(ctx, amqp.EntityInvestor, amqp.ActionCreated, inv.ID)
	return inv, nil
}

// Update replaces the investor. Investments are only re-validated when new or
// changed, so an unrelated edit never fails on legacy data or on a portfolio
// deleted since.
func (s *InvestorService) Update(ctx context.Context, id string, inv core.Investor) (core.Investor, error) {
	defer s.locks.lock(id)()

	existing, err := s.store.GetInvestor(ctx, id)
	if err != nil {
		return core.Investor{}, err
	}
	inv.ID = id
	if inv.KYCStatus == "" {
		inv.KYCStatus = existing.KYCStatus
	}
	if inv.Investments == nil {
		inv.Investments = existing.Investments
	}
	for i := range inv.Investments {
		if inv.Investments[i].ID == "" {
			inv.Investments[i].ID = s.newID()
		}
	}
	fillAccountIDs(inv.BankAccounts, s.newID)

	header := inv
	header.Investments = nil
	if err := header.Validate(); err != nil {
		return core.Investor{}, err
	}
	for _, deal := range inv.Investments {
		if idx := existing.FindInvestment(deal.ID); idx >= 0 && existing.Investments[idx] == deal {
			continue
		}
		if err := deal.Validate(); err != nil {
			return core.Investor{}, err
		}
		if err := checkInvestmentRefs(ctx, s.store, deal); err != nil {
			return core.Investor{}, err
		}
	}
	if err := s.store.UpdateInvestor(ctx, inv); err != nil {
		return core.Investor{}, fmt.Errorf("update investor: %w", err)
	}
	s.notify.changed(ctx, amqp.EntityInvestor, amqp.ActionUpdated, id)
	return inv, nil
}

func (s *InvestorService) Delete(ctx context.Context, id string) error {
	defer s.locks.lock(id)()

	if err := s.store.DeleteInvestor(ctx, id); err != nil {
		return fmt.Errorf("delete investor: %w", err)
	}
	s.notify.changed(ctx, amqp.EntityInvestor, amqp.ActionDeleted, id)
	return nil
}

// AddInvestment appends a new investment to the investor's book.
func (s *InvestorService) AddInvestment(ctx context.Context, investorID string, deal core.Investment) (core.Investment, error) {
	defer s.locks.lock(investorID)()

	inv, err := s.store.GetInvestor(ctx, investorID)
	if err != nil {
		return core.Investment{}, err
	}
	deal.ID = s.newID()
	if err := deal.Validate(); err != nil {
		return core.Investment{}, err
	}
	if err := checkInvestmentRefs(ctx, s.store, deal); err != nil {
		return core.Investment{}, err
	}

	inv.Investments = append(inv.Investments, deal)
	if err := s.store.UpdateInvestor(ctx, inv); err != nil {
		return core.Investment{}, fmt.Errorf("add investment: %w", err)
	}
	s.notify.changed(ctx, amqp.EntityInvestment, amqp.ActionCreated, deal.ID)
	return deal, nil
}

// UpdateInvestment replaces one investment. Moving it to another portfolio
// drops a sub-marketor carried over from the old one.
func (s *InvestorService) UpdateInvestment(ctx context.Context, investorID, investmentID string, deal core.Investment) (core.Investment, error) {
	defer s.locks.lock(investorID)()

	inv, err := s.store.GetInvestor(ctx, investorID)
	if err != nil {
		return core.Investment{}, err
	}
	idx := inv.FindInvestment(investmentID)
	if idx < 0 {
		return core.Investment{}, fmt.Errorf("investment %s: %w", investmentID, core.ErrNotFound)
	}
	old := inv.Investments[idx]
	deal.ID = investmentID
	if deal.PortfolioID != old.PortfolioID && deal.SubMarketorID == old.SubMarketorID {
		deal.SubMarketorID = ""
	}

	if err := deal.Validate(); err != nil {
		return core.Investment{}, err
	}
	if err := checkInvestmentRefs(ctx, s.store, deal); err != nil {
		return core.Investment{}, err
	}

	inv.Investments[idx] = deal
	if err := s.store.UpdateInvestor(ctx, inv); err != nil {
		return core.Investment{}, fmt.Errorf("update investment: %w", err)
	}
	s.notify.changed(ctx, amqp.EntityInvestment, amqp.ActionUpdated, investmentID)
	return deal, nil
}

func (s *InvestorService) DeleteInvestment(ctx context.Context, investorID, investmentID string) error {
	defer s.locks.lock(investorID)()

	inv, err := s.store.GetInvestor(ctx, investorID)
	if err != nil {
		return err
	}
	idx := inv.FindInvestment(investmentID)
	if idx < 0 {
		return fmt.Errorf("investment %s: %w", investmentID, core.ErrNotFound)
	}
	inv.Investments = append(inv.Investments[:idx], inv.Investments[idx+1:]...)
	if err := s.store.UpdateInvestor(ctx, inv); err != nil {
		return fmt.Errorf("delete investment: %w", err)
	}
	s.notify.changed(ctx, amqp.EntityInvestment, amqp.ActionDeleted, investmentID)
	return nil
}
