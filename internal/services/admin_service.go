package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"ibms/internal/amqp"
	"ibms/internal/core"
	"ibms/internal/ports"
)

// AdminService manages the back-office profile and its sender bank accounts.
type AdminService struct {
	store  ports.ProfileStore
	notify notifier
	newID  func() string
}

func NewAdminService(store ports.ProfileStore, publisher Publisher, gen *Generation) *AdminService {
	if gen == nil {
		gen = &Generation{}
	}
	return &AdminService{
		store:  store,
		notify: notifier{publisher: publisher, gen: gen},
		newID:  uuid.NewString,
	}
}

func (s *AdminService) Profile(ctx context.Context) (core.AdminProfile, error) {
	return s.store.GetProfile(ctx)
}

// UpdateProfile changes name, email and phone. Bank accounts are untouched.
func (s *AdminService) UpdateProfile(ctx context.Context, p core.AdminProfile) (core.AdminProfile, error) {
	existing, err := s.store.GetProfile(ctx)
	if err != nil {
		return core.AdminProfile{}, err
	}
	p.BankAccounts = existing.BankAccounts
	if err := p.Validate(); err != nil {
		return core.AdminProfile{}, err
	}
	if err := s.store.SaveProfile(ctx, p); err != nil {
		return core.AdminProfile{}, fmt.Errorf("save profile: %w", err)
	}
	s.notify.changed(ctx, amqp.EntityProfile, amqp.ActionUpdated, "")
	return p, nil
}

func (s *AdminService) ListBanks(ctx context.Context) ([]core.BankAccount, error) {
	p, err := s.store.GetProfile(ctx)
	if err != nil {
		return nil, err
	}
	return p.BankAccounts, nil
}

func (s *AdminService) CreateBank(ctx context.Context, b core.BankAccount) (core.BankAccount, error) {
	p, err := s.store.GetProfile(ctx)
	if err != nil {
		return core.BankAccount{}, err
	}
	b.ID = s.newID()
	if err := b.Validate(); err != nil {
		return core.BankAccount{}, err
	}
	p.BankAccounts = append(p.BankAccounts, b)
	if err := s.store.SaveProfile(ctx, p); err != nil {
		return core.BankAccount{}, fmt.Errorf("create admin bank: %w", err)
	}
	s.notify.changed(ctx, amqp.EntityAdminBank, amqp.ActionCreated, b.ID)
	return b, nil
}

func (s *AdminService) UpdateBank(ctx context.Context, id string, b core.BankAccount) (core.BankAccount, error) {
	p, err := s.store.GetProfile(ctx)
	if err != nil {
		return core.BankAccount{}, err
	}
	idx := -1
	for i, existing := range p.BankAccounts {
		if existing.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.BankAccount{}, fmt.Errorf("admin bank %s: %w", id, core.ErrNotFound)
	}
	b.ID = id
	if err := b.Validate(); err != nil {
		return core.BankAccount{}, err
	}
	p.BankAccounts[idx] = b
	if err := s.store.SaveProfile(ctx, p); err != nil {
		return core.BankAccount{}, fmt.Errorf("update admin bank: %w", err)
	}
	s.notify.changed(ctx, amqp.EntityAdminBank, amqp.ActionUpdated, id)
	return b, nil
}
