// Package portstest holds behaviour tests every ports.Store must pass.
package portstest

import (
	"context"
	"errors"
	"testing"

	"ibms/internal/core"
	"ibms/internal/ports"
)

func sampleInvestor(id string) core.Investor {
	return core.Investor{
		ID:        id,
		FirstName: "Rajesh",
		LastName:  "Kumar",
		Mobile:    "9876543210",
		KYCStatus: core.KYCVerified,
		Investments: []core.Investment{
			{ID: id + "-d1", Amount: "5000000", InterestRate: "12", StartDate: "2024-01-01", EndDate: "2025-01-01", PortfolioID: "p1", SubMarketorID: "s1", MarketorCommission: "2", SubMarketorCommission: "1", PayoutDate: "10th"},
			{ID: id + "-d2", Amount: "100000", InterestRate: "10", StartDate: "2024-02-01", EndDate: "2025-02-01"},
		},
		BankAccounts: []core.BankAccount{
			{ID: id + "-b1", IFSC: "HDFC0000240", BankName: "HDFC Bank", AccountHolderName: "Rajesh Kumar", AccountNumber: "50100234567890", IsActive: true},
		},
	}
}

func samplePortfolio(id string) core.Portfolio {
	return core.Portfolio{
		ID:                    id,
		Name:                  "Sabari Rajan",
		DefaultCommissionRate: "2",
		IsActive:              true,
		BankAccounts: []core.BankAccount{
			{ID: id + "-b1", AccountHolderName: "Sabari Rajan", AccountNumber: "1234567890"},
		},
		SubMarketors: []core.SubMarketor{
			{ID: "s1", PortfolioID: id, Name: "John Doe", CommissionRate: "1", IsActive: true,
				BankAccounts: []core.BankAccount{{ID: "s1-b1", AccountHolderName: "John Doe", AccountNumber: "0987654321"}}},
			{ID: "s2", PortfolioID: id, Name: "Alice Smith"},
		},
	}
}

// RunStoreTests exercises st through the ports.Store contract. newStore must
// return an empty store.
func RunStoreTests(t *testing.T, newStore func(t *testing.T) ports.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("investor round trip keeps nested order", func(t *testing.T) {
		st := newStore(t)
		want := sampleInvestor("i1")
		if err := st.CreateInvestor(ctx, want); err != nil {
			t.Fatalf("CreateInvestor: %v", err)
		}
		got, err := st.GetInvestor(ctx, "i1")
		if err != nil {
			t.Fatalf("GetInvestor: %v", err)
		}
		if got.FullName() != "Rajesh Kumar" || got.KYCStatus != core.KYCVerified {
			t.Errorf("investor fields = %+v", got)
		}
		if len(got.Investments) != 2 || got.Investments[0] != want.Investments[0] || got.Investments[1] != want.Investments[1] {
			t.Errorf("investments = %+v", got.Investments)
		}
		if len(got.BankAccounts) != 1 || got.BankAccounts[0] != want.BankAccounts[0] {
			t.Errorf("bank accounts = %+v", got.BankAccounts)
		}
	})

	t.Run("duplicate investor conflicts", func(t *testing.T) {
		st := newStore(t)
		if err := st.CreateInvestor(ctx, sampleInvestor("i1")); err != nil {
			t.Fatal(err)
		}
		if err := st.CreateInvestor(ctx, sampleInvestor("i1")); !errors.Is(err, core.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("update replaces nested collections", func(t *testing.T) {
		st := newStore(t)
		inv := sampleInvestor("i1")
		if err := st.CreateInvestor(ctx, inv); err != nil {
			t.Fatal(err)
		}
		inv.LastName = "Kumar-Rao"
		inv.Investments = inv.Investments[1:]
		inv.BankAccounts = nil
		if err := st.UpdateInvestor(ctx, inv); err != nil {
			t.Fatalf("UpdateInvestor: %v", err)
		}
		got, err := st.GetInvestor(ctx, "i1")
		if err != nil {
			t.Fatal(err)
		}
		if got.LastName != "Kumar-Rao" || len(got.Investments) != 1 || got.Investments[0].ID != "i1-d2" || len(got.BankAccounts) != 0 {
			t.Errorf("after update = %+v", got)
		}
	})

	t.Run("missing investor", func(t *testing.T) {
		st := newStore(t)
		if _, err := st.GetInvestor(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("GetInvestor: expected ErrNotFound, got %v", err)
		}
		if err := st.UpdateInvestor(ctx, sampleInvestor("nope")); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("UpdateInvestor: expected ErrNotFound, got %v", err)
		}
		if err := st.DeleteInvestor(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("DeleteInvestor: expected ErrNotFound, got %v", err)
		}
	})

	t.Run("list and delete investors", func(t *testing.T) {
		st := newStore(t)
		for _, id := range []string{"a", "b", "c"} {
			if err := st.CreateInvestor(ctx, sampleInvestor(id)); err != nil {
				t.Fatal(err)
			}
		}
		if err := st.DeleteInvestor(ctx, "b"); err != nil {
			t.Fatalf("DeleteInvestor: %v", err)
		}
		list, err := st.ListInvestors(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 2 || list[0].ID != "a" || list[1].ID != "c" {
			t.Fatalf("list = %+v", list)
		}
		if len(list[1].Investments) != 2 {
			t.Errorf("list must embed investments, got %d", len(list[1].Investments))
		}
	})

	t.Run("portfolio round trip and cascade", func(t *testing.T) {
		st := newStore(t)
		p := samplePortfolio("p1")
		if err := st.CreatePortfolio(ctx, p); err != nil {
			t.Fatalf("CreatePortfolio: %v", err)
		}
		got, err := st.GetPortfolio(ctx, "p1")
		if err != nil {
			t.Fatal(err)
		}
		if got.Name != p.Name || len(got.SubMarketors) != 2 || got.SubMarketors[0].Name != "John Doe" {
			t.Fatalf("portfolio = %+v", got)
		}
		if len(got.SubMarketors[0].BankAccounts) != 1 || len(got.BankAccounts) != 1 {
			t.Errorf("bank accounts lost: %+v", got)
		}
		if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
			t.Errorf("timestamps not set: %+v", got)
		}

		got.SubMarketors = got.SubMarketors[1:]
		if err := st.UpdatePortfolio(ctx, got); err != nil {
			t.Fatalf("UpdatePortfolio: %v", err)
		}
		again, _ := st.GetPortfolio(ctx, "p1")
		if len(again.SubMarketors) != 1 || again.SubMarketors[0].ID != "s2" {
			t.Errorf("sub-marketors after update = %+v", again.SubMarketors)
		}

		if err := st.CreateInvestor(ctx, sampleInvestor("i1")); err != nil {
			t.Fatal(err)
		}
		if err := st.DeletePortfolio(ctx, "p1"); err != nil {
			t.Fatalf("DeletePortfolio: %v", err)
		}
		if _, err := st.GetPortfolio(ctx, "p1"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		inv, err := st.GetInvestor(ctx, "i1")
		if err != nil {
			t.Fatal(err)
		}
		if inv.Investments[0].PortfolioID != "p1" {
			t.Errorf("investment reference should be kept, got %q", inv.Investments[0].PortfolioID)
		}
	})

	t.Run("profile", func(t *testing.T) {
		st := newStore(t)
		empty, err := st.GetProfile(ctx)
		if err != nil {
			t.Fatalf("GetProfile on empty store: %v", err)
		}
		if empty.Name != "" {
			t.Errorf("expected empty profile, got %+v", empty)
		}
		want := core.AdminProfile{
			Name:  "Admin User",
			Email: "admin@horizon-ibms.com",
			Phone: "9876543210",
			BankAccounts: []core.BankAccount{
				{ID: "admin_bank_1", AccountHolderName: "Horizon Investments LLP", AccountNumber: "50200012345678", IsActive: true},
			},
		}
		if err := st.SaveProfile(ctx, want); err != nil {
			t.Fatalf("SaveProfile: %v", err)
		}
		got, err := st.GetProfile(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if got.Name != want.Name || len(got.BankAccounts) != 1 || got.BankAccounts[0] != want.BankAccounts[0] {
			t.Errorf("profile = %+v", got)
		}
	})

	t.Run("admins", func(t *testing.T) {
		st := newStore(t)
		n, err := st.CountAdmins(ctx)
		if err != nil || n != 0 {
			t.Fatalf("CountAdmins = %d, %v", n, err)
		}
		a := core.Admin{ID: "a1", Email: "Admin@Horizon-IBMS.com", Name: "Admin", PasswordHash: "hash", Role: core.RoleAdmin, IsActive: true}
		if err := st.CreateAdmin(ctx, a); err != nil {
			t.Fatalf("CreateAdmin: %v", err)
		}
		if err := st.CreateAdmin(ctx, a); !errors.Is(err, core.ErrConflict) {
			t.Errorf("expected ErrConflict, got %v", err)
		}
		got, err := st.FindAdminByEmail(ctx, "admin@horizon-ibms.com")
		if err != nil {
			t.Fatalf("FindAdminByEmail: %v", err)
		}
		if got.ID != "a1" || got.PasswordHash != "hash" || got.Role != core.RoleAdmin || !got.IsActive {
			t.Errorf("admin = %+v", got)
		}
		if _, err := st.FindAdminByEmail(ctx, "ghost@example.com"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if n, _ := st.CountAdmins(ctx); n != 1 {
			t.Errorf("CountAdmins = %d", n)
		}
	})

	t.Run("ping", func(t *testing.T) {
		if err := newStore(t).Ping(ctx); err != nil {
			t.Errorf("Ping: %v", err)
		}
	})
}
