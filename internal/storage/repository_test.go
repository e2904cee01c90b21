package storage

import (
	"context"
	"path/filepath"
	"testing"

	"ibms/internal/core"
	"ibms/internal/ports"
	"ibms/internal/ports/portstest"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "ibms.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepositoryContract(t *testing.T) {
	portstest.RunStoreTests(t, func(t *testing.T) ports.Store { return newTestRepo(t) })
}

func TestSQLiteRepository_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ibms.db")

	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatal(err)
	}
	inv := core.Investor{ID: "1", FirstName: "Priya", LastName: "Sharma", KYCStatus: core.KYCPending,
		Investments: []core.Investment{{ID: "inv2", Amount: "25000000", InterestRate: "15", StartDate: "2024-02-01", EndDate: "2025-02-01"}}}
	if err := repo.CreateInvestor(ctx, inv); err != nil {
		t.Fatal(err)
	}
	repo.Close()

	// Migrations must be a no-op on an up-to-date schema.
	repo, err = NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	got, err := repo.GetInvestor(ctx, "1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Investments) != 1 || got.Investments[0].Amount != "25000000" {
		t.Errorf("investments after reopen = %+v", got.Investments)
	}
}

func TestSQLiteRepository_MalformedValuesSurvive(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	inv := core.Investor{ID: "x", FirstName: "Legacy", Investments: []core.Investment{{ID: "d", Amount: "abc", InterestRate: ""}}}
	if err := repo.CreateInvestor(ctx, inv); err != nil {
		t.Fatal(err)
	}
	got, _ := repo.GetInvestor(ctx, "x")
	if got.Investments[0].Amount != "abc" {
		t.Errorf("amount = %q, want raw value kept", got.Investments[0].Amount)
	}
}

func TestSQLiteRepository_SubMarketorAccountsScopedByPortfolio(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	for _, id := range []string{"p1", "p2"} {
		p := core.Portfolio{ID: id, Name: id, SubMarketors: []core.SubMarketor{{ID: "sm1", Name: "Shared id",
			BankAccounts: []core.BankAccount{{ID: id + "-acct", AccountHolderName: "X", AccountNumber: "123456"}}}}}
		if err := repo.CreatePortfolio(ctx, p); err != nil {
			t.Fatal(err)
		}
	}
	if err := repo.DeletePortfolio(ctx, "p1"); err != nil {
		t.Fatal(err)
	}
	list, err := repo.ListPortfolios(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || len(list[0].SubMarketors) != 1 {
		t.Fatalf("list = %+v", list)
	}
	accts := list[0].SubMarketors[0].BankAccounts
	if len(accts) != 1 || accts[0].ID != "p2-acct" {
		t.Errorf("sub-marketor accounts = %+v", accts)
	}
}
