package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"ibms/internal/amqp"
	"ibms/internal/core"
	"ibms/internal/ports/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []amqp.ChangeEvent
	err    error
}

func (p *recordingPublisher) PublishChange(_ context.Context, ev *amqp.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *ev)
	return p.err
}

func (p *recordingPublisher) last() amqp.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("id-%d", n.Add(1))
	}
}

type fixture struct {
	store      *memory.Store
	pub        *recordingPublisher
	gen        *Generation
	investors  *InvestorService
	portfolios *PortfolioService
	admin      *AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: memory.New(), pub: &recordingPublisher{}, gen: &Generation{}}
	f.investors = NewInvestorService(f.store, f.pub, f.gen)
	f.portfolios = NewPortfolioService(f.store, f.pub, f.gen)
	f.admin = NewAdminService(f.store, f.pub, f.gen)
	ids := sequentialIDs()
	f.investors.newID, f.portfolios.newID, f.admin.newID = ids, ids, ids
	return f
}

func (f *fixture) portfolio(t *testing.T, name string, subs ...string) core.Portfolio {
	t.Helper()
	p := core.Portfolio{Name: name, DefaultCommissionRate: "2", IsActive: true}
	for _, s := range subs {
		p.SubMarketors = append(p.SubMarketors, core.SubMarketor{Name: s, CommissionRate: "1"})
	}
	created, err := f.portfolios.Create(context.Background(), p)
	if err != nil {
		t.Fatalf("create portfolio: %v", err)
	}
	return created
}

func deal(amount, portfolioID, subID string) core.Investment {
	return core.Investment{
		Amount:             amount,
		InterestRate:       "12",
		StartDate:          "2024-01-01",
		EndDate:            "2025-01-01",
		PortfolioID:        portfolioID,
		SubMarketorID:      subID,
		MarketorCommission: "2",
	}
}

func TestInvestorService_CreateAssignsIDsAndPublishes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.portfolio(t, "Sabari Rajan", "John Doe")

	inv, err := f.investors.Create(ctx, core.Investor{
		ID:          "client-supplied",
		FirstName:   "Rajesh",
		LastName:    "Kumar",
		Investments: []core.Investment{deal("5000000", p.ID, p.SubMarketors[0].ID)},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if inv.ID == "client-supplied" || inv.ID == "" {
		t.Errorf("server must assign the id, got %q", inv.ID)
	}
	if inv.KYCStatus != core.KYCPending {
		t.Errorf("KYCStatus = %q, want Pending", inv.KYCStatus)
	}
	if inv.Investments[0].ID == "" {
		t.Error("investment id not assigned")
	}
	if ev := f.pub.last(); ev.Entity != amqp.EntityInvestor || ev.Action != amqp.ActionCreated || ev.ID != inv.ID {
		t.Errorf("last event = %+v", ev)
	}
	if f.gen.Current() != 2 {
		t.Errorf("generation = %d, want 2 (portfolio + investor)", f.gen.Current())
	}
}

func TestInvestorService_RejectsBadReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.portfolio(t, "Alpha", "A-sub")
	b := f.portfolio(t, "Beta", "B-sub")

	tests := []struct {
		name string
		deal core.Investment
		want error
	}{
		{"unknown portfolio", deal("100", "nope", ""), core.ErrInvalidReference},
		{"sub-marketor of another portfolio", deal("100", a.ID, b.SubMarketors[0].ID), core.ErrInvalidReference},
		{"sub-marketor without portfolio", deal("100", "", a.SubMarketors[0].ID), core.ErrValidation},
		{"non-positive amount", deal("0", a.ID, ""), core.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.gen.Current()
			_, err := f.investors.Create(ctx, core.Investor{FirstName: "X", LastName: "Y", Investments: []core.Investment{tt.deal}})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if f.gen.Current() != before {
				t.Error("failed create must not bump the generation")
			}
		})
	}
}

func TestInvestorService_InvestmentLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.portfolio(t, "Alpha", "A-sub")
	b := f.portfolio(t, "Beta")

	inv, err := f.investors.Create(ctx, core.Investor{FirstName: "Priya", LastName: "Sharma"})
	if err != nil {
		t.Fatal(err)
	}

	added, err := f.investors.AddInvestment(ctx, inv.ID, deal("25000000", a.ID, a.SubMarketors[0].ID))
	if err != nil {
		t.Fatalf("AddInvestment: %v", err)
	}

	// Moving to another portfolio drops the carried-over sub-marketor.
	moved := added
	moved.PortfolioID = b.ID
	updated, err := f.investors.UpdateInvestment(ctx, inv.ID, added.ID, moved)
	if err != nil {
		t.Fatalf("UpdateInvestment: %v", err)
	}
	if updated.SubMarketorID != "" || updated.PortfolioID != b.ID {
		t.Errorf("updated = %+v", updated)
	}

	if _, err := f.investors.UpdateInvestment(ctx, inv.ID, "missing", moved); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := f.investors.DeleteInvestment(ctx, inv.ID, added.ID); err != nil {
		t.Fatalf("DeleteInvestment: %v", err)
	}
	got, _ := f.investors.Get(ctx, inv.ID)
	if len(got.Investments) != 0 {
		t.Errorf("investments after delete = %+v", got.Investments)
	}
	if ev := f.pub.last(); ev.Entity != amqp.EntityInvestment || ev.Action != amqp.ActionDeleted {
		t.Errorf("last event = %+v", ev)
	}
}

func TestInvestorService_UpdateToleratesDanglingReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.portfolio(t, "Alpha")

	inv, err := f.investors.Create(ctx, core.Investor{FirstName: "Amit", LastName: "Patel", Investments: []core.Investment{deal("100000", p.ID, "")}})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.portfolios.Delete(ctx, p.ID); err != nil {
		t.Fatal(err)
	}

	inv.City = "Pune"
	if _, err := f.investors.Update(ctx, inv.ID, inv); err != nil {
		t.Fatalf("Update with unchanged dangling investment: %v", err)
	}

	inv.Investments[0].Amount = "200000"
	if _, err := f.investors.Update(ctx, inv.ID, inv); !errors.Is(err, core.ErrInvalidReference) {
		t.Fatalf("changed investment must be re-checked, got %v", err)
	}
}

func TestInvestorService_PublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker down")

	if _, err := f.investors.Create(context.Background(), core.Investor{FirstName: "Sneha", LastName: "Reddy"}); err != nil {
		t.Fatalf("publish errors must not fail the request: %v", err)
	}
}

func TestInvestorService_NilPublisher(t *testing.T) {
	svc := NewInvestorService(memory.New(), nil, nil)
	if _, err := svc.Create(context.Background(), core.Investor{FirstName: "A", LastName: "B"}); err != nil {
		t.Fatal(err)
	}
}

func TestPortfolioService_DerivedTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.portfolio(t, "Alpha")
	f.portfolio(t, "Empty")

	for _, amount := range []string{"5000000", "30000000"} {
		if _, err := f.investors.Create(ctx, core.Investor{FirstName: "I", LastName: amount, Investments: []core.Investment{deal(amount, p.ID, "")}}); err != nil {
			t.Fatal(err)
		}
	}

	list, err := f.portfolios.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d", len(list))
	}
	if list[0].TotalRaised.String() != "35000000" || list[0].InvestorCount != 2 {
		t.Errorf("Alpha = %s / %d", list[0].TotalRaised, list[0].InvestorCount)
	}
	if !list[1].TotalRaised.IsZero() || list[1].InvestorCount != 0 {
		t.Errorf("Empty = %s / %d", list[1].TotalRaised, list[1].InvestorCount)
	}

	one, err := f.portfolios.Get(ctx, p.ID)
	if err != nil || one.TotalRaised.String() != "35000000" {
		t.Errorf("Get = %+v, %v", one, err)
	}
}

func TestPortfolioService_SubMarketors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.portfolio(t, "Alpha")
	q := f.portfolio(t, "Beta", "Beta-1")

	sm, err := f.portfolios.AddSubMarketor(ctx, p.ID, core.SubMarketor{ID: "ignored", Name: "John Doe", CommissionRate: "1"})
	if err != nil {
		t.Fatalf("AddSubMarketor: %v", err)
	}
	if sm.ID == "ignored" || sm.PortfolioID != p.ID {
		t.Errorf("sub = %+v", sm)
	}

	sm.Phone = "9876543210"
	if _, err := f.portfolios.UpdateSubMarketor(ctx, p.ID, sm.ID, sm); err != nil {
		t.Fatalf("UpdateSubMarketor: %v", err)
	}
	if _, err := f.portfolios.UpdateSubMarketor(ctx, q.ID, sm.ID, sm); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("sub-marketor under the wrong portfolio: %v", err)
	}

	all, _ := f.portfolios.ListSubMarketors(ctx, "")
	if len(all) != 2 || all[0].PortfolioName != "Alpha" || all[0].Phone != "9876543210" || all[1].PortfolioName != "Beta" {
		t.Errorf("all = %+v", all)
	}
	onlyBeta, _ := f.portfolios.ListSubMarketors(ctx, q.ID)
	if len(onlyBeta) != 1 || onlyBeta[0].Name != "Beta-1" {
		t.Errorf("filtered = %+v", onlyBeta)
	}

	if err := f.portfolios.DeleteSubMarketor(ctx, p.ID, sm.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := f.portfolios.Get(ctx, p.ID)
	if len(got.SubMarketors) != 0 {
		t.Errorf("subs after delete = %+v", got.SubMarketors)
	}
}

func TestPortfolioService_UpdateKeepsSubMarketors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.portfolio(t, "Alpha", "Kept")

	updated, err := f.portfolios.Update(ctx, p.ID, core.Portfolio{Name: "Alpha Prime", DefaultCommissionRate: "2.5"})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != "Alpha Prime" || len(updated.SubMarketors) != 1 || updated.SubMarketors[0].Name != "Kept" {
		t.Errorf("updated = %+v", updated)
	}
	if _, err := f.portfolios.Update(ctx, p.ID, core.Portfolio{Name: ""}); !errors.Is(err, core.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestAdminService_BanksAndProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.admin.CreateBank(ctx, core.BankAccount{AccountHolderName: "Horizon Investments LLP", AccountNumber: "50200012345678", IFSC: "HDFC0000240", IsActive: true})
	if err != nil {
		t.Fatalf("CreateBank: %v", err)
	}
	b.Branch = "Andheri"
	if _, err := f.admin.UpdateBank(ctx, b.ID, b); err != nil {
		t.Fatalf("UpdateBank: %v", err)
	}
	if _, err := f.admin.UpdateBank(ctx, "nope", b); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.admin.CreateBank(ctx, core.BankAccount{AccountHolderName: "X", AccountNumber: "12"}); !errors.Is(err, core.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}

	if _, err := f.admin.UpdateProfile(ctx, core.AdminProfile{Name: "Admin User", Email: "admin@horizon-ibms.com"}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	p, _ := f.admin.Profile(ctx)
	if p.Name != "Admin User" || len(p.BankAccounts) != 1 || p.BankAccounts[0].Branch != "Andheri" {
		t.Errorf("profile = %+v", p)
	}
}

func TestInvestorService_ConcurrentInvestmentWrites(t *testing.T) {
	const writers = 50
	f := newFixture(t)
	ctx := context.Background()
	p := f.portfolio(t, "Alpha")

	inv, err := f.investors.Create(ctx, core.Investor{FirstName: "Meera", LastName: "Nair"})
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.investors.AddInvestment(ctx, inv.ID, deal("1000", p.ID, "")); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("AddInvestment: %v", err)
	}

	got, err := f.investors.Get(ctx, inv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Investments) != writers {
		t.Fatalf("investments = %d, want %d", len(got.Investments), writers)
	}

	// Updates and deletes racing on the same investor must all land too.
	for i, d := range got.Investments {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				if err := f.investors.DeleteInvestment(ctx, inv.ID, d.ID); err != nil {
					t.Errorf("DeleteInvestment: %v", err)
				}
				return
			}
			d.Amount = "2000"
			if _, err := f.investors.UpdateInvestment(ctx, inv.ID, d.ID, d); err != nil {
				t.Errorf("UpdateInvestment: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ = f.investors.Get(ctx, inv.ID)
	if len(got.Investments) != writers/2 {
		t.Fatalf("investments after deletes = %d, want %d", len(got.Investments), writers/2)
	}
	for _, d := range got.Investments {
		if d.Amount != "2000" {
			t.Errorf("investment %s amount = %s, want 2000", d.ID, d.Amount)
		}
	}
	if n := f.investors.locks.held(); n != 0 {
		t.Errorf("lock entries left behind = %d", n)
	}
}

func TestPortfolioService_ConcurrentSubMarketorWrites(t *testing.T) {
	const writers = 50
	f := newFixture(t)
	ctx := context.Background()
	p := f.portfolio(t, "Alpha")

	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sm := core.SubMarketor{Name: fmt.Sprintf("Sub %d", i), CommissionRate: "1"}
			if _, err := f.portfolios.AddSubMarketor(ctx, p.ID, sm); err != nil {
				t.Errorf("AddSubMarketor: %v", err)
			}
		}()
	}
	// Header edits interleaved with the adds must not drop any of them.
	wg.Add(1)
	go func() {
		defer wg.Done()
		edit := p
		edit.Name = "Alpha Capital"
		if _, err := f.portfolios.Update(ctx, p.ID, edit); err != nil {
			t.Errorf("Update: %v", err)
		}
	}()
	wg.Wait()

	got, err := f.portfolios.Get(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.SubMarketors) != writers {
		t.Fatalf("sub-marketors = %d, want %d", len(got.SubMarketors), writers)
	}
	if got.Name != "Alpha Capital" {
		t.Errorf("name = %q, want the concurrent update", got.Name)
	}
	if n := f.portfolios.locks.held(); n != 0 {
		t.Errorf("lock entries left behind = %d", n)
	}
}
