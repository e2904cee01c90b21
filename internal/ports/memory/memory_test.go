package memory

import (
	"context"
	"testing"

	"ibms/internal/core"
	"ibms/internal/ports"
	"ibms/internal/ports/portstest"
)

func TestStoreContract(t *testing.T) {
	portstest.RunStoreTests(t, func(t *testing.T) ports.Store { return New() })
}

func TestStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	st := New()
	inv := core.Investor{ID: "1", FirstName: "A", LastName: "B", Investments: []core.Investment{{ID: "d1", Amount: "10"}}}
	if err := st.CreateInvestor(ctx, inv); err != nil {
		t.Fatal(err)
	}
	inv.Investments[0].Amount = "999"

	got, _ := st.GetInvestor(ctx, "1")
	if got.Investments[0].Amount != "10" {
		t.Fatalf("store aliased caller slice: %s", got.Investments[0].Amount)
	}
	got.Investments[0].Amount = "777"
	again, _ := st.GetInvestor(ctx, "1")
	if again.Investments[0].Amount != "10" {
		t.Fatalf("caller mutated store: %s", again.Investments[0].Amount)
	}
}
