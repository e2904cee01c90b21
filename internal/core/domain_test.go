package core

import (
	"errors"
	"testing"
)

func goodInvestment() Investment {
	return Investment{
		ID:                    "inv1",
		Amount:                "5000000",
		StartDate:             "2024-01-01",
		EndDate:               "2025-01-01",
		InterestRate:          "12",
		PayoutDate:            "10th",
		PortfolioID:           "15",
		SubMarketorID:         "sm1",
		MarketorCommission:    "2",
		SubMarketorCommission: "1",
	}
}

func TestInvestmentValidate(t *testing.T) {
	if err := goodInvestment().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Investment)
		field  string
	}{
		{"zero amount", func(i *Investment) { i.Amount = "0" }, "amount"},
		{"non numeric amount", func(i *Investment) { i.Amount = "abc" }, "amount"},
		{"empty amount", func(i *Investment) { i.Amount = "" }, "amount"},
		{"rate above 100", func(i *Investment) { i.InterestRate = "101" }, "interestRate"},
		{"exponent amount", func(i *Investment) { i.Amount = "1e5" }, "amount"},
		{"huge exponent amount", func(i *Investment) { i.Amount = "1e10000000" }, "amount"},
		{"tiny exponent rate", func(i *Investment) { i.InterestRate = "1e-2000000000" }, "interestRate"},
		{"exponent commission", func(i *Investment) { i.MarketorCommission = "1e-2000000000" }, "marketorCommission"},
		{"negative commission", func(i *Investment) { i.MarketorCommission = "-1" }, "marketorCommission"},
		{"bad start date", func(i *Investment) { i.StartDate = "01/01/2024" }, "startDate"},
		{"end before start", func(i *Investment) { i.EndDate = "2023-12-31" }, "endDate"},
		{"unknown payout day", func(i *Investment) { i.PayoutDate = "15th" }, "payoutDate"},
		{"sub-marketor without portfolio", func(i *Investment) { i.PortfolioID = "" }, "subMarketorId"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inv := goodInvestment()
			tc.mutate(&inv)
			err := inv.Validate()
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			var fe *FieldError
			if !errors.As(err, &fe) || fe.Field != tc.field {
				t.Fatalf("expected field %q, got %v", tc.field, err)
			}
		})
	}
}

func TestInvestmentValidate_EmptyCommissionsAllowed(t *testing.T) {
	inv := goodInvestment()
	inv.PortfolioID = ""
	inv.SubMarketorID = ""
	inv.MarketorCommission = ""
	inv.SubMarketorCommission = ""
	inv.PayoutDate = ""
	if err := inv.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestInvestmentCheckReferences(t *testing.T) {
	portfolio := &Portfolio{
		ID:           "15",
		Name:         "Alpha",
		SubMarketors: []SubMarketor{{ID: "sm1", PortfolioID: "15", Name: "Sub"}},
	}

	cases := []struct {
		name      string
		inv       Investment
		portfolio *Portfolio
		wantErr   bool
	}{
		{"direct investment", Investment{}, nil, false},
		{"portfolio only", Investment{PortfolioID: "15"}, portfolio, false},
		{"portfolio and owned sub", Investment{PortfolioID: "15", SubMarketorID: "sm1"}, portfolio, false},
		{"missing portfolio", Investment{PortfolioID: "99"}, nil, true},
		{"portfolio mismatch", Investment{PortfolioID: "99"}, portfolio, true},
		{"foreign sub-marketor", Investment{PortfolioID: "15", SubMarketorID: "sm9"}, portfolio, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.inv.CheckReferences(tc.portfolio)
			if tc.wantErr && !errors.Is(err, ErrInvalidReference) {
				t.Fatalf("expected ErrInvalidReference, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
		})
	}
}

func TestInvestorValidate(t *testing.T) {
	good := Investor{
		FirstName:   "Rajesh",
		LastName:    "Kumar",
		Mobile:      "9876543210",
		Email:       "rajesh@example.com",
		PAN:         "ABCDE1234F",
		Aadhar:      "123412341234",
		Pincode:     "400001",
		KYCStatus:   KYCVerified,
		DOB:         "1980-05-20",
		Investments: []Investment{goodInvestment()},
		BankAccounts: []BankAccount{{
			IFSC:              "HDFC0001234",
			AccountHolderName: "Rajesh Kumar",
			AccountNumber:     "50100012345678",
		}},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if got := good.FullName(); got != "Rajesh Kumar" {
		t.Fatalf("FullName() = %q", got)
	}

	bads := []func(*Investor){
		func(i *Investor) { i.FirstName = " " },
		func(i *Investor) { i.LastName = "" },
		func(i *Investor) { i.KYCStatus = "Done" },
		func(i *Investor) { i.DOB = "20-05-1980" },
		func(i *Investor) { i.Email = "not-an-email" },
		func(i *Investor) { i.Mobile = "12345" },
		func(i *Investor) { i.PAN = "ABC123" },
		func(i *Investor) { i.Aadhar = "1234" },
		func(i *Investor) { i.Pincode = "4000" },
		func(i *Investor) { i.Investments[0].Amount = "-5" },
		func(i *Investor) { i.BankAccounts[0].IFSC = "BAD" },
	}
	for idx, mutate := range bads {
		inv := good
		inv.Investments = append([]Investment(nil), good.Investments...)
		inv.BankAccounts = append([]BankAccount(nil), good.BankAccounts...)
		mutate(&inv)
		if err := inv.Validate(); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d expected validation error, got %v", idx, err)
		}
	}
}

func TestPortfolioAndSubMarketorValidate(t *testing.T) {
	p := Portfolio{Name: "Alpha Capital", DefaultCommissionRate: "2.5"}
	if err := p.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	p.DefaultCommissionRate = "150"
	if err := p.Validate(); err == nil {
		t.Fatal("expected error for commission rate above 100")
	}
	if err := (Portfolio{}).Validate(); err == nil {
		t.Fatal("expected error for empty name")
	}

	s := SubMarketor{Name: "Field Agent", CommissionRate: "1"}
	if err := s.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	s.CommissionRate = "x"
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for non numeric commission")
	}
}

func TestBankAccountValidate(t *testing.T) {
	cases := []struct {
		name string
		acc  BankAccount
		ok   bool
	}{
		{"valid", BankAccount{IFSC: "sbin0000001", AccountHolderName: "A", AccountNumber: "123456"}, true},
		{"no ifsc", BankAccount{AccountHolderName: "A", AccountNumber: "123456"}, true},
		{"missing holder", BankAccount{AccountNumber: "123456"}, false},
		{"short number", BankAccount{AccountHolderName: "A", AccountNumber: "123"}, false},
		{"letters in number", BankAccount{AccountHolderName: "A", AccountNumber: "12345A"}, false},
		{"bad ifsc", BankAccount{IFSC: "SBIN1000001", AccountHolderName: "A", AccountNumber: "123456"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.acc.Validate()
			if tc.ok && err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
