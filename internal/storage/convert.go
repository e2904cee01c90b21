package storage

import (
	"context"
	"fmt"
	"time"

	"ibms/internal/core"
)

func ownerKey(parent, id string) string {
	return parent + "/" + id
}

func groupAccounts(rows []BankAccountRow) map[string][]core.BankAccount {
	out := make(map[string][]core.BankAccount)
	for _, a := range rows {
		k := ownerKey(a.OwnerParent, a.OwnerID)
		out[k] = append(out[k], accountFromRow(a))
	}
	return out
}

func insertAccounts(ctx context.Context, q *Queries, kind core.OwnerKind, parent, owner string, accounts []core.BankAccount) error {
	for i, a := range accounts {
		err := q.InsertBankAccount(ctx, BankAccountRow{
			OwnerKind:         string(kind),
			OwnerParent:       parent,
			OwnerID:           owner,
			Position:          int64(i),
			ID:                a.ID,
			IFSC:              a.IFSC,
			BankName:          a.BankName,
			Branch:            a.Branch,
			AccountHolderName: a.AccountHolderName,
			AccountNumber:     a.AccountNumber,
			PassbookRef:       a.PassbookRef,
			IsActive:          a.IsActive,
		})
		if err != nil {
			return fmt.Errorf("insert %s bank account %s: %w", kind, a.ID, err)
		}
	}
	return nil
}

func accountFromRow(a BankAccountRow) core.BankAccount {
	return core.BankAccount{
		ID:                a.ID,
		IFSC:              a.IFSC,
		BankName:          a.BankName,
		Branch:            a.Branch,
		AccountHolderName: a.AccountHolderName,
		AccountNumber:     a.AccountNumber,
		PassbookRef:       a.PassbookRef,
		IsActive:          a.IsActive,
	}
}

func investorToRow(inv core.Investor) InvestorRow {
	return InvestorRow{
		ID:        inv.ID,
		FirstName: inv.FirstName,
		LastName:  inv.LastName,
		Gender:    inv.Gender,
		DOB:       inv.DOB,
		Mobile:    inv.Mobile,
		Email:     inv.Email,
		Aadhar:    inv.Aadhar,
		PAN:       inv.PAN,
		Address:   inv.Address,
		City:      inv.City,
		District:  inv.District,
		State:     inv.State,
		Pincode:   inv.Pincode,
		KYCStatus: string(inv.KYCStatus),
		Notes:     inv.Notes,
	}
}

func investorFromRow(r InvestorRow) core.Investor {
	return core.Investor{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Gender:    r.Gender,
		DOB:       r.DOB,
		Mobile:    r.Mobile,
		Email:     r.Email,
		Aadhar:    r.Aadhar,
		PAN:       r.PAN,
		Address:   r.Address,
		City:      r.City,
		District:  r.District,
		State:     r.State,
		Pincode:   r.Pincode,
		KYCStatus: core.KYCStatus(r.KYCStatus),
		Notes:     r.Notes,
	}
}

func investmentToRow(investorID string, pos int, d core.Investment) InvestmentRow {
	return InvestmentRow{
		InvestorID:            investorID,
		Position:              int64(pos),
		ID:                    d.ID,
		Amount:                d.Amount,
		StartDate:             d.StartDate,
		EndDate:               d.EndDate,
		InterestRate:          d.InterestRate,
		BankAccountID:         d.BankAccountID,
		SenderBankID:          d.SenderBankID,
		PayoutDate:            d.PayoutDate,
		PortfolioID:           d.PortfolioID,
		SubMarketorID:         d.SubMarketorID,
		MarketorCommission:    d.MarketorCommission,
		SubMarketorCommission: d.SubMarketorCommission,
	}
}

func investmentFromRow(r InvestmentRow) core.Investment {
	return core.Investment{
		ID:                    r.ID,
		Amount:                r.Amount,
		StartDate:             r.StartDate,
		EndDate:               r.EndDate,
		InterestRate:          r.InterestRate,
		BankAccountID:         r.BankAccountID,
		SenderBankID:          r.SenderBankID,
		PayoutDate:            r.PayoutDate,
		PortfolioID:           r.PortfolioID,
		SubMarketorID:         r.SubMarketorID,
		MarketorCommission:    r.MarketorCommission,
		SubMarketorCommission: r.SubMarketorCommission,
	}
}

func portfolioToRow(p core.Portfolio) PortfolioRow {
	return PortfolioRow{
		ID:                    p.ID,
		Name:                  p.Name,
		Description:           p.Description,
		Email:                 p.Email,
		Phone:                 p.Phone,
		PAN:                   p.PAN,
		Aadhar:                p.Aadhar,
		Address:               p.Address,
		City:                  p.City,
		State:                 p.State,
		Pincode:               p.Pincode,
		DefaultCommissionRate: p.DefaultCommissionRate,
		IsActive:              p.IsActive,
		CreatedAt:             p.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:             p.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func portfolioFromRow(r PortfolioRow) core.Portfolio {
	createdAt, _ := time.Parse(time.RFC3339Nano, r.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, r.UpdatedAt)
	return core.Portfolio{
		ID:                    r.ID,
		Name:                  r.Name,
		Description:           r.Description,
		Email:                 r.Email,
		Phone:                 r.Phone,
		PAN:                   r.PAN,
		Aadhar:                r.Aadhar,
		Address:               r.Address,
		City:                  r.City,
		State:                 r.State,
		Pincode:               r.Pincode,
		DefaultCommissionRate: r.DefaultCommissionRate,
		IsActive:              r.IsActive,
		CreatedAt:             createdAt,
		UpdatedAt:             updatedAt,
	}
}

func subMarketorToRow(portfolioID string, pos int, s core.SubMarketor) SubMarketorRow {
	return SubMarketorRow{
		PortfolioID:    portfolioID,
		Position:       int64(pos),
		ID:             s.ID,
		Name:           s.Name,
		Phone:          s.Phone,
		Email:          s.Email,
		PAN:            s.PAN,
		Aadhar:         s.Aadhar,
		Address:        s.Address,
		City:           s.City,
		State:          s.State,
		Pincode:        s.Pincode,
		CommissionRate: s.CommissionRate,
		IsActive:       s.IsActive,
	}
}

func subMarketorFromRow(r SubMarketorRow) core.SubMarketor {
	return core.SubMarketor{
		ID:             r.ID,
		PortfolioID:    r.PortfolioID,
		Name:           r.Name,
		Phone:          r.Phone,
		Email:          r.Email,
		PAN:            r.PAN,
		Aadhar:         r.Aadhar,
		Address:        r.Address,
		City:           r.City,
		State:          r.State,
		Pincode:        r.Pincode,
		CommissionRate: r.CommissionRate,
		IsActive:       r.IsActive,
	}
}
