package ports

import (
	"context"

	"ibms/internal/core"
)

// Ports for storage adapters. Nested collections (investments, bank accounts,
// sub-marketors) are owned by their parent and replaced together with it.
type (
	InvestorStore interface {
		ListInvestors(ctx context.Context) ([]core.Investor, error)
		// GetInvestor returns core.ErrNotFound when the id is unknown.
		GetInvestor(ctx context.Context, id string) (core.Investor, error)
		CreateInvestor(ctx context.Context, inv core.Investor) error
		UpdateInvestor(ctx context.Context, inv core.Investor) error
		DeleteInvestor(ctx context.Context, id string) error
	}

	PortfolioStore interface {
		ListPortfolios(ctx context.Context) ([]core.Portfolio, error)
		// GetPortfolio returns core.ErrNotFound when the id is unknown.
		GetPortfolio(ctx context.Context, id string) (core.Portfolio, error)
		CreatePortfolio(ctx context.Context, p core.Portfolio) error
		UpdatePortfolio(ctx context.Context, p core.Portfolio) error
		// DeletePortfolio removes the portfolio and its sub-marketors.
		// Investments keep their now dangling reference.
		DeletePortfolio(ctx context.Context, id string) error
	}

	ProfileStore interface {
		GetProfile(ctx context.Context) (core.AdminProfile, error)
		SaveProfile(ctx context.Context, p core.AdminProfile) error
	}

	AdminStore interface {
		// FindAdminByEmail returns core.ErrNotFound when no admin matches.
		FindAdminByEmail(ctx context.Context, email string) (core.Admin, error)
		CreateAdmin(ctx context.Context, a core.Admin) error
		CountAdmins(ctx context.Context) (int, error)
	}

	// Store is the full persistence surface of the service.
	Store interface {
		InvestorStore
		PortfolioStore
		ProfileStore
		AdminStore
		Ping(ctx context.Context) error
		Close() error
	}
)
