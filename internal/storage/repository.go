package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ibms/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements ports.Store on a single SQLite file.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Writes replace whole aggregates; one connection keeps them serialized.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// withTx runs fn inside a transaction and commits when it returns nil.
func (r *SQLiteRepository) withTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(r.queries.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListInvestors(ctx context.Context) ([]core.Investor, error) {
	rows, err := r.queries.ListInvestors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list investors: %w", err)
	}
	deals, err := r.queries.ListInvestments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}
	accounts, err := r.queries.ListBankAccountsByKind(ctx, string(core.OwnerInvestor))
	if err != nil {
		return nil, fmt.Errorf("list investor bank accounts: %w", err)
	}

	dealsBy := make(map[string][]core.Investment)
	for _, d := range deals {
		dealsBy[d.InvestorID] = append(dealsBy[d.InvestorID], investmentFromRow(d))
	}
	accountsBy := groupAccounts(accounts)

	out := make([]core.Investor, 0, len(rows))
	for _, row := range rows {
		inv := investorFromRow(row)
		inv.Investments = dealsBy[row.ID]
		inv.BankAccounts = accountsBy[ownerKey("", row.ID)]
		out = append(out, inv)
	}
	return out, nil
}

func (r *SQLiteRepository) GetInvestor(ctx context.Context, id string) (core.Investor, error) {
	row, err := r.queries.GetInvestor(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Investor{}, fmt.Errorf("investor %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Investor{}, fmt.Errorf("get investor %s: %w", id, err)
	}
	deals, err := r.queries.ListInvestmentsByInvestor(ctx, id)
	if err != nil {
		return core.Investor{}, fmt.Errorf("list investments of %s: %w", id, err)
	}
	accounts, err := r.queries.ListBankAccountsByOwner(ctx, BankAccountOwnerParams{OwnerKind: string(core.OwnerInvestor), OwnerID: id})
	if err != nil {
		return core.Investor{}, fmt.Errorf("list bank accounts of %s: %w", id, err)
	}

	inv := investorFromRow(row)
	for _, d := range deals {
		inv.Investments = append(inv.Investments, investmentFromRow(d))
	}
	for _, a := range accounts {
		inv.BankAccounts = append(inv.BankAccounts, accountFromRow(a))
	}
	return inv, nil
}

func (r *SQLiteRepository) CreateInvestor(ctx context.Context, inv core.Investor) error {
	return r.withTx(ctx, func(q *Queries) error {
		exists, err := q.InvestorExists(ctx, inv.ID)
		if err != nil {
			return fmt.Errorf("check investor %s: %w", inv.ID, err)
		}
		if exists {
			return fmt.Errorf("investor %s: %w", inv.ID, core.ErrConflict)
		}
		if err := q.InsertInvestor(ctx, investorToRow(inv)); err != nil {
			return fmt.Errorf("insert investor %s: %w", inv.ID, err)
		}
		return writeInvestorChildren(ctx, q, inv)
	})
}

func (r *SQLiteRepository) UpdateInvestor(ctx context.Context, inv core.Investor) error {
	return r.withTx(ctx, func(q *Queries) error {
		n, err := q.UpdateInvestor(ctx, investorToRow(inv))
		if err != nil {
			return fmt.Errorf("update investor %s: %w", inv.ID, err)
		}
		if n == 0 {
			return fmt.Errorf("investor %s: %w", inv.ID, core.ErrNotFound)
		}
		if err := deleteInvestorChildren(ctx, q, inv.ID); err != nil {
			return err
		}
		return writeInvestorChildren(ctx, q, inv)
	})
}

func (r *SQLiteRepository) DeleteInvestor(ctx context.Context, id string) error {
	return r.withTx(ctx, func(q *Queries) error {
		n, err := q.DeleteInvestor(ctx, id)
		if err != nil {
			return fmt.Errorf("delete investor %s: %w", id, err)
		}
		if n == 0 {
			return fmt.Errorf("investor %s: %w", id, core.ErrNotFound)
		}
		return deleteInvestorChildren(ctx, q, id)
	})
}

func writeInvestorChildren(ctx context.Context, q *Queries, inv core.Investor) error {
	for i, d := range inv.Investments {
		if err := q.InsertInvestment(ctx, investmentToRow(inv.ID, i, d)); err != nil {
			return fmt.Errorf("insert investment %s: %w", d.ID, err)
		}
	}
	return insertAccounts(ctx, q, core.OwnerInvestor, "", inv.ID, inv.BankAccounts)
}

func deleteInvestorChildren(ctx context.Context, q *Queries, id string) error {
	if err := q.DeleteInvestmentsByInvestor(ctx, id); err != nil {
		return fmt.Errorf("delete investments of %s: %w", id, err)
	}
	if err := q.DeleteBankAccountsByOwner(ctx, BankAccountOwnerParams{OwnerKind: string(core.OwnerInvestor), OwnerID: id}); err != nil {
		return fmt.Errorf("delete bank accounts of %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) ListPortfolios(ctx context.Context) ([]core.Portfolio, error) {
	rows, err := r.queries.ListPortfolios(ctx)
	if err != nil {
		return nil, fmt.Errorf("list portfolios: %w", err)
	}
	subs, err := r.queries.ListSubMarketors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sub-marketors: %w", err)
	}
	accounts, err := r.queries.ListBankAccountsByKind(ctx, string(core.OwnerPortfolio))
	if err != nil {
		return nil, fmt.Errorf("list portfolio bank accounts: %w", err)
	}
	subAccounts, err := r.queries.ListBankAccountsByKind(ctx, string(core.OwnerSubMarketor))
	if err != nil {
		return nil, fmt.Errorf("list sub-marketor bank accounts: %w", err)
	}

	accountsBy := groupAccounts(accounts)
	subAccountsBy := groupAccounts(subAccounts)
	subsBy := make(map[string][]core.SubMarketor)
	for _, s := range subs {
		sm := subMarketorFromRow(s)
		sm.BankAccounts = subAccountsBy[ownerKey(s.PortfolioID, s.ID)]
		subsBy[s.PortfolioID] = append(subsBy[s.PortfolioID], sm)
	}

	out := make([]core.Portfolio, 0, len(rows))
	for _, row := range rows {
		p := portfolioFromRow(row)
		p.BankAccounts = accountsBy[ownerKey("", row.ID)]
		p.SubMarketors = subsBy[row.ID]
		out = append(out, p)
	}
	return out, nil
}

func (r *SQLiteRepository) GetPortfolio(ctx context.Context, id string) (core.Portfolio, error) {
	row, err := r.queries.GetPortfolio(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Portfolio{}, fmt.Errorf("portfolio %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Portfolio{}, fmt.Errorf("get portfolio %s: %w", id, err)
	}
	subs, err := r.queries.ListSubMarketorsByPortfolio(ctx, id)
	if err != nil {
		return core.Portfolio{}, fmt.Errorf("list sub-marketors of %s: %w", id, err)
	}
	accounts, err := r.queries.ListBankAccountsByOwner(ctx, BankAccountOwnerParams{OwnerKind: string(core.OwnerPortfolio), OwnerID: id})
	if err != nil {
		return core.Portfolio{}, fmt.Errorf("list bank accounts of %s: %w", id, err)
	}
	subAccounts, err := r.queries.ListBankAccountsByParent(ctx, ListBankAccountsByParentParams{OwnerKind: string(core.OwnerSubMarketor), OwnerParent: id})
	if err != nil {
		return core.Portfolio{}, fmt.Errorf("list sub-marketor bank accounts of %s: %w", id, err)
	}

	p := portfolioFromRow(row)
	for _, a := range accounts {
		p.BankAccounts = append(p.BankAccounts, accountFromRow(a))
	}
	subAccountsBy := groupAccounts(subAccounts)
	for _, s := range subs {
		sm := subMarketorFromRow(s)
		sm.BankAccounts = subAccountsBy[ownerKey(id, s.ID)]
		p.SubMarketors = append(p.SubMarketors, sm)
	}
	return p, nil
}

func (r *SQLiteRepository) CreatePortfolio(ctx context.Context, p core.Portfolio) error {
	now := r.now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return r.withTx(ctx, func(q *Queries) error {
		_, err := q.GetPortfolio(ctx, p.ID)
		if err == nil {
			return fmt.Errorf("portfolio %s: %w", p.ID, core.ErrConflict)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check portfolio %s: %w", p.ID, err)
		}
		if err := q.InsertPortfolio(ctx, portfolioToRow(p)); err != nil {
			return fmt.Errorf("insert portfolio %s: %w", p.ID, err)
		}
		return writePortfolioChildren(ctx, q, p)
	})
}

func (r *SQLiteRepository) UpdatePortfolio(ctx context.Context, p core.Portfolio) error {
	p.UpdatedAt = r.now().UTC()
	return r.withTx(ctx, func(q *Queries) error {
		n, err := q.UpdatePortfolio(ctx, portfolioToRow(p))
		if err != nil {
			return fmt.Errorf("update portfolio %s: %w", p.ID, err)
		}
		if n == 0 {
			return fmt.Errorf("portfolio %s: %w", p.ID, core.ErrNotFound)
		}
		if err := deletePortfolioChildren(ctx, q, p.ID); err != nil {
			return err
		}
		return writePortfolioChildren(ctx, q, p)
	})
}

func (r *SQLiteRepository) DeletePortfolio(ctx context.Context, id string) error {
	return r.withTx(ctx, func(q *Queries) error {
		n, err := q.DeletePortfolio(ctx, id)
		if err != nil {
			return fmt.Errorf("delete portfolio %s: %w", id, err)
		}
		if n == 0 {
			return fmt.Errorf("portfolio %s: %w", id, core.ErrNotFound)
		}
		return deletePortfolioChildren(ctx, q, id)
	})
}

func writePortfolioChildren(ctx context.Context, q *Queries, p core.Portfolio) error {
	if err := insertAccounts(ctx, q, core.OwnerPortfolio, "", p.ID, p.BankAccounts); err != nil {
		return err
	}
	for i, sm := range p.SubMarketors {
		if err := q.InsertSubMarketor(ctx, subMarketorToRow(p.ID, i, sm)); err != nil {
			return fmt.Errorf("insert sub-marketor %s: %w", sm.ID, err)
		}
		if err := insertAccounts(ctx, q, core.OwnerSubMarketor, p.ID, sm.ID, sm.BankAccounts); err != nil {
			return err
		}
	}
	return nil
}

func deletePortfolioChildren(ctx context.Context, q *Queries, id string) error {
	if err := q.DeleteSubMarketorsByPortfolio(ctx, id); err != nil {
		return fmt.Errorf("delete sub-marketors of %s: %w", id, err)
	}
	if err := q.DeleteBankAccountsByOwner(ctx, BankAccountOwnerParams{OwnerKind: string(core.OwnerPortfolio), OwnerID: id}); err != nil {
		return fmt.Errorf("delete bank accounts of %s: %w", id, err)
	}
	if err := q.DeleteBankAccountsByParent(ctx, ListBankAccountsByParentParams{OwnerKind: string(core.OwnerSubMarketor), OwnerParent: id}); err != nil {
		return fmt.Errorf("delete sub-marketor bank accounts of %s: %w", id, err)
	}
	return nil
}

// GetProfile returns an empty profile until one is saved.
func (r *SQLiteRepository) GetProfile(ctx context.Context) (core.AdminProfile, error) {
	row, err := r.queries.GetProfile(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return core.AdminProfile{}, nil
	}
	if err != nil {
		return core.AdminProfile{}, fmt.Errorf("get profile: %w", err)
	}
	accounts, err := r.queries.ListBankAccountsByKind(ctx, string(core.OwnerAdmin))
	if err != nil {
		return core.AdminProfile{}, fmt.Errorf("list admin bank accounts: %w", err)
	}
	p := core.AdminProfile{Name: row.Name, Email: row.Email, Phone: row.Phone}
	for _, a := range accounts {
		p.BankAccounts = append(p.BankAccounts, accountFromRow(a))
	}
	return p, nil
}

func (r *SQLiteRepository) SaveProfile(ctx context.Context, p core.AdminProfile) error {
	return r.withTx(ctx, func(q *Queries) error {
		if err := q.UpsertProfile(ctx, ProfileRow{Name: p.Name, Email: p.Email, Phone: p.Phone}); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		owner := BankAccountOwnerParams{OwnerKind: string(core.OwnerAdmin), OwnerID: profileOwnerID}
		if err := q.DeleteBankAccountsByOwner(ctx, owner); err != nil {
			return fmt.Errorf("delete admin bank accounts: %w", err)
		}
		return insertAccounts(ctx, q, core.OwnerAdmin, "", profileOwnerID, p.BankAccounts)
	})
}

// profileOwnerID keys the singleton profile's bank accounts.
const profileOwnerID = "profile"

func (r *SQLiteRepository) FindAdminByEmail(ctx context.Context, email string) (core.Admin, error) {
	row, err := r.queries.GetAdminByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Admin{}, fmt.Errorf("admin %s: %w", email, core.ErrNotFound)
	}
	if err != nil {
		return core.Admin{}, fmt.Errorf("get admin %s: %w", email, err)
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, row.CreatedAt)
	return core.Admin{
		ID:           row.ID,
		Email:        row.Email,
		Name:         row.Name,
		PasswordHash: row.PasswordHash,
		Role:         core.Role(row.Role),
		IsActive:     row.IsActive,
		CreatedAt:    createdAt,
	}, nil
}

func (r *SQLiteRepository) CreateAdmin(ctx context.Context, a core.Admin) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = r.now().UTC()
	}
	return r.withTx(ctx, func(q *Queries) error {
		_, err := q.GetAdminByEmail(ctx, a.Email)
		if err == nil {
			return fmt.Errorf("admin %s: %w", a.Email, core.ErrConflict)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check admin %s: %w", a.Email, err)
		}
		err = q.InsertAdmin(ctx, AdminRow{
			ID:           a.ID,
			Email:        a.Email,
			Name:         a.Name,
			PasswordHash: a.PasswordHash,
			Role:         string(a.Role),
			IsActive:     a.IsActive,
			CreatedAt:    a.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return fmt.Errorf("insert admin %s: %w", a.Email, err)
		}
		return nil
	})
}

func (r *SQLiteRepository) CountAdmins(ctx context.Context) (int, error) {
	n, err := r.queries.CountAdmins(ctx)
	if err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return int(n), nil
}
