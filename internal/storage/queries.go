package storage

import (
	"context"
)

const investorColumns = `id, first_name, last_name, gender, dob, mobile, email, aadhar, pan,
       address, city, district, state, pincode, kyc_status, notes`

const listInvestors = `-- name: ListInvestors :many
SELECT ` + investorColumns + `
FROM investors
ORDER BY seq
`

func (q *Queries) ListInvestors(ctx context.Context) ([]InvestorRow, error) {
	rows, err := q.db.QueryContext(ctx, listInvestors)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []InvestorRow
	for rows.Next() {
		var i InvestorRow
		if err := scanInvestor(rows, &i); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getInvestor = `-- name: GetInvestor :one
SELECT ` + investorColumns + `
FROM investors
WHERE id = ?
`

func (q *Queries) GetInvestor(ctx context.Context, id string) (InvestorRow, error) {
	row := q.db.QueryRowContext(ctx, getInvestor, id)
	var i InvestorRow
	err := scanInvestor(row, &i)
	return i, err
}

const investorExists = `-- name: InvestorExists :one
SELECT COUNT(*) FROM investors WHERE id = ?
`

func (q *Queries) InvestorExists(ctx context.Context, id string) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, investorExists, id).Scan(&n)
	return n > 0, err
}

const insertInvestor = `-- name: InsertInvestor :exec
INSERT INTO investors (` + investorColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) InsertInvestor(ctx context.Context, arg InvestorRow) error {
	_, err := q.db.ExecContext(ctx, insertInvestor,
		arg.ID, arg.FirstName, arg.LastName, arg.Gender, arg.DOB, arg.Mobile, arg.Email, arg.Aadhar, arg.PAN,
		arg.Address, arg.City, arg.District, arg.State, arg.Pincode, arg.KYCStatus, arg.Notes,
	)
	return err
}

const updateInvestor = `-- name: UpdateInvestor :execrows
UPDATE investors
SET first_name = ?, last_name = ?, gender = ?, dob = ?, mobile = ?, email = ?, aadhar = ?, pan = ?,
    address = ?, city = ?, district = ?, state = ?, pincode = ?, kyc_status = ?, notes = ?
WHERE id = ?
`

func (q *Queries) UpdateInvestor(ctx context.Context, arg InvestorRow) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateInvestor,
		arg.FirstName, arg.LastName, arg.Gender, arg.DOB, arg.Mobile, arg.Email, arg.Aadhar, arg.PAN,
		arg.Address, arg.City, arg.District, arg.State, arg.Pincode, arg.KYCStatus, arg.Notes,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteInvestor = `-- name: DeleteInvestor :execrows
DELETE FROM investors WHERE id = ?
`

func (q *Queries) DeleteInvestor(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteInvestor, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const investmentColumns = `investor_id, position, id, amount, start_date, end_date, interest_rate,
       bank_account_id, sender_bank_id, payout_date, portfolio_id, sub_marketor_id,
       marketor_commission, sub_marketor_commission`

const listInvestments = `-- name: ListInvestments :many
SELECT ` + investmentColumns + `
FROM investments
ORDER BY investor_id, position
`

func (q *Queries) ListInvestments(ctx context.Context) ([]InvestmentRow, error) {
	return q.queryInvestments(ctx, listInvestments)
}

const listInvestmentsByInvestor = `-- name: ListInvestmentsByInvestor :many
SELECT ` + investmentColumns + `
FROM investments
WHERE investor_id = ?
ORDER BY position
`

func (q *Queries) ListInvestmentsByInvestor(ctx context.Context, investorID string) ([]InvestmentRow, error) {
	return q.queryInvestments(ctx, listInvestmentsByInvestor, investorID)
}

func (q *Queries) queryInvestments(ctx context.Context, query string, args ...interface{}) ([]InvestmentRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []InvestmentRow
	for rows.Next() {
		var i InvestmentRow
		if err := rows.Scan(
			&i.InvestorID, &i.Position, &i.ID, &i.Amount, &i.StartDate, &i.EndDate, &i.InterestRate,
			&i.BankAccountID, &i.SenderBankID, &i.PayoutDate, &i.PortfolioID, &i.SubMarketorID,
			&i.MarketorCommission, &i.SubMarketorCommission,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertInvestment = `-- name: InsertInvestment :exec
INSERT INTO investments (` + investmentColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) InsertInvestment(ctx context.Context, arg InvestmentRow) error {
	_, err := q.db.ExecContext(ctx, insertInvestment,
		arg.InvestorID, arg.Position, arg.ID, arg.Amount, arg.StartDate, arg.EndDate, arg.InterestRate,
		arg.BankAccountID, arg.SenderBankID, arg.PayoutDate, arg.PortfolioID, arg.SubMarketorID,
		arg.MarketorCommission, arg.SubMarketorCommission,
	)
	return err
}

const deleteInvestmentsByInvestor = `-- name: DeleteInvestmentsByInvestor :exec
DELETE FROM investments WHERE investor_id = ?
`

func (q *Queries) DeleteInvestmentsByInvestor(ctx context.Context, investorID string) error {
	_, err := q.db.ExecContext(ctx, deleteInvestmentsByInvestor, investorID)
	return err
}

const portfolioColumns = `id, name, description, email, phone, pan, aadhar, address, city, state, pincode,
       default_commission_rate, is_active, created_at, updated_at`

const listPortfolios = `-- name: ListPortfolios :many
SELECT ` + portfolioColumns + `
FROM portfolios
ORDER BY seq
`

func (q *Queries) ListPortfolios(ctx context.Context) ([]PortfolioRow, error) {
	rows, err := q.db.QueryContext(ctx, listPortfolios)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PortfolioRow
	for rows.Next() {
		var i PortfolioRow
		if err := scanPortfolio(rows, &i); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getPortfolio = `-- name: GetPortfolio :one
SELECT ` + portfolioColumns + `
FROM portfolios
WHERE id = ?
`

func (q *Queries) GetPortfolio(ctx context.Context, id string) (PortfolioRow, error) {
	row := q.db.QueryRowContext(ctx, getPortfolio, id)
	var i PortfolioRow
	err := scanPortfolio(row, &i)
	return i, err
}

const insertPortfolio = `-- name: InsertPortfolio :exec
INSERT INTO portfolios (` + portfolioColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) InsertPortfolio(ctx context.Context, arg PortfolioRow) error {
	_, err := q.db.ExecContext(ctx, insertPortfolio,
		arg.ID, arg.Name, arg.Description, arg.Email, arg.Phone, arg.PAN, arg.Aadhar, arg.Address, arg.City,
		arg.State, arg.Pincode, arg.DefaultCommissionRate, arg.IsActive, arg.CreatedAt, arg.UpdatedAt,
	)
	return err
}

const updatePortfolio = `-- name: UpdatePortfolio :execrows
UPDATE portfolios
SET name = ?, description = ?, email = ?, phone = ?, pan = ?, aadhar = ?, address = ?, city = ?,
    state = ?, pincode = ?, default_commission_rate = ?, is_active = ?, updated_at = ?
WHERE id = ?
`

func (q *Queries) UpdatePortfolio(ctx context.Context, arg PortfolioRow) (int64, error) {
	result, err := q.db.ExecContext(ctx, updatePortfolio,
		arg.Name, arg.Description, arg.Email, arg.Phone, arg.PAN, arg.Aadhar, arg.Address, arg.City,
		arg.State, arg.Pincode, arg.DefaultCommissionRate, arg.IsActive, arg.UpdatedAt,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deletePortfolio = `-- name: DeletePortfolio :execrows
DELETE FROM portfolios WHERE id = ?
`

func (q *Queries) DeletePortfolio(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deletePortfolio, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const subMarketorColumns = `portfolio_id, position, id, name, phone, email, pan, aadhar, address, city, state,
       pincode, commission_rate, is_active`

const listSubMarketors = `-- name: ListSubMarketors :many
SELECT ` + subMarketorColumns + `
FROM sub_marketors
ORDER BY portfolio_id, position
`

func (q *Queries) ListSubMarketors(ctx context.Context) ([]SubMarketorRow, error) {
	return q.querySubMarketors(ctx, listSubMarketors)
}

const listSubMarketorsByPortfolio = `-- name: ListSubMarketorsByPortfolio :many
SELECT ` + subMarketorColumns + `
FROM sub_marketors
WHERE portfolio_id = ?
ORDER BY position
`

func (q *Queries) ListSubMarketorsByPortfolio(ctx context.Context, portfolioID string) ([]SubMarketorRow, error) {
	return q.querySubMarketors(ctx, listSubMarketorsByPortfolio, portfolioID)
}

func (q *Queries) querySubMarketors(ctx context.Context, query string, args ...interface{}) ([]SubMarketorRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SubMarketorRow
	for rows.Next() {
		var i SubMarketorRow
		if err := rows.Scan(
			&i.PortfolioID, &i.Position, &i.ID, &i.Name, &i.Phone, &i.Email, &i.PAN, &i.Aadhar,
			&i.Address, &i.City, &i.State, &i.Pincode, &i.CommissionRate, &i.IsActive,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertSubMarketor = `-- name: InsertSubMarketor :exec
INSERT INTO sub_marketors (` + subMarketorColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) InsertSubMarketor(ctx context.Context, arg SubMarketorRow) error {
	_, err := q.db.ExecContext(ctx, insertSubMarketor,
		arg.PortfolioID, arg.Position, arg.ID, arg.Name, arg.Phone, arg.Email, arg.PAN, arg.Aadhar,
		arg.Address, arg.City, arg.State, arg.Pincode, arg.CommissionRate, arg.IsActive,
	)
	return err
}

const deleteSubMarketorsByPortfolio = `-- name: DeleteSubMarketorsByPortfolio :exec
DELETE FROM sub_marketors WHERE portfolio_id = ?
`

func (q *Queries) DeleteSubMarketorsByPortfolio(ctx context.Context, portfolioID string) error {
	_, err := q.db.ExecContext(ctx, deleteSubMarketorsByPortfolio, portfolioID)
	return err
}

const bankAccountColumns = `owner_kind, owner_parent, owner_id, position, id, ifsc, bank_name, branch,
       account_holder_name, account_number, passbook_ref, is_active`

const listBankAccountsByKind = `-- name: ListBankAccountsByKind :many
SELECT ` + bankAccountColumns + `
FROM bank_accounts
WHERE owner_kind = ?
ORDER BY owner_parent, owner_id, position
`

func (q *Queries) ListBankAccountsByKind(ctx context.Context, ownerKind string) ([]BankAccountRow, error) {
	return q.queryBankAccounts(ctx, listBankAccountsByKind, ownerKind)
}

const listBankAccountsByParent = `-- name: ListBankAccountsByParent :many
SELECT ` + bankAccountColumns + `
FROM bank_accounts
WHERE owner_kind = ? AND owner_parent = ?
ORDER BY owner_id, position
`

type ListBankAccountsByParentParams struct {
	OwnerKind   string
	OwnerParent string
}

func (q *Queries) ListBankAccountsByParent(ctx context.Context, arg ListBankAccountsByParentParams) ([]BankAccountRow, error) {
	return q.queryBankAccounts(ctx, listBankAccountsByParent, arg.OwnerKind, arg.OwnerParent)
}

const listBankAccountsByOwner = `-- name: ListBankAccountsByOwner :many
SELECT ` + bankAccountColumns + `
FROM bank_accounts
WHERE owner_kind = ? AND owner_parent = ? AND owner_id = ?
ORDER BY position
`

type BankAccountOwnerParams struct {
	OwnerKind   string
	OwnerParent string
	OwnerID     string
}

func (q *Queries) ListBankAccountsByOwner(ctx context.Context, arg BankAccountOwnerParams) ([]BankAccountRow, error) {
	return q.queryBankAccounts(ctx, listBankAccountsByOwner, arg.OwnerKind, arg.OwnerParent, arg.OwnerID)
}

func (q *Queries) queryBankAccounts(ctx context.Context, query string, args ...interface{}) ([]BankAccountRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BankAccountRow
	for rows.Next() {
		var i BankAccountRow
		if err := rows.Scan(
			&i.OwnerKind, &i.OwnerParent, &i.OwnerID, &i.Position, &i.ID, &i.IFSC, &i.BankName, &i.Branch,
			&i.AccountHolderName, &i.AccountNumber, &i.PassbookRef, &i.IsActive,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertBankAccount = `-- name: InsertBankAccount :exec
INSERT INTO bank_accounts (` + bankAccountColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) InsertBankAccount(ctx context.Context, arg BankAccountRow) error {
	_, err := q.db.ExecContext(ctx, insertBankAccount,
		arg.OwnerKind, arg.OwnerParent, arg.OwnerID, arg.Position, arg.ID, arg.IFSC, arg.BankName, arg.Branch,
		arg.AccountHolderName, arg.AccountNumber, arg.PassbookRef, arg.IsActive,
	)
	return err
}

const deleteBankAccountsByOwner = `-- name: DeleteBankAccountsByOwner :exec
DELETE FROM bank_accounts WHERE owner_kind = ? AND owner_parent = ? AND owner_id = ?
`

func (q *Queries) DeleteBankAccountsByOwner(ctx context.Context, arg BankAccountOwnerParams) error {
	_, err := q.db.ExecContext(ctx, deleteBankAccountsByOwner, arg.OwnerKind, arg.OwnerParent, arg.OwnerID)
	return err
}

const deleteBankAccountsByParent = `-- name: DeleteBankAccountsByParent :exec
DELETE FROM bank_accounts WHERE owner_kind = ? AND owner_parent = ?
`

func (q *Queries) DeleteBankAccountsByParent(ctx context.Context, arg ListBankAccountsByParentParams) error {
	_, err := q.db.ExecContext(ctx, deleteBankAccountsByParent, arg.OwnerKind, arg.OwnerParent)
	return err
}

const getProfile = `-- name: GetProfile :one
SELECT name, email, phone FROM admin_profile WHERE id = 1
`

func (q *Queries) GetProfile(ctx context.Context) (ProfileRow, error) {
	row := q.db.QueryRowContext(ctx, getProfile)
	var i ProfileRow
	err := row.Scan(&i.Name, &i.Email, &i.Phone)
	return i, err
}

const upsertProfile = `-- name: UpsertProfile :exec
INSERT INTO admin_profile (id, name, email, phone)
VALUES (1, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET name = excluded.name, email = excluded.email, phone = excluded.phone
`

func (q *Queries) UpsertProfile(ctx context.Context, arg ProfileRow) error {
	_, err := q.db.ExecContext(ctx, upsertProfile, arg.Name, arg.Email, arg.Phone)
	return err
}

const getAdminByEmail = `-- name: GetAdminByEmail :one
SELECT id, email, name, password_hash, role, is_active, created_at
FROM admins
WHERE email = ? COLLATE NOCASE
`

func (q *Queries) GetAdminByEmail(ctx context.Context, email string) (AdminRow, error) {
	row := q.db.QueryRowContext(ctx, getAdminByEmail, email)
	var i AdminRow
	err := row.Scan(&i.ID, &i.Email, &i.Name, &i.PasswordHash, &i.Role, &i.IsActive, &i.CreatedAt)
	return i, err
}

const insertAdmin = `-- name: InsertAdmin :exec
INSERT INTO admins (id, email, name, password_hash, role, is_active, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) InsertAdmin(ctx context.Context, arg AdminRow) error {
	_, err := q.db.ExecContext(ctx, insertAdmin,
		arg.ID, arg.Email, arg.Name, arg.PasswordHash, arg.Role, arg.IsActive, arg.CreatedAt,
	)
	return err
}

const countAdmins = `-- name: CountAdmins :one
SELECT COUNT(*) FROM admins
`

func (q *Queries) CountAdmins(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countAdmins)
	var count int64
	err := row.Scan(&count)
	return count, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanInvestor(s scanner, i *InvestorRow) error {
	return s.Scan(
		&i.ID, &i.FirstName, &i.LastName, &i.Gender, &i.DOB, &i.Mobile, &i.Email, &i.Aadhar, &i.PAN,
		&i.Address, &i.City, &i.District, &i.State, &i.Pincode, &i.KYCStatus, &i.Notes,
	)
}

func scanPortfolio(s scanner, i *PortfolioRow) error {
	return s.Scan(
		&i.ID, &i.Name, &i.Description, &i.Email, &i.Phone, &i.PAN, &i.Aadhar, &i.Address, &i.City,
		&i.State, &i.Pincode, &i.DefaultCommissionRate, &i.IsActive, &i.CreatedAt, &i.UpdatedAt,
	)
}
