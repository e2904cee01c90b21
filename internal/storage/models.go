package storage

// Rows mirror the tables in migrations/ one to one.

type AdminRow struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    string
}

type ProfileRow struct {
	Name  string
	Email string
	Phone string
}

type InvestorRow struct {
	ID        string
	FirstName string
	LastName  string
	Gender    string
	DOB       string
	Mobile    string
	Email     string
	Aadhar    string
	PAN       string
	Address   string
	City      string
	District  string
	State     string
	Pincode   string
	KYCStatus string
	Notes     string
}

type InvestmentRow struct {
	InvestorID            string
	Position              int64
	ID                    string
	Amount                string
	StartDate             string
	EndDate               string
	InterestRate          string
	BankAccountID         string
	SenderBankID          string
	PayoutDate            string
	PortfolioID           string
	SubMarketorID         string
	MarketorCommission    string
	SubMarketorCommission string
}

type PortfolioRow struct {
	ID                    string
	Name                  string
	Description           string
	Email                 string
	Phone                 string
	PAN                   string
	Aadhar                string
	Address               string
	City                  string
	State                 string
	Pincode               string
	DefaultCommissionRate string
	IsActive              bool
	CreatedAt             string
	UpdatedAt             string
}

type SubMarketorRow struct {
	PortfolioID    string
	Position       int64
	ID             string
	Name           string
	Phone          string
	Email          string
	PAN            string
	Aadhar         string
	Address        string
	City           string
	State          string
	Pincode        string
	CommissionRate string
	IsActive       bool
}

type BankAccountRow struct {
	OwnerKind         string
	OwnerParent       string
	OwnerID           string
	Position          int64
	ID                string
	IFSC              string
	BankName          string
	Branch            string
	AccountHolderName string
	AccountNumber     string
	PassbookRef       string
	IsActive          bool
}
