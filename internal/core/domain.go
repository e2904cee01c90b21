package core

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	KYCPending    KYCStatus = "Pending"
	KYCVerified   KYCStatus = "Verified"
	KYCIncomplete KYCStatus = "Incomplete"
)

const (
	OwnerInvestor    OwnerKind = "investor"
	OwnerPortfolio   OwnerKind = "portfolio"
	OwnerSubMarketor OwnerKind = "sub_marketor"
	OwnerAdmin       OwnerKind = "admin"
)

type (
	KYCStatus string

	// OwnerKind names the single entity kind a bank account belongs to.
	OwnerKind string

	BankAccount struct {
		ID                string `json:"id" yaml:"id"`
		IFSC              string `json:"ifsc" yaml:"ifsc"`
		BankName          string `json:"bankName" yaml:"bankName"`
		Branch            string `json:"branch" yaml:"branch"`
		AccountHolderName string `json:"accountHolderName" yaml:"accountHolderName"`
		AccountNumber     string `json:"accountNumber" yaml:"accountNumber"`
		PassbookRef       string `json:"passbookRef,omitempty" yaml:"passbookRef"`
		IsActive          bool   `json:"isActive" yaml:"isActive"`
	}

	// Investment is a fixed-term deposit held by one investor. Amounts and
	// percentages are decimal strings; dates are YYYY-MM-DD.
	Investment struct {
		ID                    string `json:"id" yaml:"id"`
		Amount                string `json:"amount" yaml:"amount"`
		StartDate             string `json:"startDate" yaml:"startDate"`
		EndDate               string `json:"endDate" yaml:"endDate"`
		InterestRate          string `json:"interestRate" yaml:"interestRate"`
		BankAccountID         string `json:"bankAccountId" yaml:"bankAccountId"`
		SenderBankID          string `json:"senderBankId" yaml:"senderBankId"`
		PayoutDate            string `json:"payoutDate" yaml:"payoutDate"`
		PortfolioID           string `json:"portfolioId,omitempty" yaml:"portfolioId"`
		SubMarketorID         string `json:"subMarketorId,omitempty" yaml:"subMarketorId"`
		MarketorCommission    string `json:"marketorCommission" yaml:"marketorCommission"`
		SubMarketorCommission string `json:"subMarketorCommission" yaml:"subMarketorCommission"`
	}

	Investor struct {
		ID           string        `json:"id" yaml:"id"`
		FirstName    string        `json:"firstName" yaml:"firstName"`
		LastName     string        `json:"lastName" yaml:"lastName"`
		Gender       string        `json:"gender" yaml:"gender"`
		DOB          string        `json:"dob" yaml:"dob"`
		Mobile       string        `json:"mobile" yaml:"mobile"`
		Email        string        `json:"email" yaml:"email"`
		Aadhar       string        `json:"aadhar" yaml:"aadhar"`
		PAN          string        `json:"pan" yaml:"pan"`
		Address      string        `json:"address" yaml:"address"`
		City         string        `json:"city" yaml:"city"`
		District     string        `json:"district" yaml:"district"`
		State        string        `json:"state" yaml:"state"`
		Pincode      string        `json:"pincode" yaml:"pincode"`
		KYCStatus    KYCStatus     `json:"kycStatus" yaml:"kycStatus"`
		Notes        string        `json:"notes,omitempty" yaml:"notes"`
		Investments  []Investment  `json:"investments" yaml:"investments"`
		BankAccounts []BankAccount `json:"bankAccounts" yaml:"bankAccounts"`
	}

	SubMarketor struct {
		ID             string        `json:"id" yaml:"id"`
		PortfolioID    string        `json:"portfolioId" yaml:"portfolioId"`
		Name           string        `json:"name" yaml:"name"`
		Phone          string        `json:"phone" yaml:"phone"`
		Email          string        `json:"email" yaml:"email"`
		PAN            string        `json:"pan" yaml:"pan"`
		Aadhar         string        `json:"aadhar" yaml:"aadhar"`
		Address        string        `json:"address" yaml:"address"`
		City           string        `json:"city" yaml:"city"`
		State          string        `json:"state" yaml:"state"`
		Pincode        string        `json:"pincode" yaml:"pincode"`
		CommissionRate string        `json:"commissionRate" yaml:"commissionRate"`
		IsActive       bool          `json:"isActive" yaml:"isActive"`
		BankAccounts   []BankAccount `json:"bankAccounts" yaml:"bankAccounts"`
	}

	// Portfolio is a marketer. Raised totals are never stored; they are
	// projected from investments when read.
	Portfolio struct {
		ID                    string        `json:"id" yaml:"id"`
		Name                  string        `json:"name" yaml:"name"`
		Description           string        `json:"description" yaml:"description"`
		Email                 string        `json:"email" yaml:"email"`
		Phone                 string        `json:"phone" yaml:"phone"`
		PAN                   string        `json:"pan" yaml:"pan"`
		Aadhar                string        `json:"aadhar" yaml:"aadhar"`
		Address               string        `json:"address" yaml:"address"`
		City                  string        `json:"city" yaml:"city"`
		State                 string        `json:"state" yaml:"state"`
		Pincode               string        `json:"pincode" yaml:"pincode"`
		DefaultCommissionRate string        `json:"defaultCommissionRate" yaml:"defaultCommissionRate"`
		IsActive              bool          `json:"isActive" yaml:"isActive"`
		BankAccounts          []BankAccount `json:"bankAccounts" yaml:"bankAccounts"`
		SubMarketors          []SubMarketor `json:"subMarketors" yaml:"subMarketors"`
		CreatedAt             time.Time     `json:"createdAt" yaml:"createdAt"`
		UpdatedAt             time.Time     `json:"updatedAt" yaml:"updatedAt"`
	}

	AdminProfile struct {
		Name         string        `json:"name" yaml:"name"`
		Email        string        `json:"email" yaml:"email"`
		Phone        string        `json:"phone" yaml:"phone"`
		BankAccounts []BankAccount `json:"bankAccounts" yaml:"bankAccounts"`
	}
)

var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrInvalidReference = errors.New("invalid reference")
	ErrConflict         = errors.New("conflict")
)

// FieldError reports a single invalid field. It matches ErrValidation.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *FieldError) Unwrap() error {
	return ErrValidation
}

func fieldErr(field, format string, args ...any) error {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

var (
	panPattern    = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	ifscPattern   = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	digitsPattern = regexp.MustCompile(`^[0-9]+$`)
)

var payoutDays = map[string]bool{"": true, "10th": true, "20th": true, "30th": true}

func (k KYCStatus) Valid() bool {
	switch k {
	case KYCPending, KYCVerified, KYCIncomplete:
		return true
	}
	return false
}

// FullName joins first and last name the way reports display investors.
func (i Investor) FullName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

// FindInvestment returns the index of the investment with the given id or -1.
func (i Investor) FindInvestment(id string) int {
	for idx, inv := range i.Investments {
		if inv.ID == id {
			return idx
		}
	}
	return -1
}

// FindSubMarketor returns the sub-marketor with the given id, if it belongs to p.
func (p Portfolio) FindSubMarketor(id string) (SubMarketor, bool) {
	for _, sm := range p.SubMarketors {
		if sm.ID == id {
			return sm, true
		}
	}
	return SubMarketor{}, false
}

func (b BankAccount) Validate() error {
	if strings.TrimSpace(b.AccountHolderName) == "" {
		return fieldErr("accountHolderName", "required")
	}
	num := strings.TrimSpace(b.AccountNumber)
	if num == "" {
		return fieldErr("accountNumber", "required")
	}
	if !digitsPattern.MatchString(num) || len(num) < 6 || len(num) > 20 {
		return fieldErr("accountNumber", "must be 6 to 20 digits")
	}
	if b.IFSC != "" && !ifscPattern.MatchString(strings.ToUpper(b.IFSC)) {
		return fieldErr("ifsc", "invalid IFSC code %q", b.IFSC)
	}
	return nil
}

func (inv Investment) Validate() error {
	amount, err := ParseDecimal(inv.Amount)
	if err != nil || !amount.IsPositive() {
		return fieldErr("amount", "must be a positive number")
	}
	rate, err := ParseDecimal(inv.InterestRate)
	if err != nil || rate.IsNegative() || rate.GreaterThan(hundred) {
		return fieldErr("interestRate", "must be a percentage between 0 and 100")
	}
	for field, value := range map[string]string{
		"marketorCommission":    inv.MarketorCommission,
		"subMarketorCommission": inv.SubMarketorCommission,
	} {
		if strings.TrimSpace(value) == "" {
			continue
		}
		pct, err := ParseDecimal(value)
		if err != nil || pct.IsNegative() || pct.GreaterThan(hundred) {
			return fieldErr(field, "must be a percentage between 0 and 100")
		}
	}
	start, err := ParseDate(inv.StartDate)
	if err != nil {
		return fieldErr("startDate", "must be a YYYY-MM-DD date")
	}
	end, err := ParseDate(inv.EndDate)
	if err != nil {
		return fieldErr("endDate", "must be a YYYY-MM-DD date")
	}
	if end.Before(start.Time) {
		return fieldErr("endDate", "must not be before startDate")
	}
	if !payoutDays[inv.PayoutDate] {
		return fieldErr("payoutDate", "must be one of 10th, 20th, 30th")
	}
	if inv.SubMarketorID != "" && inv.PortfolioID == "" {
		return fieldErr("subMarketorId", "requires portfolioId")
	}
	return nil
}

// CheckReferences enforces that a sub-marketor reference resolves inside the
// referenced portfolio.
func (inv Investment) CheckReferences(portfolio *Portfolio) error {
	if inv.PortfolioID == "" {
		return nil
	}
	if portfolio == nil || portfolio.ID != inv.PortfolioID {
		return fmt.Errorf("%w: portfolio %s does not exist", ErrInvalidReference, inv.PortfolioID)
	}
	if inv.SubMarketorID == "" {
		return nil
	}
	if _, ok := portfolio.FindSubMarketor(inv.SubMarketorID); !ok {
		return fmt.Errorf("%w: sub-marketor %s does not belong to portfolio %s", ErrInvalidReference, inv.SubMarketorID, inv.PortfolioID)
	}
	return nil
}

func (i Investor) Validate() error {
	if strings.TrimSpace(i.FirstName) == "" {
		return fieldErr("firstName", "required")
	}
	if strings.TrimSpace(i.LastName) == "" {
		return fieldErr("lastName", "required")
	}
	if i.KYCStatus != "" && !i.KYCStatus.Valid() {
		return fieldErr("kycStatus", "must be one of Pending, Verified, Incomplete")
	}
	if i.DOB != "" {
		if _, err := ParseDate(i.DOB); err != nil {
			return fieldErr("dob", "must be a YYYY-MM-DD date")
		}
	}
	if err := validateContact(i.Email, i.Mobile, i.PAN, i.Aadhar, i.Pincode); err != nil {
		return err
	}
	for _, inv := range i.Investments {
		if err := inv.Validate(); err != nil {
			return err
		}
	}
	for _, b := range i.BankAccounts {
		if err := b.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (p Portfolio) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fieldErr("name", "required")
	}
	if len(p.Name) > 200 {
		return fieldErr("name", "too long (max 200 characters)")
	}
	if err := validateRate("defaultCommissionRate", p.DefaultCommissionRate); err != nil {
		return err
	}
	if err := validateContact(p.Email, p.Phone, p.PAN, p.Aadhar, p.Pincode); err != nil {
		return err
	}
	for _, b := range p.BankAccounts {
		if err := b.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (s SubMarketor) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fieldErr("name", "required")
	}
	if err := validateRate("commissionRate", s.CommissionRate); err != nil {
		return err
	}
	if err := validateContact(s.Email, s.Phone, s.PAN, s.Aadhar, s.Pincode); err != nil {
		return err
	}
	for _, b := range s.BankAccounts {
		if err := b.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (a AdminProfile) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fieldErr("name", "required")
	}
	return validateContact(a.Email, a.Phone, "", "", "")
}

// stripSeparators drops the dashes and spaces people type into numbers.
func stripSeparators(s string) string {
	return strings.NewReplacer("-", "", " ", "").Replace(s)
}

func validateRate(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	rate, err := ParseDecimal(value)
	if err != nil || rate.IsNegative() || rate.GreaterThan(hundred) {
		return fieldErr(field, "must be a percentage between 0 and 100")
	}
	return nil
}

// validateContact checks optional identity and contact fields; empty values pass.
func validateContact(email, phone, pan, aadhar, pincode string) error {
	phone = stripSeparators(phone)
	aadhar = stripSeparators(aadhar)
	if email != "" && (!strings.Contains(email, "@") || strings.ContainsAny(email, " \t")) {
		return fieldErr("email", "invalid email %q", email)
	}
	if phone != "" && (!digitsPattern.MatchString(phone) || len(phone) != 10) {
		return fieldErr("phone", "must be 10 digits")
	}
	if pan != "" && !panPattern.MatchString(strings.ToUpper(pan)) {
		return fieldErr("pan", "invalid PAN %q", pan)
	}
	if aadhar != "" && (!digitsPattern.MatchString(aadhar) || len(aadhar) != 12) {
		return fieldErr("aadhar", "must be 12 digits")
	}
	if pincode != "" && (!digitsPattern.MatchString(pincode) || len(pincode) != 6) {
		return fieldErr("pincode", "must be 6 digits")
	}
	return nil
}
