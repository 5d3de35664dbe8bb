package entity

import "slices"

// AccountType classifies an Account
type AccountType string

// AccountType values
const (
	AccountTypeChecking   AccountType = "CHECKING"
	AccountTypeSavings    AccountType = "SAVINGS"
	AccountTypeCreditCard AccountType = "CREDIT_CARD"
	AccountTypeInvestment AccountType = "INVESTMENT"
	AccountTypeLoan       AccountType = "LOAN"
	AccountTypeWallet     AccountType = "WALLET"
)

// Values lists every AccountType in declaration order
func (AccountType) Values() []string {
	return []string{"CHECKING", "SAVINGS", "CREDIT_CARD", "INVESTMENT", "LOAN", "WALLET"}
}

// IsValid reports whether t is a declared AccountType
func (t AccountType) IsValid() bool { return slices.Contains(t.Values(), string(t)) }

// Currency is an ISO 4217 code supported by the ledger
type Currency string

// Currency values
const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyKES Currency = "KES"
)

// Values lists every Currency in declaration order
func (Currency) Values() []string { return []string{"USD", "EUR", "GBP", "KES"} }

// IsValid reports whether c is a declared Currency
func (c Currency) IsValid() bool { return slices.Contains(c.Values(), string(c)) }

// FileType is the format of an uploaded statement
type FileType string

// FileType values
const (
	FileTypeCSV FileType = "csv"
	FileTypePDF FileType = "pdf"
)

// Values lists every FileType in declaration order
func (FileType) Values() []string { return []string{"csv", "pdf"} }

// IsValid reports whether f is a declared FileType
func (f FileType) IsValid() bool { return slices.Contains(f.Values(), string(f)) }

// CategoryType distinguishes built-in categories from user-defined ones
type CategoryType string

// CategoryType values
const (
	CategoryTypeSystem CategoryType = "system"
	CategoryTypeUser   CategoryType = "user"
)

// Values lists every CategoryType in declaration order
func (CategoryType) Values() []string { return []string{"system", "user"} }

// IsValid reports whether c is a declared CategoryType
func (c CategoryType) IsValid() bool { return slices.Contains(c.Values(), string(c)) }

// TransactionType is the direction of a Transaction
type TransactionType string

// TransactionType values
const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// Values lists every TransactionType in declaration order
func (TransactionType) Values() []string { return []string{"income", "expense", "transfer"} }

// IsValid reports whether t is a declared TransactionType
func (t TransactionType) IsValid() bool { return slices.Contains(t.Values(), string(t)) }
