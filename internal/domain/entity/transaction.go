package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single ledger entry. Amount is a non-negative magnitude;
// Type carries the direction.
type Transaction struct {
	ID          string          `gorm:"primaryKey;type:text" json:"id"`
	UserID      string          `gorm:"type:text;not null;index:idx_transactions_user_date,priority:1" json:"userId"`
	AccountID   string          `gorm:"type:text;not null;index" json:"accountId"`
	StatementID *string         `gorm:"type:text;index" json:"statementId"`
	Date        time.Time       `gorm:"not null;index:idx_transactions_user_date,priority:2" json:"date"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	Type        TransactionType `gorm:"type:text;not null" json:"type"`
	CategoryID  *string         `gorm:"type:text;index" json:"categoryId"`
	Currency    Currency        `gorm:"type:text;not null" json:"currency"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"createdAt"`

	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Account   *Account   `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Statement *Statement `gorm:"foreignKey:StatementID" json:"statement,omitempty"`
	Category  *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "transactions"
}

// BalanceEffect returns the signed change this transaction applies to its
// account balance. Transfers are recorded on both legs by the caller and
// leave the balance untouched here.
func (t *Transaction) BalanceEffect() decimal.Decimal {
	switch t.Type {
	case TransactionTypeIncome:
		return t.Amount
	case TransactionTypeExpense:
		return t.Amount.Neg()
	default:
		return decimal.Zero
	}
}

// IsCategorized reports whether a category is assigned
func (t *Transaction) IsCategorized() bool {
	return t.CategoryID != nil && *t.CategoryID != ""
}
