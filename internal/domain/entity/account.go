package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a money container (bank account, card, wallet) owned by a user
type Account struct {
	ID        string          `gorm:"primaryKey;type:text" json:"id"`
	UserID    string          `gorm:"type:text;not null;index" json:"userId"`
	Name      string          `gorm:"type:text;not null" json:"name"`
	Type      AccountType     `gorm:"type:text;not null" json:"type"`
	Currency  Currency        `gorm:"type:text;not null" json:"currency"`
	Balance   decimal.Decimal `gorm:"type:numeric;not null" json:"balance"`
	IsDefault bool            `gorm:"not null" json:"isDefault"`
	CreatedAt time.Time       `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time       `gorm:"not null;autoUpdateTime" json:"updatedAt"`

	User         *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:AccountID" json:"transactions,omitempty"`
	Statements   []Statement   `gorm:"foreignKey:AccountID" json:"statements,omitempty"`
}

// TableName specifies the table name for Account
func (Account) TableName() string {
	return "accounts"
}

// IsLiability reports whether a positive balance on the account is money owed
func (a *Account) IsLiability() bool {
	return a.Type == AccountTypeCreditCard || a.Type == AccountTypeLoan
}
