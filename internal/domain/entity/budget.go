package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is a spending plan for a period, split into per-category allocations
type Budget struct {
	ID          string          `gorm:"primaryKey;type:text" json:"id"`
	UserID      string          `gorm:"type:text;not null;index" json:"userId"`
	Name        string          `gorm:"type:text;not null" json:"name"`
	Currency    Currency        `gorm:"type:text;not null" json:"currency"`
	TotalAmount decimal.Decimal `gorm:"type:numeric;not null" json:"totalAmount"`
	PeriodStart time.Time       `gorm:"not null" json:"periodStart"`
	PeriodEnd   time.Time       `gorm:"not null" json:"periodEnd"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"createdAt"`

	User       *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Categories []BudgetCategory `gorm:"foreignKey:BudgetID" json:"categories,omitempty"`
}

// TableName specifies the table name for Budget
func (Budget) TableName() string {
	return "budgets"
}

// Covers reports whether t falls inside the budget period (inclusive)
func (b *Budget) Covers(t time.Time) bool {
	return !t.Before(b.PeriodStart) && !t.After(b.PeriodEnd)
}

// BudgetCategory is the allocation of a budget to one category. The pair
// (BudgetID, CategoryID) is the primary key.
type BudgetCategory struct {
	BudgetID   string          `gorm:"primaryKey;type:text" json:"budgetId"`
	CategoryID string          `gorm:"primaryKey;type:text" json:"categoryId"`
	Amount     decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`

	Budget   *Budget   `gorm:"foreignKey:BudgetID" json:"budget,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// TableName specifies the table name for BudgetCategory
func (BudgetCategory) TableName() string {
	return "budget_categories"
}
