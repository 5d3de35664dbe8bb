package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
)

// CreateCategoryRequest represents a user-defined category
type CreateCategoryRequest struct {
	Name     string
	Keywords []string
}

// CategoryUseCase manages categories
type CategoryUseCase interface {
	// List returns every category, system categories first
	List(ctx context.Context) ([]entity.Category, error)
	// Create adds a user category
	Create(ctx context.Context, req CreateCategoryRequest) (*entity.Category, error)
}

// CreateBudgetRequest represents a new budget
type CreateBudgetRequest struct {
	Name        string
	Currency    entity.Currency
	TotalAmount decimal.Decimal
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// BudgetLine compares one category allocation with what was spent
type BudgetLine struct {
	CategoryID   string
	CategoryName string
	Allocated    decimal.Decimal
	Spent        decimal.Decimal
	Remaining    decimal.Decimal
}

// BudgetReport is the state of a budget over its period
type BudgetReport struct {
	Budget      *entity.Budget
	Lines       []BudgetLine
	Allocated   decimal.Decimal
	Spent       decimal.Decimal
	Remaining   decimal.Decimal
	Unallocated decimal.Decimal
}

// BudgetUseCase manages budgets and their category allocations
type BudgetUseCase interface {
	// Create opens a budget for userID
	Create(ctx context.Context, userID string, req CreateBudgetRequest) (*entity.Budget, error)

	// SetAllocation creates or replaces the allocation of a category. The
	// allocations of a budget may not exceed its total.
	SetAllocation(ctx context.Context, budgetID, categoryID string, amount decimal.Decimal) (*entity.BudgetCategory, error)

	// Report computes spending per allocated category over the budget period
	Report(ctx context.Context, budgetID string) (*BudgetReport, error)
}
