package dto

import (
	"time"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/usecase"
)

// CreateBudgetRequest represents the API request for a new budget
type CreateBudgetRequest struct {
	Name        string    `json:"name" binding:"required"`
	Currency    string    `json:"currency" binding:"required"`
	TotalAmount string    `json:"totalAmount" binding:"required"`
	PeriodStart time.Time `json:"periodStart" binding:"required"`
	PeriodEnd   time.Time `json:"periodEnd" binding:"required"`
}

// AllocationRequest represents the API request for a category allocation
type AllocationRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// BudgetResponse represents a budget
type BudgetResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Currency    string    `json:"currency"`
	TotalAmount string    `json:"totalAmount"`
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`
}

// NewBudgetResponse maps a budget entity
func NewBudgetResponse(b *entity.Budget) BudgetResponse {
	return BudgetResponse{
		ID:          b.ID,
		UserID:      b.UserID,
		Name:        b.Name,
		Currency:    string(b.Currency),
		TotalAmount: entity.FormatAmount(b.TotalAmount),
		PeriodStart: b.PeriodStart,
		PeriodEnd:   b.PeriodEnd,
	}
}

// AllocationResponse represents one budget category allocation
type AllocationResponse struct {
	BudgetID   string `json:"budgetId"`
	CategoryID string `json:"categoryId"`
	Amount     string `json:"amount"`
}

// NewAllocationResponse maps a budget category entity
func NewAllocationResponse(a *entity.BudgetCategory) AllocationResponse {
	return AllocationResponse{BudgetID: a.BudgetID, CategoryID: a.CategoryID, Amount: entity.FormatAmount(a.Amount)}
}

// BudgetLineResponse compares one allocation with what was spent
type BudgetLineResponse struct {
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	Allocated    string `json:"allocated"`
	Spent        string `json:"spent"`
	Remaining    string `json:"remaining"`
}

// BudgetReportResponse represents the state of a budget over its period
type BudgetReportResponse struct {
	Budget      BudgetResponse       `json:"budget"`
	Lines       []BudgetLineResponse `json:"lines"`
	Allocated   string               `json:"allocated"`
	Spent       string               `json:"spent"`
	Remaining   string               `json:"remaining"`
	Unallocated string               `json:"unallocated"`
}

// NewBudgetReportResponse maps a budget report
func NewBudgetReportResponse(r *usecase.BudgetReport) BudgetReportResponse {
	out := BudgetReportResponse{
		Budget:      NewBudgetResponse(r.Budget),
		Lines:       make([]BudgetLineResponse, len(r.Lines)),
		Allocated:   entity.FormatAmount(r.Allocated),
		Spent:       entity.FormatAmount(r.Spent),
		Remaining:   entity.FormatAmount(r.Remaining),
		Unallocated: entity.FormatAmount(r.Unallocated),
	}
	for i, l := range r.Lines {
		out.Lines[i] = BudgetLineResponse{
			CategoryID:   l.CategoryID,
			CategoryName: l.CategoryName,
			Allocated:    entity.FormatAmount(l.Allocated),
			Spent:        entity.FormatAmount(l.Spent),
			Remaining:    entity.FormatAmount(l.Remaining),
		}
	}
	return out
}
