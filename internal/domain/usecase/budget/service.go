// Package budget manages budgets, their category allocations and spending
// reports.
package budget

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/finance-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/query"
)

// Service implements the budget use case
type Service struct {
	users            persistence.Delegate[entity.User]
	categories       persistence.Delegate[entity.Category]
	transactions     persistence.Delegate[entity.Transaction]
	budgets          persistence.Delegate[entity.Budget]
	budgetCategories persistence.Delegate[entity.BudgetCategory]
	uow              persistence.UnitOfWork
	logger           coreport.Logger
}

var _ usecase.BudgetUseCase = (*Service)(nil)

// NewService creates a new budget Service
func NewService(ledger persistence.Ledger, logger coreport.Logger) *Service {
	return &Service{
		users:            ledger.Users,
		categories:       ledger.Categories,
		transactions:     ledger.Transactions,
		budgets:          ledger.Budgets,
		budgetCategories: ledger.BudgetCategories,
		uow:              ledger.UnitOfWork,
		logger:           logger,
	}
}

// Create opens a budget for userID
func (s *Service) Create(ctx context.Context, userID string, req usecase.CreateBudgetRequest) (*entity.Budget, error) {
	const op = "create"
	name := strings.TrimSpace(req.Name)
	switch {
	case name == "":
		return nil, errs.NewValidationError("Budget", op, "name", "name must not be empty")
	case !req.Currency.IsValid():
		return nil, errs.NewValidationError("Budget", op, "currency", "unknown currency %q", req.Currency)
	case req.TotalAmount.IsNegative():
		return nil, errs.NewValidationError("Budget", op, "totalAmount", "total amount must not be negative")
	case req.PeriodStart.IsZero() || req.PeriodEnd.IsZero():
		return nil, errs.NewValidationError("Budget", op, "periodStart", "period bounds must be set")
	case req.PeriodEnd.Before(req.PeriodStart):
		return nil, errs.NewValidationError("Budget", op, "periodEnd", "period end is before period start")
	}

	if _, err := s.users.FindUniqueOrThrow(ctx, query.UniqueArgs{Where: query.Unique("id", userID)}); err != nil {
		return nil, err
	}

	budget, err := s.budgets.Create(ctx, &entity.Budget{
		UserID:      userID,
		Name:        name,
		Currency:    req.Currency,
		TotalAmount: req.TotalAmount,
		PeriodStart: req.PeriodStart.UTC(),
		PeriodEnd:   req.PeriodEnd.UTC(),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Budget created", map[string]any{"budgetId": budget.ID, "userId": userID})
	return budget, nil
}

// SetAllocation creates or replaces the allocation of a category
func (s *Service) SetAllocation(ctx context.Context, budgetID, categoryID string, amount decimal.Decimal) (*entity.BudgetCategory, error) {
	if amount.IsNegative() {
		return nil, errs.NewValidationError("BudgetCategory", "setAllocation", "amount", "amount must not be negative")
	}

	var allocation *entity.BudgetCategory
	err := s.uow.Run(ctx, persistence.TxOptions{Isolation: persistence.Serializable}, func(txCtx context.Context) error {
		budget, err := s.budgets.FindUniqueOrThrow(txCtx, query.UniqueArgs{Where: query.Unique("id", budgetID)})
		if err != nil {
			return err
		}
		if _, err := s.categories.FindUniqueOrThrow(txCtx, query.UniqueArgs{Where: query.Unique("id", categoryID)}); err != nil {
			return err
		}

		others, err := s.budgetCategories.Aggregate(txCtx, query.AggregateArgs{
			Where: query.Fields(map[string]query.Filter{
				"budgetId":   query.Equals(budgetID),
				"categoryId": query.NotEquals(categoryID),
			}),
			Aggregates: query.Aggregates{Sum: []string{"amount"}},
		})
		if err != nil {
			return err
		}
		if total := others.SumOf("amount").Add(amount); total.GreaterThan(budget.TotalAmount) {
			return errs.NewValidationError("BudgetCategory", "setAllocation", "amount",
				"allocations would total %s, over the budget total %s",
				entity.FormatAmount(total), entity.FormatAmount(budget.TotalAmount))
		}

		allocation, err = s.budgetCategories.Upsert(txCtx,
			query.UniqueBy(map[string]any{"budgetId": budgetID, "categoryId": categoryID}),
			&entity.BudgetCategory{BudgetID: budgetID, CategoryID: categoryID, Amount: amount},
			query.Data{"amount": query.Set(amount)},
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Budget allocation set", map[string]any{
		"budgetId":   budgetID,
		"categoryId": categoryID,
		"amount":     entity.FormatAmount(amount),
	})
	return allocation, nil
}

// Report computes spending per allocated category over the budget period.
// Spending counts expense transactions of the budget owner in the budget
// currency.
func (s *Service) Report(ctx context.Context, budgetID string) (*usecase.BudgetReport, error) {
	budget, err := s.budgets.FindUniqueOrThrow(ctx, query.UniqueArgs{Where: query.Unique("id", budgetID)})
	if err != nil {
		return nil, err
	}

	allocations, err := s.budgetCategories.FindMany(ctx, query.FindArgs{
		Where:   query.Field("budgetId", query.Equals(budgetID)),
		OrderBy: []query.OrderBy{query.Desc("amount"), query.Asc("categoryId")},
		Include: []query.Include{{Relation: "category", Select: []string{"id", "name"}}},
	})
	if err != nil {
		return nil, err
	}

	spent, err := s.spentByCategory(ctx, budget, allocations)
	if err != nil {
		return nil, err
	}

	report := &usecase.BudgetReport{
		Budget:    budget,
		Allocated: decimal.Zero,
		Spent:     decimal.Zero,
	}
	for _, a := range allocations {
		line := usecase.BudgetLine{
			CategoryID: a.CategoryID,
			Allocated:  a.Amount,
			Spent:      spent[a.CategoryID],
		}
		if a.Category != nil {
			line.CategoryName = a.Category.Name
		}
		line.Remaining = line.Allocated.Sub(line.Spent)

		report.Lines = append(report.Lines, line)
		report.Allocated = report.Allocated.Add(line.Allocated)
		report.Spent = report.Spent.Add(line.Spent)
	}
	report.Remaining = budget.TotalAmount.Sub(report.Spent)
	report.Unallocated = budget.TotalAmount.Sub(report.Allocated)
	return report, nil
}

func (s *Service) spentByCategory(ctx context.Context, budget *entity.Budget, allocations []entity.BudgetCategory) (map[string]decimal.Decimal, error) {
	spent := make(map[string]decimal.Decimal, len(allocations))
	if len(allocations) == 0 {
		return spent, nil
	}

	ids := make([]any, len(allocations))
	for i, a := range allocations {
		ids[i] = a.CategoryID
		spent[a.CategoryID] = decimal.Zero
	}

	groups, err := s.transactions.GroupBy(ctx, query.GroupByArgs{
		By: []string{"categoryId"},
		Where: query.Fields(map[string]query.Filter{
			"userId":     query.Equals(budget.UserID),
			"type":       query.Equals(string(entity.TransactionTypeExpense)),
			"currency":   query.Equals(string(budget.Currency)),
			"date":       query.Between(budget.PeriodStart, budget.PeriodEnd),
			"categoryId": query.In(ids...),
		}),
		Aggregates: query.Aggregates{Sum: []string{"amount"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compute budget spending: %w", err)
	}

	for _, g := range groups {
		id, ok := g.Keys["categoryId"].(string)
		if !ok {
			continue
		}
		spent[id] = g.SumOf("amount")
	}
	return spent, nil
}
