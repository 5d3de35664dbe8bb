// Package usecase provides testify mocks of the use case ports.
package usecase

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/usecase"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

func expect(t testingT, m *mock.Mock) {
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
}

func ptr[T any](v any) *T {
	if v == nil {
		return nil
	}
	return v.(*T)
}

// MockUserUseCase is a mock of usecase.UserUseCase
type MockUserUseCase struct{ mock.Mock }

var _ usecase.UserUseCase = (*MockUserUseCase)(nil)

// NewMockUserUseCase creates a MockUserUseCase
func NewMockUserUseCase(t testingT) *MockUserUseCase {
	m := &MockUserUseCase{}
	expect(t, &m.Mock)
	return m
}

func (m *MockUserUseCase) Register(ctx context.Context, req usecase.RegisterRequest) (*entity.User, error) {
	ret := m.Called(ctx, req)
	return ptr[entity.User](ret.Get(0)), ret.Error(1)
}

func (m *MockUserUseCase) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	ret := m.Called(ctx, userID)
	return ptr[entity.User](ret.Get(0)), ret.Error(1)
}

func (m *MockUserUseCase) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	ret := m.Called(ctx, email, password)
	return ptr[entity.User](ret.Get(0)), ret.Error(1)
}

func (m *MockUserUseCase) CreateAccount(ctx context.Context, userID string, req usecase.CreateAccountRequest) (*entity.Account, error) {
	ret := m.Called(ctx, userID, req)
	return ptr[entity.Account](ret.Get(0)), ret.Error(1)
}

func (m *MockUserUseCase) ListAccounts(ctx context.Context, userID string) ([]entity.Account, error) {
	ret := m.Called(ctx, userID)
	accounts, _ := ret.Get(0).([]entity.Account)
	return accounts, ret.Error(1)
}

// MockTransactionUseCase is a mock of usecase.TransactionUseCase
type MockTransactionUseCase struct{ mock.Mock }

var _ usecase.TransactionUseCase = (*MockTransactionUseCase)(nil)

// NewMockTransactionUseCase creates a MockTransactionUseCase
func NewMockTransactionUseCase(t testingT) *MockTransactionUseCase {
	m := &MockTransactionUseCase{}
	expect(t, &m.Mock)
	return m
}

func (m *MockTransactionUseCase) Record(ctx context.Context, req usecase.RecordTransactionRequest) (*usecase.RecordResult, error) {
	ret := m.Called(ctx, req)
	return ptr[usecase.RecordResult](ret.Get(0)), ret.Error(1)
}

func (m *MockTransactionUseCase) List(ctx context.Context, req usecase.ListTransactionsRequest) (*usecase.TransactionPage, error) {
	ret := m.Called(ctx, req)
	return ptr[usecase.TransactionPage](ret.Get(0)), ret.Error(1)
}

func (m *MockTransactionUseCase) Summary(ctx context.Context, req usecase.SummaryRequest) (*usecase.LedgerSummary, error) {
	ret := m.Called(ctx, req)
	return ptr[usecase.LedgerSummary](ret.Get(0)), ret.Error(1)
}

// MockStatementUseCase is a mock of usecase.StatementUseCase
type MockStatementUseCase struct{ mock.Mock }

var _ usecase.StatementUseCase = (*MockStatementUseCase)(nil)

// NewMockStatementUseCase creates a MockStatementUseCase
func NewMockStatementUseCase(t testingT) *MockStatementUseCase {
	m := &MockStatementUseCase{}
	expect(t, &m.Mock)
	return m
}

func (m *MockStatementUseCase) Import(ctx context.Context, req usecase.ImportStatementRequest) (*usecase.ImportResult, error) {
	ret := m.Called(ctx, req)
	return ptr[usecase.ImportResult](ret.Get(0)), ret.Error(1)
}

// MockCategoryUseCase is a mock of usecase.CategoryUseCase
type MockCategoryUseCase struct{ mock.Mock }

var _ usecase.CategoryUseCase = (*MockCategoryUseCase)(nil)

// NewMockCategoryUseCase creates a MockCategoryUseCase
func NewMockCategoryUseCase(t testingT) *MockCategoryUseCase {
	m := &MockCategoryUseCase{}
	expect(t, &m.Mock)
	return m
}

func (m *MockCategoryUseCase) List(ctx context.Context) ([]entity.Category, error) {
	ret := m.Called(ctx)
	categories, _ := ret.Get(0).([]entity.Category)
	return categories, ret.Error(1)
}

func (m *MockCategoryUseCase) Create(ctx context.Context, req usecase.CreateCategoryRequest) (*entity.Category, error) {
	ret := m.Called(ctx, req)
	return ptr[entity.Category](ret.Get(0)), ret.Error(1)
}

// MockBudgetUseCase is a mock of usecase.BudgetUseCase
type MockBudgetUseCase struct{ mock.Mock }

var _ usecase.BudgetUseCase = (*MockBudgetUseCase)(nil)

// NewMockBudgetUseCase creates a MockBudgetUseCase
func NewMockBudgetUseCase(t testingT) *MockBudgetUseCase {
	m := &MockBudgetUseCase{}
	expect(t, &m.Mock)
	return m
}

func (m *MockBudgetUseCase) Create(ctx context.Context, userID string, req usecase.CreateBudgetRequest) (*entity.Budget, error) {
	ret := m.Called(ctx, userID, req)
	return ptr[entity.Budget](ret.Get(0)), ret.Error(1)
}

func (m *MockBudgetUseCase) SetAllocation(ctx context.Context, budgetID, categoryID string, amount decimal.Decimal) (*entity.BudgetCategory, error) {
	ret := m.Called(ctx, budgetID, categoryID, amount)
	return ptr[entity.BudgetCategory](ret.Get(0)), ret.Error(1)
}

func (m *MockBudgetUseCase) Report(ctx context.Context, budgetID string) (*usecase.BudgetReport, error) {
	ret := m.Called(ctx, budgetID)
	return ptr[usecase.BudgetReport](ret.Get(0)), ret.Error(1)
}
