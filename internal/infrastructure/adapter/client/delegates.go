package client

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/finance-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/query"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/schema"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/repository"
)

// relatedArgs narrows args to the rows of relation related to parent. ok is
// false when parent's foreign key is null.
func relatedArgs(m *schema.Model, relation string, parent any, args query.FindArgs) (query.FindArgs, bool, error) {
	rel, found := m.Relation(relation)
	if !found {
		return args, false, errs.NewValidationError(m.Name, relation, "relation", "%s has no relation %q", m.Name, relation)
	}
	where, ok := repository.RelatedWhere(rel, parent)
	if !ok {
		return args, false, nil
	}
	if !args.Where.IsEmpty() {
		where = query.And(where, args.Where)
	}
	args.Where = where
	return args, true, nil
}

// loadMany reads the rows of a to-many relation of parent. args filter,
// order and paginate them like FindMany.
func loadMany[P, C any](ctx context.Context, owner persistence.Delegate[P], parent *P, relation string, target persistence.Delegate[C], args query.FindArgs) ([]C, error) {
	if parent == nil {
		return nil, errs.NewValidationError(owner.Model().Name, relation, "parent", "parent row is nil")
	}
	args, ok, err := relatedArgs(owner.Model(), relation, parent, args)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []C{}, nil
	}
	return target.FindMany(ctx, args)
}

// loadOne reads the row of a to-one relation of parent, or nil when the
// foreign key is null.
func loadOne[P, C any](ctx context.Context, owner persistence.Delegate[P], parent *P, relation string, target persistence.Delegate[C], args query.UniqueArgs) (*C, error) {
	if parent == nil {
		return nil, errs.NewValidationError(owner.Model().Name, relation, "parent", "parent row is nil")
	}
	find, ok, err := relatedArgs(owner.Model(), relation, parent, query.FindArgs{Where: args.Where, Select: args.Select, Include: args.Include})
	if err != nil || !ok {
		return nil, err
	}
	return target.FindFirst(ctx, find)
}

// UserDelegate reads and writes users
type UserDelegate struct {
	persistence.Delegate[entity.User]
	client *Client
}

// Accounts returns the accounts owned by user
func (d *UserDelegate) Accounts(ctx context.Context, user *entity.User, args query.FindArgs) ([]entity.Account, error) {
	return loadMany(ctx, d.Delegate, user, "accounts", d.client.Accounts.Delegate, args)
}

// Statements returns the statements uploaded by user
func (d *UserDelegate) Statements(ctx context.Context, user *entity.User, args query.FindArgs) ([]entity.Statement, error) {
	return loadMany(ctx, d.Delegate, user, "statements", d.client.Statements.Delegate, args)
}

// Transactions returns the transactions of user
func (d *UserDelegate) Transactions(ctx context.Context, user *entity.User, args query.FindArgs) ([]entity.Transaction, error) {
	return loadMany(ctx, d.Delegate, user, "transactions", d.client.Transactions.Delegate, args)
}

// Budgets returns the budgets of user
func (d *UserDelegate) Budgets(ctx context.Context, user *entity.User, args query.FindArgs) ([]entity.Budget, error) {
	return loadMany(ctx, d.Delegate, user, "budgets", d.client.Budgets.Delegate, args)
}

// AccountDelegate reads and writes accounts
type AccountDelegate struct {
	persistence.Delegate[entity.Account]
	client *Client
}

// User returns the owner of account
func (d *AccountDelegate) User(ctx context.Context, account *entity.Account, args query.UniqueArgs) (*entity.User, error) {
	return loadOne(ctx, d.Delegate, account, "user", d.client.Users.Delegate, args)
}

// Transactions returns the transactions booked on account
func (d *AccountDelegate) Transactions(ctx context.Context, account *entity.Account, args query.FindArgs) ([]entity.Transaction, error) {
	return loadMany(ctx, d.Delegate, account, "transactions", d.client.Transactions.Delegate, args)
}

// Statements returns the statements imported into account
func (d *AccountDelegate) Statements(ctx context.Context, account *entity.Account, args query.FindArgs) ([]entity.Statement, error) {
	return loadMany(ctx, d.Delegate, account, "statements", d.client.Statements.Delegate, args)
}

// AdjustBalance adds delta to the balance of the account in one UPDATE and
// returns the account's new state.
func (d *AccountDelegate) AdjustBalance(ctx context.Context, accountID string, delta decimal.Decimal) (*entity.Account, error) {
	return d.Update(ctx, query.Unique("id", accountID), query.Data{"balance": query.Increment(delta)})
}

// StatementDelegate reads and writes statements
type StatementDelegate struct {
	persistence.Delegate[entity.Statement]
	client       *Client
	timeProvider coreport.TimeProvider
}

// User returns the user who uploaded statement
func (d *StatementDelegate) User(ctx context.Context, statement *entity.Statement, args query.UniqueArgs) (*entity.User, error) {
	return loadOne(ctx, d.Delegate, statement, "user", d.client.Users.Delegate, args)
}

// Account returns the account statement belongs to
func (d *StatementDelegate) Account(ctx context.Context, statement *entity.Statement, args query.UniqueArgs) (*entity.Account, error) {
	return loadOne(ctx, d.Delegate, statement, "account", d.client.Accounts.Delegate, args)
}

// Transactions returns the transactions imported from statement
func (d *StatementDelegate) Transactions(ctx context.Context, statement *entity.Statement, args query.FindArgs) ([]entity.Transaction, error) {
	return loadMany(ctx, d.Delegate, statement, "transactions", d.client.Transactions.Delegate, args)
}

// MarkProcessed sets processedAt of the statement, once. A second call
// fails with ErrStatementAlreadyProcessed; an unknown id with NotFoundError.
// A zero at stamps the current time.
func (d *StatementDelegate) MarkProcessed(ctx context.Context, id string, at time.Time) (*entity.Statement, error) {
	const op = "markProcessed"
	if at.IsZero() {
		at = d.timeProvider.Now()
	}
	n, err := d.UpdateMany(ctx, query.And(
		query.Unique("id", id),
		query.Field("processedAt", query.Equals(query.Null)),
	), query.Data{"processedAt": at})
	if err != nil {
		return nil, err
	}
	if n == 0 {
		existing, err := d.FindUnique(ctx, query.UniqueArgs{Where: query.Unique("id", id)})
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, errs.NewNotFoundError(d.Model().Name, op)
		}
		return nil, fmt.Errorf("statement %s: %w", id, errs.ErrStatementAlreadyProcessed)
	}
	return d.FindUniqueOrThrow(ctx, query.UniqueArgs{Where: query.Unique("id", id)})
}

// CategoryDelegate reads and writes categories
type CategoryDelegate struct {
	persistence.Delegate[entity.Category]
	client *Client
}

// Transactions returns the transactions filed under category
func (d *CategoryDelegate) Transactions(ctx context.Context, category *entity.Category, args query.FindArgs) ([]entity.Transaction, error) {
	return loadMany(ctx, d.Delegate, category, "transactions", d.client.Transactions.Delegate, args)
}

// BudgetCategories returns the budget lines that use category
func (d *CategoryDelegate) BudgetCategories(ctx context.Context, category *entity.Category, args query.FindArgs) ([]entity.BudgetCategory, error) {
	return loadMany(ctx, d.Delegate, category, "budgetCategories", d.client.BudgetCategories.Delegate, args)
}

// TransactionDelegate reads and writes transactions
type TransactionDelegate struct {
	persistence.Delegate[entity.Transaction]
	client *Client
}

// User returns the owner of tx
func (d *TransactionDelegate) User(ctx context.Context, tx *entity.Transaction, args query.UniqueArgs) (*entity.User, error) {
	return loadOne(ctx, d.Delegate, tx, "user", d.client.Users.Delegate, args)
}

// Account returns the account tx is booked on
func (d *TransactionDelegate) Account(ctx context.Context, tx *entity.Transaction, args query.UniqueArgs) (*entity.Account, error) {
	return loadOne(ctx, d.Delegate, tx, "account", d.client.Accounts.Delegate, args)
}

// Statement returns the statement tx was imported from, or nil
func (d *TransactionDelegate) Statement(ctx context.Context, tx *entity.Transaction, args query.UniqueArgs) (*entity.Statement, error) {
	return loadOne(ctx, d.Delegate, tx, "statement", d.client.Statements.Delegate, args)
}

// Category returns the category of tx, or nil when it is uncategorized
func (d *TransactionDelegate) Category(ctx context.Context, tx *entity.Transaction, args query.UniqueArgs) (*entity.Category, error) {
	return loadOne(ctx, d.Delegate, tx, "category", d.client.Categories.Delegate, args)
}

// BudgetDelegate reads and writes budgets
type BudgetDelegate struct {
	persistence.Delegate[entity.Budget]
	client *Client
}

// User returns the owner of budget
func (d *BudgetDelegate) User(ctx context.Context, budget *entity.Budget, args query.UniqueArgs) (*entity.User, error) {
	return loadOne(ctx, d.Delegate, budget, "user", d.client.Users.Delegate, args)
}

// Categories returns the category lines of budget
func (d *BudgetDelegate) Categories(ctx context.Context, budget *entity.Budget, args query.FindArgs) ([]entity.BudgetCategory, error) {
	return loadMany(ctx, d.Delegate, budget, "categories", d.client.BudgetCategories.Delegate, args)
}

// BudgetCategoryDelegate reads and writes the category allocations of
// budgets
type BudgetCategoryDelegate struct {
	persistence.Delegate[entity.BudgetCategory]
	client *Client
}

// Budget returns the budget bc belongs to
func (d *BudgetCategoryDelegate) Budget(ctx context.Context, bc *entity.BudgetCategory, args query.UniqueArgs) (*entity.Budget, error) {
	return loadOne(ctx, d.Delegate, bc, "budget", d.client.Budgets.Delegate, args)
}

// Category returns the category bc limits
func (d *BudgetCategoryDelegate) Category(ctx context.Context, bc *entity.BudgetCategory, args query.UniqueArgs) (*entity.Category, error) {
	return loadOne(ctx, d.Delegate, bc, "category", d.client.Categories.Delegate, args)
}
