//go:build integration

package client_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/query"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/client"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/logger"
)

type LedgerSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	db        *database.TestDBManager
	client    *client.Client
	ctx       context.Context
}

func TestLedgerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("integration tests need docker")
	}
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) SetupSuite() {
	s.ctx = context.Background()

	pg, err := tcpostgres.Run(s.ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("ledger_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = pg

	dsn, err := pg.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	log := logger.NewNoopLogger()
	s.db = database.NewTestDBManager(s.T(), log, dsn)
	s.db.Connect(s.T())
	s.db.SetupTestDB(s.T())

	s.client, err = client.New(s.db.Manager.DB(), client.Options{
		Logger: log,
		Transaction: persistence.TxOptions{
			Isolation: persistence.ReadCommitted,
			MaxWait:   2 * time.Second,
			Timeout:   5 * time.Second,
		},
	})
	s.Require().NoError(err)
}

func (s *LedgerSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close(s.T())
	}
	if s.container != nil {
		_ = testcontainers.TerminateContainer(s.container)
	}
}

func (s *LedgerSuite) SetupTest() {
	s.db.TruncateLedger(s.T())
}

func (s *LedgerSuite) createUser(email string) *entity.User {
	user, err := s.client.Users.Create(s.ctx, &entity.User{Email: email, PasswordHash: "hash"})
	s.Require().NoError(err)
	return user
}

func (s *LedgerSuite) createAccount(user *entity.User, name string) *entity.Account {
	account, err := s.client.Accounts.Create(s.ctx, &entity.Account{
		UserID:   user.ID,
		Name:     name,
		Type:     entity.AccountTypeChecking,
		Currency: entity.CurrencyUSD,
		Balance:  decimal.Zero,
	})
	s.Require().NoError(err)
	return account
}

func (s *LedgerSuite) transaction(account *entity.Account, id, amount string, day int) entity.Transaction {
	value, kind := entity.SplitSigned(decimal.RequireFromString(amount))
	return entity.Transaction{
		ID:          id,
		UserID:      account.UserID,
		AccountID:   account.ID,
		Date:        time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC),
		Description: "line " + id,
		Amount:      value,
		Type:        kind,
		Currency:    account.Currency,
	}
}

func (s *LedgerSuite) TestCreateThenFindUnique() {
	name := "Ada"
	created, err := s.client.Users.Create(s.ctx, &entity.User{Email: "ada@example.com", PasswordHash: "hash", Name: &name})
	s.Require().NoError(err)
	s.NotEmpty(created.ID)

	found, err := s.client.Users.FindUnique(s.ctx, query.UniqueArgs{Where: query.Unique("id", created.ID)})
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal(created.ID, found.ID)
	s.Equal(created.Email, found.Email)
	s.Equal("Ada", *found.Name)
	s.WithinDuration(created.CreatedAt, found.CreatedAt, time.Millisecond)

	byEmail, err := s.client.Users.FindUnique(s.ctx, query.UniqueArgs{Where: query.Unique("email", "ada@example.com")})
	s.Require().NoError(err)
	s.Equal(created.ID, byEmail.ID)

	missing, err := s.client.Users.FindUnique(s.ctx, query.UniqueArgs{Where: query.Unique("id", "nope")})
	s.NoError(err)
	s.Nil(missing)

	_, err = s.client.Users.FindUniqueOrThrow(s.ctx, query.UniqueArgs{Where: query.Unique("id", "nope")})
	s.True(errs.IsNotFoundError(err))
}

func (s *LedgerSuite) TestDuplicateEmailIsUniqueViolation() {
	s.createUser("dup@example.com")

	_, err := s.client.Users.Create(s.ctx, &entity.User{Email: "dup@example.com", PasswordHash: "hash"})
	s.True(errs.IsUniqueViolation(err), "got %v", err)
}

func (s *LedgerSuite) TestUpsertTwiceKeepsOneRow() {
	where := query.Unique("email", "up@example.com")
	first, err := s.client.Users.Upsert(s.ctx, where,
		&entity.User{Email: "up@example.com", PasswordHash: "v1"},
		query.Data{"passwordHash": query.Set("v2")})
	s.Require().NoError(err)
	s.Equal("v1", first.PasswordHash)

	second, err := s.client.Users.Upsert(s.ctx, where,
		&entity.User{Email: "up@example.com", PasswordHash: "v1"},
		query.Data{"passwordHash": query.Set("v2")})
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)
	s.Equal("v2", second.PasswordHash)

	count, err := s.client.Users.Count(s.ctx, query.CountArgs{Where: query.Field("email", query.Equals("up@example.com"))})
	s.Require().NoError(err)
	s.Equal(int64(1), count.All)
}

func (s *LedgerSuite) TestDeleteManyThenCount() {
	user := s.createUser("del@example.com")
	account := s.createAccount(user, "Main")
	_, err := s.client.Transactions.CreateMany(s.ctx, []entity.Transaction{
		s.transaction(account, "t1", "-10", 1),
		s.transaction(account, "t2", "-20", 2),
		s.transaction(account, "t3", "30", 3),
	}, query.CreateManyOptions{})
	s.Require().NoError(err)

	where := query.Field("accountId", query.Equals(account.ID))
	deleted, err := s.client.Transactions.DeleteMany(s.ctx, where)
	s.Require().NoError(err)
	s.Equal(int64(3), deleted)

	count, err := s.client.Transactions.Count(s.ctx, query.CountArgs{Where: where})
	s.Require().NoError(err)
	s.Zero(count.All)
}

func (s *LedgerSuite) TestCreateManySkipDuplicates() {
	user := s.createUser("many@example.com")
	account := s.createAccount(user, "Main")
	_, err := s.client.Transactions.CreateMany(s.ctx, []entity.Transaction{
		s.transaction(account, "t1", "-1", 1),
		s.transaction(account, "t2", "-2", 2),
	}, query.CreateManyOptions{})
	s.Require().NoError(err)

	inserted, err := s.client.Transactions.CreateMany(s.ctx, []entity.Transaction{
		s.transaction(account, "t1", "-1", 1),
		s.transaction(account, "t2", "-2", 2),
		s.transaction(account, "t3", "-3", 3),
		s.transaction(account, "t4", "-4", 4),
		s.transaction(account, "t5", "-5", 5),
	}, query.CreateManyOptions{SkipDuplicates: true})
	s.Require().NoError(err)
	s.Equal(int64(3), inserted)

	_, err = s.client.Transactions.CreateMany(s.ctx, []entity.Transaction{
		s.transaction(account, "t1", "-1", 1),
	}, query.CreateManyOptions{})
	s.True(errs.IsUniqueViolation(err), "got %v", err)
}

func (s *LedgerSuite) TestGroupBySumIsExact() {
	user := s.createUser("sum@example.com")
	account := s.createAccount(user, "Main")
	rows := make([]entity.Transaction, 0, 10)
	for i := 1; i <= 10; i++ {
		rows = append(rows, s.transaction(account, fmt.Sprintf("e%d", i), "-0.1", i))
	}
	rows = append(rows, s.transaction(account, "i1", "1234.5678", 11))
	_, err := s.client.Transactions.CreateMany(s.ctx, rows, query.CreateManyOptions{})
	s.Require().NoError(err)

	groups, err := s.client.Transactions.GroupBy(s.ctx, query.GroupByArgs{
		By:         []string{"type"},
		Where:      query.Field("accountId", query.Equals(account.ID)),
		OrderBy:    []query.OrderBy{query.Asc("type")},
		Aggregates: query.Aggregates{Sum: []string{"amount"}, Count: []string{query.AllRows}},
	})
	s.Require().NoError(err)
	s.Require().Len(groups, 2)

	s.Equal("expense", groups[0].Keys["type"])
	s.True(groups[0].SumOf("amount").Equal(decimal.RequireFromString("1")), "got %s", groups[0].SumOf("amount"))
	s.Equal(int64(10), groups[0].Count[query.AllRows])
	s.Equal("income", groups[1].Keys["type"])
	s.Equal("1234.5678", groups[1].SumOf("amount").String())

	empty, err := s.client.Transactions.Aggregate(s.ctx, query.AggregateArgs{
		Where:      query.Field("accountId", query.Equals("none")),
		Aggregates: query.Aggregates{Sum: []string{"amount"}},
	})
	s.Require().NoError(err)
	s.False(empty.Sum["amount"].Valid)
}

func (s *LedgerSuite) TestBudgetCategoryCompoundKey() {
	user := s.createUser("budget@example.com")
	budget, err := s.client.Budgets.Create(s.ctx, &entity.Budget{
		UserID:      user.ID,
		Name:        "March",
		Currency:    entity.CurrencyUSD,
		TotalAmount: decimal.RequireFromString("1000"),
		PeriodStart: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	})
	s.Require().NoError(err)

	key := query.UniqueBy(map[string]any{"budgetId": budget.ID, "categoryId": "cat-groceries"})
	for _, amount := range []string{"300", "450.25"} {
		value := decimal.RequireFromString(amount)
		_, err := s.client.BudgetCategories.Upsert(s.ctx, key,
			&entity.BudgetCategory{BudgetID: budget.ID, CategoryID: "cat-groceries", Amount: value},
			query.Data{"amount": query.Set(value)})
		s.Require().NoError(err)
	}

	allocations, err := s.client.Budgets.Categories(s.ctx, budget, query.FindArgs{})
	s.Require().NoError(err)
	s.Require().Len(allocations, 1)
	s.Equal("450.25", allocations[0].Amount.String())

	_, err = s.client.BudgetCategories.Create(s.ctx, &entity.BudgetCategory{
		BudgetID: budget.ID, CategoryID: "cat-groceries", Amount: decimal.NewFromInt(1),
	})
	s.True(errs.IsUniqueViolation(err), "got %v", err)

	category, err := s.client.BudgetCategories.Category(s.ctx, &allocations[0], query.UniqueArgs{})
	s.Require().NoError(err)
	s.Equal("Groceries", category.Name)
}

func (s *LedgerSuite) TestIncludeAndLoaders() {
	user := s.createUser("rel@example.com")
	main := s.createAccount(user, "Main")
	s.createAccount(user, "Savings")
	_, err := s.client.Transactions.CreateMany(s.ctx, []entity.Transaction{
		s.transaction(main, "t1", "-5", 1),
		s.transaction(main, "t2", "-6", 2),
	}, query.CreateManyOptions{})
	s.Require().NoError(err)

	loaded, err := s.client.Users.FindUniqueOrThrow(s.ctx, query.UniqueArgs{
		Where: query.Unique("id", user.ID),
		Include: []query.Include{{
			Relation: "accounts",
			OrderBy:  []query.OrderBy{query.Asc("name")},
			Include:  []query.Include{{Relation: "transactions"}},
		}},
	})
	s.Require().NoError(err)
	s.Require().Len(loaded.Accounts, 2)
	s.Equal("Main", loaded.Accounts[0].Name)
	s.Len(loaded.Accounts[0].Transactions, 2)
	s.Empty(loaded.Accounts[1].Transactions)

	latest, err := s.client.Accounts.Transactions(s.ctx, main, query.FindArgs{
		OrderBy: []query.OrderBy{query.Desc("date")},
		Take:    query.Int(1),
	})
	s.Require().NoError(err)
	s.Require().Len(latest, 1)
	s.Equal("t2", latest[0].ID)

	owner, err := s.client.Transactions.Account(s.ctx, &latest[0], query.UniqueArgs{})
	s.Require().NoError(err)
	s.Equal(main.ID, owner.ID)

	category, err := s.client.Transactions.Category(s.ctx, &latest[0], query.UniqueArgs{})
	s.Require().NoError(err)
	s.Nil(category)
}

func (s *LedgerSuite) TestTransactionRejectsStatementOfAnotherAccount() {
	user := s.createUser("fk@example.com")
	main := s.createAccount(user, "Main")
	other := s.createAccount(user, "Other")
	statement, err := s.client.Statements.Create(s.ctx, &entity.Statement{
		UserID: user.ID, AccountID: other.ID, Filename: "march.csv", FileType: entity.FileTypeCSV,
	})
	s.Require().NoError(err)

	row := s.transaction(main, "t1", "-1", 1)
	row.StatementID = &statement.ID
	_, err = s.client.Transactions.Create(s.ctx, &row)

	var cv *errs.ConstraintViolationError
	s.Require().True(errors.As(err, &cv), "got %v", err)
	s.Equal(errs.ConstraintForeignKey, cv.Kind)
}

func (s *LedgerSuite) TestMarkProcessedOnce() {
	user := s.createUser("stmt@example.com")
	account := s.createAccount(user, "Main")
	statement, err := s.client.Statements.Create(s.ctx, &entity.Statement{
		UserID: user.ID, AccountID: account.ID, Filename: "march.csv", FileType: entity.FileTypeCSV,
	})
	s.Require().NoError(err)
	s.False(statement.IsProcessed())

	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	processed, err := s.client.Statements.MarkProcessed(s.ctx, statement.ID, at)
	s.Require().NoError(err)
	s.Require().NotNil(processed.ProcessedAt)
	s.True(processed.ProcessedAt.Equal(at))

	_, err = s.client.Statements.MarkProcessed(s.ctx, statement.ID, time.Time{})
	s.ErrorIs(err, errs.ErrStatementAlreadyProcessed)

	_, err = s.client.Statements.MarkProcessed(s.ctx, "missing", time.Time{})
	s.True(errs.IsNotFoundError(err))
}

func (s *LedgerSuite) TestNegativeTakeWithCursor() {
	for _, email := range []string{"a", "b", "c", "d", "e"} {
		s.createUser(email + "@example.com")
	}

	cursor := query.Unique("email", "d@example.com")
	page, err := s.client.Users.FindMany(s.ctx, query.FindArgs{
		OrderBy: []query.OrderBy{query.Asc("email")},
		Cursor:  &cursor,
		Take:    query.Int(-2),
	})
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Equal("c@example.com", page[0].Email)
	s.Equal("d@example.com", page[1].Email)

	page, err = s.client.Users.FindMany(s.ctx, query.FindArgs{
		OrderBy: []query.OrderBy{query.Asc("email")},
		Cursor:  &cursor,
		Take:    query.Int(-2),
		Skip:    1,
	})
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Equal("b@example.com", page[0].Email)
	s.Equal("c@example.com", page[1].Email)

	tail, err := s.client.Users.FindMany(s.ctx, query.FindArgs{
		OrderBy: []query.OrderBy{query.Asc("email")},
		Take:    query.Int(-1),
	})
	s.Require().NoError(err)
	s.Require().Len(tail, 1)
	s.Equal("e@example.com", tail[0].Email)
}

func (s *LedgerSuite) TestAdjustBalanceIsExact() {
	user := s.createUser("bal@example.com")
	account := s.createAccount(user, "Main")

	for range 10 {
		_, err := s.client.Accounts.AdjustBalance(s.ctx, account.ID, decimal.RequireFromString("0.1"))
		s.Require().NoError(err)
	}
	updated, err := s.client.Accounts.AdjustBalance(s.ctx, account.ID, decimal.RequireFromString("-0.3"))
	s.Require().NoError(err)
	s.True(updated.Balance.Equal(decimal.RequireFromString("0.7")), "got %s", updated.Balance)
}

func (s *LedgerSuite) TestBatchRollsBack() {
	err := s.client.Batch(s.ctx, []func(ctx context.Context) error{
		func(ctx context.Context) error {
			_, err := s.client.Users.Create(ctx, &entity.User{Email: "batch@example.com", PasswordHash: "hash"})
			return err
		},
		func(ctx context.Context) error {
			_, err := s.client.Users.Create(ctx, &entity.User{Email: "batch@example.com", PasswordHash: "hash"})
			return err
		},
	})
	s.True(errs.IsUniqueViolation(err), "got %v", err)

	count, err := s.client.Users.Count(s.ctx, query.CountArgs{})
	s.Require().NoError(err)
	s.Zero(count.All)
}

func (s *LedgerSuite) TestTransactionCommits() {
	err := s.client.Transaction(s.ctx, func(ctx context.Context) error {
		user, err := s.client.Users.Create(ctx, &entity.User{Email: "tx@example.com", PasswordHash: "hash"})
		if err != nil {
			return err
		}
		_, err = s.client.Accounts.Create(ctx, &entity.Account{
			UserID: user.ID, Name: "Main", Type: entity.AccountTypeWallet, Currency: entity.CurrencyKES,
		})
		return err
	}, persistence.TxOptions{Isolation: persistence.Serializable})
	s.Require().NoError(err)

	count, err := s.client.Accounts.Count(s.ctx, query.CountArgs{})
	s.Require().NoError(err)
	s.Equal(int64(1), count.All)
}
