// Package client is the entry point of the data access layer: one typed
// delegate per entity, relation loaders, transactions and log events.
package client

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/finance-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/schema"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/errorformat"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/repository"
	timeprovider "github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/time"
)

// Client exposes the ledger entities. It is safe for concurrent use.
type Client struct {
	db        *gorm.DB
	registry  *schema.Registry
	uow       persistence.UnitOfWork
	emitter   *logger.Emitter
	formatter *errorformat.Formatter
	logger    coreport.Logger

	Users            *UserDelegate
	Accounts         *AccountDelegate
	Statements       *StatementDelegate
	Categories       *CategoryDelegate
	Transactions     *TransactionDelegate
	Budgets          *BudgetDelegate
	BudgetCategories *BudgetCategoryDelegate
}

// New creates a client over db. Statements run through the client are
// logged according to opts.Log; db's own logger is replaced on the
// client's session only.
func New(db *gorm.DB, opts Options) (*Client, error) {
	if opts.Logger == nil {
		opts.Logger = logger.NewNoopLogger()
	}
	if opts.TimeProvider == nil {
		opts.TimeProvider = timeprovider.NewRealTimeProvider()
	}
	if opts.ErrorFormat == "" {
		opts.ErrorFormat = errorformat.Colorless
	}
	for _, r := range opts.Log {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("invalid log route: %w", err)
		}
	}

	registry, err := schema.NewRegistry(entity.Models()...)
	if err != nil {
		return nil, fmt.Errorf("failed to build schema registry: %w", err)
	}

	emitter := logger.NewEmitter()
	db = db.Session(&gorm.Session{
		Logger: database.NewDatabaseLogger(opts.Logger, emitter, opts.Log, opts.TimeProvider),
	})

	c := &Client{
		db:        db,
		registry:  registry,
		uow:       database.NewUnitOfWork(db, opts.Logger, opts.TimeProvider, opts.Transaction),
		emitter:   emitter,
		formatter: errorformat.New(opts.ErrorFormat),
		logger:    opts.Logger,
	}
	if err := c.initDelegates(opts.TimeProvider); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) initDelegates(timeProvider coreport.TimeProvider) error {
	users, err := repository.NewDelegate[entity.User](c.db, c.registry, c.logger)
	if err != nil {
		return err
	}
	accounts, err := repository.NewDelegate[entity.Account](c.db, c.registry, c.logger)
	if err != nil {
		return err
	}
	statements, err := repository.NewDelegate[entity.Statement](c.db, c.registry, c.logger)
	if err != nil {
		return err
	}
	categories, err := repository.NewDelegate[entity.Category](c.db, c.registry, c.logger)
	if err != nil {
		return err
	}
	transactions, err := repository.NewDelegate[entity.Transaction](c.db, c.registry, c.logger)
	if err != nil {
		return err
	}
	budgets, err := repository.NewDelegate[entity.Budget](c.db, c.registry, c.logger)
	if err != nil {
		return err
	}
	budgetCategories, err := repository.NewDelegate[entity.BudgetCategory](c.db, c.registry, c.logger)
	if err != nil {
		return err
	}

	c.Users = &UserDelegate{Delegate: users, client: c}
	c.Accounts = &AccountDelegate{Delegate: accounts, client: c}
	c.Statements = &StatementDelegate{Delegate: statements, client: c, timeProvider: timeProvider}
	c.Categories = &CategoryDelegate{Delegate: categories, client: c}
	c.Transactions = &TransactionDelegate{Delegate: transactions, client: c}
	c.Budgets = &BudgetDelegate{Delegate: budgets, client: c}
	c.BudgetCategories = &BudgetCategoryDelegate{Delegate: budgetCategories, client: c}
	return nil
}

// On registers handler for the events of level. Only levels routed to
// "event" in Options.Log produce events.
func (c *Client) On(level coreport.EventLevel, handler logger.EventHandler) error {
	if err := (coreport.LogRoute{Level: level, Emit: coreport.EmitEvent}).Validate(); err != nil {
		return err
	}
	c.emitter.On(level, handler)
	return nil
}

// Transaction runs fn in one database transaction. Delegate calls made with
// the context passed to fn join it. An error or panic in fn rolls back. A
// Transaction started inside another one reuses the outer transaction. The
// first opts, if any, override the configured defaults field by field.
func (c *Client) Transaction(ctx context.Context, fn func(ctx context.Context) error, opts ...persistence.TxOptions) error {
	var o persistence.TxOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	return c.uow.Run(ctx, o, fn)
}

// Batch runs ops in order in one transaction and stops at the first error,
// rolling back everything done so far
func (c *Client) Batch(ctx context.Context, ops []func(ctx context.Context) error, opts ...persistence.TxOptions) error {
	return c.Transaction(ctx, func(ctx context.Context) error {
		for i, op := range ops {
			if err := op(ctx); err != nil {
				return fmt.Errorf("batch operation %d: %w", i, err)
			}
		}
		return nil
	}, opts...)
}

// FormatError renders err in the configured error format
func (c *Client) FormatError(err error) string {
	return c.formatter.Render(err)
}

// HealthCheck pings the database
func (c *Client) HealthCheck(ctx context.Context) (database.PoolStats, error) {
	return database.HealthCheck(ctx, c.db)
}

// Registry returns the schema registry of the ledger entities
func (c *Client) Registry() *schema.Registry {
	return c.registry
}

// UnitOfWork returns the transaction coordinator used by Transaction
func (c *Client) UnitOfWork() persistence.UnitOfWork {
	return c.uow
}

// Ledger returns the client's delegates as the persistence ports consumed
// by the use cases
func (c *Client) Ledger() persistence.Ledger {
	return persistence.Ledger{
		Users:            c.Users,
		Accounts:         c.Accounts,
		Statements:       c.Statements,
		Categories:       c.Categories,
		Transactions:     c.Transactions,
		Budgets:          c.Budgets,
		BudgetCategories: c.BudgetCategories,
		UnitOfWork:       c.uow,
	}
}
