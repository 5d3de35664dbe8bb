package transaction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/finance-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/query"
)

const (
	// DefaultPageSize is used when a list request sets no Take
	DefaultPageSize = 50
	// MaxPageSize bounds |Take| of a list request
	MaxPageSize = 500
)

// Service is the transaction use case. Records for one account are applied
// in arrival order by the manager's per-account queue.
type Service struct {
	manager      *TransactionManager
	processor    *TransactionProcessor
	validator    *TransactionValidator
	users        persistence.Delegate[entity.User]
	accounts     persistence.AccountStore
	transactions persistence.Delegate[entity.Transaction]
	logger       coreport.Logger
}

var _ usecase.TransactionUseCase = (*Service)(nil)

// NewTransactionService creates a new transaction service
func NewTransactionService(
	ledger persistence.Ledger,
	categorizers CategorizerSource,
	logger coreport.Logger,
) *Service {
	validator := NewTransactionValidator()
	idempotencyHandler := NewIdempotencyHandler(ledger.Transactions)
	processor := NewTransactionProcessor(ledger, validator, idempotencyHandler, categorizers, logger)
	manager := NewTransactionManager(logger, processor.Process)

	return &Service{
		manager:      manager,
		processor:    processor,
		validator:    validator,
		users:        ledger.Users,
		accounts:     ledger.Accounts,
		transactions: ledger.Transactions,
		logger:       logger,
	}
}

// Record queues req behind earlier records of the same account and waits
// for its result
func (s *Service) Record(ctx context.Context, req usecase.RecordTransactionRequest) (*usecase.RecordResult, error) {
	if strings.TrimSpace(req.AccountID) == "" {
		return nil, errs.NewValidationError("Transaction", "record", "accountId", "account id must not be empty")
	}
	return s.manager.EnqueueTransaction(ctx, req)
}

// List returns one page of an account's transactions, newest first
func (s *Service) List(ctx context.Context, req usecase.ListTransactionsRequest) (*usecase.TransactionPage, error) {
	if err := s.validator.ValidateList(req); err != nil {
		return nil, err
	}
	if _, err := s.accounts.FindUniqueOrThrow(ctx, query.UniqueArgs{Where: query.Unique("id", req.AccountID)}); err != nil {
		return nil, err
	}

	where := query.Field("accountId", query.Equals(req.AccountID))
	if req.Type != "" {
		where = where.With("type", query.Equals(string(req.Type)))
	}
	if f, ok := dateFilter(req.From, req.To); ok {
		where = where.With("date", f)
	}

	take := req.Take
	if take == 0 {
		take = DefaultPageSize
	}
	args := query.FindArgs{
		Where:   where,
		OrderBy: []query.OrderBy{query.Desc("date"), query.Desc("id")},
		Take:    query.Int(take),
		Skip:    req.Skip,
	}
	if req.Cursor != "" {
		cursor := query.Unique("id", req.Cursor)
		args.Cursor = &cursor
		// the cursor row was the last row of the previous page
		args.Skip++
	}

	rows, err := s.transactions.FindMany(ctx, args)
	if err != nil {
		return nil, err
	}

	page := &usecase.TransactionPage{Transactions: rows}
	if n := abs(take); len(rows) == n && n > 0 {
		if take > 0 {
			page.NextCursor = rows[len(rows)-1].ID
		} else {
			page.NextCursor = rows[0].ID
		}
	}
	return page, nil
}

// Summary totals a user's transactions by type over a period
func (s *Service) Summary(ctx context.Context, req usecase.SummaryRequest) (*usecase.LedgerSummary, error) {
	if req.From != nil && req.To != nil && req.From.After(*req.To) {
		return nil, errs.NewValidationError("Transaction", "summary", "from", "from must not be after to")
	}
	if _, err := s.users.FindUniqueOrThrow(ctx, query.UniqueArgs{Where: query.Unique("id", req.UserID)}); err != nil {
		return nil, err
	}

	where := query.Field("userId", query.Equals(req.UserID))
	if f, ok := dateFilter(req.From, req.To); ok {
		where = where.With("date", f)
	}

	groups, err := s.transactions.GroupBy(ctx, query.GroupByArgs{
		By:      []string{"type"},
		Where:   where,
		OrderBy: []query.OrderBy{query.Asc("type")},
		Aggregates: query.Aggregates{
			Count: []string{query.AllRows},
			Sum:   []string{"amount"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to summarize transactions: %w", err)
	}

	summary := &usecase.LedgerSummary{UserID: req.UserID, From: req.From, To: req.To, Net: decimal.Zero}
	for _, g := range groups {
		typ := entity.TransactionType(fmt.Sprint(g.Keys["type"]))
		total := usecase.TypeTotal{Type: typ, Count: g.Count[query.AllRows], Total: g.SumOf("amount")}
		summary.Totals = append(summary.Totals, total)

		switch typ {
		case entity.TransactionTypeIncome:
			summary.Net = summary.Net.Add(total.Total)
		case entity.TransactionTypeExpense:
			summary.Net = summary.Net.Sub(total.Total)
		}
	}
	return summary, nil
}

// Shutdown drains the per-account queues
func (s *Service) Shutdown() {
	s.manager.Shutdown()
}

// dateFilter bounds the date field; nil bounds are open
func dateFilter(from, to *time.Time) (query.Filter, bool) {
	var f query.Filter
	if from != nil {
		f.Gte = from.UTC()
	}
	if to != nil {
		f.Lte = to.UTC()
	}
	return f, from != nil || to != nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
