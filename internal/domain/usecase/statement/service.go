// Package statement imports bank statement files into the ledger.
package statement

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/finance-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/query"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/usecase/category"
)

// transactionNamespace seeds the ids of imported transactions, so the same
// statement line always maps to the same transaction id
var transactionNamespace = uuid.MustParse("6f0d3c1e-6a53-4a55-9a7e-0c2b5b8e4f21")

// CategorizerSource provides the keyword categorizer for imported rows
type CategorizerSource interface {
	Categorizer(ctx context.Context) (*category.Categorizer, error)
}

// Service imports CSV statements
type Service struct {
	accounts     persistence.AccountStore
	statements   persistence.StatementStore
	transactions persistence.Delegate[entity.Transaction]
	uow          persistence.UnitOfWork
	categorizers CategorizerSource
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	limits       Limits
}

var _ usecase.StatementUseCase = (*Service)(nil)

// NewService creates a new statement import Service
func NewService(
	ledger persistence.Ledger,
	categorizers CategorizerSource,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	limits Limits,
) *Service {
	return &Service{
		accounts:     ledger.Accounts,
		statements:   ledger.Statements,
		transactions: ledger.Transactions,
		uow:          ledger.UnitOfWork,
		categorizers: categorizers,
		timeProvider: timeProvider,
		logger:       logger,
		limits:       limits,
	}
}

// Import parses the statement and records it. Lines already imported by an
// earlier statement of the same account are skipped and counted.
func (s *Service) Import(ctx context.Context, req usecase.ImportStatementRequest) (*usecase.ImportResult, error) {
	if strings.TrimSpace(req.AccountID) == "" {
		return nil, errs.NewValidationError("Statement", "import", "accountId", "account id must not be empty")
	}
	filename := filepath.Base(strings.TrimSpace(req.Filename))
	if filename == "." || filename == "/" {
		return nil, errs.NewValidationError("Statement", "import", "filename", "filename must not be empty")
	}
	fileType := entity.FileType(strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), "."))
	if fileType != entity.FileTypeCSV {
		return nil, fmt.Errorf("%w: %s files cannot be imported, only csv", errs.ErrInvalidStatementFile, fileType)
	}
	if req.Content == nil {
		return nil, fmt.Errorf("%w: no content", errs.ErrInvalidStatementFile)
	}

	rows, err := ParseCSV(req.Content, s.limits)
	if err != nil {
		s.logger.Warn("Rejected statement file", map[string]any{
			"account_id": req.AccountID,
			"filename":   filename,
			"error":      err.Error(),
		})
		return nil, err
	}

	categorizer := s.categorizer(ctx)

	var result *usecase.ImportResult
	err = s.uow.Run(ctx, persistence.TxOptions{Isolation: persistence.Serializable}, func(txCtx context.Context) error {
		account, err := s.accounts.FindUniqueOrThrow(txCtx, query.UniqueArgs{Where: query.Unique("id", req.AccountID)})
		if err != nil {
			return err
		}

		stmt, err := s.statements.Create(txCtx, &entity.Statement{
			UserID:    account.UserID,
			AccountID: account.ID,
			Filename:  filename,
			FileType:  fileType,
		})
		if err != nil {
			return err
		}

		txns := buildTransactions(account, stmt.ID, rows, categorizer)
		fresh, err := s.withoutExisting(txCtx, txns)
		if err != nil {
			return err
		}

		imported := int64(0)
		if len(fresh) > 0 {
			imported, err = s.transactions.CreateMany(txCtx, fresh, query.CreateManyOptions{SkipDuplicates: true})
			if err != nil {
				return err
			}
			if imported != int64(len(fresh)) {
				// a concurrent import inserted some of the same lines
				return errs.ErrWriteConflict
			}
		}

		balance := account.Balance
		delta := decimal.Zero
		for i := range fresh {
			delta = delta.Add(fresh[i].BalanceEffect())
		}
		if !delta.IsZero() {
			updated, err := s.accounts.AdjustBalance(txCtx, account.ID, delta)
			if err != nil {
				return err
			}
			balance = updated.Balance
		}

		processed, err := s.statements.MarkProcessed(txCtx, stmt.ID, s.timeProvider.Now())
		if err != nil {
			return err
		}

		result = &usecase.ImportResult{
			Statement: processed,
			Imported:  imported,
			Skipped:   len(txns) - len(fresh),
			Balance:   balance,
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Statement import failed", map[string]any{
			"account_id": req.AccountID,
			"filename":   filename,
			"error":      err.Error(),
		})
		return nil, err
	}

	s.logger.Info("Statement imported", map[string]any{
		"statement_id": result.Statement.ID,
		"account_id":   req.AccountID,
		"imported":     result.Imported,
		"skipped":      result.Skipped,
	})
	return result, nil
}

func (s *Service) categorizer(ctx context.Context) *category.Categorizer {
	if s.categorizers == nil {
		return category.NewCategorizer(nil)
	}
	c, err := s.categorizers.Categorizer(ctx)
	if err != nil {
		s.logger.Warn("Failed to load categories, importing uncategorized", map[string]any{"error": err.Error()})
		return category.NewCategorizer(nil)
	}
	return c
}

// withoutExisting drops transactions whose id is already stored
func (s *Service) withoutExisting(ctx context.Context, txns []entity.Transaction) ([]entity.Transaction, error) {
	ids := make([]any, len(txns))
	for i := range txns {
		ids[i] = txns[i].ID
	}
	existing, err := s.transactions.FindMany(ctx, query.FindArgs{
		Where:  query.Field("id", query.In(ids...)),
		Select: []string{"id"},
	})
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		return txns, nil
	}

	seen := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		seen[t.ID] = struct{}{}
	}
	fresh := make([]entity.Transaction, 0, len(txns)-len(existing))
	for _, t := range txns {
		if _, ok := seen[t.ID]; !ok {
			fresh = append(fresh, t)
		}
	}
	return fresh, nil
}

// buildTransactions maps rows to transactions with ids derived from the
// account and the line content. Identical lines in one file are told apart
// by their occurrence number.
func buildTransactions(account *entity.Account, statementID string, rows []Row, c *category.Categorizer) []entity.Transaction {
	occurrences := make(map[string]int, len(rows))
	txns := make([]entity.Transaction, len(rows))
	for i, row := range rows {
		key := strings.Join([]string{
			account.ID,
			row.Date.Format("2006-01-02T15:04:05Z07:00"),
			strings.ToLower(row.Description),
			row.Amount.String(),
			string(row.Type),
		}, "|")
		occurrences[key]++

		txn := entity.Transaction{
			ID:          uuid.NewSHA1(transactionNamespace, []byte(fmt.Sprintf("%s|%d", key, occurrences[key]))).String(),
			UserID:      account.UserID,
			AccountID:   account.ID,
			StatementID: &statementID,
			Date:        row.Date,
			Description: row.Description,
			Amount:      row.Amount,
			Type:        row.Type,
			Currency:    account.Currency,
		}
		if id, ok := c.Categorize(row.Description); ok {
			txn.CategoryID = &id
		}
		txns[i] = txn
	}
	return txns
}
