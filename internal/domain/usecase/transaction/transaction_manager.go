package transaction

import (
	"context"
	"sync"

	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/finance-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/usecase"
)

// DefaultQueueSize is the capacity of each account queue
const DefaultQueueSize = 100

// TransactionManager provides sequential processing of transactions per account
type TransactionManager struct {
	logger coreport.Logger

	// Account-based queues for strict ordering of balance updates
	mu             sync.RWMutex
	closed         bool
	accountQueues  map[string]chan *transactionRequest
	queueSize      int
	queueWaitGroup sync.WaitGroup

	// Function to process transactions
	processor TransactionProcessorFunc
}

// TransactionProcessorFunc is the function signature for processing transactions
type TransactionProcessorFunc func(ctx context.Context, req usecase.RecordTransactionRequest) (*usecase.RecordResult, error)

// transactionRequest represents a queued transaction request
type transactionRequest struct {
	ctx        context.Context
	req        usecase.RecordTransactionRequest
	resultChan chan *transactionResult
}

// transactionResult represents the result of a processed transaction
type transactionResult struct {
	result *usecase.RecordResult
	err    error
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(logger coreport.Logger, processor TransactionProcessorFunc) *TransactionManager {
	if processor == nil {
		panic("Transaction processor function cannot be nil")
	}

	return &TransactionManager{
		logger:        logger,
		accountQueues: make(map[string]chan *transactionRequest),
		queueSize:     DefaultQueueSize,
		processor:     processor,
	}
}

// WithQueueSize sets the capacity of queues created from now on
func (m *TransactionManager) WithQueueSize(size int) *TransactionManager {
	if size > 0 {
		m.queueSize = size
	}
	return m
}

// queueFor returns the queue of accountID, starting its worker on first
// use. It returns nil once the manager is shut down.
func (m *TransactionManager) queueFor(accountID string) chan *transactionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	if queue, ok := m.accountQueues[accountID]; ok {
		return queue
	}
	queue := make(chan *transactionRequest, m.queueSize)
	m.accountQueues[accountID] = queue

	m.logger.Info("Starting new transaction queue worker for account", map[string]any{
		"account_id": accountID,
	})
	m.queueWaitGroup.Add(1)
	go m.processAccountTransactions(accountID, queue)
	return queue
}

// EnqueueTransaction adds a transaction to the account's queue and waits for
// it to be processed
func (m *TransactionManager) EnqueueTransaction(
	ctx context.Context,
	req usecase.RecordTransactionRequest,
) (*usecase.RecordResult, error) {
	m.logger.Debug("Enqueuing transaction for sequential processing", map[string]any{
		"account_id":     req.AccountID,
		"transaction_id": req.ID,
	})

	queue := m.queueFor(req.AccountID)
	if queue == nil {
		m.logger.Warn("Transaction manager is shut down", map[string]any{"account_id": req.AccountID})
		return nil, errs.ErrInternalServer
	}
	resultChan := make(chan *transactionResult, 1)
	txnReq := &transactionRequest{ctx: ctx, req: req, resultChan: resultChan}

	// Hold the read lock while sending so Shutdown cannot close the queue
	// under us
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return nil, errs.ErrInternalServer
	}
	select {
	case queue <- txnReq:
		m.mu.RUnlock()
	case <-ctx.Done():
		m.mu.RUnlock()
		m.logger.Warn("Context canceled while enqueueing transaction", map[string]any{
			"account_id":     req.AccountID,
			"transaction_id": req.ID,
			"error":          ctx.Err().Error(),
		})
		return nil, ctx.Err()
	}

	select {
	case result := <-resultChan:
		return result.result, result.err
	case <-ctx.Done():
		m.logger.Warn("Context canceled while waiting for transaction result", map[string]any{
			"account_id":     req.AccountID,
			"transaction_id": req.ID,
			"error":          ctx.Err().Error(),
		})
		return nil, ctx.Err()
	}
}

// processAccountTransactions is the worker goroutine of one account queue
func (m *TransactionManager) processAccountTransactions(accountID string, queue chan *transactionRequest) {
	defer m.queueWaitGroup.Done()

	for txnReq := range queue {
		if err := txnReq.ctx.Err(); err != nil {
			// caller gave up before its turn
			txnReq.resultChan <- &transactionResult{err: err}
			close(txnReq.resultChan)
			continue
		}

		result, err := m.processor(txnReq.ctx, txnReq.req)
		txnReq.resultChan <- &transactionResult{result: result, err: err}
		close(txnReq.resultChan)
	}

	m.logger.Info("Transaction queue worker stopped", map[string]any{
		"account_id": accountID,
	})
}

// Shutdown stops all worker goroutines after they drain their queues
func (m *TransactionManager) Shutdown() {
	m.logger.Info("Shutting down transaction manager", nil)

	m.mu.Lock()
	if !m.closed {
		m.closed = true
		for _, queue := range m.accountQueues {
			close(queue)
		}
	}
	m.mu.Unlock()

	m.queueWaitGroup.Wait()
	m.logger.Info("Transaction manager shut down successfully", nil)
}
