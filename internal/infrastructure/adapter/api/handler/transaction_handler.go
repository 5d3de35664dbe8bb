package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	domainerr "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/finance-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/api/dto"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionUseCase usecase.TransactionUseCase
	logger             coreport.Logger
}

// NewTransactionHandler creates a new transaction handler instance
func NewTransactionHandler(
	transactionUseCase usecase.TransactionUseCase,
	logger coreport.Logger,
) *TransactionHandler {
	return &TransactionHandler{
		transactionUseCase: transactionUseCase,
		logger:             logger,
	}
}

// RecordTransaction handles POST /api/v1/accounts/:id/transactions
func (h *TransactionHandler) RecordTransaction(c *gin.Context) {
	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	result, err := h.transactionUseCase.Record(c.Request.Context(), usecase.RecordTransactionRequest{
		ID:          req.ID,
		AccountID:   c.Param("id"),
		Date:        req.Date,
		Description: req.Description,
		Amount:      req.Amount,
		Type:        entity.TransactionType(req.Type),
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		respondError(c, h.logger, "Error recording transaction", err)
		return
	}

	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	c.JSON(status, dto.NewRecordTransactionResponse(result))
}

// ListTransactions handles GET /api/v1/accounts/:id/transactions
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	req := usecase.ListTransactionsRequest{
		AccountID: c.Param("id"),
		Type:      entity.TransactionType(c.Query("type")),
		Cursor:    c.Query("cursor"),
	}

	var err error
	if req.Take, err = intQuery(c, "take"); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	if req.Skip, err = intQuery(c, "skip"); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	if req.From, req.To, err = periodQuery(c); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	page, err := h.transactionUseCase.List(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, "Error listing transactions", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTransactionPageResponse(page))
}

// GetSummary handles GET /api/v1/users/:id/summary
func (h *TransactionHandler) GetSummary(c *gin.Context) {
	from, to, err := periodQuery(c)
	if err != nil {
		badRequest(c, h.logger, err)
		return
	}

	summary, err := h.transactionUseCase.Summary(c.Request.Context(), usecase.SummaryRequest{
		UserID: c.Param("id"),
		From:   from,
		To:     to,
	})
	if err != nil {
		respondError(c, h.logger, "Error computing summary", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSummaryResponse(summary))
}

func intQuery(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domainerr.ErrInvalidRequest, key)
	}
	return n, nil
}

// periodQuery reads the from and to query parameters. A bare date as "to"
// covers the whole day.
func periodQuery(c *gin.Context) (*time.Time, *time.Time, error) {
	from, _, err := timeQuery(c, "from")
	if err != nil {
		return nil, nil, err
	}
	to, dateOnly, err := timeQuery(c, "to")
	if err != nil {
		return nil, nil, err
	}
	if to != nil && dateOnly {
		end := to.Add(24*time.Hour - time.Microsecond)
		to = &end
	}
	return from, to, nil
}

func timeQuery(c *gin.Context, key string) (*time.Time, bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, false, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return &t, true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s must be YYYY-MM-DD or RFC 3339", domainerr.ErrInvalidRequest, key)
	}
	return &t, false, nil
}
