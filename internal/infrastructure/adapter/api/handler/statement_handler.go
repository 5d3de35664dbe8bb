package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/finance-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/api/dto"
)

// StatementFormField is the multipart field carrying the statement file
const StatementFormField = "file"

// StatementHandler handles statement uploads
type StatementHandler struct {
	statementUseCase usecase.StatementUseCase
	logger           coreport.Logger
}

// NewStatementHandler creates a new statement handler instance
func NewStatementHandler(statementUseCase usecase.StatementUseCase, logger coreport.Logger) *StatementHandler {
	return &StatementHandler{
		statementUseCase: statementUseCase,
		logger:           logger,
	}
}

// ImportStatement handles POST /api/v1/accounts/:id/statements
func (h *StatementHandler) ImportStatement(c *gin.Context) {
	header, err := c.FormFile(StatementFormField)
	if err != nil {
		badRequest(c, h.logger, err)
		return
	}
	file, err := header.Open()
	if err != nil {
		badRequest(c, h.logger, err)
		return
	}
	defer file.Close()

	result, err := h.statementUseCase.Import(c.Request.Context(), usecase.ImportStatementRequest{
		AccountID: c.Param("id"),
		Filename:  header.Filename,
		Content:   file,
	})
	if err != nil {
		respondError(c, h.logger, "Error importing statement", err)
		return
	}

	h.logger.Info("Statement imported", map[string]any{
		"accountId":   c.Param("id"),
		"statementId": result.Statement.ID,
		"imported":    result.Imported,
		"skipped":     result.Skipped,
	})
	c.JSON(http.StatusCreated, dto.NewImportResponse(result))
}
