package dto

import (
	"time"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/usecase"
)

// ImportResponse represents the API response for a statement import
type ImportResponse struct {
	StatementID   string     `json:"statementId"`
	Filename      string     `json:"filename"`
	ProcessedAt   *time.Time `json:"processedAt"`
	Imported      int64      `json:"imported"`
	Skipped       int        `json:"skipped"`
	ResultBalance string     `json:"resultBalance"`
}

// NewImportResponse maps an import result
func NewImportResponse(r *usecase.ImportResult) ImportResponse {
	return ImportResponse{
		StatementID:   r.Statement.ID,
		Filename:      r.Statement.Filename,
		ProcessedAt:   r.Statement.ProcessedAt,
		Imported:      r.Imported,
		Skipped:       r.Skipped,
		ResultBalance: entity.FormatAmount(r.Balance),
	}
}
