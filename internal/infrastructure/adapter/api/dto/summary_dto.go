package dto

import (
	"time"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/usecase"
)

// TypeTotalResponse is the total of one transaction type
type TypeTotalResponse struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
	Total string `json:"total"`
}

// SummaryResponse represents the API response for a user's ledger summary
type SummaryResponse struct {
	UserID string              `json:"userId"`
	From   *time.Time          `json:"from,omitempty"`
	To     *time.Time          `json:"to,omitempty"`
	Totals []TypeTotalResponse `json:"totals"`
	Net    string              `json:"net"`
}

// NewSummaryResponse maps a ledger summary
func NewSummaryResponse(s *usecase.LedgerSummary) SummaryResponse {
	out := SummaryResponse{
		UserID: s.UserID,
		From:   s.From,
		To:     s.To,
		Totals: make([]TypeTotalResponse, len(s.Totals)),
		Net:    entity.FormatAmount(s.Net),
	}
	for i, t := range s.Totals {
		out.Totals[i] = TypeTotalResponse{Type: string(t.Type), Count: t.Count, Total: entity.FormatAmount(t.Total)}
	}
	return out
}
