package dto

import "github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"

// CreateCategoryRequest represents the API request for a user category
type CreateCategoryRequest struct {
	Name     string   `json:"name" binding:"required"`
	Keywords []string `json:"keywords"`
}

// CategoryResponse represents a category
type CategoryResponse struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Keywords []string `json:"keywords"`
}

// NewCategoryResponse maps a category entity
func NewCategoryResponse(c *entity.Category) CategoryResponse {
	keywords := c.KeywordList()
	if keywords == nil {
		keywords = []string{}
	}
	return CategoryResponse{ID: c.ID, Name: c.Name, Type: string(c.Type), Keywords: keywords}
}
