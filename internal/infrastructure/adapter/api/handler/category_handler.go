package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/finance-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/api/dto"
)

// CategoryHandler handles category HTTP requests
type CategoryHandler struct {
	categoryUseCase usecase.CategoryUseCase
	logger          coreport.Logger
}

// NewCategoryHandler creates a new category handler instance
func NewCategoryHandler(categoryUseCase usecase.CategoryUseCase, logger coreport.Logger) *CategoryHandler {
	return &CategoryHandler{categoryUseCase: categoryUseCase, logger: logger}
}

// ListCategories handles GET /api/v1/categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryUseCase.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "Error listing categories", err)
		return
	}

	out := make([]dto.CategoryResponse, len(categories))
	for i := range categories {
		out[i] = dto.NewCategoryResponse(&categories[i])
	}
	c.JSON(http.StatusOK, out)
}

// CreateCategory handles POST /api/v1/categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	category, err := h.categoryUseCase.Create(c.Request.Context(), usecase.CreateCategoryRequest{
		Name:     req.Name,
		Keywords: req.Keywords,
	})
	if err != nil {
		respondError(c, h.logger, "Error creating category", err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewCategoryResponse(category))
}
