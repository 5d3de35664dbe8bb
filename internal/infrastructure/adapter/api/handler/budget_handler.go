package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/finance-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/api/dto"
)

// BudgetHandler handles budget HTTP requests
type BudgetHandler struct {
	budgetUseCase usecase.BudgetUseCase
	logger        coreport.Logger
}

// NewBudgetHandler creates a new budget handler instance
func NewBudgetHandler(budgetUseCase usecase.BudgetUseCase, logger coreport.Logger) *BudgetHandler {
	return &BudgetHandler{budgetUseCase: budgetUseCase, logger: logger}
}

// CreateBudget handles POST /api/v1/users/:id/budgets
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	var req dto.CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	total, err := entity.ParseAmount(req.TotalAmount)
	if err != nil {
		respondError(c, h.logger, "Invalid budget total", err)
		return
	}

	budget, err := h.budgetUseCase.Create(c.Request.Context(), c.Param("id"), usecase.CreateBudgetRequest{
		Name:        req.Name,
		Currency:    entity.Currency(req.Currency),
		TotalAmount: total,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
	})
	if err != nil {
		respondError(c, h.logger, "Error creating budget", err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewBudgetResponse(budget))
}

// SetAllocation handles PUT /api/v1/budgets/:id/categories/:categoryId
func (h *BudgetHandler) SetAllocation(c *gin.Context) {
	var req dto.AllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	amount, err := entity.ParseAmount(req.Amount)
	if err != nil {
		respondError(c, h.logger, "Invalid allocation amount", err)
		return
	}

	allocation, err := h.budgetUseCase.SetAllocation(c.Request.Context(), c.Param("id"), c.Param("categoryId"), amount)
	if err != nil {
		respondError(c, h.logger, "Error setting budget allocation", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAllocationResponse(allocation))
}

// GetReport handles GET /api/v1/budgets/:id/report
func (h *BudgetHandler) GetReport(c *gin.Context) {
	report, err := h.budgetUseCase.Report(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "Error building budget report", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBudgetReportResponse(report))
}
