package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/finance-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/api/dto"
)

// UserHandler handles user and account HTTP requests
type UserHandler struct {
	userUseCase usecase.UserUseCase
	logger      coreport.Logger
}

// NewUserHandler creates a new user handler instance
func NewUserHandler(
	userUseCase usecase.UserUseCase,
	logger coreport.Logger,
) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
		logger:      logger,
	}
}

// Register handles POST /api/v1/users
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	user, err := h.userUseCase.Register(c.Request.Context(), usecase.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		respondError(c, h.logger, "Error registering user", err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewUserResponse(user))
}

// Login handles POST /api/v1/auth/login
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	user, err := h.userUseCase.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, "Authentication failed", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// GetUser handles GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userUseCase.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "Error getting user", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// CreateAccount handles POST /api/v1/users/:id/accounts
func (h *UserHandler) CreateAccount(c *gin.Context) {
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	opening := decimal.Zero
	if req.OpeningBalance != "" {
		var err error
		if opening, err = entity.ParseSignedAmount(req.OpeningBalance); err != nil {
			respondError(c, h.logger, "Invalid opening balance", err)
			return
		}
	}

	account, err := h.userUseCase.CreateAccount(c.Request.Context(), c.Param("id"), usecase.CreateAccountRequest{
		Name:           req.Name,
		Type:           entity.AccountType(req.Type),
		Currency:       entity.Currency(req.Currency),
		OpeningBalance: opening,
		IsDefault:      req.IsDefault,
	})
	if err != nil {
		respondError(c, h.logger, "Error creating account", err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewAccountResponse(account))
}

// ListAccounts handles GET /api/v1/users/:id/accounts
func (h *UserHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.userUseCase.ListAccounts(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "Error listing accounts", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAccountResponses(accounts))
}
