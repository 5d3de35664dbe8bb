package routes

import (
	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/finance-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/api/middleware"
)

// Handlers groups the HTTP handlers of the API
type Handlers struct {
	Users        *handler.UserHandler
	Transactions *handler.TransactionHandler
	Statements   *handler.StatementHandler
	Categories   *handler.CategoryHandler
	Budgets      *handler.BudgetHandler
	Health       *handler.HealthHandler
}

// SetupRoutes configures all the routes for the API
func SetupRoutes(router *gin.Engine, h Handlers) {
	router.GET("/health", h.Health.Health)

	v1 := router.Group("/api/v1")

	v1.POST("/auth/login", h.Users.Login)

	users := v1.Group("/users")
	{
		users.POST("", h.Users.Register)
		users.GET("/:id", h.Users.GetUser)
		users.POST("/:id/accounts", h.Users.CreateAccount)
		users.GET("/:id/accounts", h.Users.ListAccounts)
		users.GET("/:id/summary", h.Transactions.GetSummary)
		users.POST("/:id/budgets", h.Budgets.CreateBudget)
	}

	accounts := v1.Group("/accounts")
	{
		accounts.GET("/:id/transactions", h.Transactions.ListTransactions)
		accounts.POST("/:id/transactions", h.Transactions.RecordTransaction)
		accounts.POST("/:id/statements", h.Statements.ImportStatement)
	}

	categories := v1.Group("/categories")
	{
		categories.GET("", h.Categories.ListCategories)
		categories.POST("", h.Categories.CreateCategory)
	}

	budgets := v1.Group("/budgets")
	{
		budgets.PUT("/:id/categories/:categoryId", h.Budgets.SetAllocation)
		budgets.GET("/:id/report", h.Budgets.GetReport)
	}
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger) {
	// RequestID runs first so the other middlewares see the id
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS())
}
