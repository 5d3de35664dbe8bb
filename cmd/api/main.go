package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	budgetUseCase "github.com/amirhossein-jamali/finance-ledger/internal/domain/usecase/budget"
	categoryUseCase "github.com/amirhossein-jamali/finance-ledger/internal/domain/usecase/category"
	statementUseCase "github.com/amirhossein-jamali/finance-ledger/internal/domain/usecase/statement"
	transactionUseCase "github.com/amirhossein-jamali/finance-ledger/internal/domain/usecase/transaction"
	userUseCase "github.com/amirhossein-jamali/finance-ledger/internal/domain/usecase/user"

	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/client"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/logger"
	timeProvider "github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/config"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := validateConfig(cfg); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := logger.NewZapLoggerWithOptions(logger.Options{
		Production: cfg.Logger.Format == "json",
		Level:      cfg.Logger.Level,
		Output:     cfg.Logger.Output,
		CallerInfo: cfg.Logger.CallerInfo,
	})
	defer func() { _ = appLogger.Flush() }()

	tp := timeProvider.NewRealTimeProvider()

	// Connect to the database
	ctx := context.Background()
	dbManager := database.NewManager(database.CreateConfigFromViperConfig(cfg), appLogger, tp)
	db, err := dbManager.Connect(ctx)
	if err != nil {
		appLogger.Error("Failed to connect to database", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer dbManager.Close()

	if cfg.Database.AutoMigrate {
		if err := dbManager.Migrate(ctx); err != nil {
			appLogger.Error("Failed to run migrations", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}

	// Data access client
	clientOpts, err := client.OptionsFromConfig(cfg.Client)
	if err != nil {
		appLogger.Error("Invalid client configuration", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	clientOpts.Logger = appLogger
	clientOpts.TimeProvider = tp

	ledgerClient, err := client.New(db, clientOpts)
	if err != nil {
		appLogger.Error("Failed to create data access client", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	ledger := ledgerClient.Ledger()

	// Initialize use cases
	users := userUseCase.NewUserUseCase(ledger, appLogger)
	categories := categoryUseCase.NewService(ledger, appLogger)
	transactions := transactionUseCase.NewTransactionService(ledger, categories, appLogger)
	statements := statementUseCase.NewService(ledger, categories, tp, appLogger, statementUseCase.Limits{
		MaxFileBytes: cfg.Import.MaxFileBytes,
		MaxRows:      cfg.Import.MaxRows,
	})
	budgets := budgetUseCase.NewService(ledger, appLogger)

	// Initialize Gin router
	router := gin.New()
	routes.SetupMiddlewares(router, appLogger)
	routes.SetupRoutes(router, routes.Handlers{
		Users:        handler.NewUserHandler(users, appLogger),
		Transactions: handler.NewTransactionHandler(transactions, appLogger),
		Statements:   handler.NewStatementHandler(statements, appLogger),
		Categories:   handler.NewCategoryHandler(categories, appLogger),
		Budgets:      handler.NewBudgetHandler(budgets, appLogger),
		Health:       handler.NewHealthHandler(ledgerClient, appLogger),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("Starting server", map[string]any{
			"addr": server.Addr,
			"env":  cfg.Environment,
		})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Failed to start server", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	// Drain the per-account queues after the last request has been served
	appLogger.Info("Shutting down transaction manager...", nil)
	transactions.Shutdown()

	appLogger.Info("Server exited gracefully", nil)
}

// validateConfig checks the settings main depends on beyond config.Validate
func validateConfig(cfg *config.Config) error {
	var missingConfigs []string

	if cfg.Server.Port == 0 {
		missingConfigs = append(missingConfigs, "server.port")
	}
	if cfg.Server.ReadTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.readTimeout")
	}
	if cfg.Server.WriteTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.writeTimeout")
	}
	if cfg.Server.ShutdownTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.shutdownTimeout")
	}
	if cfg.Database.URL == "" && cfg.Database.Name == "" {
		missingConfigs = append(missingConfigs, "database.name (or FL_DB_NAME environment variable)")
	}
	if cfg.Import.MaxRows <= 0 {
		missingConfigs = append(missingConfigs, "import.maxRows")
	}

	if cfg.Environment != config.Development &&
		cfg.Environment != config.Production &&
		cfg.Environment != config.Test {
		return fmt.Errorf("invalid environment value: %s, must be one of: %s, %s, or %s",
			cfg.Environment, config.Development, config.Production, config.Test)
	}

	if len(missingConfigs) > 0 {
		return fmt.Errorf("missing required configurations: %v", missingConfigs)
	}

	if cfg.Environment == config.Production {
		var warnings []string

		sslMode := strings.ToLower(cfg.Database.SSLMode)
		if cfg.Database.URL == "" && sslMode != "require" && sslMode != "verify-ca" && sslMode != "verify-full" {
			warnings = append(warnings, "database.sslMode should be set to 'require', 'verify-ca', or 'verify-full' in production")
		}
		if cfg.Server.ReadTimeout < 5*time.Second {
			warnings = append(warnings, "server.readTimeout is too low for production")
		}
		if cfg.Server.WriteTimeout < 5*time.Second {
			warnings = append(warnings, "server.writeTimeout is too low for production")
		}
		if cfg.Client.ErrorFormat == "pretty" {
			warnings = append(warnings, "client.errorFormat 'pretty' writes ANSI colors into logs")
		}

		if len(warnings) > 0 {
			log.Printf("Warning: potential issues in production configuration: %v", warnings)
		}
	}

	return nil
}
