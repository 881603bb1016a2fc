package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/pravaha-app/expense_backend/internal/adapters/external/exchangerate"
	"github.com/pravaha-app/expense_backend/internal/adapters/external/mailer"
	"github.com/pravaha-app/expense_backend/internal/adapters/external/receiptai"
	"github.com/pravaha-app/expense_backend/internal/adapters/external/restcountries"
	"github.com/pravaha-app/expense_backend/internal/core/services"
	"github.com/pravaha-app/expense_backend/internal/handlers"
	"github.com/pravaha-app/expense_backend/internal/middleware"
	"github.com/pravaha-app/expense_backend/internal/platform/config"
	"github.com/pravaha-app/expense_backend/internal/repositories/database/pgsql"
	"github.com/pravaha-app/expense_backend/pkg/database"

	portssvc "github.com/pravaha-app/expense_backend/internal/core/ports/services"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title Pravaha Expense Backend API
// @version 1.0
// @description Multi-tenant expense management backend.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Repositories
	companyRepo := pgsql.NewCompanyRepository(dbPool)
	userRepo := pgsql.NewUserRepository(dbPool)
	expenseRepo := pgsql.NewExpenseRepository(dbPool)
	currencyRepo := pgsql.NewCurrencyRepository(dbPool)

	// External collaborators
	converter := exchangerate.NewClient(cfg.ExchangeRateBaseURL, nil)
	countryCurrency := restcountries.NewClient(cfg.RestCountriesBaseURL, nil)
	receiptExtractor := receiptai.NewExtractor(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)
	decisionMailer := mailer.NewDecisionMailer(mailer.Config{
		Enabled:  cfg.SMTPHost != "",
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}, userRepo, logger)

	// The dispatcher delivers decision events to observers off the request
	// path; Close drains it on shutdown.
	dispatcher := services.NewDecisionDispatcher(logger, decisionMailer)
	defer dispatcher.Close()

	// Services
	container := &portssvc.ServiceContainer{
		Company:  services.NewCompanyService(companyRepo, userRepo, countryCurrency),
		User:     services.NewUserService(userRepo),
		Expense:  services.NewExpenseService(expenseRepo, userRepo, companyRepo, currencyRepo, converter, dispatcher),
		Currency: services.NewCurrencyService(currencyRepo),
		Receipt:  receiptExtractor,
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, container)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for interrupt, then drain in-flight requests and the dispatcher.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
	}
	logger.Info("Server exited.")
}

// runMigrations applies all pending "up" migrations using a temporary
// database/sql connection over the pgx stdlib driver.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
