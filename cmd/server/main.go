package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/progresar/progresar-core/internal/config"
	"github.com/progresar/progresar-core/internal/handler"
	"github.com/progresar/progresar-core/internal/repository"
	"github.com/progresar/progresar-core/internal/service"
	"github.com/progresar/progresar-core/pkg/response"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	// .env is optional; viper falls back to process env and defaults
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err)
	}

	db, err := initDB(cfg)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err)
	}
	defer db.Close()

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	store := repository.NewStore(db)

	accountService := service.NewAccountService(store, cfg)
	loanService := service.NewLoanService(store, accountService, redisClient, cfg)
	userService := service.NewUserService(store)

	accountHandler := handler.NewAccountHandler(accountService)
	transactionHandler := handler.NewTransactionHandler(accountService)
	loanHandler := handler.NewLoanHandler(loanService)
	userHandler := handler.NewUserHandler(userService)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.HealthTimeout())

	router := setupRoutes(sugar, accountHandler, transactionHandler, loanHandler, userHandler, healthHandler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sugar.Infow("starting server", "addr", server.Addr, "env", cfg.Server.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("server error", "error", err)
	}

	sugar.Info("server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime())

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	sugar *zap.SugaredLogger,
	accountHandler *handler.AccountHandler,
	transactionHandler *handler.TransactionHandler,
	loanHandler *handler.LoanHandler,
	userHandler *handler.UserHandler,
	healthHandler *handler.HealthHandler,
) *mux.Router {
	router := mux.NewRouter()

	router.Use(response.CORSMiddleware)
	router.Use(response.LoggingMiddleware(sugar))

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(handler.SessionMiddleware)

	api.HandleFunc("/users", handler.RequireAdmin(userHandler.ListUsers)).Methods("GET")
	api.HandleFunc("/users/{userId}", userHandler.GetUser).Methods("GET")
	api.HandleFunc("/users/{userId}/accounts", accountHandler.ListUserAccounts).Methods("GET")

	api.HandleFunc("/accounts/{accountId}", accountHandler.GetAccount).Methods("GET")
	api.HandleFunc("/accounts/{accountId}/transactions", accountHandler.GetTransactions).Methods("GET")
	api.HandleFunc("/accounts/{accountId}/loans", loanHandler.ListAccountLoans).Methods("GET")
	api.HandleFunc("/accounts/{accountId}/loans", loanHandler.RequestLoan).Methods("POST")

	api.HandleFunc("/transactions/deposit", transactionHandler.Deposit).Methods("POST")
	api.HandleFunc("/transactions/withdrawal", transactionHandler.Withdraw).Methods("POST")
	api.HandleFunc("/transactions/transfer", transactionHandler.Transfer).Methods("POST")

	api.HandleFunc("/loans", handler.RequireAdmin(loanHandler.ListLoans)).Methods("GET")
	api.HandleFunc("/loans/calculate", loanHandler.Calculate).Methods("POST")
	api.HandleFunc("/loans/{loanId}", loanHandler.GetLoan).Methods("GET")
	api.HandleFunc("/loans/{loanId}/status", loanHandler.GetLoanStatus).Methods("GET")
	api.HandleFunc("/loans/{loanId}/payments", loanHandler.PayInstallments).Methods("POST")

	return router
}
