package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/progresar/progresar-core/internal/config"
	"github.com/progresar/progresar-core/internal/repository"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()
	sugar.Info("starting installment scheduler...")

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err)
	}
	defer db.Close()

	store := repository.NewStore(db)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		sugar.Fatalw("invalid scheduler timezone", "error", err)
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	// Daily pass flagging installments whose due date has passed. Overdue is
	// a display state only; an overdue installment stays payable.
	_, err = c.AddFunc(cfg.Scheduler.OverdueSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()

		changed, err := store.Loans.MarkOverdueInstallments(ctx, time.Now())
		if err != nil {
			sugar.Errorw("overdue pass failed", "error", err)
			return
		}
		sugar.Infow("overdue pass completed", "installments_flagged", changed)
	})
	if err != nil {
		sugar.Fatalw("failed to schedule overdue pass", "error", err)
	}

	c.Start()
	sugar.Infow("scheduler started", "spec", cfg.Scheduler.OverdueSpec, "timezone", cfg.Scheduler.Timezone)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sugar.Info("shutting down scheduler...")
	<-c.Stop().Done()
	sugar.Info("scheduler stopped")
}
