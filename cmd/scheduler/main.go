package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/aspirehq/loan-engine/internal/config"
	"github.com/aspirehq/loan-engine/internal/repository"
)

func main() {
	log.Println("Starting loan scheduler...")

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	installmentRepo := repository.NewInstallmentRepository(db)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone: %v", err)
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	// Daily job reporting overdue installments per loan
	_, err = c.AddFunc(cfg.Scheduler.OverdueCron, func() {
		reportOverdueInstallments(installmentRepo, logger)
	})
	if err != nil {
		log.Fatalf("Error scheduling overdue report job: %v", err)
	}

	c.Start()
	log.Println("Scheduler started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	<-c.Stop().Done()
	log.Println("Scheduler stopped")
}

// reportOverdueInstallments logs every loan with pending installments past
// their due date. Installment statuses stay untouched: overdue is a view
// over due dates, not a persisted state.
func reportOverdueInstallments(installmentRepo repository.InstallmentRepository, logger *logrus.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	overdue, err := installmentRepo.GetOverdue(ctx, time.Now())
	if err != nil {
		logger.WithError(err).Error("overdue report query failed")
		return
	}

	counts := make(map[string]int)
	for _, installment := range overdue {
		counts[installment.LoanID.String()]++
	}

	for loanID, count := range counts {
		logger.WithFields(logrus.Fields{
			"loan_id": loanID,
			"overdue": count,
		}).Warn("loan has overdue installments")
	}

	logger.WithField("loans", len(counts)).Info("overdue report complete")
}
