package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Shilpe266/dp-jewellers-sub000/internal/catalog"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/charges"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/rates"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/reprice"
	"github.com/Shilpe266/dp-jewellers-sub000/pkg/config"
	"github.com/Shilpe266/dp-jewellers-sub000/pkg/db"
	"github.com/Shilpe266/dp-jewellers-sub000/pkg/logging"
	"github.com/Shilpe266/dp-jewellers-sub000/pkg/redisx"
)

// Runs one full reprice sweep against the current rates and exits. Useful
// after backfills or settings changes outside a rate publish.
func main() {
	cfg := config.Load()
	log := logging.New(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("db open")
	}
	defer conn.Close()

	rds, err := redisx.Open(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("redis open")
	}
	defer rds.Close()

	job := &reprice.Job{
		DB:        conn,
		Products:  catalog.NewRepository(conn),
		Rates:     rates.NewRepository(conn),
		Settings:  charges.NewRepository(conn),
		Log:       log,
		BatchSize: cfg.RepriceBatchSize,
	}
	if rds != nil {
		job.Locker = rds.Locker
	}

	stats, err := job.Run(ctx)
	if err != nil {
		log.WithError(err).Fatal("reprice run")
	}
	log.WithField("processed", stats.Processed).WithField("failed", stats.Failed).Info("done")
}
