package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shilpe266/dp-jewellers-sub000/internal/httpapi"
	"github.com/Shilpe266/dp-jewellers-sub000/pkg/config"
	"github.com/Shilpe266/dp-jewellers-sub000/pkg/db"
	"github.com/Shilpe266/dp-jewellers-sub000/pkg/logging"
	"github.com/Shilpe266/dp-jewellers-sub000/pkg/redisx"
)

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

	if cfg.MigrationsPath != "" {
		if err := db.MigrateConfig(cfg.MigrationsPath, cfg); err != nil {
			log.WithError(err).Fatal("migrate")
		}
	}

	rds, err := redisx.Open(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("redis open")
	}
	defer rds.Close()

	router := httpapi.NewRouter(httpapi.Dependencies{
		Cfg:   cfg,
		DB:    conn,
		Redis: rds,
		Log:   log,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("http listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("http serve")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(shutdownCtx)
}
