package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tiendapos/internal/config"
	"tiendapos/internal/infra"
	"tiendapos/internal/repository"
	"tiendapos/internal/router"
	"tiendapos/internal/worker"
	"tiendapos/internal/ws"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Env == "production" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// NewDatabase runs AutoMigrate plus the idempotent schema patches.
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	cache := infra.NewCache(rdb, time.Duration(cfg.ReportCacheTTLSeconds)*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Realtime hub: terminals subscribe over /v1/ws
	hub := ws.NewHub()
	go hub.Run()

	// Async workers (ticket PDFs, alert mails) are wired here — the
	// composition root has full access to all infrastructure.
	mailer := infra.NewMailer(cfg)
	cb := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	dispatcher := worker.NewDispatcher(rdb)

	ventaRepo := repository.NewVentaRepository(db)
	turnoRepo := repository.NewTurnoRepository(db)

	pool := worker.NewPool(rdb)
	pool.Register("email", worker.NewEmailWorker(mailer, cb).Process)
	pool.Register("ticket", worker.NewTicketWorker(ventaRepo, cfg.PDFStoragePath).Process)
	pool.Start(ctx, cfg.WorkerPoolSize)

	// Corrects turno totals if they ever drift from the ventas table
	worker.StartReconcileCron(ctx, worker.ReconcileCronConfig{
		TurnoRepo: turnoRepo,
		VentaRepo: ventaRepo,
	})

	r := router.New(router.Deps{
		Cfg:   cfg,
		DB:    db,
		RDB:   rdb,
		Cache: cache,
		Hub:   hub,
		Disp:  dispatcher,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("tiendapos backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
