package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-practice/internal/config"
	"github.com/stemsi/exstem-practice/internal/handler"
	"github.com/stemsi/exstem-practice/internal/logger"
	"github.com/stemsi/exstem-practice/internal/repository"
	"github.com/stemsi/exstem-practice/internal/router"
	"github.com/stemsi/exstem-practice/internal/service"
	"github.com/stemsi/exstem-practice/internal/validator"
	"github.com/stemsi/exstem-practice/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("bank_source", cfg.BankSource).
		Dur("default_time_limit", cfg.DefaultTimeLimit).
		Msg("Starting ExStem Practice")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Open Bank Source ──────────────────────────────────────────────
	backend, err := repository.OpenBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open bank source")
	}
	defer backend.Close()

	// ─── Initialize Services ──────────────────────────────────────────
	bankService := service.NewBankService(backend.Source, log)
	if err := bankService.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to load question bank")
	}

	var opts []service.PracticeOption
	if cfg.RandomSeed != 0 {
		opts = append(opts, service.WithSeed(cfg.RandomSeed))
	}
	practiceService := service.NewPracticeService(bankService, cfg.DefaultTimeLimit, log, opts...)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Bank:    handler.NewBankHandler(bankService, log),
		Session: handler.NewSessionHandler(practiceService, log),
		WS:      handler.NewWSHandler(practiceService, log, cfg.AllowedOrigins),
		System:  handler.NewSystemHandler(bankService, practiceService, backend.RDB, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	timerWorker := worker.NewTimerWorker(practiceService, cfg.TickInterval, log)
	go timerWorker.Start(workerCtx)

	if backend.Redis != nil {
		reloadWorker := worker.NewBankReloadWorker(bankService, backend.Redis, log)
		go reloadWorker.Start(workerCtx)
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	workerCancel()
	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
