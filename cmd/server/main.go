// Command server runs the career-guidance backend: the conversational chat
// engine, the review pipeline, prompt template management, and the scheduled
// low-skill notification sweep, all behind one HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coderbhiya/careerai-be/internal/ai"
	"github.com/coderbhiya/careerai-be/internal/config"
	httpapi "github.com/coderbhiya/careerai-be/internal/http"
	"github.com/coderbhiya/careerai-be/internal/observability"
	"github.com/coderbhiya/careerai-be/internal/repo"
	"github.com/coderbhiya/careerai-be/internal/scheduler"
	"github.com/coderbhiya/careerai-be/internal/services"
	"github.com/coderbhiya/careerai-be/internal/sysutil"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	// Best effort; real deployments configure via the environment.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	sysutil.SetLogLevel(cfg.LogLevel)
	log.Info().Str("version", version).Str("port", cfg.Port).Msg("starting server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("setup tracing")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	gw, err := ai.NewGeminiGateway(ctx, ai.GeminiConfig{
		APIKey:      cfg.Gemini.APIKey,
		Model:       cfg.Gemini.Model,
		Temperature: float32(cfg.Gemini.Temperature),
		Timeout:     cfg.Gemini.Timeout,
	}, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("init completion gateway")
	}

	notifySvc := &services.NotifyService{
		DB:        db,
		Threshold: cfg.Sweep.Threshold,
		Log:       log.Logger,
	}

	var sched *scheduler.Scheduler
	if cfg.Sweep.Enabled {
		sched, err = scheduler.New(log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("init scheduler")
		}
		err = sched.Register("notify-low-skills", cfg.Sweep.Cron, func(ctx context.Context) error {
			_, err := notifySvc.LowSkillSweep(ctx)
			return err
		})
		if err != nil {
			log.Fatal().Err(err).Str("cron", cfg.Sweep.Cron).Msg("register sweep job")
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				log.Warn().Err(err).Msg("scheduler shutdown")
			}
		}()
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, gw, notifySvc, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
