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
	"github.com/playmatatu/gravityputt/internal/api"
	"github.com/playmatatu/gravityputt/internal/auth"
	"github.com/playmatatu/gravityputt/internal/config"
	"github.com/playmatatu/gravityputt/internal/database"
	"github.com/playmatatu/gravityputt/internal/migrations"
	"github.com/playmatatu/gravityputt/internal/observability"
	"github.com/playmatatu/gravityputt/internal/redis"
	"github.com/playmatatu/gravityputt/internal/session"
	"github.com/playmatatu/gravityputt/internal/store"
	"github.com/playmatatu/gravityputt/internal/ws"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	logger := observability.InitLogger("gravityputt", cfg.Environment, cfg.LogLevel)
	if envErr != nil {
		logger.Info().Msg("no .env file found, using environment variables")
	}
	observability.RegisterMetrics()

	tuning, err := config.LoadTuning(cfg.TuningFile, cfg.TickHz)
	if err != nil {
		logger.Fatal().Err(err).Str("file", cfg.TuningFile).Msg("invalid gameplay tuning")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		logger.Info().Msg("running DB migrations on startup")
		if err := migrations.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub()
	go hub.Run(ctx)

	records := store.NewRecordStore(db)
	events := store.NewEventBus(rdb)

	manager, err := session.NewManager(session.Options{
		Tuning:         tuning,
		BroadcastEvery: cfg.BroadcastEvery(),
		IdleTimeout:    cfg.IdleTimeout(),
		MaxSessions:    cfg.MaxConcurrentSessions,
		Snapshots:      store.NewSnapshotStore(rdb, cfg.SessionTTL()),
		Records:        records,
		Events:         events,
		Idle:           store.NewIdleSet(rdb),
		Broadcaster:    hub,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create session manager")
	}

	manager.StartIdleWorker(ctx, cfg.IdlePollInterval())
	ws.StartEventSubscriber(ctx, events, hub)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	api.SetupRoutes(router, api.Dependencies{
		Config:  cfg,
		Manager: manager,
		Hub:     hub,
		Tokens:  auth.NewTokens(cfg.JWTSecret, cfg.SessionTTL()),
		History: records,
	})

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("port", port).Dur("tick", tuning.TickRate).Msg("starting gravity putt server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	if err := manager.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("session shutdown did not drain")
	}
	logger.Info().Int("active_sessions", manager.Count()).Msg("stopped")
}
