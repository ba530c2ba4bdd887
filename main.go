package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"community/config"
	"community/database"
	"community/handlers"
	"community/routes"
	"community/websocket"

	"github.com/flowchartsman/retry"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const connectAttempts = 3

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Invalid configuration")
	}
	setupLogger(cfg)

	log.Info().Msg("🚀 Starting Community Backend Server...")

	// ===== CONNECT TO MONGODB WITH RETRY =====
	log.Info().Str("database", cfg.DatabaseName).Msg("🔌 Connecting to MongoDB...")
	store, err := connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to connect to MongoDB")
	}
	log.Info().Msg("✅ MongoDB connected successfully")

	// ===== GIN MODE =====
	if cfg.Release() {
		gin.SetMode(gin.ReleaseMode)
		log.Info().Msg("⚙️ Running in RELEASE mode")
	} else {
		gin.SetMode(gin.DebugMode)
		log.Info().Msg("⚙️ Running in DEBUG mode")
	}

	// ===== WEBSOCKET =====
	log.Info().Msg("🔌 Initializing WebSocket manager...")
	hub := websocket.NewManager()
	go hub.Start()

	// ===== ROUTER =====
	h := handlers.New(store, hub,
		handlers.WithTimeout(cfg.RequestTimeout),
		handlers.WithDatabaseURLSet(config.DatabaseURLSet()),
	)
	router := routes.SetupRouter(h, hub, cfg.CORSOrigins)

	// ===== SERVER CONFIG =====
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("🌐 Server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("❌ Server error")
		}
	}()

	// ===== GRACEFUL SHUTDOWN =====
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("❌ Forced shutdown")
	}
	hub.Stop()
	if err := store.Close(ctx); err != nil {
		log.Error().Err(err).Msg("❌ MongoDB disconnect failed")
	}

	log.Info().Msg("👋 Server stopped gracefully")
}

func setupLogger(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if !cfg.Release() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime})
	}
}

func connect(cfg config.Config) (*database.Store, error) {
	retrier := retry.NewRetrier(connectAttempts, 2*time.Second, 5*time.Second)

	var store *database.Store
	attempt := 0
	err := retrier.Run(func() error {
		attempt++
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
		defer cancel()

		s, err := database.Connect(ctx, cfg.DatabaseURL, cfg.DatabaseName)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("❌ MongoDB connection attempt failed")
			return err
		}
		store = s
		return nil
	})
	return store, err
}
