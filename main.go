package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"movesight/internal/api"
	"movesight/internal/config"
	"movesight/internal/logging"
	"movesight/internal/middleware"
	"movesight/internal/safe"
	"movesight/internal/session"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// Largest request body accepted, in bytes.
const maxBody = 32 << 20

func main() {
	configPath := flag.String("config", "", "path to a JSON or YAML config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(config.ResolvePath(*configPath))
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	// Initialize logger
	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Initialize BadgerDB
	dbOpts := badger.DefaultOptions(cfg.Database.Path)
	if cfg.Database.InMemory {
		dbOpts = badger.DefaultOptions("").WithInMemory(true)
	}
	dbOpts.Logger = nil
	db, err := badger.Open(dbOpts)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	// Initialize payload store
	payloads, err := safe.New(db, safe.Options{
		CacheSize: cfg.Cache.Size,
		Compression: safe.CompressionOptions{
			Level:   cfg.Compression.Level,
			MinSize: cfg.Compression.MinSize,
		},
	})
	if err != nil {
		logger.Fatal("failed to initialize payload store", zap.Error(err))
	}

	sessions, err := session.NewService(db, payloads, logger, session.Options{
		MinLinesCount: cfg.Detection.MinLinesCount,
		MaxLines:      cfg.Detection.MaxLines,
		MemoSize:      cfg.Cache.Size,
	})
	if err != nil {
		logger.Fatal("failed to initialize sessions", zap.Error(err))
	}

	// Set up router
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", api.Health)
	api.NewSessionHandler(sessions, maxBody).Register(mux)

	// Apply middleware
	handler := middleware.Chain(
		mux,
		middleware.Recover(logger),
		middleware.Logger(logger),
		middleware.RequestID,
	)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting server",
			zap.String("address", srv.Addr),
			zap.String("environment", cfg.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
