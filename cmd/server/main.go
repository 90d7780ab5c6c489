package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tastybyte/orderbot/config"
	httpDelivery "github.com/tastybyte/orderbot/internal/delivery/http"
	"github.com/tastybyte/orderbot/internal/infrastructure/classifier"
	"github.com/tastybyte/orderbot/internal/infrastructure/logging"
	"github.com/tastybyte/orderbot/internal/infrastructure/store"
	"github.com/tastybyte/orderbot/internal/nlp"
	"github.com/tastybyte/orderbot/internal/seed"
	"github.com/tastybyte/orderbot/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Zap().Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("server stopped with error", nil)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting orderbot", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"store":       cfg.Store.Type,
		"classifier":  cfg.Classifier.Provider,
	})

	// Initialize infrastructure dependencies
	s, closeStore, err := store.Open(cfg.Store.Type, cfg.Store.RedisURL, cfg.Store.KeyPrefix)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = closeStore() }()

	// The memory store starts empty, so give it the demo menu
	if cfg.Store.Type == store.TypeMemory {
		if _, err := seed.Load(ctx, s, logger); err != nil {
			return fmt.Errorf("seed menu: %w", err)
		}
	}

	zeroShot, closeClassifier, err := classifier.Open(ctx, cfg.Classifier.Provider, cfg.Classifier.APIKey,
		cfg.Classifier.Model, cfg.Classifier.RatePerSec, logger)
	if err != nil {
		return fmt.Errorf("open classifier: %w", err)
	}
	defer func() { _ = closeClassifier() }()

	parser := nlp.NewParser(
		nlp.WithLogger(logger),
		nlp.WithClassifier(zeroShot),
		nlp.WithClassifierTimeout(cfg.Parser.ClassifierTimeout),
		nlp.WithThresholds(cfg.Parser.FuzzyThreshold, cfg.Parser.FuzzyGoodEnough),
	)

	logger.Info("parser configured", map[string]interface{}{
		"fuzzy_threshold":    cfg.Parser.FuzzyThreshold,
		"fuzzy_good_enough":  cfg.Parser.FuzzyGoodEnough,
		"classifier_timeout": cfg.Parser.ClassifierTimeout.String(),
		"zero_shot_enabled":  zeroShot != nil,
	})

	// Initialize usecase layer
	orderService := usecase.NewOrderService(s, s, s, parser, logger)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(orderService, s, logger)
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
