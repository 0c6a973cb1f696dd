package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/wilson12358/daybook/infrastructure/config"
	"github.com/wilson12358/daybook/infrastructure/di"
	"github.com/wilson12358/daybook/interfaces/http/rest"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initial overrides must land on cfg before the container copies the
	// tunable values into the caches and services it constructs.
	if cfg.OverridesPath != "" {
		if overrides, err := config.LoadOverrides(cfg.OverridesPath); err != nil {
			log.Printf("Overrides file unavailable, using defaults: %v", err)
		} else {
			overrides.Apply(cfg)
		}
	}

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer container.Shutdown()

	// Runtime overrides, pushed into the live components on file change
	if cfg.OverridesPath != "" {
		watcher, err := config.NewWatcher(cfg.OverridesPath, container.Logger)
		if err != nil {
			container.Logger.Warn("overrides watcher unavailable", zap.Error(err))
		} else {
			watcher.OnChange(func(o *config.Overrides) {
				tuned := *cfg
				o.Apply(&tuned)
				container.ApplyTuning(&tuned)
			})
			watcher.Start()
			defer watcher.Stop()
		}
	}

	handler := rest.NewRouter(container).Setup()

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		container.Logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	container.Logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("Server shutdown error", zap.Error(err))
	}

	log.Println("Server stopped")
}
