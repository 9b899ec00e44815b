package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"career-advisor/internal/config"
	"career-advisor/internal/handlers"
	"career-advisor/internal/logger"
	"career-advisor/internal/router"
	"career-advisor/internal/services"
)

func main() {
	// ──── Step 1: Load Configuration ────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("✗ Config load failed: %v", err)
	}

	// ──── Step 2: Initialize Logger ────
	zapLog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("✗ Logger initialization failed: %v", err)
	}
	defer zapLog.Sync()

	zapLog.Info("Starting career advisor",
		zap.String("env", cfg.Env),
		zap.String("endpoint", cfg.AdviceEndpoint),
		zap.String("model", cfg.AdviceModel),
		zap.Duration("advice_timeout", cfg.AdviceTimeout),
	)

	// ──── Step 3: Initialize Services ────
	advisor := services.NewAdvisorService(cfg.AdviceEndpoint, cfg.AdviceModel, cfg.AdviceTimeout, zapLog)
	renderer := services.NewMarkdownRenderer()

	// ──── Step 4: Initialize Handlers ────
	adviceHandler, err := handlers.NewAdviceHandler(advisor, renderer, zapLog)
	if err != nil {
		zapLog.Fatal("handler initialization failed", zap.Error(err))
	}

	// ──── Step 5: Start HTTP Server ────
	r := router.New(zapLog, adviceHandler, cfg.CORSOrigin)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// The advisory call has no deadline of its own, so writes must not cut it off.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		zapLog.Info("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			zapLog.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	zapLog.Info("Career advisor ready", zap.String("url", fmt.Sprintf("http://localhost:%s", cfg.Port)))

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		zapLog.Fatal("server error", zap.Error(err))
	}
}
