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

	"go.uber.org/zap"

	"driftblinks/analytics"
	"driftblinks/api"
	"driftblinks/config"
	"driftblinks/drift"
	"driftblinks/jupiter"
	"driftblinks/logger"
	"driftblinks/priofee"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	capture := analytics.New(cfg.PosthogAPIKey, zlog)

	chainCfg := drift.Config{RPCURL: cfg.RPCEndpoint, Env: cfg.Env}
	handler := api.NewHandler(api.Options{
		Env:       string(cfg.Env),
		BucketURL: cfg.BucketURL,
		HostURL:   cfg.HostURL,
		NewChain: func() api.ChainClient {
			return drift.NewClient(chainCfg, zlog)
		},
		Fees:      priofee.NewEstimator(cfg.HeliusRPCURL, zlog),
		Swaps:     jupiter.NewClient(""),
		Analytics: capture,
		Logger:    zlog,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler.Router(),
	}

	go func() {
		zlog.Info("server starting",
			zap.Int("port", cfg.Port),
			zap.String("env", string(cfg.Env)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	// Drain in-flight requests and flush analytics on shutdown signals.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	sig := <-stop
	zlog.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Warn("server shutdown", zap.Error(err))
	}
	if err := capture.Close(); err != nil {
		zlog.Warn("analytics shutdown", zap.Error(err))
		os.Exit(1)
	}
	zlog.Info("analytics client shut down")
}
