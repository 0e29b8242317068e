// Command neoreview serves the IFS NEO review API: upload an audit export,
// annotate it, download work saves and final reports.
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

	"go.uber.org/zap"

	"github.com/M00N69/NEOREVIEW/pkg/config"
	"github.com/M00N69/NEOREVIEW/pkg/httpapi"
	"github.com/M00N69/NEOREVIEW/pkg/logging"
	"github.com/M00N69/NEOREVIEW/pkg/reftable"
	"github.com/M00N69/NEOREVIEW/pkg/session"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to the YAML configuration file")
	flag.Parse()

	if configPath == "" {
		if _, err := os.Stat("neoreview.yaml"); err == nil {
			configPath = "neoreview.yaml"
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Development())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	store := session.NewStore()
	fetcher := reftable.NewFetcher(cfg.RequirementTableURL, cfg.FetchTimeout.Std(), logger)
	api := httpapi.New(store, fetcher, logger)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: api.Routes(),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Info("listening", zap.String("addr", cfg.ListenAddr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace.Std())
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("shutdown incomplete", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}
}
