// Package main initializes and starts the roster document store server,
// setting up configuration, logging, storage, services, handlers and,
// when configured, TLS.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/GophRoster/internal/config"
	"github.com/atinyakov/GophRoster/internal/db"
	"github.com/atinyakov/GophRoster/internal/logger"
	"github.com/atinyakov/GophRoster/internal/repository"
	"github.com/atinyakov/GophRoster/internal/server/handler/http"
	"github.com/atinyakov/GophRoster/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// documentStore is what the server needs from a storage backend.
type documentStore interface {
	service.DocumentRepository
	db.Purger
}

func main() {
	// Parse command-line, config file and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(options)
	if err != nil {
		zapLogger.Fatal("cannot init storage", zap.String("driver", options.Driver), zap.Error(err))
	}
	defer closeStore()

	db.StartSoftDeleteCleaner(ctx, store,
		time.Hour,       // interval
		30*24*time.Hour, // retention: 30 days
		zapLogger,
	)

	documentService := service.NewDocumentService(store)
	documentHandler := &http.DocumentHandler{DocumentService: documentService, Logger: zapLogger}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := http.NewRouter(documentHandler, zapLogger, http.RouterConfig{
		Token:    options.Token,
		Registry: registry,
	})

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	useTLS := options.TLSCert != "" && options.TLSKey != ""
	zapLogger.Info("starting server",
		zap.String("addr", options.Port),
		zap.String("driver", options.Driver),
		zap.Bool("tls", useTLS),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if useTLS {
			err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if errors.Is(err, nethttp.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zapLogger.Error("server failed", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}

// openStore returns the repository for the configured driver and a func
// releasing its resources.
func openStore(options *config.Options) (documentStore, func(), error) {
	switch options.Driver {
	case config.DriverPostgres:
		conn, err := db.InitPostgres(options.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPostgresDocumentRepository(conn), func() { _ = conn.Close() }, nil
	case config.DriverSQLite:
		conn, err := db.InitSQLite(options.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewSQLiteDocumentRepository(conn), func() { _ = conn.Close() }, nil
	default:
		return repository.NewMemoryDocumentRepository(), func() {}, nil
	}
}
