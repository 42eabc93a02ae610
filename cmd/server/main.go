// Package main initializes and starts the back-office server, setting up
// configuration, logging, the selected storage backend, services, the
// session bootstrapper and the HTTP API.
package main

import (
	"cmp"
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/spincity/backoffice/internal/config"
	"github.com/spincity/backoffice/internal/db"
	"github.com/spincity/backoffice/internal/logger"
	"github.com/spincity/backoffice/internal/server/handler/http"
	"github.com/spincity/backoffice/internal/service"
	"github.com/spincity/backoffice/internal/session"
	"github.com/spincity/backoffice/internal/settings"
	"github.com/spincity/backoffice/internal/store"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	zapLogger, err := logger.New(options.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = zapLogger.Sync() }()

	// Select the storage backend once at startup. Everything downstream is
	// backend-agnostic.
	var st *store.Store
	var identityEvents <-chan session.Event
	if options.DatabaseDSN != "" {
		postgresDB, err := db.InitPostgres(options.DatabaseDSN)
		if err != nil {
			zapLogger.Fatal("cannot init database", zap.Error(err))
		}
		st = store.NewRemote(postgresDB, zapLogger)
		// An external identity provider would feed identityEvents here and
		// the bootstrapper would follow its sign-in/sign-out notifications.
		// This deployment ships without one, so remote mode also falls back
		// to the persisted current-user pointer.
		zapLogger.Info("using remote document store")
	} else {
		sqliteDB, err := db.InitSQLite(options.LocalPath)
		if err != nil {
			zapLogger.Fatal("cannot init local database", zap.Error(err))
		}
		st = store.NewLocal(sqliteDB, zapLogger)
		zapLogger.Info("using local embedded store", zap.String("path", options.LocalPath))
	}

	ctx := context.Background()

	// Initialize business-logic services.
	settingsService := settings.New(st.KV, zapLogger)
	salesService := service.NewSalesService(st.Sales, st.Inventory, zapLogger)
	backupService := service.NewBackupService(st, settingsService, zapLogger)

	// Recompute derived inventory statuses once at startup, then on an
	// interval, to recover from crashes between the sale and inventory
	// writes.
	if err := salesService.Reconcile(ctx); err != nil {
		zapLogger.Error("startup reconciliation failed", zap.Error(err))
	}
	salesService.StartReconciler(ctx, time.Hour)

	notify := func(message string) {
		zapLogger.Info("user notice", zap.String("message", message))
	}
	bootstrapper := session.New(st, settingsService, identityEvents, notify, time.Now, zapLogger)
	state := bootstrapper.Bootstrap(ctx)
	zapLogger.Info("session bootstrapped", zap.String("state", state.String()))

	// Build the router with middleware and routes.
	router := http.NewRouter(st, salesService, backupService, settingsService, bootstrapper, time.Now, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
