package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/gorm"

	"brewcost/internal/catalog"
	"brewcost/internal/config"
	"brewcost/internal/finance"
	applog "brewcost/internal/log"
	"brewcost/internal/pos"
	"brewcost/internal/server"
	"brewcost/internal/storage"
	"brewcost/internal/storage/dbstore"
	"brewcost/internal/storage/jsonstore"
)

// serverLifecycle is the subset of the server used by run, kept as an
// interface so failure paths can be tested without binding a listener.
type serverLifecycle interface {
	Start() error
	Stop() error
}

// Seams for tests.
var (
	loadConfigFunc  = config.Load
	setLogLevelFunc = applog.SetLevel

	openDatabaseFunc = func(cfg config.DatabaseConfig) (storage.Gateway, *gorm.DB, error) {
		store, err := dbstore.Open(cfg)
		if err != nil {
			return nil, nil, err
		}
		return store, store.DB(), nil
	}
	openDocumentsFunc = func(dir string) (storage.Gateway, error) {
		return jsonstore.New(dir)
	}
	openCatalogFunc    = catalog.Open
	loadFinancialsFunc = finance.Load
	newPOSClientFunc   = pos.New

	newServerFunc = func(cfg server.Config) (serverLifecycle, error) {
		return server.New(cfg)
	}
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		return ch, func() { signal.Stop(ch) }
	}
)

func run(ctx context.Context) int {
	cfg, err := loadConfigFunc()
	if err != nil {
		applog.Error(ctx, "failed to load configuration", "error", err)
		return 1
	}
	if err := setLogLevelFunc(cfg.LogLevel); err != nil {
		applog.Error(ctx, "invalid log level", "level", cfg.LogLevel, "error", err)
		return 1
	}

	var (
		gateway  storage.Gateway
		database *gorm.DB
	)
	if cfg.Database.URL != "" {
		gateway, database, err = openDatabaseFunc(cfg.Database)
		if err != nil {
			applog.Error(ctx, "failed to open database", "error", err)
			return 1
		}
		applog.Info(ctx, "persisting catalog to database")
	} else {
		gateway, err = openDocumentsFunc(cfg.Data.Dir)
		if err != nil {
			applog.Error(ctx, "failed to open document store", "dir", cfg.Data.Dir, "error", err)
			return 1
		}
		applog.Info(ctx, "persisting catalog to documents", "dir", cfg.Data.Dir)
	}

	cat, err := openCatalogFunc(gateway)
	if err != nil {
		applog.Error(ctx, "failed to load catalog", "error", err)
		return 1
	}

	financials, err := loadFinancialsFunc(cfg.Data.Dir)
	if err != nil {
		applog.Error(ctx, "failed to load financial statements", "error", err)
		return 1
	}

	var posClient *pos.Client
	if cfg.POS.Configured() {
		posClient, err = newPOSClientFunc(cfg.POS)
		if err != nil {
			applog.Error(ctx, "failed to initialize pos client", "error", err)
			return 1
		}
		applog.Info(ctx, "pos integration enabled", "location", cfg.POS.LocationID)
	}

	srv, err := newServerFunc(server.Config{
		Addr: cfg.Server.Addr,
		Session: server.SessionConfig{
			Lifetime:     cfg.Server.SessionLifetime,
			CookieName:   cfg.Server.SessionCookie,
			CookieSecure: cfg.Server.CookieSecure,
		},
		Database:   database,
		Catalog:    cat,
		Financials: financials,
		POS:        posClient,
	})
	if err != nil {
		applog.Error(ctx, "failed to build server", "error", err)
		return 1
	}

	shutdownCh, unsubscribe := subscribeShutdownSig()
	defer unsubscribe()

	errCh := make(chan error, 1)
	go func() {
		applog.Info(ctx, "starting http server", "addr", cfg.Server.Addr)
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Error(ctx, "server encountered an error", "error", err)
			return 1
		}
	case <-shutdownCh:
		applog.Info(ctx, "shutting down http server")
		if err := srv.Stop(); err != nil {
			applog.Error(ctx, "graceful shutdown failed", "error", err)
			return 1
		}
	}

	return 0
}

func main() {
	os.Exit(run(context.Background()))
}
