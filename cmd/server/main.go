package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	web "bookly/internal/adapters/http"
	"bookly/internal/adapters/metrics"
	"bookly/internal/adapters/storage"
	bookingStore "bookly/internal/adapters/storage/booking"
	eventTypeStore "bookly/internal/adapters/storage/eventtype"
	"bookly/internal/adapters/storage/jsonfile"
	userStore "bookly/internal/adapters/storage/user"
	"bookly/internal/application/orchestrators"
	"bookly/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to the YAML config file (default $BOOKLY_CONFIG or bookly.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slog.SetDefault(slog.New(cfg.SlogHandler(os.Stderr)))

	metrics.Register()
	collector := metrics.Collector{}

	stores, closer, err := openStores(context.Background(), cfg, collector)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", cfg.Store, err)
	}
	defer closer.Close()

	// The JSON document seeds itself on first read; this is a no-op there.
	if err := orchestrators.ExecuteSeedDefaults(context.Background(), orchestrators.SeedDefaultsDeps{
		UserStore:      stores.UserStore,
		EventTypeStore: stores.EventTypeStore,
	}); err != nil {
		log.Fatalf("failed to seed defaults: %v", err)
	}

	csrfKey, err := cfg.CSRFKeyBytes()
	if err != nil {
		log.Fatalf("invalid csrf key: %v", err)
	}

	handler, err := web.NewMux(stores, web.Options{
		StaticDir:          cfg.StaticDir,
		CSRFKey:            csrfKey,
		Secure:             cfg.IsProduction(),
		TrustedOrigins:     cfg.TrustedOrigins,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		HostUserID:         cfg.HostUserID,
		Metrics:            collector,
		SlowRequest:        cfg.SlowRequest(),
	})
	if err != nil {
		log.Fatalf("failed to build handler: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_event", "event", "starting", "version", version, "addr", cfg.Addr,
			"env", cfg.Env, "store", cfg.Store)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	case <-ctx.Done():
		slog.Info("server_event", "event", "shutting_down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server_event", "event", "shutdown_failed", "error", err)
		}
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openStores builds the three stores on the configured backend.
// PRE: cfg is validated
// POST: The returned closer releases the backend's connections
func openStores(ctx context.Context, cfg config.Config, collector metrics.Collector) (*web.Stores, io.Closer, error) {
	switch cfg.Store {
	case config.StoreJSON:
		f := jsonfile.New(cfg.JSONPath)
		slog.Info("store_event", "event", "opened", "store", cfg.Store, "path", f.Path())
		return &web.Stores{
			UserStore:      userStore.NewJSONStore(f),
			EventTypeStore: eventTypeStore.NewJSONStore(f),
			BookingStore:   bookingStore.NewJSONStore(f),
		}, nopCloser{}, nil

	case config.StorePostgres:
		db, err := storage.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := storage.MigratePostgres(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		slog.Info("store_event", "event", "opened", "store", cfg.Store)
		return &web.Stores{
			UserStore:      userStore.NewPostgresStore(db),
			EventTypeStore: eventTypeStore.NewPostgresStore(db),
			BookingStore:   bookingStore.NewPostgresStore(db),
		}, db, nil

	default:
		db, err := sql.Open("sqlite", storage.SQLiteDSN(cfg.SQLitePath))
		if err != nil {
			return nil, nil, err
		}
		// Connection pool settings for WAL mode
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		if err := storage.MigrateDB(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		timedDB := storage.NewTimedDB(db, collector, cfg.SlowQuery())
		slog.Info("store_event", "event", "opened", "store", cfg.Store, "path", cfg.SQLitePath,
			"schema", storage.LatestSchemaVersion())
		return &web.Stores{
			UserStore:      userStore.NewSQLiteStore(timedDB),
			EventTypeStore: eventTypeStore.NewSQLiteStore(timedDB),
			BookingStore:   bookingStore.NewSQLiteStore(timedDB),
		}, timedDB, nil
	}
}
