package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/healthdash/internal/adapters/catalog"
	"github.com/okian/healthdash/internal/adapters/http/healthapi"
	"github.com/okian/healthdash/internal/config"
	"github.com/okian/healthdash/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	importSeed := flag.Bool("import", false, "Reset the database and import the seed catalog (requires database_dsn)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	lg := logger.Named("health-api")
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		lg.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	c, closeCatalog, err := openCatalog(ctx, cfg, *importSeed)
	if err != nil {
		lg.Error(ctx, "failed to open catalog", logger.Error(err))
		return
	}
	defer closeCatalog()

	api, err := healthapi.New(c,
		healthapi.WithLogger(lg),
		healthapi.WithAllowedOrigins(cfg.CORSAllowedOrigins),
	)
	if err != nil {
		lg.Error(ctx, "failed to build health api", logger.Error(err))
		return
	}

	srv := &http.Server{
		Addr:              cfg.HealthAPIAddr,
		Handler:           api.Handler(ctx),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		lg.Info(ctx, "starting health API", logger.String("addr", cfg.HealthAPIAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	lg.Info(ctx, "shutting down health API...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	lg.Info(ctx, "health API stopped")
}

// openCatalog picks the backend: PostgreSQL when a DSN is configured,
// otherwise a memory catalog from catalog_file or the built-in seed.
// With importSeed the database is reset and filled from that same seed.
func openCatalog(ctx context.Context, cfg *config.Config, importSeed bool) (catalog.Catalog, func(), error) {
	seed := func() (*catalog.Memory, error) {
		if cfg.CatalogFile != "" {
			return catalog.LoadFile(cfg.CatalogFile)
		}
		return catalog.Default()
	}

	if cfg.DatabaseDSN == "" {
		if importSeed {
			return nil, nil, fmt.Errorf("%w: -import requires database_dsn", config.ErrInvalidConfig)
		}
		m, err := seed()
		if err != nil {
			return nil, nil, err
		}
		return m, func() {}, nil
	}

	pg, err := catalog.OpenPostgres(ctx, catalog.PostgresConfig{DSN: cfg.DatabaseDSN, MaxConns: cfg.DBMaxConns})
	if err != nil {
		return nil, nil, err
	}
	if err := pg.Migrate(ctx); err != nil {
		pg.Close()
		return nil, nil, err
	}
	if importSeed {
		if err := importInto(ctx, pg, seed); err != nil {
			pg.Close()
			return nil, nil, err
		}
	}
	return pg, pg.Close, nil
}

func importInto(ctx context.Context, pg *catalog.Postgres, seed func() (*catalog.Memory, error)) error {
	m, err := seed()
	if err != nil {
		return err
	}
	records, err := m.List(ctx)
	if err != nil {
		return err
	}
	return pg.Replace(ctx, records)
}
