package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"media-catalog/internal/catalog"
	"media-catalog/internal/database"
	"media-catalog/internal/indexcache"
	"media-catalog/internal/logging"
	"media-catalog/internal/memory"
	"media-catalog/internal/metrics"
	"media-catalog/internal/scanner"
	"media-catalog/internal/startup"
	"media-catalog/internal/tags"
	"media-catalog/internal/transfer"
)

const collectInterval = 30 * time.Second

// app holds the collaborators one command invocation works with.
type app struct {
	cfg     *startup.Config
	db      *database.Database
	cache   *indexcache.Cache
	tags    *tags.Store
	scanner *scanner.Shared
	alloc   *transfer.Allocator

	collector  *metrics.Collector
	metricsSrv *metrics.Server
}

func openApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := startup.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.metricsAddr != "" {
		cfg.MetricsAddr = opts.metricsAddr
	}
	if err := cfg.PrepareDatabaseDir(); err != nil {
		return nil, err
	}

	dbStart := time.Now()
	db, err := database.New(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	startup.LogDatabaseInit(cfg.DatabasePath, time.Since(dbStart))

	a := &app{cfg: cfg, db: db, cache: indexcache.New(db)}

	a.tags, err = tags.New(ctx, db)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to load tags: %w", err), a.Close())
	}

	a.scanner = scanner.NewShared(scanner.New(scanner.Options{
		Root:       cfg.StorageRoot,
		Extensions: cfg.Extensions,
		Reserved:   cfg.ReservedDirs,
		Workers:    cfg.ScanWorkers,
		Tags:       a.tags,
	}))

	budget, source := cfg.TransferMaxBytes, "config"
	if budget == 0 {
		budget = memory.TransferBudget(opts.memory, startup.DefaultTransferMaxBytes)
		source = "memory limit"
		if opts.memory.ContainerLimit == 0 {
			source = "default"
		}
	}
	startup.LogTransferBudget(budget, source)
	a.alloc = transfer.NewAllocator(transfer.Options{MaxBytes: budget})

	if cfg.MetricsAddr != "" {
		metrics.InitializeMetrics()
		a.metricsSrv, err = metrics.Serve(cfg.MetricsAddr)
		if err != nil {
			return nil, errors.Join(err, a.Close())
		}
		a.collector = metrics.NewCollector(db, cfg.DatabasePath, collectInterval)
		a.collector.Start()
	}

	return a, nil
}

// Close releases everything openApp acquired. Leaked transfer handles are
// destroyed and logged.
func (a *app) Close() error {
	var errs []error

	if a.collector != nil {
		a.collector.Stop()
	}
	if a.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		errs = append(errs, a.metricsSrv.Shutdown(ctx))
		cancel()
	}
	if a.alloc != nil {
		if n := a.alloc.Live(); n > 0 {
			logging.Warn("Destroying %d transfer handles that were never received", n)
		}
		errs = append(errs, a.alloc.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

// controller builds a catalog controller over the app's collaborators.
func (a *app) controller(watch bool) (*catalog.Controller, error) {
	return catalog.New(catalog.Deps{
		Scanner:   a.scanner,
		Cache:     a.cache,
		Tags:      a.tags,
		TagDirs:   a.tags,
		Allocator: a.alloc,
	}, catalog.Options{
		Root:         a.cfg.StorageRoot,
		RootBoundary: a.cfg.RootBoundary,
		Watch:        watch,
	})
}

// withApp opens the app for the duration of fn.
func withApp(ctx context.Context, opts *rootOptions, fn func(a *app) error) (err error) {
	a, err := openApp(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	return fn(a)
}
