package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mwantia/fabric/pkg/container"
	config "github.com/mwantia/mediacat/internal/config/server"
	"github.com/mwantia/mediacat/pkg/db/store"
	"github.com/mwantia/mediacat/pkg/fs"
	"github.com/mwantia/mediacat/pkg/log"
)

// MediaCatAgent keeps the catalog in line with the filesystem. It runs a
// reconciliation on a fixed interval and, for watched directories, shortly
// after files disappear.
type MediaCatAgent struct {
	mutex sync.RWMutex
	wait  sync.WaitGroup

	cfg        *config.BaseServerConfig
	sc         *container.ServiceContainer
	log        log.LoggerService
	store      store.CatalogStore
	registered bool
	trigger    chan struct{}
}

// reconciler is built by the service container once the catalog store and
// logger are registered.
type reconciler struct {
	Store store.CatalogStore `fabric:"inject"`
	Log   log.LoggerService  `fabric:"logger:reconcile"`
}

func NewAgent(cfg *config.BaseServerConfig) *MediaCatAgent {
	return &MediaCatAgent{
		cfg:     cfg,
		sc:      container.NewServiceContainer(),
		log:     log.NewLoggerService("mediacat", cfg.Log),
		trigger: make(chan struct{}, 1),
	}
}

// NewAgentWithStore uses an already connected store instead of opening the
// configured database. The caller keeps ownership of the store.
func NewAgentWithStore(cfg *config.BaseServerConfig, logger log.LoggerService, s store.CatalogStore) (*MediaCatAgent, error) {
	mca := &MediaCatAgent{
		cfg:     cfg,
		sc:      container.NewServiceContainer(),
		log:     logger,
		store:   s,
		trigger: make(chan struct{}, 1),
	}

	if err := mca.registerServices(); err != nil {
		return nil, err
	}
	return mca, nil
}

func (mca *MediaCatAgent) setupServices(ctx context.Context) error {
	if mca.store == nil {
		s, err := OpenStore(ctx, mca.cfg, fs.NewOsFiles(), mca.log)
		if err != nil {
			return err
		}
		mca.store = s
	}

	if mca.registered {
		return nil
	}
	return mca.registerServices()
}

func (mca *MediaCatAgent) registerServices() error {
	mca.sc.AddTagProcessor(log.NewLoggerTagProcessor())

	errs := container.Errors{}

	mca.log.Debug("Registering 'LoggerService'...")
	errs.Add(container.Register[log.LoggerServiceImpl](mca.sc,
		container.With[log.LoggerService](),
		container.WithInstance(mca.log)))

	mca.log.Debug("Registering 'CatalogStore'...")
	errs.Add(container.Register[store.SQLiteStore](mca.sc,
		container.With[store.CatalogStore](),
		container.WithInstance(mca.store)))

	errs.Add(container.Register[*reconciler](mca.sc, container.AsSingleton()))

	if err := errs.Errors(); err != nil {
		return err
	}
	mca.registered = true
	return nil
}

// OpenStore opens, connects and migrates the configured catalog database.
func OpenStore(ctx context.Context, cfg *config.BaseServerConfig, files fs.Files, logger log.LoggerService) (*store.SQLiteStore, error) {
	s, err := store.NewSQLiteStore(store.SQLiteConfig{
		Path:         cfg.Metadata.SQLite.Path,
		MaxOpenConns: cfg.Metadata.SQLite.MaxOpenConns,
		BatchSize:    cfg.Metadata.SQLite.BatchSize,
	}, files, logger.Named("store"))
	if err != nil {
		return nil, err
	}

	if err := s.Connect(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to connect to catalog: %w", err)
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to migrate catalog: %w", err)
	}

	return s, nil
}

func (mca *MediaCatAgent) Serve(ctx context.Context) (err error) {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	mca.mutex.Lock()
	owned := mca.store == nil
	defer func() {
		if !owned || mca.store == nil {
			return
		}
		if cerr := mca.store.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close catalog: %w", cerr)
		}
	}()
	if err := mca.setupServices(ctx); err != nil {
		mca.mutex.Unlock()
		return err
	}
	mca.mutex.Unlock()

	defer func() {
		cancel()
		mca.wait.Wait()

		timeout := parseDuration(mca.cfg.ShutdownTimeout, 60*time.Second)
		shutdown, stop := context.WithTimeout(context.Background(), timeout)
		defer stop()

		if cerr := mca.sc.Cleanup(shutdown); cerr != nil && err == nil {
			err = fmt.Errorf("failed to complete service container cleanup: %w", cerr)
		}
	}()

	interval := parseDuration(mca.cfg.Agent.CleanInterval, time.Hour)
	debounce := parseDuration(mca.cfg.Agent.Debounce, 2*time.Second)

	if len(mca.cfg.Agent.Watch) > 0 {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		defer watcher.Close()

		for _, dir := range mca.cfg.Agent.Watch {
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch '%s': %w", dir, err)
			}
			mca.log.Info("Watching '%s' for removed files", dir)
		}

		mca.wait.Add(1)
		go func() {
			defer mca.wait.Done()
			mca.watch(ctx, watcher, debounce)
		}()
	}

	mca.wait.Add(1)
	go func() {
		defer mca.wait.Done()
		mca.schedule(ctx, interval)
	}()

	<-ctx.Done()
	return nil
}

// Trigger requests a reconciliation as soon as the scheduler is idle.
func (mca *MediaCatAgent) Trigger() {
	select {
	case mca.trigger <- struct{}{}:
	default:
	}
}

// Reconcile removes stale entries and, when configured, unused classes.
func (mca *MediaCatAgent) Reconcile(ctx context.Context) error {
	mca.mutex.RLock()
	defer mca.mutex.RUnlock()

	r, err := container.Resolve[*reconciler](ctx, mca.sc)
	if err != nil {
		return fmt.Errorf("failed to resolve reconciler: %w", err)
	}
	return r.run(ctx, mca.cfg.Agent.Prune)
}

func (r *reconciler) run(ctx context.Context, prune bool) error {
	removed, err := r.Store.Clean(ctx)
	if err != nil {
		return fmt.Errorf("failed to clean catalog: %w", err)
	}
	if len(removed) > 0 {
		r.Log.Info("Removed %d stale entries", len(removed))
	} else {
		r.Log.Debug("Catalog is in sync with the filesystem")
	}

	if prune {
		pruned, err := r.Store.PruneClasses(ctx)
		if err != nil {
			return err
		}
		if pruned > 0 {
			r.Log.Info("Pruned %d unused classes", pruned)
		}
	}
	return nil
}

func (mca *MediaCatAgent) schedule(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-mca.trigger:
		}

		if err := mca.Reconcile(ctx); err != nil && !errors.Is(err, context.Canceled) {
			mca.log.Error("Reconciliation failed: %v", err)
		}
	}
}

func (mca *MediaCatAgent) watch(ctx context.Context, watcher *fsnotify.Watcher, debounce time.Duration) {
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			mca.log.Debug("Detected %s on '%s'", event.Op, event.Name)
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			mca.log.Warn("Watcher error: %v", err)
		case <-timer.C:
			mca.Trigger()
		}
	}
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
