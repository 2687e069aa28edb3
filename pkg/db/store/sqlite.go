package store

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/mwantia/mediacat/pkg/db/migrations"
	"github.com/mwantia/mediacat/pkg/db/schema"
	"github.com/mwantia/mediacat/pkg/fs"
	"github.com/mwantia/mediacat/pkg/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultBatchSize = 500

// SQLiteStore implements CatalogStore using SQLite
type SQLiteStore struct {
	db    *gorm.DB
	path  string
	inTx  bool
	cfg   SQLiteConfig
	files fs.Files
	log   log.LoggerService
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path         string
	MaxOpenConns int
	BatchSize    int
	LogLevel     logger.LogLevel
}

// DB returns the underlying GORM database instance
func (s *SQLiteStore) DB() *gorm.DB {
	return s.db
}

// Path returns the database file location
func (s *SQLiteStore) Path() string {
	return s.path
}

// NewSQLiteStore opens the catalog database. Files is consulted for
// deletion and reconciliation and may be nil when neither is used.
func NewSQLiteStore(cfg SQLiteConfig, files fs.Files, logger log.LoggerService) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}

	db, err := gorm.Open(sqlite.Open(schema.DSN(cfg.Path)), &gorm.Config{
		Logger: newGormLogger(logger, cfg.LogLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return &SQLiteStore{
		db:    db,
		path:  cfg.Path,
		cfg:   cfg,
		files: files,
		log:   logger,
	}, nil
}

// Connect initializes the database connection
func (s *SQLiteStore) Connect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(s.cfg.MaxOpenConns) // SQLite only supports 1 writer
	sqlDB.SetMaxIdleConns(s.cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return sqlDB.PingContext(ctx)
}

// Close releases the database connection. Statements are committed as they
// run, so there is nothing left to flush.
func (s *SQLiteStore) Close() error {
	if s.inTx {
		return fmt.Errorf("cannot close store from within a transaction")
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

// Migrate applies pending schema migrations
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	count, err := migrations.NewMigrator(s.db).Migrate(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		s.log.Debug("Applied %d migration(s) to '%s'", count, s.path)
	}
	return nil
}

// Health checks database connectivity
func (s *SQLiteStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Transaction runs fn against a store bound to a single transaction. The
// transaction is committed when fn returns nil and rolled back otherwise.
func (s *SQLiteStore) Transaction(ctx context.Context, fn func(CatalogStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(s.with(tx))
	})
}

func (s *SQLiteStore) with(tx *gorm.DB) *SQLiteStore {
	clone := *s
	clone.db = tx
	clone.inTx = true
	return &clone
}

// CreateTable ensures a relation exists with the given column definitions
func (s *SQLiteStore) CreateTable(ctx context.Context, name string, columns ...string) error {
	return schema.CreateTable(s.db.WithContext(ctx), name, columns...)
}
