package store

import (
	"context"

	"github.com/mwantia/mediacat/pkg/db/models"
)

// Row is one result tuple, in column order.
type Row []any

// CatalogStore defines the interface for catalog operations
type CatalogStore interface {
	// Lifecycle
	Connect(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error
	Health(ctx context.Context) error
	Transaction(ctx context.Context, fn func(CatalogStore) error) error

	// Primitive operations
	CreateTable(ctx context.Context, name string, columns ...string) error
	Execute(ctx context.Context, query string, args ...any) ([]Row, error)
	ExecuteWithID(ctx context.Context, query string, args ...any) ([]Row, int64, error)

	// Read operations
	HashExists(ctx context.Context, hash string) (bool, error)
	GroupByClass(ctx context.Context, visibility Visibility, attribute Attribute) (map[string][]string, error)
	TupleByClass(ctx context.Context, classes []string, visibility Visibility, attribute Attribute) ([]string, error)
	ListMedia(ctx context.Context, visibility Visibility) ([]models.Media, error)
	MediaClasses(ctx context.Context, path string) ([]string, error)

	// Mutation operations
	Insert(ctx context.Context, path string, classes []string, hash string) error
	ToggleVisibility(ctx context.Context, paths []string, hidden bool) error
	HideByClass(ctx context.Context, classes []string) error
	UnhideByClass(ctx context.Context, classes []string) error
	Delete(ctx context.Context, paths []string) error
	DeleteByClass(ctx context.Context, classes []string) error
	PruneClasses(ctx context.Context) (int64, error)

	// Reconciliation
	Clean(ctx context.Context) ([]string, error)
}
