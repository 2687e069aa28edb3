package catalog

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mwantia/mediacat/internal/agent"
	"github.com/mwantia/mediacat/internal/output"
	"github.com/mwantia/mediacat/pkg/db/store"
	"github.com/mwantia/mediacat/pkg/fs"
	"github.com/mwantia/mediacat/pkg/log"
	"github.com/spf13/cobra"

	config "github.com/mwantia/mediacat/internal/config/server"
)

func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "catalog",
		Aliases: []string{"cat"},
		Short:   "Manage catalog entries",
		Long:    "Add, inspect, hide, delete and reconcile entries of the media catalog.",
	}

	cmd.AddCommand(NewAddCommand())
	cmd.AddCommand(NewScanCommand())
	cmd.AddCommand(NewExistsCommand())
	cmd.AddCommand(NewGroupCommand())
	cmd.AddCommand(NewListCommand())
	cmd.AddCommand(NewShowCommand())
	cmd.AddCommand(NewHideCommand())
	cmd.AddCommand(NewUnhideCommand())
	cmd.AddCommand(NewRemoveCommand())
	cmd.AddCommand(NewCleanCommand())
	cmd.AddCommand(NewPruneCommand())
	cmd.AddCommand(NewMigrateCommand())

	return cmd
}

// session is the scope of one command: the store is opened before the
// command runs and always closed afterwards.
type session struct {
	store *store.SQLiteStore
	files *fs.AferoFiles
	log   log.LoggerService
}

func withSession(cmd *cobra.Command, migrate bool, fn func(ctx context.Context, sess *session) error) (err error) {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger := log.NewLoggerServiceWithWriter("mediacat", cfg.Log, cmd.ErrOrStderr())
	files := fs.NewOsFiles()

	var s *store.SQLiteStore
	if migrate {
		s, err = agent.OpenStore(ctx, cfg, files, logger)
		if err != nil {
			return err
		}
	} else {
		s, err = store.NewSQLiteStore(store.SQLiteConfig{
			Path:         cfg.Metadata.SQLite.Path,
			MaxOpenConns: cfg.Metadata.SQLite.MaxOpenConns,
			BatchSize:    cfg.Metadata.SQLite.BatchSize,
		}, files, logger.Named("store"))
		if err != nil {
			return err
		}
		if err := s.Connect(ctx); err != nil {
			s.Close()
			return fmt.Errorf("failed to connect to catalog: %w", err)
		}
	}

	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close catalog: %w", cerr)
		}
	}()

	return fn(ctx, &session{store: s, files: files, log: logger})
}

func addVisibilityFlag(cmd *cobra.Command, value string) {
	cmd.Flags().String("visibility", value, "visibility filter (shown, hidden, any)")
}

func addAttributeFlag(cmd *cobra.Command) {
	cmd.Flags().String("of", string(store.AttributePath), "attribute to list (path, hash)")
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "o", "", "output format (table, json, yaml)")
}

func readVisibility(cmd *cobra.Command) (store.Visibility, error) {
	value, _ := cmd.Flags().GetString("visibility")
	return store.ParseVisibility(value)
}

func readAttribute(cmd *cobra.Command) store.Attribute {
	value, _ := cmd.Flags().GetString("of")
	return store.Attribute(value)
}

func readFormat(cmd *cobra.Command) (output.Format, error) {
	value, _ := cmd.Flags().GetString("format")
	return output.ParseFormat(value)
}

// absolutePaths normalizes arguments the same way add stores them.
func absolutePaths(args []string) ([]string, error) {
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		path, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", arg, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
