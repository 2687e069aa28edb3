package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mwantia/mediacat/pkg/db/store"
	"github.com/spf13/cobra"
)

func NewAddCommand() *cobra.Command {
	var classes []string

	cmd := &cobra.Command{
		Use:   "add <file>...",
		Short: "Add files to the catalog",
		Long: `Add files to the catalog, tagged with the given classes.

Files are identified by their content hash. Adding content that is already
catalogued under another path only moves the entry to the new path.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := absolutePaths(args)
			if err != nil {
				return err
			}

			return withSession(cmd, true, func(ctx context.Context, sess *session) error {
				return sess.store.Transaction(ctx, func(tx store.CatalogStore) error {
					for _, path := range paths {
						if err := insertFile(ctx, cmd, sess, tx, path, classes); err != nil {
							return err
						}
					}
					return nil
				})
			})
		},
	}

	cmd.Flags().StringSliceVarP(&classes, "class", "c", nil, "class to attach (repeatable)")

	return cmd
}

func NewScanCommand() *cobra.Command {
	var classes []string
	var extensions []string

	cmd := &cobra.Command{
		Use:   "scan <dir>",
		Short: "Add every file below a directory",
		Long:  "Walk a directory recursively and add every regular file, skipping dot-directories.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roots, err := absolutePaths(args)
			if err != nil {
				return err
			}

			wanted := make([]string, 0, len(extensions))
			for _, ext := range extensions {
				wanted = append(wanted, "."+strings.TrimPrefix(strings.ToLower(ext), "."))
			}

			return withSession(cmd, true, func(ctx context.Context, sess *session) error {
				return sess.store.Transaction(ctx, func(tx store.CatalogStore) error {
					return sess.files.Walk(roots[0], func(path string) error {
						if len(wanted) > 0 && !slices.Contains(wanted, strings.ToLower(filepath.Ext(path))) {
							return nil
						}
						if err := ctx.Err(); err != nil {
							return err
						}
						return insertFile(ctx, cmd, sess, tx, path, classes)
					})
				})
			})
		},
	}

	cmd.Flags().StringSliceVarP(&classes, "class", "c", nil, "class to attach (repeatable)")
	cmd.Flags().StringSliceVar(&extensions, "ext", nil, "only add files with these extensions")

	return cmd
}

func insertFile(ctx context.Context, cmd *cobra.Command, sess *session, tx store.CatalogStore, path string, classes []string) error {
	hash, err := sess.files.Hash(path)
	if err != nil {
		return err
	}

	known, err := tx.HashExists(ctx, hash)
	if err != nil {
		return err
	}

	if err := tx.Insert(ctx, path, classes, hash); err != nil {
		return err
	}

	action := "added"
	if known {
		action = "updated"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", action, hash, path)
	return nil
}
