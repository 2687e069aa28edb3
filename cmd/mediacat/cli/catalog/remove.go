package catalog

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func NewRemoveCommand() *cobra.Command {
	var classes []string

	cmd := &cobra.Command{
		Use:   "rm [path]...",
		Short: "Delete entries and their files",
		Long: `Delete catalog entries together with their files on disk.

Entries are selected either by path or, with --class, by class membership
regardless of visibility. Deleting rows and files is not atomic.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 0) == (len(classes) == 0) {
				return fmt.Errorf("either paths or --class must be given")
			}

			paths, err := absolutePaths(args)
			if err != nil {
				return err
			}

			return withSession(cmd, true, func(ctx context.Context, sess *session) error {
				if len(classes) > 0 {
					return sess.store.DeleteByClass(ctx, classes)
				}
				return sess.store.Delete(ctx, paths)
			})
		},
	}

	cmd.Flags().StringSliceVarP(&classes, "class", "c", nil, "delete all members of this class (repeatable)")

	return cmd
}

func NewCleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove entries whose files no longer exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, true, func(ctx context.Context, sess *session) error {
				removed, err := sess.store.Clean(ctx)
				if err != nil {
					return err
				}
				for _, path := range removed {
					fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", path)
				}
				return nil
			})
		},
	}
}

func NewPruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove classes that no entry uses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, true, func(ctx context.Context, sess *session) error {
				pruned, err := sess.store.PruneClasses(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "pruned %d class(es)\n", pruned)
				return nil
			})
		},
	}
}
