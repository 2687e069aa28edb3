package catalog

import (
	"context"

	"github.com/spf13/cobra"
)

func NewHideCommand() *cobra.Command {
	var classes []string

	cmd := &cobra.Command{
		Use:   "hide",
		Short: "Hide every visible member of the given classes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, true, func(ctx context.Context, sess *session) error {
				return sess.store.HideByClass(ctx, classes)
			})
		},
	}

	cmd.Flags().StringSliceVarP(&classes, "class", "c", nil, "class to hide (repeatable)")
	cmd.MarkFlagRequired("class")

	return cmd
}

func NewUnhideCommand() *cobra.Command {
	var classes []string

	cmd := &cobra.Command{
		Use:   "unhide",
		Short: "Show every hidden member of the given classes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, true, func(ctx context.Context, sess *session) error {
				return sess.store.UnhideByClass(ctx, classes)
			})
		},
	}

	cmd.Flags().StringSliceVarP(&classes, "class", "c", nil, "class to unhide (repeatable)")
	cmd.MarkFlagRequired("class")

	return cmd
}
