package catalog

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/mwantia/mediacat/internal/output"
	"github.com/spf13/cobra"
)

func NewExistsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "exists <hash>",
		Short: "Check whether a content hash is catalogued",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, true, func(ctx context.Context, sess *session) error {
				exists, err := sess.store.HashExists(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatBool(exists))
				return nil
			})
		},
	}
}

func NewGroupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "List catalogued items grouped by class",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			visibility, err := readVisibility(cmd)
			if err != nil {
				return err
			}
			format, err := readFormat(cmd)
			if err != nil {
				return err
			}

			return withSession(cmd, true, func(ctx context.Context, sess *session) error {
				groups, err := sess.store.GroupByClass(ctx, visibility, readAttribute(cmd))
				if err != nil {
					return err
				}

				classes := make([]string, 0, len(groups))
				for class := range groups {
					classes = append(classes, class)
				}
				sort.Strings(classes)

				data := output.Data{
					Headers: []string{"Class", string(readAttribute(cmd))},
					Value:   groups,
				}
				for _, class := range classes {
					for _, value := range groups[class] {
						data.Rows = append(data.Rows, []string{class, value})
					}
				}

				return output.Write(cmd.OutOrStdout(), format, data)
			})
		},
	}

	addVisibilityFlag(cmd, "shown")
	addAttributeFlag(cmd)
	addFormatFlag(cmd)

	return cmd
}

func NewListCommand() *cobra.Command {
	var classes []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items belonging to any of the given classes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			visibility, err := readVisibility(cmd)
			if err != nil {
				return err
			}
			format, err := readFormat(cmd)
			if err != nil {
				return err
			}

			return withSession(cmd, true, func(ctx context.Context, sess *session) error {
				values, err := sess.store.TupleByClass(ctx, classes, visibility, readAttribute(cmd))
				if err != nil {
					return err
				}

				data := output.Data{
					Headers: []string{string(readAttribute(cmd))},
					Value:   values,
				}
				for _, value := range values {
					data.Rows = append(data.Rows, []string{value})
				}

				return output.Write(cmd.OutOrStdout(), format, data)
			})
		},
	}

	cmd.Flags().StringSliceVarP(&classes, "class", "c", nil, "class to resolve (repeatable)")
	cmd.MarkFlagRequired("class")
	addVisibilityFlag(cmd, "shown")
	addAttributeFlag(cmd)
	addFormatFlag(cmd)

	return cmd
}

func NewShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <path>",
		Short: "Show the classes attached to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := absolutePaths(args)
			if err != nil {
				return err
			}
			format, err := readFormat(cmd)
			if err != nil {
				return err
			}

			return withSession(cmd, true, func(ctx context.Context, sess *session) error {
				classes, err := sess.store.MediaClasses(ctx, paths[0])
				if err != nil {
					return err
				}

				data := output.Data{
					Headers: []string{"Class"},
					Value:   classes,
				}
				for _, class := range classes {
					data.Rows = append(data.Rows, []string{class})
				}

				return output.Write(cmd.OutOrStdout(), format, data)
			})
		},
	}

	addFormatFlag(cmd)

	return cmd
}
