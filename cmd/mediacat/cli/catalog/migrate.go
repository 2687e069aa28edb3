package catalog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mwantia/mediacat/internal/output"
	"github.com/mwantia/mediacat/pkg/db/migrations"
	"github.com/spf13/cobra"
)

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage catalog schema migrations",
	}

	cmd.AddCommand(newMigrateUpCommand())
	cmd.AddCommand(newMigrateStatusCommand())
	cmd.AddCommand(newMigrateRollbackCommand())

	return cmd
}

func newMigrateUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, false, func(ctx context.Context, sess *session) error {
				count, err := migrations.NewMigrator(sess.store.DB()).Migrate(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", count)
				return nil
			})
		},
	}
}

func newMigrateStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := readFormat(cmd)
			if err != nil {
				return err
			}

			return withSession(cmd, false, func(ctx context.Context, sess *session) error {
				statuses, err := migrations.NewMigrator(sess.store.DB()).Status(ctx)
				if err != nil {
					return err
				}

				data := output.Data{
					Headers: []string{"Version", "Description", "Applied"},
					Value:   statuses,
				}
				for _, status := range statuses {
					applied := "pending"
					if status.Applied {
						applied = status.AppliedAt.Format("2006-01-02 15:04:05")
					}
					data.Rows = append(data.Rows, []string{strconv.Itoa(status.Version), status.Description, applied})
				}

				return output.Write(cmd.OutOrStdout(), format, data)
			})
		},
	}

	addFormatFlag(cmd)

	return cmd
}

func newMigrateRollbackCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback",
		Short: "Revert the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, false, func(ctx context.Context, sess *session) error {
				status, err := migrations.NewMigrator(sess.store.DB()).Rollback(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rolled back migration %d (%s)\n", status.Version, status.Description)
				return nil
			})
		},
	}
}
