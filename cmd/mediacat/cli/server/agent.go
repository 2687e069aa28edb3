package server

import (
	"context"
	"fmt"

	"github.com/mwantia/mediacat/internal/agent"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	config "github.com/mwantia/mediacat/internal/config/server"
)

func NewAgentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Start the MediaCat reconciliation agent",
		Long: `Start the MediaCat reconciliation agent.

The agent periodically removes catalog entries whose files no longer exist.
Directories passed with --watch are observed for removals, which trigger a
reconciliation shortly after the last change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServerConfig()
			if err != nil {
				return fmt.Errorf("failed to load server configuration: %w", err)
			}

			agent := agent.NewAgent(cfg)
			if err := agent.Serve(context.Background()); err != nil {
				return fmt.Errorf("agent stopped: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringSlice("watch", nil, "directories to watch for removed files")
	cmd.Flags().String("interval", "", "interval between full reconciliations (e.g. 30m)")
	cmd.Flags().Bool("prune", false, "remove unused classes after each reconciliation")

	viper.BindPFlag("agent.watch", cmd.Flags().Lookup("watch"))
	viper.BindPFlag("agent.clean_interval", cmd.Flags().Lookup("interval"))
	viper.BindPFlag("agent.prune", cmd.Flags().Lookup("prune"))

	return cmd
}
