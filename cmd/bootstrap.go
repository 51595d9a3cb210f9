package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bgpkit/broker-go/internal/bootstrap"
)

func newBootstrapCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Download the latest published index store snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromContext(cmd)
			if !bootstrap.NeedsBootstrap(cfg.Store.Path) {
				if !force {
					fmt.Printf("%s already exists, skipping (use --force to overwrite)\n", cfg.Store.Path)
					return nil
				}
				if err := os.Remove(cfg.Store.Path); err != nil {
					return fmt.Errorf("bootstrap: remove existing store: %w", err)
				}
			}
			return bootstrap.Run(cmd.Context(), cfg.Store.Path, bootstrap.Config{
				SnapshotURL:  cfg.Store.BootstrapURL,
				ShowProgress: true,
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing store file")
	return cmd
}
