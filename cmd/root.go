// Package cmd implements the bgpkit-broker command-line surface: serve,
// bootstrap, backup, search, and doctor.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bgpkit/broker-go/internal/config"
	"github.com/bgpkit/broker-go/internal/logging"
)

type configKey struct{}

var (
	cfgFile string
	devLogs bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bgpkit-broker",
		Short: "Index and serve public BGP archive file metadata",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logging.Init(devLogs); err != nil {
				return fmt.Errorf("init logging: %w", err)
			}
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")
	root.PersistentFlags().BoolVar(&devLogs, "dev", false, "enable development logging")

	root.AddCommand(newServeCmd())
	root.AddCommand(newBootstrapCmd())
	root.AddCommand(newBackupCmd())
	root.AddCommand(newSearchCmd())
	root.AddCommand(newDoctorCmd())

	return root
}

func configFromContext(cmd *cobra.Command) config.Config {
	cfg, _ := cmd.Context().Value(configKey{}).(config.Config)
	return cfg
}

// Execute runs the root command, exiting the process on error.
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
