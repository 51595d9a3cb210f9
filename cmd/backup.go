package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bgpkit/broker-go/internal/backup"
	"github.com/bgpkit/broker-go/internal/store/sqlite"
)

func newBackupCmd() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export the index store to a local path or S3",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromContext(cmd)
			if cfg.Backup.To == "" {
				return fmt.Errorf("backup.to is not configured")
			}

			st, err := sqlite.Open(cmd.Context(), sqlite.Config{Path: cfg.Store.Path})
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			bk := backup.New(st, backup.Config{
				To:           cfg.Backup.To,
				Interval:     cfg.Backup.BackupInterval(),
				HeartbeatURL: cfg.Backup.HeartbeatURL,
			})

			if once {
				return bk.RunOnce(cmd.Context())
			}
			return bk.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&once, "once", true, "run a single backup and exit instead of looping on the configured interval")
	return cmd
}
