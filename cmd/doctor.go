package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newDoctorCmd reports collectors bundled in the catalog that have never
// produced a latest_files row, and surfaces the most recent update cycle's
// bookkeeping. It never mutates the store.
func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Report collectors missing from the index and the last update cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromContext(cmd)
			app, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			latest, err := app.Store.LatestFiles(ctx, "")
			if err != nil {
				return fmt.Errorf("load latest files: %w", err)
			}
			seen := make(map[string]struct{}, len(latest))
			for _, lf := range latest {
				seen[lf.CollectorID] = struct{}{}
			}

			missing := app.Catalog.MissingCollectors(seen)
			if len(missing) == 0 {
				fmt.Println("all bundled collectors have at least one indexed file")
			} else {
				fmt.Println("collectors with no indexed files:")
				for _, name := range missing {
					fmt.Printf("  - %s\n", name)
				}
			}

			meta, ok, err := app.Store.LatestMeta(ctx)
			if err != nil {
				return fmt.Errorf("load latest meta: %w", err)
			}
			if !ok {
				fmt.Println("no update cycle has run yet")
				return nil
			}
			fmt.Printf("last update cycle: run_id=%s at=%s inserted=%d duration=%.2fs\n",
				meta.RunID, meta.Timestamp.Format("2006-01-02T15:04:05Z"), meta.InsertedCount, meta.UpdateDurationSeconds)
			return nil
		},
	}
}
