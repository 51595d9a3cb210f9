package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/bgpkit/broker-go/pkg/broker"
)

func newSearchCmd() *cobra.Command {
	var (
		collectors string
		project    string
		dataType   string
		tsStart    string
		tsEnd      string
		page       int
		pageSize   int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Query the index store from the command line",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromContext(cmd)
			app, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			f := broker.NewFilter().
				WithCollectors(broker.ParseCollectorsCSV(collectors)...).
				WithProject(project).
				WithPage(page).
				WithPageSize(pageSize)
			if dataType != "" {
				f = f.WithDataType(broker.DataType(dataType))
			}
			if tsStart != "" {
				t, err := broker.ParseTimestamp("ts_start", tsStart)
				if err != nil {
					return err
				}
				f = f.WithTsStart(t)
			}
			if tsEnd != "" {
				t, err := broker.ParseTimestamp("ts_end", tsEnd)
				if err != nil {
					return err
				}
				f = f.WithTsEnd(t)
			}

			result, err := app.Engine.Search(cmd.Context(), f)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVar(&collectors, "collectors", "", "comma-separated collector_id list")
	cmd.Flags().StringVar(&project, "project", "", "riperis or route-views")
	cmd.Flags().StringVar(&dataType, "data-type", "", "rib or updates")
	cmd.Flags().StringVar(&tsStart, "ts-start", "", "inclusive lower time bound")
	cmd.Flags().StringVar(&tsEnd, "ts-end", "", "inclusive upper time bound")
	cmd.Flags().IntVar(&page, "page", broker.DefaultPage, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", broker.DefaultPageSize, "items per page")

	return cmd
}
