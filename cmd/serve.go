package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bgpkit/broker-go/internal/api"
	"github.com/bgpkit/broker-go/internal/backup"
	"github.com/bgpkit/broker-go/internal/bootstrap"
	"github.com/bgpkit/broker-go/internal/crawler"
	"github.com/bgpkit/broker-go/internal/logging"
	"github.com/bgpkit/broker-go/internal/updater"
)

func newServeCmd() *cobra.Command {
	var skipBootstrap bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the update cycle and HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromContext(cmd)

			if !skipBootstrap && cfg.Store.BootstrapOnBoot && bootstrap.NeedsBootstrap(cfg.Store.Path) {
				logging.L.Info("bootstrapping index store from remote snapshot", zap.String("url", cfg.Store.BootstrapURL))
				if err := bootstrap.Run(cmd.Context(), cfg.Store.Path, bootstrap.Config{SnapshotURL: cfg.Store.BootstrapURL, ShowProgress: true}); err != nil {
					return fmt.Errorf("bootstrap: %w", err)
				}
			}

			app, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			up := updater.New(app.Store, app.Catalog, app.Notifier, app.Fetcher, updater.Config{
				MetaRetention: cfg.MetaRetention(),
				HeartbeatURL:  cfg.HeartbeatURL,
				Crawler: crawler.Config{
					CollectorConcurrency: cfg.Crawler.CollectorConcurrency,
					MonthConcurrency:     cfg.Crawler.MonthConcurrency,
				},
			})

			srv := api.NewServer(app.Engine, api.Config{})
			httpServer := &http.Server{
				Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
				Handler: srv.Handler(),
			}

			var bk *backup.Backuper
			if cfg.Backup.To != "" {
				bk = backup.New(app.Store, backup.Config{
					To:           cfg.Backup.To,
					Interval:     cfg.Backup.BackupInterval(),
					HeartbeatURL: cfg.Backup.HeartbeatURL,
				})
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return up.Run(gctx) })
			if bk != nil {
				g.Go(func() error { return bk.Run(gctx) })
			}
			g.Go(func() error {
				logging.L.Info("api server listening", zap.String("addr", httpServer.Addr))
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return httpServer.Shutdown(shutdownCtx)
			})

			if err := g.Wait(); err != nil && err != context.Canceled {
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipBootstrap, "no-bootstrap", false, "skip automatic bootstrap even if store.bootstrap_on_boot is set")
	return cmd
}
