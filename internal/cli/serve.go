package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mithrel/foliage/internal/config"
	"github.com/mithrel/foliage/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the blog server",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			defer func() { _ = app.Close() }()
			if err := requireCMS(app); err != nil {
				return err
			}
			if err := config.CheckConfigValidity(app.Cfg); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Serve cached articles immediately, then refresh from the CMS.
			// A failing CMS is not fatal here: the site runs on the cache and
			// the background loop keeps retrying.
			if err := app.Feed.Bootstrap(ctx); err != nil {
				return err
			}
			if err := app.Feed.RefreshNow(ctx); err != nil {
				app.Log.Printf("initial refresh failed: %v", err)
			}
			go app.Feed.RunBackground(ctx)

			srv, err := server.New(app.Cfg, app.Feed, app.Renderer)
			if err != nil {
				return err
			}
			return srv.Run(ctx)
		},
	}
	return cmd
}
