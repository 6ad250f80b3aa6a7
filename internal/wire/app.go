package wire

import (
	"context"
	"log"
	"os"

	"github.com/spf13/viper"

	"github.com/mithrel/foliage/internal/cms"
	"github.com/mithrel/foliage/internal/config"
	"github.com/mithrel/foliage/internal/feed"
	"github.com/mithrel/foliage/internal/markdown"
	"github.com/mithrel/foliage/internal/store"
)

// App aggregates the major services for easy injection.
type App struct {
	Cfg      *viper.Viper
	Log      *log.Logger
	CMS      *cms.Client
	Cache    *store.Store
	Feed     *feed.Refresher
	Renderer *markdown.Renderer
}

// BuildApp wires dependencies with the provided config. The CMS client and
// feed are only built when cms.base_url is configured, so offline commands
// (config, render of local files) work without one.
func BuildApp(ctx context.Context, cfg *viper.Viper) (*App, error) {
	logger := log.New(os.Stdout, "foliage ", log.LstdFlags)

	app := &App{
		Cfg:      cfg,
		Log:      logger,
		Renderer: markdown.NewRenderer(markdown.PromoFromConfig(cfg)),
	}

	if cfg.GetString("cms.base_url") == "" {
		return app, nil
	}

	client, err := cms.New(cfg)
	if err != nil {
		return nil, err
	}
	app.CMS = client

	cache, err := store.Open(ctx, config.ResolveCachePath(cfg))
	if err != nil {
		return nil, err
	}
	app.Cache = cache

	app.Feed = feed.NewRefresher(cfg, client, cache)
	return app, nil
}

// Close releases held resources (the sqlite cache).
func (a *App) Close() error {
	if a.Cache != nil {
		return a.Cache.Close()
	}
	return nil
}
