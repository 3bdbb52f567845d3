package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/geosearch/internal/adapters/driven/backend/httpapi"
	"github.com/custodia-labs/geosearch/internal/adapters/driven/config/file"
	"github.com/custodia-labs/geosearch/internal/adapters/driven/index/memory"
	"github.com/custodia-labs/geosearch/internal/adapters/driven/storage/sqlite"
	tiles "github.com/custodia-labs/geosearch/internal/adapters/driven/tiles/file"
	"github.com/custodia-labs/geosearch/internal/adapters/driving/blocking"
	"github.com/custodia-labs/geosearch/internal/adapters/driving/cli"
	"github.com/custodia-labs/geosearch/internal/core/ports/driven"
	"github.com/custodia-labs/geosearch/internal/core/ports/driving"
	"github.com/custodia-labs/geosearch/internal/core/services"
	"github.com/custodia-labs/geosearch/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

// envConfigDir overrides the directory holding config.toml.
const envConfigDir = "GEOSEARCH_CONFIG_DIR"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configStore, err := file.NewConfigStore(os.Getenv(envConfigDir))
	if err != nil {
		logger.Error("loading config: %v", err)
		return err
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		logger.Error("reading settings: %v", err)
		return err
	}
	if settings.Log.Verbose {
		logger.SetVerbose(true)
	}

	records, err := sqlite.NewStore(settings.Storage.DataDir)
	if err != nil {
		logger.Error("opening record store: %v", err)
		return err
	}
	defer records.Close()

	history := services.NewHistoryProvider(records, settings.History.MaxSize)
	favorites := services.NewFavoritesProvider(records)

	backend, err := httpapi.NewClient(httpapi.Config{
		BaseURL:     settings.API.BaseURL,
		TokenSource: httpapi.StaticToken(settings.API.AccessToken),
		Timeout:     settings.API.Timeout,
		RateLimit:   settings.API.RateLimit,
		Burst:       settings.API.Burst,
	})
	if err != nil {
		logger.Error("creating API client: %v", err)
		return err
	}

	registry := services.NewDataProvidersRegistry(memory.Factory)
	opts := services.EngineOptions{Defaults: settings.Search}

	search := services.NewSearchEngine(backend, registry, history, opts)
	defer search.Close()
	category := services.NewCategorySearchEngine(backend, registry, opts)
	defer category.Close()
	hosts := []driving.DataProviderHost{search, category}

	var offline driving.OfflineSearchEngine
	if settings.Offline.TilesDir != "" {
		tileStore, err := tiles.NewStore(settings.Offline.TilesDir)
		if err != nil {
			logger.Error("opening tiles: %v", err)
			return err
		}
		defer tileStore.Close()
		engine := services.NewOfflineSearchEngine(tileStore, registry, memory.Factory, opts)
		defer engine.Close()
		offline = engine
		hosts = append(hosts, engine)
	}

	if err := registerRecords(ctx, hosts, favorites, history); err != nil {
		logger.Error("%v", err)
		return err
	}

	cli.SetServices(cli.Services{
		Search:    search,
		Category:  category,
		Offline:   offline,
		History:   history,
		Favorites: favorites,
		Settings:  settingsService,
	})
	cli.SetVersion(version)

	// cobra prints command errors itself.
	return cli.Execute(ctx)
}

// registerRecords makes every provider searchable on every host.
func registerRecords(ctx context.Context, hosts []driving.DataProviderHost, providers ...driven.IndexableDataProvider) error {
	for _, host := range hosts {
		for _, p := range providers {
			if err := blocking.Register(ctx, host, p); err != nil {
				return fmt.Errorf("registering %s: %w", p.Name(), err)
			}
		}
	}
	return nil
}
