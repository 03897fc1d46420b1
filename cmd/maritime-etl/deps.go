package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/maritime-aerosol-etl/internal/adapter/mapbox"
	"github.com/couchcryptid/maritime-aerosol-etl/internal/adapter/postgres"
	"github.com/couchcryptid/maritime-aerosol-etl/internal/config"
	"github.com/couchcryptid/maritime-aerosol-etl/internal/domain"
	"github.com/couchcryptid/maritime-aerosol-etl/internal/observability"
)

// openStore connects to the database and makes sure every table exists.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*postgres.Store, error) {
	store, err := postgres.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// newGeocoder returns the site description geocoder, or nil when Mapbox is
// disabled.
func newGeocoder(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) domain.Geocoder {
	if !cfg.MapboxEnabled {
		logger.Info("mapbox geocoding disabled")
		metrics.GeocodeEnabled.Set(0)
		return nil
	}
	client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
	logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	metrics.GeocodeEnabled.Set(1)
	return mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
}
