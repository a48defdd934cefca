package dishadvisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"dishadvisor/tools"
	"dishadvisor/tools/cache"
	"dishadvisor/tools/foodfacts"
	"dishadvisor/tools/mealdb"
	"dishadvisor/tools/openmeteo"
	"dishadvisor/tools/orders"
	"dishadvisor/tools/storage"
	"dishadvisor/tools/upstream"
)

// NewRegistryFromConfig builds every adapter from cfg and returns the tool registry plus a cleanup
// function that releases the cache connection, if any.
func NewRegistryFromConfig(ctx context.Context, cfg AdvisorConfig) (*tools.Registry, func() error, error) {
	noop := func() error { return nil }

	c, closeCache, err := newCache(ctx, cfg)
	if err != nil {
		return nil, noop, err
	}

	api := upstream.NewClient(upstream.ClientOpts{
		Timeout:  cfg.HTTPTimeout,
		Cache:    c,
		CacheTTL: cfg.CacheTTL,
	})

	provider, err := newOrderProvider(ctx, cfg)
	if err != nil {
		return nil, noop, errors.Join(err, closeCache())
	}

	registry, err := tools.NewRegistry(tools.Deps{
		Recipes: mealdb.NewClient(api, mealdb.ClientOpts{
			BaseURL:    cfg.MealDBBaseURL,
			MaxMatches: cfg.MaxRecipeMatches,
		}),
		Products: foodfacts.NewClient(api, cfg.FoodFactsSearchURL),
		Weather: openmeteo.NewClient(api, openmeteo.ClientOpts{
			GeocodingURL: cfg.GeocodingBaseURL,
			ForecastURL:  cfg.ForecastBaseURL,
		}),
		Orders: provider,
	})
	if err != nil {
		return nil, noop, errors.Join(err, closeCache())
	}

	return registry, closeCache, nil
}

func newCache(ctx context.Context, cfg AdvisorConfig) (cache.Cache, func() error, error) {
	switch strings.ToLower(cfg.CacheBackend) {
	case "", "none":
		return cache.Nop{}, func() error { return nil }, nil
	case "memory":
		slog.Info("SETUP: Using in-process upstream cache", "ttl", cfg.CacheTTL)
		return cache.NewMemory(), func() error { return nil }, nil
	case "redis":
		r, err := cache.NewRedisFromURL(ctx, cfg.RedisURL, cache.DefaultKeyPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("create redis cache: %w", err)
		}
		return r, r.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q (want none, memory or redis)", cfg.CacheBackend)
	}
}

// newOrderProvider prefers an S3 catalog, then a local catalog file, then the built-in mock.
func newOrderProvider(ctx context.Context, cfg AdvisorConfig) (orders.Provider, error) {
	switch {
	case cfg.OrderCatalogBucket != "" || cfg.OrderCatalogKey != "":
		if cfg.OrderCatalogBucket == "" || cfg.OrderCatalogKey == "" {
			return nil, errors.New("missing S3 config: ORDER_CATALOG_S3_BUCKET and ORDER_CATALOG_S3_KEY must both be set")
		}
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		slog.Info("SETUP: Order catalog from S3", "bucket", cfg.OrderCatalogBucket, "key", cfg.OrderCatalogKey)
		state := storage.NewS3State(s3.NewFromConfig(awsCfg), cfg.OrderCatalogBucket, cfg.OrderCatalogKey)
		return orders.NewCatalogProvider(state), nil
	case cfg.OrderCatalogPath != "":
		slog.Info("SETUP: Order catalog from file", "path", cfg.OrderCatalogPath)
		return orders.NewCatalogProvider(storage.NewFileState(cfg.OrderCatalogPath)), nil
	default:
		return orders.NewMockProvider(), nil
	}
}
