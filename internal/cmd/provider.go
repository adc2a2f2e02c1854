package cmd

import (
	"context"
	"fmt"

	"github.com/bluedatahq/shelfd/internal/config"
	"github.com/bluedatahq/shelfd/pkg/listing"
	"github.com/bluedatahq/shelfd/pkg/provider"
	"github.com/bluedatahq/shelfd/pkg/provider/file"
	"github.com/bluedatahq/shelfd/pkg/provider/s3"
)

// createProvider builds the storage provider from configuration.
//
// Returns (nil, nil) for an s3 provider with no bucket configured: the
// caller decides whether that is a startup failure (ls) or a degraded
// serving mode (serve).
func createProvider(ctx context.Context, cfg *config.Config) (provider.Provider, error) {
	switch cfg.Storage.Provider {
	case "s3":
		if cfg.Storage.Bucket == "" {
			return nil, nil
		}
		return s3.New(ctx, s3.Config{
			Bucket:          cfg.Storage.Bucket,
			Region:          cfg.Storage.Region,
			Endpoint:        cfg.Storage.Endpoint,
			Profile:         cfg.Storage.Profile,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			// S3-compatible services (moto, MinIO, etc.) require path style.
			ForcePathStyle: cfg.Storage.ForcePathStyle || cfg.Storage.Endpoint != "",
		})
	case "file":
		return file.New(file.Config{BaseDir: cfg.Storage.BaseDir})
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Storage.Provider)
	}
}

// createListingService wraps a provider in the listing pipeline with the
// configured knobs.
func createListingService(prov provider.Provider, cfg *config.Config) (*listing.Service, error) {
	return listing.New(prov, listing.Config{
		SignTTL:         cfg.Signing.Expiry,
		ProviderTimeout: cfg.Listing.ProviderTimeout,
		DefaultLimit:    cfg.Listing.DefaultLimit,
		MaxLimit:        cfg.Listing.MaxLimit,
		PageSize:        cfg.Listing.PageSize,
		RateLimit:       cfg.Listing.RateLimit,
	})
}
