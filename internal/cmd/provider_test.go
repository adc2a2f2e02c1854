package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluedatahq/shelfd/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Storage: config.StorageConfig{Provider: "s3"},
		Signing: config.SigningConfig{Expiry: 24 * time.Hour},
		Listing: config.ListingConfig{
			DefaultLimit:    100,
			MaxLimit:        1000,
			ProviderTimeout: 30 * time.Second,
		},
	}
}

func TestCreateProvider_S3WithoutBucket(t *testing.T) {
	cfg := testConfig()

	prov, err := createProvider(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, prov, "missing bucket must yield no provider, not an error")
}

func TestCreateProvider_File(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.Provider = "file"
	cfg.Storage.BaseDir = t.TempDir()

	prov, err := createProvider(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, prov)
	defer func() { _ = prov.Close() }()

	svc, err := createListingService(prov, cfg)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestCreateProvider_Unsupported(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.Provider = "gcs"

	_, err := createProvider(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported storage provider")
}

func TestConfigHealthChecker(t *testing.T) {
	cfg := testConfig()
	checker := configHealthChecker{cfg: cfg}
	require.Error(t, checker.CheckHealth(context.Background()))

	cfg.Storage.Bucket = "downloads"
	assert.NoError(t, checker.CheckHealth(context.Background()))

	cfg.Storage.Provider = "file"
	cfg.Storage.Bucket = ""
	assert.NoError(t, checker.CheckHealth(context.Background()))
}
