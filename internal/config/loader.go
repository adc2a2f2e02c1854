package config

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	envPrefix  = "SHELFD"
	configName = "shelfd"
)

var (
	configMu  sync.RWMutex
	appConfig *Config
)

// Load builds the configuration from defaults, an optional shelfd.yaml
// (cwd, then /etc/shelfd), SHELFD_* environment variables, and finally any
// runtime overrides (highest precedence). The loaded config is retained for
// GetConfig.
func Load(ctx context.Context, overrides ...map[string]any) (*Config, error) {
	_ = ctx

	v := viper.New()
	setDefaults(v)

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/shelfd")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; everything has defaults/env.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set beats env and file, so runtime overrides always win.
	for _, o := range overrides {
		applyOverrides(v, "", o)
	}

	var cfg Config
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configMu.Lock()
	appConfig = &cfg
	configMu.Unlock()

	return &cfg, nil
}

// GetConfig returns the most recently loaded config, or nil before Load.
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

// Validate rejects impossible combinations. A missing bucket is NOT an
// error here: the server must start and answer listing routes with a
// structured 500 until storage is configured.
func (c *Config) Validate() error {
	switch c.Storage.Provider {
	case "s3", "file":
	default:
		return fmt.Errorf("storage.provider: unsupported provider %q (want s3 or file)", c.Storage.Provider)
	}

	if c.Storage.Provider == "file" && c.Storage.BaseDir == "" {
		return fmt.Errorf("storage.base_dir: required for the file provider")
	}

	if c.Listing.DefaultLimit <= 0 {
		return fmt.Errorf("listing.default_limit: must be positive")
	}
	if c.Listing.MaxLimit < c.Listing.DefaultLimit {
		return fmt.Errorf("listing.max_limit: must be >= listing.default_limit")
	}

	if c.Signing.Expiry <= 0 {
		return fmt.Errorf("signing.expiry: must be positive")
	}

	return nil
}

// applyOverrides flattens a nested override map into dotted keys.
func applyOverrides(v *viper.Viper, prefix string, m map[string]any) {
	for k, val := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := val.(map[string]any); ok {
			applyOverrides(v, key, nested)
			continue
		}
		v.Set(key, val)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("storage.provider", "s3")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.profile", "")
	v.SetDefault("storage.access_key_id", "")
	v.SetDefault("storage.secret_access_key", "")
	v.SetDefault("storage.force_path_style", false)
	v.SetDefault("storage.base_dir", "")

	v.SetDefault("signing.expiry", 24*time.Hour)

	v.SetDefault("listing.daily_prefix", "daily/")
	v.SetDefault("listing.default_prefix", "csv/")
	v.SetDefault("listing.default_limit", 100)
	v.SetDefault("listing.max_limit", 1000)
	v.SetDefault("listing.page_size", 0)
	v.SetDefault("listing.provider_timeout", 30*time.Second)
	v.SetDefault("listing.rate_limit", 0.0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "json")
}
