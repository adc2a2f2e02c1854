// Package config loads service configuration from defaults, an optional
// config file, and SHELFD_-prefixed environment variables.
package config

import "time"

// Config is the root configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	CORS    CORSConfig    `mapstructure:"cors"`
	Storage StorageConfig `mapstructure:"storage"`
	Signing SigningConfig `mapstructure:"signing"`
	Listing ListingConfig `mapstructure:"listing"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// CORSConfig configures cross-origin access for the storefront frontend.
type CORSConfig struct {
	// AllowedOrigins lists origins permitted to call the API.
	// ["*"] allows everything (useful while testing).
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StorageConfig selects and configures the object-storage provider.
type StorageConfig struct {
	// Provider is "s3" or "file".
	Provider string `mapstructure:"provider"`

	// Bucket is the bucket name. Listing routes answer 500 until it is set.
	Bucket string `mapstructure:"bucket"`

	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	Profile         string `mapstructure:"profile"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	ForcePathStyle  bool   `mapstructure:"force_path_style"`

	// BaseDir is the root directory for the file provider.
	BaseDir string `mapstructure:"base_dir"`
}

// SigningConfig controls signed URL generation.
type SigningConfig struct {
	// Expiry is how long signed download URLs stay valid.
	Expiry time.Duration `mapstructure:"expiry"`
}

// ListingConfig tunes the listing pipeline.
type ListingConfig struct {
	// DailyPrefix is the default folder root for date-based listings.
	DailyPrefix string `mapstructure:"daily_prefix"`

	// DefaultPrefix is the default prefix for raw prefix listings.
	DefaultPrefix string `mapstructure:"default_prefix"`

	DefaultLimit    int           `mapstructure:"default_limit"`
	MaxLimit        int           `mapstructure:"max_limit"`
	PageSize        int           `mapstructure:"page_size"`
	ProviderTimeout time.Duration `mapstructure:"provider_timeout"`

	// RateLimit caps outbound provider calls in requests per second.
	// Zero disables limiting.
	RateLimit float64 `mapstructure:"rate_limit"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}
