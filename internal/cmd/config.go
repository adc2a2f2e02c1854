package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fulmenhq/gofulmen/foundry"

	"github.com/bluedatahq/shelfd/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Long: `Print the merged configuration after defaults, config file, and
SHELFD_ environment variables have been applied. Secrets are redacted.`,
	RunE: runConfigShow,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

// configView mirrors Config with yaml tags so `config show` output uses the
// same key names the config file does.
type configView struct {
	Server  serverView  `yaml:"server"`
	CORS    corsView    `yaml:"cors"`
	Storage storageView `yaml:"storage"`
	Signing signingView `yaml:"signing"`
	Listing listingView `yaml:"listing"`
	Logging loggingView `yaml:"logging"`
}

type serverView struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	IdleTimeout     string `yaml:"idle_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

type corsView struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type storageView struct {
	Provider        string `yaml:"provider"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region,omitempty"`
	Endpoint        string `yaml:"endpoint,omitempty"`
	Profile         string `yaml:"profile,omitempty"`
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
	ForcePathStyle  bool   `yaml:"force_path_style"`
	BaseDir         string `yaml:"base_dir,omitempty"`
}

type signingView struct {
	Expiry string `yaml:"expiry"`
}

type listingView struct {
	DailyPrefix     string  `yaml:"daily_prefix"`
	DefaultPrefix   string  `yaml:"default_prefix"`
	DefaultLimit    int     `yaml:"default_limit"`
	MaxLimit        int     `yaml:"max_limit"`
	PageSize        int     `yaml:"page_size"`
	ProviderTimeout string  `yaml:"provider_timeout"`
	RateLimit       float64 `yaml:"rate_limit"`
}

type loggingView struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

const redacted = "[REDACTED]"

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()
	if cfg == nil {
		return exitError(foundry.ExitInvalidArgument, "Configuration not loaded",
			fmt.Errorf("config.Load was not called"))
	}

	view := configView{
		Server: serverView{
			Host:            cfg.Server.Host,
			Port:            cfg.Server.Port,
			ReadTimeout:     cfg.Server.ReadTimeout.String(),
			WriteTimeout:    cfg.Server.WriteTimeout.String(),
			IdleTimeout:     cfg.Server.IdleTimeout.String(),
			ShutdownTimeout: cfg.Server.ShutdownTimeout.String(),
		},
		CORS: corsView{AllowedOrigins: cfg.CORS.AllowedOrigins},
		Storage: storageView{
			Provider:       cfg.Storage.Provider,
			Bucket:         cfg.Storage.Bucket,
			Region:         cfg.Storage.Region,
			Endpoint:       cfg.Storage.Endpoint,
			Profile:        cfg.Storage.Profile,
			AccessKeyID:    cfg.Storage.AccessKeyID,
			ForcePathStyle: cfg.Storage.ForcePathStyle,
			BaseDir:        cfg.Storage.BaseDir,
		},
		Signing: signingView{Expiry: cfg.Signing.Expiry.String()},
		Listing: listingView{
			DailyPrefix:     cfg.Listing.DailyPrefix,
			DefaultPrefix:   cfg.Listing.DefaultPrefix,
			DefaultLimit:    cfg.Listing.DefaultLimit,
			MaxLimit:        cfg.Listing.MaxLimit,
			PageSize:        cfg.Listing.PageSize,
			ProviderTimeout: cfg.Listing.ProviderTimeout.String(),
			RateLimit:       cfg.Listing.RateLimit,
		},
		Logging: loggingView{
			Level:    cfg.Logging.Level,
			Encoding: cfg.Logging.Encoding,
		},
	}
	if cfg.Storage.SecretAccessKey != "" {
		view.Storage.SecretAccessKey = redacted
	}

	out, err := yaml.Marshal(&view)
	if err != nil {
		return exitError(foundry.ExitFileWriteError, "Failed to render configuration", err)
	}
	cmd.Print(string(out))
	return nil
}
