// Package cmd implements the shelfd CLI.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bluedatahq/shelfd/internal/config"
	"github.com/bluedatahq/shelfd/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:   "shelfd",
	Short: "Signed-download listing service for bucket-hosted data files",
	Long: `shelfd lists objects in a cloud object-storage bucket under a date- or
prefix-based convention and returns time-limited signed download links,
so a storefront frontend can fetch daily data files without storage
credentials.

Configuration comes from shelfd.yaml and SHELFD_* environment variables
(e.g. SHELFD_STORAGE_BUCKET, SHELFD_SIGNING_EXPIRY).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := observability.Init(cfg.Logging.Level, cfg.Logging.Encoding); err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		return nil
	},
}

// versionInfo is the build identity injected by the linker via SetVersionInfo.
var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{
	Version:   "dev",
	Commit:    "HEAD",
	BuildDate: "unknown",
}

// SetVersionInfo records build identity for /version and `shelfd version`.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// Execute runs the root command.
func Execute() error {
	defer observability.Sync()
	return rootCmd.Execute()
}

// exitError creates an error that will cause the CLI to exit with the given code.
func exitError(code int, message string, err error) error {
	return fmt.Errorf("%s: %w (exit code %d)", message, err, code)
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("shelfd %s (commit %s, built %s)\n",
				versionInfo.Version, versionInfo.Commit, versionInfo.BuildDate)
		},
	})
}
