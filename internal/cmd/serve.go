package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bluedatahq/shelfd/internal/config"
	"github.com/bluedatahq/shelfd/internal/observability"
	"github.com/bluedatahq/shelfd/internal/server"
	"github.com/bluedatahq/shelfd/internal/server/handlers"
	"github.com/bluedatahq/shelfd/pkg/listing"
	"github.com/bluedatahq/shelfd/pkg/provider"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP listing API",
	Long: `Run the HTTP API that lists bucket objects and returns signed
download links.

The server starts even when no bucket is configured; listing routes then
answer a structured 500 until SHELFD_STORAGE_BUCKET is set.

Example:
  shelfd serve
  SHELFD_STORAGE_BUCKET=bluedata-files shelfd serve
  SHELFD_SERVER_PORT=9000 shelfd serve`,
	RunE: runServe,
}

var (
	serveHost string
	servePort int
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "Override listen host")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Override listen port")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.GetConfig()
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	prov, err := createProvider(ctx, cfg)
	if err != nil {
		observability.CLILogger.Error("Failed to create provider", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage provider", err)
	}

	var svc *listing.Service
	if prov == nil {
		observability.CLILogger.Warn("No storage bucket configured; listing routes will answer 500",
			zap.String("provider", cfg.Storage.Provider))
	} else {
		defer func() { _ = prov.Close() }()
		svc, err = createListingService(prov, cfg)
		if err != nil {
			observability.CLILogger.Error("Failed to create listing service", zap.Error(err))
			return exitError(foundry.ExitInvalidArgument, "Invalid listing configuration", err)
		}
	}

	handlers.InitHealthManager(versionInfo.Version)
	handlers.GetHealthManager().RegisterChecker("config", configHealthChecker{cfg: cfg})
	if prov != nil {
		handlers.GetHealthManager().RegisterChecker("storage", storageHealthChecker{prov: prov})
	}

	srv := server.New(cfg.Server.Host, cfg.Server.Port,
		server.WithListing(handlers.NewListing(svc, cfg.Listing.DailyPrefix, cfg.Listing.DefaultPrefix)),
		server.WithCORS(cfg.CORS.AllowedOrigins),
		server.WithVersion(handlers.VersionInfo{
			Version:   versionInfo.Version,
			Commit:    versionInfo.Commit,
			BuildDate: versionInfo.BuildDate,
		}),
		server.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout),
	)

	errCh := make(chan error, 1)
	go func() {
		observability.ServerLogger.Info("Listening",
			zap.String("addr", srv.Addr()),
			zap.String("bucket", cfg.Storage.Bucket),
			zap.Strings("origins", cfg.CORS.AllowedOrigins))
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			observability.ServerLogger.Error("Server failed", zap.Error(err))
			return exitError(foundry.ExitExternalServiceUnavailable, "Server failed", err)
		}
		return nil
	case <-ctx.Done():
	}

	observability.ServerLogger.Info("Shutting down",
		zap.Duration("timeout", cfg.Server.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		observability.ServerLogger.Warn("Shutdown incomplete", zap.Error(err))
		return exitError(foundry.ExitSignalInt, "Shutdown incomplete", err)
	}
	return nil
}

// configHealthChecker verifies the pieces the listing routes depend on.
type configHealthChecker struct {
	cfg *config.Config
}

func (c configHealthChecker) CheckHealth(ctx context.Context) error {
	_ = ctx
	if c.cfg.Storage.Provider == "s3" && c.cfg.Storage.Bucket == "" {
		return errors.New("storage bucket not configured")
	}
	return nil
}

// storageHealthChecker verifies the provider answers a minimal list call.
type storageHealthChecker struct {
	prov provider.Provider
}

func (c storageHealthChecker) CheckHealth(ctx context.Context) error {
	_, err := c.prov.List(ctx, provider.ListOptions{MaxKeys: 1})
	return err
}
