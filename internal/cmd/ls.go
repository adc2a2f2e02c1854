package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bluedatahq/shelfd/internal/config"
	"github.com/bluedatahq/shelfd/internal/observability"
	"github.com/bluedatahq/shelfd/pkg/listing"
	"github.com/bluedatahq/shelfd/pkg/match"
	"github.com/bluedatahq/shelfd/pkg/output"
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "One-off listing with signed URLs (JSONL)",
	Long: `List bucket objects and their signed download URLs from the terminal,
using the same pipeline the HTTP API serves.

Emits one shelfd.file.v1 record per object plus a final summary record.

Examples:
  shelfd ls --prefix csv/2025-08-09_
  shelfd ls --prefix csv/ --contains .csv --limit 20
  shelfd ls --prefix csv/2025-08-09_ --latest
  shelfd ls --daily --date 2025-08-27
  shelfd ls --daily --output files.jsonl`,
	RunE: runLs,
}

var (
	lsPrefix   string
	lsDate     string
	lsDaily    bool
	lsContains string
	lsMatch    string
	lsLimit    int
	lsLatest   bool
	lsOutput   string
)

func init() {
	rootCmd.AddCommand(lsCmd)

	lsCmd.Flags().StringVar(&lsPrefix, "prefix", "", "Key prefix (default from config)")
	lsCmd.Flags().StringVar(&lsDate, "date", "", "Date for --daily listings (YYYY-MM-DD, default today UTC)")
	lsCmd.Flags().BoolVar(&lsDaily, "daily", false, "List a {prefix}{date}/ folder instead of a raw prefix")
	lsCmd.Flags().StringVar(&lsContains, "contains", "", "Substring the base name must contain")
	lsCmd.Flags().StringVar(&lsMatch, "match", "", "Glob the base name must match (e.g. '*.csv')")
	lsCmd.Flags().IntVar(&lsLimit, "limit", 0, "Max files to return (0 = config default)")
	lsCmd.Flags().BoolVar(&lsLatest, "latest", false, "Return only the newest file (raw prefix mode)")
	lsCmd.Flags().StringVarP(&lsOutput, "output", "o", "", "Write JSONL to a file instead of stdout")
}

func runLs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.GetConfig()

	prov, err := createProvider(ctx, cfg)
	if err != nil {
		observability.CLILogger.Error("Failed to create provider", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage provider", err)
	}
	if prov == nil {
		return exitError(foundry.ExitInvalidArgument, "No storage bucket configured",
			fmt.Errorf("set SHELFD_STORAGE_BUCKET or storage.bucket"))
	}
	defer func() { _ = prov.Close() }()

	svc, err := createListingService(prov, cfg)
	if err != nil {
		observability.CLILogger.Error("Failed to create listing service", zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Invalid listing configuration", err)
	}

	writer, cleanup, err := createWriter(cfg.Storage.Provider)
	if err != nil {
		observability.CLILogger.Error("Failed to create writer", zap.Error(err))
		return exitError(foundry.ExitFileWriteError, "Failed to create output", err)
	}
	defer cleanup()

	filter := match.Config{Contains: lsContains, Pattern: lsMatch}
	start := time.Now()

	var sum output.SummaryRecord
	var files []listing.File

	if lsDaily {
		prefix := lsPrefix
		if prefix == "" {
			prefix = cfg.Listing.DailyPrefix
		}
		res, err := svc.ListDaily(ctx, listing.DailyQuery{
			Date:   lsDate,
			Prefix: prefix,
			Filter: filter,
			Limit:  lsLimit,
		})
		if err != nil {
			return reportLsError(ctx, writer, prefix, err)
		}
		files = res.Files
		sum = output.SummaryRecord{Mode: "daily", Date: res.Date, Count: res.Count}
	} else {
		prefix := lsPrefix
		if prefix == "" {
			prefix = cfg.Listing.DefaultPrefix
		}
		res, err := svc.ListByPrefix(ctx, listing.PrefixQuery{
			Prefix:     prefix,
			Filter:     filter,
			Limit:      lsLimit,
			LatestOnly: lsLatest,
		})
		if err != nil {
			return reportLsError(ctx, writer, prefix, err)
		}
		files = res.Files
		sum = output.SummaryRecord{Mode: "prefix", Prefix: res.Prefix, Count: res.Count}
	}

	for i := range files {
		f := &files[i]
		rec := output.FileRecord{
			Name:      f.Name,
			Path:      f.Path,
			SizeBytes: f.SizeBytes,
			SignedURL: f.SignedURL,
			Updated:   f.Updated,
		}
		if err := writer.WriteFile(ctx, &rec); err != nil {
			return exitError(foundry.ExitFileWriteError, "Failed to write record", err)
		}
	}

	sum.Returned = len(files)
	sum.Duration = time.Since(start)
	if err := writer.WriteSummary(ctx, &sum); err != nil {
		return exitError(foundry.ExitFileWriteError, "Failed to write summary", err)
	}
	return nil
}

// reportLsError emits an error record before failing so JSONL consumers see
// the failure in-band.
func reportLsError(ctx context.Context, writer output.Writer, prefix string, err error) error {
	_ = writer.WriteError(ctx, &output.ErrorRecord{
		Code:    "LIST_FAILED",
		Message: err.Error(),
		Prefix:  prefix,
	})
	observability.CLILogger.Error("Listing failed", zap.String("prefix", prefix), zap.Error(err))
	return exitError(foundry.ExitExternalServiceUnavailable, "Listing failed", err)
}

// createWriter builds the JSONL writer for ls output.
// Returns the writer, a cleanup function, and any error.
func createWriter(providerName string) (output.Writer, func(), error) {
	jobID := uuid.New().String()

	dest := lsOutput
	if dest == "" || dest == "stdout" {
		w := output.NewJSONLWriter(os.Stdout, jobID, providerName)
		return w, func() { _ = w.Close() }, nil
	}

	path := strings.TrimPrefix(dest, "file:")
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file %s: %w", path, err)
	}

	w := output.NewJSONLWriter(f, jobID, providerName)
	cleanup := func() {
		_ = w.Close()
		_ = f.Close()
	}
	return w, cleanup, nil
}
