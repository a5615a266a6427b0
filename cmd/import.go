package cmd

import (
	"context"

	"watchstate/core/backend"
	"watchstate/core/logger"
	"watchstate/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var importBackends []string

// importCmd pulls backend state into the local store.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Pull watch state from backends into the local store",
	Long: `Pull every backend and reconcile its records into the local store.

All backends share one run: records are merged in the order given and the run
commits once.

Examples:
  # Import two exports
  watchstate import --backend plex=plex.json --backend jellyfin=jf.json

  # Preview without writing
  watchstate import --backend plex=plex.json --dry-run`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringArrayVar(&importBackends, "backend", nil, "Backend as name=path to a JSON item export (repeatable)")
	importCmd.Flags().Bool("dry-run", false, "Compute decisions and statistics without writing")
	importCmd.Flags().Bool("force-full", false, "Ignore the last sync cutoff")
	importCmd.Flags().Bool("metadata-only", false, "Only refresh metadata of existing entities")
	importCmd.Flags().Bool("always-update-metadata", false, "Refresh metadata even for stale records")
	importCmd.Flags().Bool("trace", false, "Log every decision at debug level")
	RootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, l, err := bootstrap()
	if err != nil {
		return err
	}
	defer l.Sync()

	sync := cfg.Sync
	sync.DryRun = flagBool(cmd, "dry-run", sync.DryRun)
	sync.ForceFull = flagBool(cmd, "force-full", sync.ForceFull)
	sync.MetadataOnly = flagBool(cmd, "metadata-only", sync.MetadataOnly)
	sync.AlwaysUpdateMetadata = flagBool(cmd, "always-update-metadata", sync.AlwaysUpdateMetadata)
	sync.DebugTrace = flagBool(cmd, "trace", sync.DebugTrace)

	opts, err := sync.ImportOptions()
	if err != nil {
		return err
	}
	backends, err := parseBackends(importBackends, nil)
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}

	runLog, runID := logger.WithRun(l, "import")
	im, err := reconcile.NewImporter(st, runLog, opts)
	if err != nil {
		return err
	}
	if err := im.LoadData(ctx); err != nil {
		return err
	}

	cutoff := sync.Cutoff()
	newest := sync.LastSync
	pullFailed := false
	for _, b := range backends {
		summary, err := backend.PullInto(ctx, b, im, cutoff)
		if err != nil {
			// One unreachable backend does not discard what the others reported.
			runLog.Error("Backend pull failed", zap.String("backend", b.Name()), zap.Error(err))
			pullFailed = true
			continue
		}
		newest = max(newest, summary.Newest)
		runLog.Info("Backend pulled",
			zap.String("backend", summary.Backend),
			zap.Int("items", summary.Pulled),
			zap.Int("filtered", summary.Filtered),
			zap.Int("tainted", summary.Tainted),
		)
	}

	stats, err := im.Commit(ctx)
	if err != nil {
		return err
	}
	runLog.Info("Import complete", zap.String("run_id", runID), zap.Int("failed", stats.Failed()), zap.Bool("dry_run", opts.DryRun))

	// last_sync is operator managed; only a clean run proposes the next value.
	if !opts.DryRun && !pullFailed && newest > sync.LastSync {
		runLog.Info("Set SYNC_LAST_SYNC to skip already imported records next run", zap.Int64("last_sync", newest))
	}
	return nil
}
