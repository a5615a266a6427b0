package cmd

import (
	"context"
	"io"
	"os"

	"watchstate/core/backend"
	"watchstate/core/logger"
	"watchstate/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	exportBackends []string
	exportOut      string
)

// exportCmd pushes the local state to backends that fell behind.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Push local watch state to stale backends",
	Long: `Compare what each backend reports with the local store and push the local
state where the backend is behind. Push descriptors are written as JSON lines.

Examples:
  watchstate export --backend plex=plex.json --out pushes.jsonl
  watchstate export --backend plex=plex.json --ignore-date --dry-run`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringArrayVar(&exportBackends, "backend", nil, "Backend as name=path to a JSON item export (repeatable)")
	exportCmd.Flags().StringVar(&exportOut, "out", "-", "Descriptor output file, - for stdout")
	exportCmd.Flags().Bool("ignore-date", false, "Push even when the backend date is not older")
	exportCmd.Flags().Bool("dry-run", false, "Evaluate only, do not push")
	exportCmd.Flags().Bool("trace", false, "Log every decision at debug level")
	RootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, l, err := bootstrap()
	if err != nil {
		return err
	}
	defer l.Sync()

	sync := cfg.Sync
	sync.IgnoreDate = flagBool(cmd, "ignore-date", sync.IgnoreDate)
	sync.DryRun = flagBool(cmd, "dry-run", sync.DryRun)
	sync.DebugTrace = flagBool(cmd, "trace", sync.DebugTrace)

	var sink io.Writer = os.Stdout
	if exportOut != "-" {
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		sink = f
	}

	backends, err := parseBackends(exportBackends, sink)
	if err != nil {
		return err
	}
	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}

	runLog, _ := logger.WithRun(l, "export")
	ex := reconcile.NewExporter(st, runLog, sync.ExportOptions())
	if err := ex.LoadData(ctx); err != nil {
		return err
	}

	byName := make(map[string]backend.Backend, len(backends))
	for _, b := range backends {
		byName[b.Name()] = b
		actions, err := backend.EvaluateInto(ctx, b, ex)
		if err != nil {
			runLog.Error("Backend pull failed", zap.String("backend", b.Name()), zap.Error(err))
			continue
		}
		runLog.Info("Backend evaluated",
			zap.String("backend", b.Name()),
			zap.Int("queued", actions[reconcile.ActionQueue]),
			zap.Int("skipped", actions[reconcile.ActionSkip]),
			zap.Int("failed", actions[reconcile.ActionFail]),
		)
	}

	queue := ex.Drain()
	if sync.DryRun {
		runLog.Info("Dry-run mode: nothing pushed", zap.Int("queued", len(queue)))
	} else {
		d := &backend.Dispatcher{Workers: sync.PushWorkers, Logger: runLog}
		d.Dispatch(ctx, queue, byName, ex)
	}

	ex.Stats().Log(runLog, "Export finished")
	return nil
}
