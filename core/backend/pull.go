package backend

import (
	"context"
	"fmt"

	"watchstate/core/reconcile"
)

// PullSummary counts the outcomes of one pull.
type PullSummary struct {
	Backend  string
	Pulled   int
	Filtered int
	Tainted  int
	// Newest is the largest updated value fed to the importer.
	Newest   int64
	Outcomes map[reconcile.Outcome]int
}

// PullInto pulls from b and feeds every item at or after cutoff into im.
func PullInto(ctx context.Context, b Backend, im *reconcile.Importer, cutoff int64) (PullSummary, error) {
	summary := PullSummary{Backend: b.Name(), Outcomes: make(map[reconcile.Outcome]int)}

	items, err := b.Pull(ctx, cutoff)
	if err != nil {
		return summary, fmt.Errorf("pull %s: %w", b.Name(), err)
	}
	summary.Pulled = len(items)

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if !reconcile.AfterCutoff(item.Record, cutoff) {
			summary.Filtered++
			continue
		}
		if item.Tainted {
			summary.Tainted++
		}
		if item.Record.Updated > summary.Newest {
			summary.Newest = item.Record.Updated
		}
		summary.Outcomes[im.Add(ctx, b.Name(), item.Label, item.Record)]++
	}
	return summary, nil
}

// EvaluateInto pulls the full state of b and evaluates every item against ex.
func EvaluateInto(ctx context.Context, b Backend, ex *reconcile.Exporter) (map[reconcile.Action]int, error) {
	items, err := b.Pull(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("pull %s: %w", b.Name(), err)
	}

	actions := make(map[reconcile.Action]int)
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return actions, err
		}
		actions[ex.Evaluate(ctx, b.Name(), item.Label, item.Record).Action]++
	}
	return actions, nil
}
