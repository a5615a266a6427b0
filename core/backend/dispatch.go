package backend

import (
	"context"
	"fmt"

	"watchstate/core/reconcile"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds concurrent pushes when Dispatcher.Workers is unset.
const DefaultWorkers = 4

// Reporter receives the transport outcome of each descriptor.
type Reporter interface {
	Report(d reconcile.Descriptor, err error)
}

// Dispatcher executes push descriptors against their backends with bounded
// concurrency. One failed push never cancels the others.
type Dispatcher struct {
	Workers int
	Logger  *zap.Logger
}

// Dispatch pushes every descriptor to the backend it names and reports each
// result to r. It returns once every push has finished.
func (d *Dispatcher) Dispatch(ctx context.Context, descriptors []reconcile.Descriptor, backends map[string]Backend, r Reporter) {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := d.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	var g errgroup.Group
	g.SetLimit(workers)

	for _, desc := range descriptors {
		b, ok := backends[desc.Backend]
		if !ok {
			r.Report(desc, fmt.Errorf("unknown backend %q", desc.Backend))
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				r.Report(desc, err)
				return nil
			}
			err := b.Push(ctx, desc)
			if err == nil {
				logger.Debug("Pushed state",
					zap.String("backend", desc.Backend),
					zap.String("label", desc.Label),
					zap.Bool("watched", desc.Watched),
				)
			}
			r.Report(desc, err)
			return nil
		})
	}
	_ = g.Wait()
}
