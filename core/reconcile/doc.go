// Package reconcile matches records reported by backends against the local
// store and decides what changes.
//
// The Importer handles the pull direction: LoadData builds a pointer index over
// every stored entity, Add classifies one record (new, unchanged, updated,
// metadata only, failed) and folds it into the index, and Commit persists the
// run with either the buffered or the direct strategy. Both strategies produce
// the same stored entities and the same statistics for the same input order.
//
// The Exporter handles the push direction: Evaluate compares a backend's
// reported state with the local entity and queues a Descriptor when the backend
// is behind. The transport executes descriptors and reports results back with
// Report.
//
// A single malformed record never stops a run. Only a FatalError, raised when
// the governing transaction cannot be opened or committed, aborts it.
//
// # Usage Example
//
//	im, err := reconcile.NewImporter(st, log, reconcile.Options{Strategy: reconcile.StrategyBuffered})
//	if err := im.LoadData(ctx); err != nil {
//	    return err
//	}
//	for _, item := range items {
//	    im.Add(ctx, "plex", item.Label, item.Record)
//	}
//	stats, err := im.Commit(ctx)
package reconcile
