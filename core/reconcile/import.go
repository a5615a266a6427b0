package reconcile

import (
	"context"
	"errors"

	"watchstate/core/entity"
	"watchstate/core/store"

	"go.uber.org/zap"
)

// Outcome is the classification of one imported record.
type Outcome int

const (
	New Outcome = iota
	MatchedNoChange
	MatchedUpdate
	MetadataOnlyUpdate
	Failed
)

func (o Outcome) String() string {
	switch o {
	case New:
		return "new"
	case MatchedNoChange:
		return "matched_no_change"
	case MatchedUpdate:
		return "matched_update"
	case MetadataOnlyUpdate:
		return "metadata_only_update"
	default:
		return "failed"
	}
}

// Importer matches pulled records against the store, merges them and commits
// the result. One Importer serves one run at a time and is not safe for
// concurrent use.
type Importer struct {
	store  store.Store
	logger *zap.Logger
	opts   Options

	index  *Index
	tx     store.Tx
	failed Stats
}

// NewImporter validates opts and returns an importer over s.
func NewImporter(s store.Store, logger *zap.Logger, opts Options) (*Importer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{store: s, logger: logger, opts: opts}, nil
}

// LoadData hydrates the pointer index from the store and starts a run.
// Calling it again rebuilds the index; a direct run that already made writes is
// rolled back first so the run restarts from the committed state.
func (im *Importer) LoadData(ctx context.Context) error {
	if im.tx != nil {
		if err := im.tx.Rollback(); err != nil {
			im.logger.Warn("Failed to roll back previous run", zap.Error(err))
		}
		im.tx = nil
	}

	var session store.Reader = im.store
	if im.opts.Strategy == StrategyDirect && !im.opts.DryRun {
		tx, err := im.store.Begin(ctx)
		if err != nil {
			return &FatalError{Op: "begin", Err: err}
		}
		im.tx = tx
		session = tx
	}

	entities, err := session.All(ctx)
	if err != nil {
		im.abort()
		return &FatalError{Op: "load", Err: err}
	}

	im.index = NewIndex(entities)
	im.failed = newStats()
	im.logger.Info("Loaded local state",
		zap.Int("entities", im.index.Len()),
		zap.String("strategy", im.opts.Strategy.String()),
		zap.String("tx_mode", im.opts.TxMode.String()),
		zap.Bool("dry_run", im.opts.DryRun),
	)
	return nil
}

// Add classifies and stages one record. It never returns an error: failures are
// logged with origin and label, counted, and reported as Failed.
func (im *Importer) Add(ctx context.Context, origin, label string, rec entity.Record) (outcome Outcome) {
	log := im.logger.With(
		zap.String("origin", origin),
		zap.String("label", label),
		zap.String("type", string(rec.Type)),
	)

	defer func() {
		if r := recover(); r != nil {
			outcome = im.fail(log, rec.Type, panicError(r))
		}
	}()

	if im.index == nil {
		return im.fail(log, rec.Type, ErrNotLoaded)
	}

	incoming, err := entity.FromRecord(origin, rec)
	if err != nil {
		return im.fail(log, rec.Type, err)
	}

	pos, found := im.index.find(incoming)
	if !found {
		pos = im.index.add(incoming)
		s := im.index.slots[pos]
		s.created = true
		s.dirty = im.opts.Strategy == StrategyBuffered
		if err := im.writeDirect(ctx, s); err != nil {
			return im.fail(log, rec.Type, err)
		}
		im.trace(log, "New entity", zap.Strings("pointers", pointerStrings(incoming)))
		return New
	}

	s := im.index.slots[pos]
	existing := s.entity
	merged := entity.Merge(existing, incoming, entity.MergeOptions{
		AlwaysUpdateMetadata: im.opts.AlwaysUpdateMetadata,
	})
	outcome = MatchedUpdate
	if im.opts.MetadataOnly {
		merged = entity.MetadataProjection(existing, merged)
		outcome = MetadataOnlyUpdate
	}

	changes := entity.Diff(existing, merged)
	if len(changes) == 0 {
		im.trace(log, "No change", zap.Int64("local_updated", existing.Updated), zap.Int64("updated", incoming.Updated))
		return MatchedNoChange
	}

	im.index.replace(pos, merged)
	if !s.created {
		s.changed = true
	}
	if s.failed {
		// The entity was already counted failed once; later records only fold
		// into it, as they would before a buffered flush.
		im.trace(log, "Folded into failed entity", zap.Strings("fields", changes))
		return outcome
	}
	if err := im.writeDirect(ctx, s); err != nil {
		return im.fail(log, rec.Type, err)
	}
	s.dirty = im.opts.Strategy == StrategyBuffered

	im.trace(log, "Entity changed", zap.Strings("fields", changes), zap.String("outcome", outcome.String()))
	return outcome
}

// Commit flushes the run and returns its statistics. On a FatalError the
// single transaction is rolled back and nothing from the run is kept.
func (im *Importer) Commit(ctx context.Context) (Stats, error) {
	if im.index == nil {
		return nil, ErrNotLoaded
	}
	defer im.reset()

	if !im.opts.DryRun {
		var err error
		switch im.opts.Strategy {
		case StrategyDirect:
			err = im.commitDirect()
		default:
			err = im.flushBuffered(ctx)
		}
		if err != nil {
			im.logger.Error("Import aborted", zap.Error(err))
			return nil, err
		}
	}

	stats := im.tally()
	stats.Log(im.logger, "Import finished")
	return stats, nil
}

// Stats returns the statistics of the run so far.
func (im *Importer) Stats() Stats {
	if im.index == nil {
		return newStats()
	}
	return im.tally()
}

func (im *Importer) commitDirect() error {
	if im.tx == nil {
		return &FatalError{Op: "commit", Err: errors.New("no open transaction")}
	}
	tx := im.tx
	im.tx = nil
	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return &FatalError{Op: "commit", Err: err}
	}
	return nil
}

func (im *Importer) flushBuffered(ctx context.Context) error {
	var session store.Session = im.store
	var tx store.Tx
	if im.opts.TxMode == TxSingle {
		var err error
		tx, err = im.store.Begin(ctx)
		if err != nil {
			return &FatalError{Op: "begin", Err: err}
		}
		session = tx
	}

	// Inserts first, then updates of pre-existing entities.
	for _, inserts := range []bool{true, false} {
		for _, s := range im.index.slots {
			if !s.dirty || s.created != inserts {
				continue
			}
			if err := write(ctx, session, s); err != nil {
				s.failed = true
				im.failed.row(s.entity.Type).Failed++
				im.logger.Warn("Failed to persist entity",
					zap.String("type", string(s.entity.Type)),
					zap.String("label", s.entity.Label()),
					zap.Error(err),
				)
			}
		}
	}

	if tx != nil {
		if err := tx.Commit(); err != nil {
			_ = tx.Rollback()
			return &FatalError{Op: "commit", Err: err}
		}
	}
	return nil
}

// writeDirect persists s immediately when running the direct strategy.
func (im *Importer) writeDirect(ctx context.Context, s *slot) error {
	if im.opts.Strategy != StrategyDirect || im.opts.DryRun {
		return nil
	}
	if err := write(ctx, im.tx, s); err != nil {
		s.failed = true
		return err
	}
	return nil
}

func write(ctx context.Context, session store.Session, s *slot) error {
	if s.entity.ID == 0 {
		id, err := session.Insert(ctx, s.entity)
		if err != nil {
			return err
		}
		s.entity.ID = id
	} else if err := session.Update(ctx, s.entity); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

func (im *Importer) tally() Stats {
	stats := im.failed.Clone()
	for _, s := range im.index.slots {
		if s.failed {
			continue
		}
		switch {
		case s.created:
			stats.row(s.entity.Type).Added++
		case s.changed:
			stats.row(s.entity.Type).Updated++
		}
	}
	return stats
}

func (im *Importer) fail(log *zap.Logger, t entity.Type, err error) Outcome {
	if im.failed == nil {
		im.failed = newStats()
	}
	im.failed.row(t).Failed++
	log.Warn("Failed to import record", zap.Error(err))
	return Failed
}

func (im *Importer) trace(log *zap.Logger, msg string, fields ...zap.Field) {
	if im.opts.DebugTrace {
		log.Debug(msg, fields...)
	}
}

func (im *Importer) abort() {
	if im.tx != nil {
		_ = im.tx.Rollback()
		im.tx = nil
	}
}

func (im *Importer) reset() {
	im.abort()
	im.index = nil
	im.failed = nil
}

func pointerStrings(e *entity.Entity) []string {
	ptrs := e.Pointers()
	out := make([]string, len(ptrs))
	for i, p := range ptrs {
		out[i] = string(p)
	}
	return out
}
