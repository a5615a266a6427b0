package reconcile

import (
	"context"
	"sync"

	"watchstate/core/entity"
	"watchstate/core/store"

	"go.uber.org/zap"
)

// Action is the export decision for one reported record.
type Action int

const (
	ActionSkip Action = iota
	ActionQueue
	ActionFail
)

func (a Action) String() string {
	switch a {
	case ActionQueue:
		return "queue"
	case ActionSkip:
		return "skip"
	default:
		return "fail"
	}
}

// Descriptor is a pending push: set the watched state of Label on Backend.
type Descriptor struct {
	Backend  string      `json:"backend"`
	Label    string      `json:"label"`
	Type     entity.Type `json:"type"`
	EntityID int64       `json:"entity_id"`
	Watched  bool        `json:"watched"`
	Title    string      `json:"title,omitempty"`
}

// Decision is returned by Evaluate. Err carries the skip reason
// (ErrNoLocalMatch, ErrConflictSkip) or the failure.
type Decision struct {
	Action     Action
	Err        error
	Descriptor *Descriptor
}

// Exporter compares backend-reported state with the local store and queues
// descriptors for stale backends. Evaluate and Drain are meant for a single
// goroutine; Report may be called concurrently by the transport.
type Exporter struct {
	reader store.Reader
	logger *zap.Logger
	opts   ExportOptions

	index *Index
	queue []Descriptor

	mu    sync.Mutex
	stats ExportStats
}

// NewExporter returns an exporter reading local state from r.
func NewExporter(r store.Reader, logger *zap.Logger, opts ExportOptions) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{reader: r, logger: logger, opts: opts, stats: newExportStats()}
}

// LoadData preloads the pointer index. Without it every Evaluate queries the store.
func (ex *Exporter) LoadData(ctx context.Context) error {
	entities, err := ex.reader.All(ctx)
	if err != nil {
		return &FatalError{Op: "load", Err: err}
	}
	ex.index = NewIndex(entities)
	ex.logger.Info("Loaded local state", zap.Int("entities", ex.index.Len()))
	return nil
}

// Evaluate decides whether backend needs a push for the record it reported.
func (ex *Exporter) Evaluate(ctx context.Context, backend, label string, rec entity.Record) (d Decision) {
	log := ex.logger.With(
		zap.String("backend", backend),
		zap.String("label", label),
		zap.String("type", string(rec.Type)),
	)

	defer func() {
		if r := recover(); r != nil {
			d = ex.fail(log, rec.Type, panicError(r))
		}
	}()

	reported, err := entity.FromRecord(backend, rec)
	if err != nil {
		return ex.fail(log, rec.Type, err)
	}

	local, err := ex.lookup(ctx, reported)
	if err != nil {
		return ex.fail(log, rec.Type, err)
	}
	if local == nil {
		return ex.skip(log, rec.Type, ErrNoLocalMatch)
	}
	if local.Watched == reported.Watched {
		return ex.skip(log, rec.Type, ErrConflictSkip, zap.String("reason", "same state"))
	}
	if !ex.opts.IgnoreDate && reported.Updated >= local.Updated {
		return ex.skip(log, rec.Type, ErrConflictSkip,
			zap.String("reason", "backend not stale"),
			zap.Int64("updated", reported.Updated),
			zap.Int64("local_updated", local.Updated),
		)
	}

	desc := Descriptor{
		Backend:  backend,
		Label:    label,
		Type:     local.Type,
		EntityID: local.ID,
		Watched:  local.Watched,
		Title:    local.Title,
	}
	ex.queue = append(ex.queue, desc)
	ex.bump(local.Type, func(c *ExportCounts) { c.Queued++ })
	if ex.opts.DebugTrace {
		log.Debug("Queued push", zap.Bool("watched", desc.Watched), zap.Int64("entity_id", desc.EntityID))
	}
	return Decision{Action: ActionQueue, Descriptor: &desc}
}

func (ex *Exporter) lookup(ctx context.Context, reported *entity.Entity) (*entity.Entity, error) {
	if ex.index != nil {
		return ex.index.Lookup(reported), nil
	}
	local, err := ex.reader.FindByPointers(ctx, reported.Type, reported.Pointers())
	if err != nil || local == nil {
		return nil, err
	}
	if !entity.SameItem(local, reported) {
		return nil, nil
	}
	return local, nil
}

// Queue returns a copy of the pending descriptors in evaluation order.
func (ex *Exporter) Queue() []Descriptor {
	out := make([]Descriptor, len(ex.queue))
	copy(out, ex.queue)
	return out
}

// Drain returns the pending descriptors in evaluation order and empties the queue.
func (ex *Exporter) Drain() []Descriptor {
	out := ex.queue
	ex.queue = nil
	return out
}

// Report records the transport outcome of one descriptor.
func (ex *Exporter) Report(d Descriptor, err error) {
	if err != nil {
		ex.bump(d.Type, func(c *ExportCounts) { c.Failed++ })
		ex.logger.Warn("Push failed",
			zap.String("backend", d.Backend),
			zap.String("label", d.Label),
			zap.Error(err),
		)
		return
	}
	ex.bump(d.Type, func(c *ExportCounts) { c.Pushed++ })
}

// Stats returns a snapshot of the export statistics.
func (ex *Exporter) Stats() ExportStats {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	return ex.stats.Clone()
}

func (ex *Exporter) skip(log *zap.Logger, t entity.Type, reason error, fields ...zap.Field) Decision {
	ex.bump(t, func(c *ExportCounts) { c.Skipped++ })
	if ex.opts.DebugTrace {
		log.Debug("Skipped", append(fields, zap.Error(reason))...)
	}
	return Decision{Action: ActionSkip, Err: reason}
}

func (ex *Exporter) fail(log *zap.Logger, t entity.Type, err error) Decision {
	ex.bump(t, func(c *ExportCounts) { c.Failed++ })
	log.Warn("Failed to evaluate record", zap.Error(err))
	return Decision{Action: ActionFail, Err: err}
}

func (ex *Exporter) bump(t entity.Type, fn func(*ExportCounts)) {
	ex.mu.Lock()
	fn(ex.stats.row(t))
	ex.mu.Unlock()
}
