package reconcile

import (
	"sort"

	"watchstate/core/entity"

	"go.uber.org/zap"
)

// TypeUnknown buckets failures of records whose type could not be read.
const TypeUnknown entity.Type = "unknown"

// Counts is one row of the import statistics table.
type Counts struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// Stats is the per-run import table keyed by entity type.
type Stats map[entity.Type]*Counts

func newStats() Stats {
	s := make(Stats, len(entity.Types))
	for _, t := range entity.Types {
		s[t] = &Counts{}
	}
	return s
}

func (s Stats) row(t entity.Type) *Counts {
	if !t.Valid() {
		t = TypeUnknown
	}
	c, ok := s[t]
	if !ok {
		c = &Counts{}
		s[t] = c
	}
	return c
}

// Get returns the counts for t.
func (s Stats) Get(t entity.Type) Counts {
	if c, ok := s[t]; ok {
		return *c
	}
	return Counts{}
}

// Failed returns the total of failed records across types.
func (s Stats) Failed() int {
	total := 0
	for _, c := range s {
		total += c.Failed
	}
	return total
}

// Clone returns a deep copy.
func (s Stats) Clone() Stats {
	out := make(Stats, len(s))
	for t, c := range s {
		cp := *c
		out[t] = &cp
	}
	return out
}

// Log writes one line per type. Failures are logged at warn so they are never
// lost in a run that otherwise succeeded.
func (s Stats) Log(l *zap.Logger, msg string) {
	for _, t := range sortedTypes(s) {
		c := s[t]
		fields := []zap.Field{
			zap.String("type", string(t)),
			zap.Int("added", c.Added),
			zap.Int("updated", c.Updated),
			zap.Int("failed", c.Failed),
		}
		if c.Failed > 0 {
			l.Warn(msg, fields...)
			continue
		}
		l.Info(msg, fields...)
	}
}

// ExportCounts is one row of the export statistics table.
type ExportCounts struct {
	Queued  int `json:"queued"`
	Skipped int `json:"skipped"`
	Pushed  int `json:"pushed"`
	Failed  int `json:"failed"`
}

// ExportStats is the per-run export table keyed by entity type.
type ExportStats map[entity.Type]*ExportCounts

func newExportStats() ExportStats {
	s := make(ExportStats, len(entity.Types))
	for _, t := range entity.Types {
		s[t] = &ExportCounts{}
	}
	return s
}

func (s ExportStats) row(t entity.Type) *ExportCounts {
	if !t.Valid() {
		t = TypeUnknown
	}
	c, ok := s[t]
	if !ok {
		c = &ExportCounts{}
		s[t] = c
	}
	return c
}

// Get returns the counts for t.
func (s ExportStats) Get(t entity.Type) ExportCounts {
	if c, ok := s[t]; ok {
		return *c
	}
	return ExportCounts{}
}

// Clone returns a deep copy.
func (s ExportStats) Clone() ExportStats {
	out := make(ExportStats, len(s))
	for t, c := range s {
		cp := *c
		out[t] = &cp
	}
	return out
}

// Log writes one line per type, at warn when the type has failures.
func (s ExportStats) Log(l *zap.Logger, msg string) {
	types := make([]entity.Type, 0, len(s))
	for t := range s {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	for _, t := range types {
		c := s[t]
		fields := []zap.Field{
			zap.String("type", string(t)),
			zap.Int("queued", c.Queued),
			zap.Int("skipped", c.Skipped),
			zap.Int("pushed", c.Pushed),
			zap.Int("failed", c.Failed),
		}
		if c.Failed > 0 {
			l.Warn(msg, fields...)
			continue
		}
		l.Info(msg, fields...)
	}
}

func sortedTypes(s Stats) []entity.Type {
	types := make([]entity.Type, 0, len(s))
	for t := range s {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
