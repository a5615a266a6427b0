package backup

import (
	"encoding/json"
	"fmt"
	"io"

	"watchstate/core/entity"
)

// SnapshotVersion is the current snapshot format.
const SnapshotVersion = 1

// Snapshot is the serialized form of the store.
type Snapshot struct {
	Version  int              `json:"version"`
	Created  int64            `json:"created"`
	Entities []*entity.Entity `json:"entities"`
}

// Decode reads a snapshot and checks its version.
func Decode(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	return &s, nil
}

// Replay returns the records that rebuild e through the importer: first the
// record of its Via origin, which carries the watch state, then one record per
// other metadata origin with the same date so only metadata is added.
func Replay(e *entity.Entity) []Origin {
	base := entity.ToRecord(e)
	via := e.Via
	if via == "" {
		via = "restore"
	}

	out := []Origin{{Name: via, Record: base}}
	for _, origin := range e.Origins() {
		if origin == via {
			continue
		}
		out = append(out, Origin{Name: origin, Record: base})
	}
	return out
}

// Origin pairs a record with the origin it is replayed as.
type Origin struct {
	Name   string
	Record entity.Record
}
