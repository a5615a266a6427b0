package reconcile

import "watchstate/core/entity"

// AfterCutoff reports whether r was updated at or after cutoff. A zero cutoff
// keeps everything.
func AfterCutoff(r entity.Record, cutoff int64) bool {
	return cutoff <= 0 || r.Updated >= cutoff
}

// Cutoff returns the epoch below which pulled records can be skipped.
// ForceFull disables the cutoff.
func Cutoff(lastSync int64, forceFull bool) int64 {
	if forceFull || lastSync < 0 {
		return 0
	}
	return lastSync
}
