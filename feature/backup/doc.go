// Package backup writes JSON snapshots of the whole state to object storage
// and restores them through the importer.
//
// Restoring never bypasses reconciliation: every snapshot entity is replayed
// as records, so a restore into a non-empty store merges by the usual rules.
// Snapshots beyond the configured retention are pruned after each backup.
package backup
