// Package store defines the persistence contract used by the reconcilers and ships
// two implementations.
//
// The contract is deliberately narrow: find an entity by any of its pointers,
// insert, update, list everything (for index hydration) and open a transaction.
// A Store used directly is in auto-commit mode, every write commits on its own.
// Begin returns a Tx in which every write is held until Commit; Rollback discards
// them all.
//
// # Implementations
//
//   - Memory: in-process reference store. Transactions work on a private copy that
//     replaces the committed state on Commit. NewReadOnly rejects every write and is
//     used to prove that dry runs never touch the store.
//   - Gorm: SQL store on gorm with a "state" table and a "state_pointers" lookup table
//     (one row per pointer), runnable on sqlite or mysql.
package store
