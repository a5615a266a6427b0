package store

import (
	"context"
	"errors"
	"fmt"

	"watchstate/core/entity"
	"watchstate/core/identity"
)

// ErrNotFound is returned by Update when the entity id does not exist.
var ErrNotFound = errors.New("entity not found")

// ErrReadOnly is returned by writes against a read-only store.
var ErrReadOnly = errors.New("store is read-only")

// ErrTxDone is returned when a finished transaction is used again.
var ErrTxDone = errors.New("transaction already committed or rolled back")

// Error wraps a failure of a single store operation.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func opErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Op: op, Err: err}
}

// Reader is the read side of the contract.
type Reader interface {
	// FindByPointers returns the lowest-id entity of type t addressable by any of
	// the pointers, or nil when none matches.
	FindByPointers(ctx context.Context, t entity.Type, pointers []identity.Pointer) (*entity.Entity, error)
	// Get returns the entity with the given id, or ErrNotFound.
	Get(ctx context.Context, id int64) (*entity.Entity, error)
	// All returns every stored entity ordered by id.
	All(ctx context.Context) ([]*entity.Entity, error)
}

// Writer is the write side of the contract.
type Writer interface {
	// Insert persists a new entity and returns its id.
	Insert(ctx context.Context, e *entity.Entity) (int64, error)
	// Update replaces the stored entity with the same id.
	Update(ctx context.Context, e *entity.Entity) error
}

// Session is anything that can both read and write: a store in auto-commit
// mode or an open transaction.
type Session interface {
	Reader
	Writer
}

// Tx is a single transaction.
type Tx interface {
	Session
	Commit() error
	Rollback() error
}

// Store is a persistent entity store.
type Store interface {
	Session
	// Begin opens a single transaction. Writes made directly on the store
	// outside of it auto-commit.
	Begin(ctx context.Context) (Tx, error)
}
