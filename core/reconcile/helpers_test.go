package reconcile

import (
	"context"
	"errors"
	"sync"

	"watchstate/core/entity"
	"watchstate/core/identity"
	"watchstate/core/store"
)

func intPtr(i int) *int { return &i }

func movie(imdb string, watched int, updated int64) entity.Record {
	return entity.Record{
		Type:     entity.TypeMovie,
		Watched:  watched,
		Updated:  updated,
		Identity: map[string]any{"imdb": imdb},
	}
}

// broken is a movie record whose writes a faultyStore with failTitle "Broken" rejects.
func broken(imdb string, watched int, updated int64) entity.Record {
	r := movie(imdb, watched, updated)
	r.Title = "Broken"
	return r
}

func episode(show int, season, ep, watched int, updated int64) entity.Record {
	return entity.Record{
		Type:     entity.TypeEpisode,
		Watched:  watched,
		Updated:  updated,
		Parent:   map[string]any{"tvdb": show},
		Season:   intPtr(season),
		Episode:  intPtr(ep),
		Identity: map[string]any{},
	}
}

func stored(t entity.Type, imdb string, watched bool, updated int64) *entity.Entity {
	return &entity.Entity{
		Type:     t,
		Watched:  watched,
		Updated:  updated,
		Via:      "seed",
		Identity: identity.Set{identity.NSImdb: imdb},
	}
}

var errInjected = errors.New("injected failure")

// faultyStore wraps a Memory store and fails selected operations.
type faultyStore struct {
	*store.Memory

	mu         sync.Mutex
	failBegin  bool
	failCommit bool
	// failTitle fails every write of an entity with this title.
	failTitle string
	writes    int
}

func newFaultyStore() *faultyStore {
	return &faultyStore{Memory: store.NewMemory()}
}

func (f *faultyStore) check(e *entity.Entity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.failTitle != "" && e.Title == f.failTitle {
		return errInjected
	}
	return nil
}

func (f *faultyStore) Insert(ctx context.Context, e *entity.Entity) (int64, error) {
	if err := f.check(e); err != nil {
		return 0, err
	}
	return f.Memory.Insert(ctx, e)
}

func (f *faultyStore) Update(ctx context.Context, e *entity.Entity) error {
	if err := f.check(e); err != nil {
		return err
	}
	return f.Memory.Update(ctx, e)
}

func (f *faultyStore) Begin(ctx context.Context) (store.Tx, error) {
	if f.failBegin {
		return nil, errInjected
	}
	tx, err := f.Memory.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &faultyTx{Tx: tx, parent: f}, nil
}

type faultyTx struct {
	store.Tx
	parent *faultyStore
}

func (t *faultyTx) Insert(ctx context.Context, e *entity.Entity) (int64, error) {
	if err := t.parent.check(e); err != nil {
		return 0, err
	}
	return t.Tx.Insert(ctx, e)
}

func (t *faultyTx) Update(ctx context.Context, e *entity.Entity) error {
	if err := t.parent.check(e); err != nil {
		return err
	}
	return t.Tx.Update(ctx, e)
}

func (t *faultyTx) Commit() error {
	if t.parent.failCommit {
		return errInjected
	}
	return t.Tx.Commit()
}
