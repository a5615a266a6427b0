package store

import (
	"context"
	"sort"
	"sync"

	"watchstate/core/entity"
	"watchstate/core/identity"
)

type memState struct {
	nextID   int64
	rows     map[int64]*entity.Entity
	pointers map[identity.Pointer]map[int64]struct{}
}

func newMemState() *memState {
	return &memState{
		nextID:   1,
		rows:     make(map[int64]*entity.Entity),
		pointers: make(map[identity.Pointer]map[int64]struct{}),
	}
}

func (s *memState) clone() *memState {
	out := &memState{
		nextID:   s.nextID,
		rows:     make(map[int64]*entity.Entity, len(s.rows)),
		pointers: make(map[identity.Pointer]map[int64]struct{}, len(s.pointers)),
	}
	for id, e := range s.rows {
		out.rows[id] = e.Clone()
	}
	for p, ids := range s.pointers {
		set := make(map[int64]struct{}, len(ids))
		for id := range ids {
			set[id] = struct{}{}
		}
		out.pointers[p] = set
	}
	return out
}

func (s *memState) find(t entity.Type, pointers []identity.Pointer) *entity.Entity {
	var best int64
	for _, p := range pointers {
		for id := range s.pointers[p] {
			if s.rows[id].Type != t {
				continue
			}
			if best == 0 || id < best {
				best = id
			}
		}
	}
	if best == 0 {
		return nil
	}
	return s.rows[best].Clone()
}

func (s *memState) get(id int64) (*entity.Entity, error) {
	e, ok := s.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e.Clone(), nil
}

func (s *memState) all() []*entity.Entity {
	out := make([]*entity.Entity, 0, len(s.rows))
	for _, e := range s.rows {
		out = append(out, e.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memState) insert(e *entity.Entity) int64 {
	row := e.Clone()
	row.ID = s.nextID
	s.nextID++
	s.rows[row.ID] = row
	s.index(row)
	return row.ID
}

func (s *memState) update(e *entity.Entity) error {
	old, ok := s.rows[e.ID]
	if !ok {
		return ErrNotFound
	}
	for _, p := range old.Pointers() {
		delete(s.pointers[p], old.ID)
		if len(s.pointers[p]) == 0 {
			delete(s.pointers, p)
		}
	}
	row := e.Clone()
	s.rows[row.ID] = row
	s.index(row)
	return nil
}

func (s *memState) index(e *entity.Entity) {
	for _, p := range e.Pointers() {
		ids, ok := s.pointers[p]
		if !ok {
			ids = make(map[int64]struct{}, 1)
			s.pointers[p] = ids
		}
		ids[e.ID] = struct{}{}
	}
}

// Memory is the in-process reference Store.
// Only one transaction should be open at a time: Commit replaces the whole state.
type Memory struct {
	mu       sync.RWMutex
	state    *memState
	readOnly bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{state: newMemState()}
}

// NewReadOnly returns a store seeded with entities that rejects every write.
func NewReadOnly(seed ...*entity.Entity) *Memory {
	m := NewMemory()
	for _, e := range seed {
		m.state.insert(e)
	}
	m.readOnly = true
	return m
}

// FindByPointers implements Reader.
func (m *Memory) FindByPointers(ctx context.Context, t entity.Type, pointers []identity.Pointer) (*entity.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, opErr("find", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.find(t, pointers), nil
}

// Get implements Reader.
func (m *Memory) Get(ctx context.Context, id int64) (*entity.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, opErr("get", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, err := m.state.get(id)
	return e, opErr("get", err)
}

// All implements Reader.
func (m *Memory) All(ctx context.Context) ([]*entity.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, opErr("all", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.all(), nil
}

// Insert implements Writer in auto-commit mode.
func (m *Memory) Insert(ctx context.Context, e *entity.Entity) (int64, error) {
	if m.readOnly {
		return 0, opErr("insert", ErrReadOnly)
	}
	if err := ctx.Err(); err != nil {
		return 0, opErr("insert", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.insert(e), nil
}

// Update implements Writer in auto-commit mode.
func (m *Memory) Update(ctx context.Context, e *entity.Entity) error {
	if m.readOnly {
		return opErr("update", ErrReadOnly)
	}
	if err := ctx.Err(); err != nil {
		return opErr("update", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return opErr("update", m.state.update(e))
}

// Begin implements Store.
func (m *Memory) Begin(ctx context.Context) (Tx, error) {
	if m.readOnly {
		return nil, opErr("begin", ErrReadOnly)
	}
	if err := ctx.Err(); err != nil {
		return nil, opErr("begin", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &memTx{parent: m, state: m.state.clone()}, nil
}

// Len returns the number of stored entities.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.state.rows)
}

type memTx struct {
	parent *Memory
	state  *memState
	done   bool
}

func (t *memTx) FindByPointers(ctx context.Context, typ entity.Type, pointers []identity.Pointer) (*entity.Entity, error) {
	if t.done {
		return nil, opErr("find", ErrTxDone)
	}
	return t.state.find(typ, pointers), nil
}

func (t *memTx) Get(ctx context.Context, id int64) (*entity.Entity, error) {
	if t.done {
		return nil, opErr("get", ErrTxDone)
	}
	e, err := t.state.get(id)
	return e, opErr("get", err)
}

func (t *memTx) All(ctx context.Context) ([]*entity.Entity, error) {
	if t.done {
		return nil, opErr("all", ErrTxDone)
	}
	return t.state.all(), nil
}

func (t *memTx) Insert(ctx context.Context, e *entity.Entity) (int64, error) {
	if t.done {
		return 0, opErr("insert", ErrTxDone)
	}
	return t.state.insert(e), nil
}

func (t *memTx) Update(ctx context.Context, e *entity.Entity) error {
	if t.done {
		return opErr("update", ErrTxDone)
	}
	return opErr("update", t.state.update(e))
}

func (t *memTx) Commit() error {
	if t.done {
		return opErr("commit", ErrTxDone)
	}
	t.done = true
	t.parent.mu.Lock()
	t.parent.state = t.state
	t.parent.mu.Unlock()
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return opErr("rollback", ErrTxDone)
	}
	t.done = true
	t.state = nil
	return nil
}
