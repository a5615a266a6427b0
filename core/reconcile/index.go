package reconcile

import (
	"sort"

	"watchstate/core/entity"
	"watchstate/core/identity"
)

// slot is one arena position. Several pointers may resolve to the same slot.
type slot struct {
	entity *entity.Entity
	// created marks entities first seen in this run.
	created bool
	// changed marks pre-existing entities modified in this run.
	changed bool
	// dirty marks buffered writes not yet flushed.
	dirty bool
	// failed marks entities whose write failed.
	failed bool
}

// Index is an arena of entities plus a pointer lookup table. It is owned by one
// reconciler run and is not safe for concurrent use.
type Index struct {
	slots     []*slot
	byPointer map[entity.Type]map[identity.Pointer][]int
}

// NewIndex builds an index over entities.
func NewIndex(entities []*entity.Entity) *Index {
	ix := &Index{byPointer: make(map[entity.Type]map[identity.Pointer][]int, len(entity.Types))}
	for _, e := range entities {
		ix.add(e)
	}
	return ix
}

// Len returns the number of entities in the arena.
func (ix *Index) Len() int {
	return len(ix.slots)
}

// Lookup returns the entity matching e, or nil.
func (ix *Index) Lookup(e *entity.Entity) *entity.Entity {
	if pos, ok := ix.find(e); ok {
		return ix.slots[pos].entity
	}
	return nil
}

// find returns the lowest arena position whose entity is the same item as e.
func (ix *Index) find(e *entity.Entity) (int, bool) {
	table := ix.byPointer[e.Type]
	if table == nil {
		return 0, false
	}

	seen := make(map[int]struct{})
	var candidates []int
	for _, p := range e.Pointers() {
		for _, pos := range table[p] {
			if _, ok := seen[pos]; ok {
				continue
			}
			seen[pos] = struct{}{}
			candidates = append(candidates, pos)
		}
	}
	sort.Ints(candidates)

	for _, pos := range candidates {
		if entity.SameItem(ix.slots[pos].entity, e) {
			return pos, true
		}
	}
	return 0, false
}

func (ix *Index) add(e *entity.Entity) int {
	pos := len(ix.slots)
	ix.slots = append(ix.slots, &slot{entity: e})
	ix.link(pos, e)
	return pos
}

// replace swaps the entity at pos. Identity sets only grow, so new pointers are
// linked and existing links stay valid.
func (ix *Index) replace(pos int, e *entity.Entity) {
	ix.slots[pos].entity = e
	ix.link(pos, e)
}

func (ix *Index) link(pos int, e *entity.Entity) {
	table, ok := ix.byPointer[e.Type]
	if !ok {
		table = make(map[identity.Pointer][]int)
		ix.byPointer[e.Type] = table
	}
	for _, p := range e.Pointers() {
		if !containsPos(table[p], pos) {
			table[p] = append(table[p], pos)
		}
	}
}

func containsPos(positions []int, pos int) bool {
	for _, existing := range positions {
		if existing == pos {
			return true
		}
	}
	return false
}
