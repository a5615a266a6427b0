package reconcile

import (
	"testing"

	"watchstate/core/entity"
	"watchstate/core/identity"

	"github.com/stretchr/testify/assert"
)

func TestIndex_LookupPrefersLowestPosition(t *testing.T) {
	a := stored(entity.TypeMovie, "tt1", false, 1)
	b := &entity.Entity{Type: entity.TypeMovie, Identity: identity.Set{identity.NSImdb: "tt2", identity.NSTmdb: "5"}}
	c := &entity.Entity{Type: entity.TypeMovie, Identity: identity.Set{identity.NSTmdb: "5"}}
	ix := NewIndex([]*entity.Entity{a, b, c})

	probe := &entity.Entity{Type: entity.TypeMovie, Identity: identity.Set{identity.NSTmdb: "5"}}
	assert.Same(t, b, ix.Lookup(probe))
	assert.Equal(t, 3, ix.Len())
}

func TestIndex_TypesDoNotCollide(t *testing.T) {
	ix := NewIndex([]*entity.Entity{stored(entity.TypeMovie, "tt1", false, 1)})
	probe := &entity.Entity{
		Type:     entity.TypeEpisode,
		Identity: identity.Set{identity.NSImdb: "tt1"},
		Parent:   identity.Set{identity.NSTvdb: "1"},
		Season:   1,
		Episode:  1,
	}
	assert.Nil(t, ix.Lookup(probe))
}

func TestIndex_ReplaceLinksNewPointers(t *testing.T) {
	a := stored(entity.TypeMovie, "tt1", false, 1)
	ix := NewIndex([]*entity.Entity{a})

	grown := a.Clone()
	grown.Identity[identity.NSTmdb] = "42"
	ix.replace(0, grown)

	probe := &entity.Entity{Type: entity.TypeMovie, Identity: identity.Set{identity.NSTmdb: "42"}}
	assert.Same(t, grown, ix.Lookup(probe))
}
