package entity

import (
	"testing"

	"watchstate/core/identity"

	"github.com/stretchr/testify/assert"
)

func base() *Entity {
	return &Entity{
		ID:       1,
		Type:     TypeMovie,
		Watched:  false,
		Updated:  1000,
		Via:      "A",
		Identity: identity.Set{"imdb": "tt1"},
		Metadata: map[string]Metadata{"A": {"id": "10"}},
	}
}

func TestMerge_NewerWins(t *testing.T) {
	incoming := &Entity{
		Type: TypeMovie, Watched: true, Updated: 2000, Via: "B",
		Identity: identity.Set{"imdb": "tt1", "tmdb": "2"},
		Metadata: map[string]Metadata{"B": {"id": "20"}},
	}

	merged := Merge(base(), incoming, MergeOptions{})
	assert.True(t, merged.Watched)
	assert.Equal(t, int64(2000), merged.Updated)
	assert.Equal(t, "B", merged.Via)
	assert.Equal(t, int64(1), merged.ID)
	assert.Equal(t, map[string]Metadata{"A": {"id": "10"}, "B": {"id": "20"}}, merged.Metadata)
	assert.Equal(t, identity.Set{"imdb": "tt1", "tmdb": "2"}, merged.Identity)
}

func TestMerge_StaleRejected(t *testing.T) {
	incoming := &Entity{
		Type: TypeMovie, Watched: true, Updated: 500, Via: "C",
		Identity: identity.Set{"imdb": "tt1"},
		Metadata: map[string]Metadata{"C": {"id": "30"}},
	}

	merged := Merge(base(), incoming, MergeOptions{})
	assert.False(t, merged.Watched)
	assert.Equal(t, int64(1000), merged.Updated)
	assert.Equal(t, "A", merged.Via)
	assert.NotContains(t, merged.Metadata, "C")
	assert.Empty(t, Diff(base(), merged))
}

func TestMerge_EqualDateIsStale(t *testing.T) {
	incoming := &Entity{Type: TypeMovie, Watched: true, Updated: 1000, Via: "B", Identity: identity.Set{"imdb": "tt1"}}
	merged := Merge(base(), incoming, MergeOptions{})
	assert.False(t, merged.Watched)
	assert.Equal(t, "A", merged.Via)
}

// AlwaysUpdateMetadata refreshes metadata only; it must not force a stale state through.
func TestMerge_MetadataOnlyBoundary(t *testing.T) {
	incoming := &Entity{
		Type: TypeMovie, Watched: true, Updated: 500, Via: "A",
		Identity: identity.Set{"imdb": "tt1"},
		Metadata: map[string]Metadata{"A": {"id": "11", "library": "2"}},
	}

	merged := Merge(base(), incoming, MergeOptions{AlwaysUpdateMetadata: true})
	assert.False(t, merged.Watched)
	assert.Equal(t, int64(1000), merged.Updated)
	assert.Equal(t, Metadata{"id": "11", "library": "2"}, merged.Metadata["A"])
	assert.Equal(t, []string{FieldMetadata}, Diff(base(), merged))
}

func TestMerge_MetadataIsPerOrigin(t *testing.T) {
	existing := base()
	existing.Metadata["B"] = Metadata{"id": "20", "extra": "x"}

	incoming := &Entity{
		Type: TypeMovie, Watched: true, Updated: 3000, Via: "B",
		Identity: identity.Set{"imdb": "tt1"},
		Metadata: map[string]Metadata{"B": {"id": "21"}},
	}

	merged := Merge(existing, incoming, MergeOptions{})
	assert.Equal(t, Metadata{"id": "10"}, merged.Metadata["A"])
	assert.Equal(t, Metadata{"id": "21"}, merged.Metadata["B"], "origin block is replaced, not merged")
}

func TestMerge_IdentityUnionOnStale(t *testing.T) {
	incoming := &Entity{Type: TypeMovie, Updated: 10, Via: "B", Identity: identity.Set{"tvdb": "9"}}
	merged := Merge(base(), incoming, MergeOptions{})
	assert.Equal(t, identity.Set{"imdb": "tt1", "tvdb": "9"}, merged.Identity)
	assert.Equal(t, []string{FieldIdentity}, Diff(base(), merged))
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	existing := base()
	incoming := &Entity{
		Type: TypeMovie, Watched: true, Updated: 2000, Via: "B",
		Identity: identity.Set{"tmdb": "2"},
		Metadata: map[string]Metadata{"B": {"id": "20"}},
	}
	_ = Merge(existing, incoming, MergeOptions{})
	assert.Equal(t, base(), existing)
}

func TestDiff(t *testing.T) {
	a := base()
	b := base()
	assert.Empty(t, Diff(a, b))

	b.Watched = true
	b.Updated = 5
	b.Metadata["A"]["id"] = "x"
	assert.Equal(t, []string{FieldWatched, FieldUpdated, FieldMetadata}, Diff(a, b))
}

func TestMetadataProjection(t *testing.T) {
	existing := base()
	merged := Merge(existing, &Entity{
		Type: TypeMovie, Watched: true, Updated: 2000, Via: "B", Title: "Heat",
		Identity: identity.Set{"tmdb": "2"},
		Metadata: map[string]Metadata{"B": {"id": "20"}},
	}, MergeOptions{})

	projected := MetadataProjection(existing, merged)
	assert.False(t, projected.Watched)
	assert.Equal(t, int64(1000), projected.Updated)
	assert.Equal(t, "A", projected.Via)
	assert.Equal(t, "Heat", projected.Title)
	assert.Contains(t, projected.Metadata, "B")
	assert.Equal(t, identity.Set{"imdb": "tt1", "tmdb": "2"}, projected.Identity)
}
