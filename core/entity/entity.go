package entity

import (
	"fmt"
	"sort"

	"watchstate/core/identity"
)

// Type is the kind of title an entity describes.
type Type string

const (
	TypeMovie   Type = "movie"
	TypeEpisode Type = "episode"
)

// Types lists every entity type in a stable order.
var Types = []Type{TypeMovie, TypeEpisode}

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	return t == TypeMovie || t == TypeEpisode
}

// Context returns the identity resolution context for the type.
func (t Type) Context() identity.Context {
	if t == TypeEpisode {
		return identity.ContextEpisode
	}
	return identity.ContextMovie
}

// Metadata is one origin's block of backend-specific data (item id, library, played_at ...).
type Metadata map[string]string

// Entity is the merged watch state of one title.
type Entity struct {
	// ID is the store row id. Zero until the entity has been persisted.
	ID int64 `json:"id"`
	// Type is movie or episode.
	Type Type `json:"type"`
	// Watched is the merged play state.
	Watched bool `json:"watched"`
	// Updated is the epoch (seconds) reported by the origin of the accepted state.
	Updated int64 `json:"updated"`
	// Via is the backend that supplied the accepted state.
	Via string `json:"via"`
	// Title is a display name, informational only.
	Title string `json:"title,omitempty"`
	// Year is the release year, informational only.
	Year int `json:"year,omitempty"`
	// Identity is the entity's own identifier set.
	Identity identity.Set `json:"guids"`
	// Parent is the show identifier set. Episodes only.
	Parent identity.Set `json:"parent,omitempty"`
	// Season number. Episodes only.
	Season int `json:"season,omitempty"`
	// Episode number. Episodes only.
	Episode int `json:"episode,omitempty"`
	// Metadata holds one block per origin backend.
	Metadata map[string]Metadata `json:"metadata,omitempty"`
}

// Pointers returns every pointer the entity is addressable by: its own pointers, and
// for episodes the show-relative pointers too.
func (e *Entity) Pointers() []identity.Pointer {
	out := e.Identity.Pointers()
	if e.Type == TypeEpisode && len(e.Parent) > 0 {
		out = append(out, e.Parent.RelativePointers(e.Season, e.Episode)...)
	}
	return out
}

// SameItem reports whether a and b describe the same logical title.
// Movies match on any shared pointer. Episodes need the same season/episode and a
// shared show identity, or a shared own pointer and overlapping parent sets.
func SameItem(a, b *Entity) bool {
	if a == nil || b == nil || a.Type != b.Type {
		return false
	}
	if a.Type == TypeMovie {
		return a.Identity.Intersects(b.Identity)
	}

	if a.Season == b.Season && a.Episode == b.Episode && a.Parent.Intersects(b.Parent) {
		return true
	}
	return a.Identity.Intersects(b.Identity) && a.Parent.Intersects(b.Parent)
}

// Clone returns a deep copy.
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}
	out := *e
	out.Identity = e.Identity.Clone()
	out.Parent = e.Parent.Clone()
	if e.Metadata != nil {
		out.Metadata = make(map[string]Metadata, len(e.Metadata))
		for origin, block := range e.Metadata {
			out.Metadata[origin] = block.clone()
		}
	}
	return &out
}

// Label returns a short human readable name for logs.
func (e *Entity) Label() string {
	name := e.Title
	if name == "" {
		if ptrs := e.Identity.Pointers(); len(ptrs) > 0 {
			name = string(ptrs[0])
		}
	}
	if e.Type == TypeEpisode {
		return fmt.Sprintf("%s S%02dE%02d", name, e.Season, e.Episode)
	}
	if e.Year > 0 {
		return fmt.Sprintf("%s (%d)", name, e.Year)
	}
	return name
}

// Origins returns the metadata origins in sorted order.
func (e *Entity) Origins() []string {
	out := make([]string, 0, len(e.Metadata))
	for origin := range e.Metadata {
		out = append(out, origin)
	}
	sort.Strings(out)
	return out
}

func (m Metadata) clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (m Metadata) equal(other Metadata) bool {
	if len(m) != len(other) {
		return false
	}
	for k, v := range m {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}
