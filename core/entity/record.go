package entity

import (
	"errors"
	"fmt"
	"strings"

	"watchstate/core/identity"
)

// ErrValidation is the sentinel wrapped by every ValidationError.
var ErrValidation = errors.New("validation error")

// ValidationError reports a malformed record.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid record: %s %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Record is the canonical record produced by backend adapters.
type Record struct {
	Type     Type                `json:"type"`
	Updated  int64               `json:"updated"`
	Watched  int                 `json:"watched"`
	Title    string              `json:"title,omitempty"`
	Year     int                 `json:"year,omitempty"`
	Identity map[string]any      `json:"guids"`
	Parent   map[string]any      `json:"parent,omitempty"`
	Season   *int                `json:"season,omitempty"`
	Episode  *int                `json:"episode,omitempty"`
	Metadata map[string]Metadata `json:"metadata,omitempty"`
}

// FromRecord validates r and resolves it into an entity attributed to origin.
// Only the metadata block keyed by origin is carried over.
func FromRecord(origin string, r Record) (*Entity, error) {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return nil, invalid("origin", "is required")
	}
	if !r.Type.Valid() {
		return nil, invalid("type", fmt.Sprintf("%q is not movie or episode", r.Type))
	}
	if r.Watched != 0 && r.Watched != 1 {
		return nil, invalid("watched", fmt.Sprintf("%d is not 0 or 1", r.Watched))
	}
	if r.Updated <= 0 {
		return nil, invalid("updated", "must be a positive epoch")
	}

	e := &Entity{
		Type:     r.Type,
		Watched:  r.Watched == 1,
		Updated:  r.Updated,
		Via:      origin,
		Title:    strings.TrimSpace(r.Title),
		Year:     r.Year,
		Identity: identity.Resolve(r.Identity, r.Type.Context()),
	}

	if block, ok := r.Metadata[origin]; ok {
		e.Metadata = map[string]Metadata{origin: block.clone()}
	}

	switch r.Type {
	case TypeMovie:
		if r.Season != nil || r.Episode != nil || len(r.Parent) > 0 {
			return nil, invalid("season", "movies must not carry season, episode or parent")
		}
		if len(e.Identity) == 0 {
			return nil, invalid("guids", "no usable external identifier")
		}
	case TypeEpisode:
		if r.Season == nil || *r.Season < 0 {
			return nil, invalid("season", "is required for episodes")
		}
		if r.Episode == nil || *r.Episode < 0 {
			return nil, invalid("episode", "is required for episodes")
		}
		e.Season = *r.Season
		e.Episode = *r.Episode
		e.Parent = identity.Resolve(r.Parent, identity.ContextShow)
		if len(e.Parent) == 0 {
			return nil, invalid("parent", "no usable show identifier")
		}
		if e.Identity == nil {
			e.Identity = identity.Set{}
		}
	}

	return e, nil
}

// Validate checks the structural invariants of an entity.
func (e *Entity) Validate() error {
	if !e.Type.Valid() {
		return invalid("type", fmt.Sprintf("%q is not movie or episode", e.Type))
	}
	switch e.Type {
	case TypeMovie:
		if e.Season != 0 || e.Episode != 0 || len(e.Parent) > 0 {
			return invalid("season", "movies must not carry season, episode or parent")
		}
		if len(e.Identity) == 0 {
			return invalid("guids", "no usable external identifier")
		}
	case TypeEpisode:
		if len(e.Parent) == 0 {
			return invalid("parent", "no usable show identifier")
		}
	}
	return nil
}

// ToRecord converts e back into a record attributed to its Via origin. Every
// metadata block is carried over.
func ToRecord(e *Entity) Record {
	r := Record{
		Type:     e.Type,
		Updated:  e.Updated,
		Title:    e.Title,
		Year:     e.Year,
		Identity: setToRaw(e.Identity),
	}
	if e.Watched {
		r.Watched = 1
	}
	if e.Type == TypeEpisode {
		season, episode := e.Season, e.Episode
		r.Season = &season
		r.Episode = &episode
		r.Parent = setToRaw(e.Parent)
	}
	if len(e.Metadata) > 0 {
		r.Metadata = make(map[string]Metadata, len(e.Metadata))
		for origin, block := range e.Metadata {
			r.Metadata[origin] = block.clone()
		}
	}
	return r
}

func setToRaw(s identity.Set) map[string]any {
	out := make(map[string]any, len(s))
	for ns, v := range s {
		out[ns] = v
	}
	return out
}
