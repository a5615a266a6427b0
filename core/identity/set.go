package identity

import (
	"fmt"
	"sort"
	"strings"
)

// Pointer addresses one external identity claim: "<namespace>://<value>".
type Pointer string

// NewPointer builds a pointer from a namespace and value.
func NewPointer(namespace, value string) Pointer {
	return Pointer(namespace + "://" + value)
}

// Namespace returns the namespace part of the pointer.
func (p Pointer) Namespace() string {
	ns, _, _ := strings.Cut(string(p), "://")
	return ns
}

// Value returns the value part of the pointer.
func (p Pointer) Value() string {
	_, v, _ := strings.Cut(string(p), "://")
	return v
}

// ParsePointer validates s against the default registry and returns the canonical pointer.
func ParsePointer(s string) (Pointer, error) {
	ns, value, ok := strings.Cut(strings.TrimSpace(s), "://")
	if !ok || value == "" {
		return "", fmt.Errorf("invalid pointer %q: want <namespace>://<value>", s)
	}
	ns = normalizeKey(ns)
	namespace, ok := defaultRegistry.Lookup(ns)
	if !ok {
		return "", fmt.Errorf("invalid pointer %q: unknown namespace %s", s, ns)
	}

	// Relative pointers carry "/season/episode" after the show value.
	base, rest, relative := strings.Cut(value, "/")
	v, ok := namespace.coerce(base)
	if !ok {
		return "", fmt.Errorf("invalid pointer %q: bad %s value", s, ns)
	}
	if relative {
		return NewPointer(ns, v+"/"+rest), nil
	}
	return NewPointer(ns, v), nil
}

// Set is a normalized namespace to value map.
type Set map[string]string

// Pointers returns the sorted pointers of the set.
func (s Set) Pointers() []Pointer {
	out := make([]Pointer, 0, len(s))
	for ns, v := range s {
		out = append(out, NewPointer(ns, v))
	}
	sortPointers(out)
	return out
}

// RelativePointers returns the show-relative pointers of an episode.
func (s Set) RelativePointers(season, episode int) []Pointer {
	out := make([]Pointer, 0, len(s))
	for ns, v := range s {
		out = append(out, NewPointer(ns, fmt.Sprintf("%s/%d/%d", v, season, episode)))
	}
	sortPointers(out)
	return out
}

// Union returns a new set containing both sets. For a namespace present in
// both with different values the receiver's value is kept.
func (s Set) Union(other Set) Set {
	out := s.Clone()
	if out == nil {
		out = make(Set, len(other))
	}
	for ns, v := range other {
		if _, exists := out[ns]; !exists {
			out[ns] = v
		}
	}
	return out
}

// Clone returns a copy of the set.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Equal reports whether both sets hold the same pairs.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for k, v := range s {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Intersects reports whether both sets share at least one pointer.
func (s Set) Intersects(other Set) bool {
	for k, v := range s {
		if ov, ok := other[k]; ok && ov == v {
			return true
		}
	}
	return false
}

// Intersects reports whether a and b share at least one pointer.
func Intersects(a, b []Pointer) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	seen := make(map[Pointer]struct{}, len(a))
	for _, p := range a {
		seen[p] = struct{}{}
	}
	for _, p := range b {
		if _, ok := seen[p]; ok {
			return true
		}
	}
	return false
}

func sortPointers(p []Pointer) {
	sort.Slice(p, func(i, j int) bool { return p[i] < p[j] })
}
