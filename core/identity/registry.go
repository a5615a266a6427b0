package identity

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"watchstate/core/utils"
)

// Context tells the resolver what kind of title an identifier set describes.
type Context string

const (
	ContextMovie   Context = "movie"
	ContextShow    Context = "show"
	ContextEpisode Context = "episode"
)

// ValueKind is the declared type of a namespace value.
type ValueKind int

const (
	KindString ValueKind = iota
	KindInt
)

// Validator coerces a raw value into its canonical string form.
// It reports false when the value is unusable for the namespace.
type Validator func(raw any) (string, bool)

// Namespace describes one registered identifier namespace.
type Namespace struct {
	// Name is the lowercase namespace used in pointers (e.g. "imdb").
	Name string
	// Kind is the declared value type. It picks the coercion when Validate is nil.
	Kind ValueKind
	// Contexts limits the namespace to some title kinds. Empty means all.
	Contexts []Context
	// Validate coerces and checks values. Optional.
	Validate Validator
}

func (n Namespace) coerce(raw any) (string, bool) {
	switch {
	case n.Validate != nil:
		return n.Validate(raw)
	case n.Kind == KindInt:
		return IntValue(raw)
	default:
		return StringValue(raw)
	}
}

func (n Namespace) allows(ctx Context) bool {
	if len(n.Contexts) == 0 {
		return true
	}
	for _, c := range n.Contexts {
		if c == ctx {
			return true
		}
	}
	return false
}

const (
	NSImdb     = "imdb"
	NSTmdb     = "tmdb"
	NSTvdb     = "tvdb"
	NSTvmaze   = "tvmaze"
	NSTvrage   = "tvrage"
	NSAnidb    = "anidb"
	NSYoutube  = "youtube"
	NSCmdb     = "cmdb"
	NSPlex     = "plex"
	NSJellyfin = "jellyfin"
	NSEmby     = "emby"
)

var imdbPattern = regexp.MustCompile(`^tt\d+$`)

// IntValue accepts integers, whole floats and numeric strings greater than zero.
// Leading zeros are dropped so "0278" and 278 produce the same pointer.
func IntValue(raw any) (string, bool) {
	i, ok := utils.ToInt64(raw)
	if !ok || i <= 0 {
		return "", false
	}
	return strconv.FormatInt(i, 10), true
}

// StringValue accepts any non-empty string without the pointer separator.
func StringValue(raw any) (string, bool) {
	s := utils.ToString(raw)
	if s == "" || strings.Contains(s, "://") {
		return "", false
	}
	return s, true
}

// ImdbValue accepts "tt" ids, lowercasing the prefix.
func ImdbValue(raw any) (string, bool) {
	s := strings.ToLower(utils.ToString(raw))
	if !imdbPattern.MatchString(s) {
		return "", false
	}
	return s, true
}

// Registry is a fixed set of namespaces keyed by name.
type Registry struct {
	namespaces map[string]Namespace
}

// NewRegistry builds a registry from the given namespaces.
func NewRegistry(namespaces ...Namespace) *Registry {
	r := &Registry{namespaces: make(map[string]Namespace, len(namespaces))}
	for _, ns := range namespaces {
		r.namespaces[ns.Name] = ns
	}
	return r
}

// DefaultRegistry returns the namespaces every backend adapter may report.
func DefaultRegistry() *Registry {
	tv := []Context{ContextShow, ContextEpisode}
	return NewRegistry(
		Namespace{Name: NSImdb, Kind: KindString, Validate: ImdbValue},
		Namespace{Name: NSTmdb, Kind: KindInt},
		Namespace{Name: NSTvdb, Kind: KindInt},
		Namespace{Name: NSTvmaze, Kind: KindInt, Contexts: tv},
		Namespace{Name: NSTvrage, Kind: KindInt, Contexts: tv},
		Namespace{Name: NSAnidb, Kind: KindInt},
		Namespace{Name: NSYoutube, Kind: KindString},
		Namespace{Name: NSCmdb, Kind: KindString},
		Namespace{Name: NSPlex, Kind: KindString},
		Namespace{Name: NSJellyfin, Kind: KindString},
		Namespace{Name: NSEmby, Kind: KindString},
	)
}

// Lookup returns the namespace registered under name.
func (r *Registry) Lookup(name string) (Namespace, bool) {
	ns, ok := r.namespaces[name]
	return ns, ok
}

// Names returns the registered namespace names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.namespaces))
	for name := range r.namespaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve normalizes a raw identifier map. It never fails: unknown namespaces,
// namespaces not allowed in ctx, and unusable values are dropped.
func (r *Registry) Resolve(raw map[string]any, ctx Context) Set {
	set := make(Set, len(raw))
	for key, value := range raw {
		name := normalizeKey(key)
		ns, ok := r.namespaces[name]
		if !ok || !ns.allows(ctx) {
			continue
		}
		v, ok := ns.coerce(value)
		if !ok {
			continue
		}
		set[name] = v
	}
	return set
}

func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.TrimPrefix(key, "guid_")
}

var defaultRegistry = DefaultRegistry()

// Resolve normalizes raw against the default registry.
func Resolve(raw map[string]any, ctx Context) Set {
	return defaultRegistry.Resolve(raw, ctx)
}
