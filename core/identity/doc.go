// Package identity normalizes external identifier sets reported by media backends.
//
// Backends report the same title with different, partial identifier sets
// (imdb, tmdb, tvdb, ...). Each set passes once through a typed validator registry
// and is turned into pointers, strings of the form "<namespace>://<value>" that
// are the only key used to correlate records across backends. Vendor-local item
// ids never become pointers.
//
// # Matching
//
// Two movies are the same item when their pointer sets intersect. Episodes also
// need intersecting parent (show) identities, either through their parent sets or
// through relative pointers "<namespace>://<show value>/<season>/<episode>".
//
// # Usage
//
//	set := identity.Resolve(map[string]any{"guid_imdb": "tt0111161", "tmdb": 278}, identity.ContextMovie)
//	for _, p := range set.Pointers() {
//	    fmt.Println(p) // imdb://tt0111161, tmdb://278
//	}
package identity
