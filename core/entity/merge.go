package entity

// Changed field names reported by Diff.
const (
	FieldWatched  = "watched"
	FieldUpdated  = "updated"
	FieldVia      = "via"
	FieldTitle    = "title"
	FieldYear     = "year"
	FieldIdentity = "identity"
	FieldParent   = "parent"
	FieldSeason   = "season"
	FieldEpisode  = "episode"
	FieldMetadata = "metadata"
)

// MergeOptions tunes the merge rules.
type MergeOptions struct {
	// AlwaysUpdateMetadata refreshes the incoming origin's metadata block even when
	// the incoming record is not newer. It never changes watched/updated.
	AlwaysUpdateMetadata bool
}

// Diff returns the names of the fields that differ between a and b.
// ID is not compared.
func Diff(a, b *Entity) []string {
	var changed []string
	if a.Watched != b.Watched {
		changed = append(changed, FieldWatched)
	}
	if a.Updated != b.Updated {
		changed = append(changed, FieldUpdated)
	}
	if a.Via != b.Via {
		changed = append(changed, FieldVia)
	}
	if a.Title != b.Title {
		changed = append(changed, FieldTitle)
	}
	if a.Year != b.Year {
		changed = append(changed, FieldYear)
	}
	if !a.Identity.Equal(b.Identity) {
		changed = append(changed, FieldIdentity)
	}
	if !a.Parent.Equal(b.Parent) {
		changed = append(changed, FieldParent)
	}
	if a.Season != b.Season {
		changed = append(changed, FieldSeason)
	}
	if a.Episode != b.Episode {
		changed = append(changed, FieldEpisode)
	}
	if !metadataEqual(a.Metadata, b.Metadata) {
		changed = append(changed, FieldMetadata)
	}
	return changed
}

// Merge folds incoming into existing and returns the result as a new entity.
// Neither argument is modified.
func Merge(existing, incoming *Entity, opts MergeOptions) *Entity {
	out := existing.Clone()
	newer := incoming.Updated > existing.Updated

	if newer {
		out.Watched = incoming.Watched
		out.Updated = incoming.Updated
		out.Via = incoming.Via
		if incoming.Title != "" {
			out.Title = incoming.Title
		}
		if incoming.Year > 0 {
			out.Year = incoming.Year
		}
	} else {
		if out.Title == "" {
			out.Title = incoming.Title
		}
		if out.Year == 0 {
			out.Year = incoming.Year
		}
	}

	if newer || opts.AlwaysUpdateMetadata {
		for origin, block := range incoming.Metadata {
			if out.Metadata == nil {
				out.Metadata = make(map[string]Metadata, 1)
			}
			out.Metadata[origin] = block.clone()
		}
	}

	out.Identity = out.Identity.Union(incoming.Identity)
	if out.Type == TypeEpisode {
		out.Parent = out.Parent.Union(incoming.Parent)
	}
	return out
}

// MetadataProjection returns existing with only the non-state fields of merged
// applied: metadata, identity, parent, title and year. Watched, updated and via stay
// as in existing.
func MetadataProjection(existing, merged *Entity) *Entity {
	out := merged.Clone()
	out.ID = existing.ID
	out.Watched = existing.Watched
	out.Updated = existing.Updated
	out.Via = existing.Via
	return out
}

func metadataEqual(a, b map[string]Metadata) bool {
	if len(a) != len(b) {
		return false
	}
	for origin, block := range a {
		other, ok := b[origin]
		if !ok || !block.equal(other) {
			return false
		}
	}
	return true
}
