// Package entity defines the canonical, vendor-neutral watch state record.
//
// Backend adapters produce Records. FromRecord validates a record and resolves its
// identifiers into an Entity, the merged form kept by the store. Merge applies the
// conflict rules used by imports:
//
//   - a strictly newer Updated wins watched/updated/via and refreshes metadata;
//   - an older or equal Updated leaves watched/updated untouched, and refreshes the
//     origin's metadata only when AlwaysUpdateMetadata is set;
//   - metadata is kept per origin: a merge replaces only the incoming origin's block;
//   - identity sets are unioned, never narrowed.
package entity
