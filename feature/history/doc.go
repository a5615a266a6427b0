// Package history exposes the reconciled watch state over HTTP, read only.
//
// Routes:
//
//	GET /history                    list entities, filtered by type and watched
//	GET /history/lookup?pointer=    find the entity claiming a pointer
//	GET /history/:id                one entity by store id
package history
