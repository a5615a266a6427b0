package backend

import (
	"context"

	"watchstate/core/entity"
	"watchstate/core/reconcile"
)

// Item is one record reported by a backend, with the label used in logs and
// push descriptors.
type Item struct {
	Label  string        `json:"label"`
	Record entity.Record `json:"record"`
	// Tainted marks low-confidence updates such as webhook events.
	Tainted bool `json:"tainted,omitempty"`
}

// Backend is a media server the engine can pull from and push to.
type Backend interface {
	// Name is the origin key used for via and metadata blocks.
	Name() string
	// Pull returns every item changed since the given epoch. Zero means everything.
	Pull(ctx context.Context, since int64) ([]Item, error)
	// Push sets the watched state described by d.
	Push(ctx context.Context, d reconcile.Descriptor) error
	// ParseEvent turns a webhook payload into an item. A nil item means the
	// event carries no play state.
	ParseEvent(ctx context.Context, payload []byte) (*Item, error)
}
