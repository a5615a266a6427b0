package history

import (
	"context"
	"errors"
	"fmt"

	"watchstate/core/entity"
	"watchstate/core/identity"
	"watchstate/core/store"

	"go.uber.org/zap"
)

// ErrBadQuery is returned for unusable lookup input.
var ErrBadQuery = errors.New("bad query")

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Type    entity.Type
	Watched *bool
	Via     string
	Limit   int
}

// Service reads entities from the store.
type Service struct {
	reader store.Reader
	logger *zap.Logger
}

// NewService creates a new history service.
func NewService(reader store.Reader, logger *zap.Logger) *Service {
	return &Service{reader: reader, logger: logger}
}

// Lookup returns the entity addressable by raw. With an empty type movies are
// searched before episodes.
func (s *Service) Lookup(ctx context.Context, raw string, t entity.Type) (*entity.Entity, error) {
	ptr, err := identity.ParsePointer(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadQuery, err)
	}

	types := entity.Types
	if t != "" {
		if !t.Valid() {
			return nil, fmt.Errorf("%w: unknown type %q", ErrBadQuery, t)
		}
		types = []entity.Type{t}
	}

	for _, typ := range types {
		e, err := s.reader.FindByPointers(ctx, typ, []identity.Pointer{ptr})
		if err != nil {
			return nil, err
		}
		if e != nil {
			return e, nil
		}
	}
	return nil, store.ErrNotFound
}

// Get returns one entity by id.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Entity, error) {
	return s.reader.Get(ctx, id)
}

// List returns the entities matching f ordered by id.
func (s *Service) List(ctx context.Context, f Filter) ([]*entity.Entity, error) {
	all, err := s.reader.All(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*entity.Entity, 0, len(all))
	for _, e := range all {
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		if f.Watched != nil && e.Watched != *f.Watched {
			continue
		}
		if f.Via != "" && e.Via != f.Via {
			continue
		}
		out = append(out, e)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}
