package mocks

import (
	"context"

	"watchstate/core/backend"
	"watchstate/core/reconcile"

	"github.com/stretchr/testify/mock"
)

// Backend is a mock implementation of backend.Backend
type Backend struct {
	mock.Mock
	BackendName string
}

func (m *Backend) Name() string {
	return m.BackendName
}

func (m *Backend) Pull(ctx context.Context, since int64) ([]backend.Item, error) {
	args := m.Called(ctx, since)
	if items, ok := args.Get(0).([]backend.Item); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) Push(ctx context.Context, d reconcile.Descriptor) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *Backend) ParseEvent(ctx context.Context, payload []byte) (*backend.Item, error) {
	args := m.Called(ctx, payload)
	if item, ok := args.Get(0).(*backend.Item); ok {
		return item, args.Error(1)
	}
	return nil, args.Error(1)
}
