package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"

	"watchstate/core/entity"
	"watchstate/core/identity"
	"watchstate/core/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportStore(t *testing.T) *store.Memory {
	t.Helper()
	return store.NewReadOnly(
		stored(entity.TypeMovie, "tt1", true, 1000),
		stored(entity.TypeMovie, "tt2", false, 1000),
	)
}

func TestExporter_Evaluate(t *testing.T) {
	tests := []struct {
		name   string
		opts   ExportOptions
		record entity.Record
		action Action
		err    error
	}{
		{"no local match", ExportOptions{}, movie("tt9", 0, 10), ActionSkip, ErrNoLocalMatch},
		{"equal state", ExportOptions{}, movie("tt1", 1, 10), ActionSkip, ErrConflictSkip},
		{"backend newer", ExportOptions{}, movie("tt1", 0, 2000), ActionSkip, ErrConflictSkip},
		{"backend tied", ExportOptions{}, movie("tt1", 0, 1000), ActionSkip, ErrConflictSkip},
		{"backend stale", ExportOptions{}, movie("tt1", 0, 999), ActionQueue, nil},
		{"ignore date", ExportOptions{IgnoreDate: true}, movie("tt1", 0, 2000), ActionQueue, nil},
		{"invalid record", ExportOptions{}, entity.Record{Type: entity.TypeMovie, Updated: 1}, ActionFail, entity.ErrValidation},
	}

	for _, preload := range []bool{false, true} {
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				ex := NewExporter(exportStore(t), nil, tt.opts)
				if preload {
					require.NoError(t, ex.LoadData(context.Background()))
				}

				d := ex.Evaluate(context.Background(), "plex", "Foo", tt.record)
				assert.Equal(t, tt.action, d.Action)
				if tt.err != nil {
					assert.ErrorIs(t, d.Err, tt.err)
				} else {
					assert.NoError(t, d.Err)
				}
			})
		}
	}
}

func TestExporter_QueueAndDrain(t *testing.T) {
	ctx := context.Background()
	ex := NewExporter(exportStore(t), nil, ExportOptions{IgnoreDate: true})

	d := ex.Evaluate(ctx, "plex", "One", movie("tt1", 0, 1))
	require.Equal(t, ActionQueue, d.Action)
	assert.Equal(t, Descriptor{Backend: "plex", Label: "One", Type: entity.TypeMovie, EntityID: 1, Watched: true}, *d.Descriptor)

	ex.Evaluate(ctx, "plex", "Two", movie("tt2", 1, 1))
	ex.Evaluate(ctx, "plex", "Three", movie("tt9", 1, 1))

	assert.Len(t, ex.Queue(), 2)
	drained := ex.Drain()
	require.Len(t, drained, 2)
	assert.Equal(t, "One", drained[0].Label)
	assert.Equal(t, "Two", drained[1].Label)
	assert.False(t, drained[1].Watched)
	assert.Empty(t, ex.Drain())

	stats := ex.Stats().Get(entity.TypeMovie)
	assert.Equal(t, ExportCounts{Queued: 2, Skipped: 1}, stats)
}

func TestExporter_Report(t *testing.T) {
	ex := NewExporter(exportStore(t), nil, ExportOptions{})
	d := Descriptor{Backend: "plex", Label: "x", Type: entity.TypeMovie}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				ex.Report(d, errors.New("timeout"))
				return
			}
			ex.Report(d, nil)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, ExportCounts{Pushed: 5, Failed: 5}, ex.Stats().Get(entity.TypeMovie))
}

func TestExporter_EpisodeThroughParent(t *testing.T) {
	ctx := context.Background()
	ro := store.NewReadOnly(&entity.Entity{
		Type:     entity.TypeEpisode,
		Watched:  true,
		Updated:  500,
		Identity: identity.Set{},
		Parent:   identity.Set{identity.NSTvdb: "81189"},
		Season:   1,
		Episode:  2,
	})
	ex := NewExporter(ro, nil, ExportOptions{})

	d := ex.Evaluate(ctx, "jf", "S01E02", episode(81189, 1, 2, 0, 100))
	assert.Equal(t, ActionQueue, d.Action)

	d = ex.Evaluate(ctx, "jf", "S01E03", episode(81189, 1, 3, 0, 100))
	assert.ErrorIs(t, d.Err, ErrNoLocalMatch)
}

func TestExporter_StoreFailureIsolated(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ex := NewExporter(exportStore(t), nil, ExportOptions{})
	d := ex.Evaluate(ctx, "plex", "x", movie("tt1", 0, 1))
	assert.Equal(t, ActionFail, d.Action)
	assert.ErrorIs(t, d.Err, context.Canceled)
	assert.Equal(t, 1, ex.Stats().Get(entity.TypeMovie).Failed)
}

func TestExporter_LoadDataFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewExporter(exportStore(t), nil, ExportOptions{}).LoadData(ctx)
	var fatal *FatalError
	assert.True(t, errors.As(err, &fatal))
}
