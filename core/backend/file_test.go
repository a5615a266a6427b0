package backend_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"watchstate/core/backend"
	"watchstate/core/entity"
	"watchstate/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_Pull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plex.json")
	payload := `[{"label":"Heat","record":{"type":"movie","updated":100,"watched":1,"guids":{"imdb":"tt0113277"}}}]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	items, err := backend.NewFile("plex", path, nil).Pull(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Heat", items[0].Label)
	assert.Equal(t, entity.TypeMovie, items[0].Record.Type)
	assert.Equal(t, 1, items[0].Record.Watched)
}

func TestFile_PullMissing(t *testing.T) {
	_, err := backend.NewFile("plex", filepath.Join(t.TempDir(), "nope.json"), nil).Pull(context.Background(), 0)
	assert.Error(t, err)
}

func TestFile_Push(t *testing.T) {
	var buf bytes.Buffer
	f := backend.NewFile("emby", "", &buf)

	require.NoError(t, f.Push(context.Background(), reconcile.Descriptor{Backend: "emby", Label: "a", Watched: true}))
	require.NoError(t, f.Push(context.Background(), reconcile.Descriptor{Backend: "emby", Label: "b"}))

	var labels []string
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var d reconcile.Descriptor
		require.NoError(t, json.Unmarshal(sc.Bytes(), &d))
		labels = append(labels, d.Label)
	}
	assert.Equal(t, []string{"a", "b"}, labels)

	assert.Error(t, backend.NewFile("ro", "", nil).Push(context.Background(), reconcile.Descriptor{}))
}

func TestFile_ParseEvent(t *testing.T) {
	f := backend.NewFile("plex", "", nil)

	item, err := f.ParseEvent(context.Background(), []byte(`{"label":"x","record":{"type":"movie","updated":5,"guids":{"tmdb":1}}}`))
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.True(t, item.Tainted)

	item, err = f.ParseEvent(context.Background(), []byte(`{"label":"ping"}`))
	require.NoError(t, err)
	assert.Nil(t, item)

	_, err = f.ParseEvent(context.Background(), []byte(`{`))
	assert.Error(t, err)
}
