package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"watchstate/core/reconcile"
)

// File is a Backend over JSON exports: Pull reads a JSON array of items and
// Push writes one JSON descriptor per line to the sink.
type File struct {
	name string
	path string

	mu   sync.Mutex
	sink io.Writer
}

// NewFile returns a file backend reading items from path. sink may be nil
// when the backend is only pulled from.
func NewFile(name, path string, sink io.Writer) *File {
	return &File{name: name, path: path, sink: sink}
}

// Name implements Backend.
func (f *File) Name() string {
	return f.name
}

// Pull implements Backend. Items older than since are returned too; the caller filters.
func (f *File) Pull(ctx context.Context, since int64) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.path, err)
	}
	defer fh.Close()

	var items []Item
	if err := json.NewDecoder(fh).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return items, nil
}

// Push implements Backend.
func (f *File) Push(ctx context.Context, d reconcile.Descriptor) error {
	if f.sink == nil {
		return fmt.Errorf("backend %s is read only", f.name)
	}
	line, err := json.Marshal(d)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	_, err = f.sink.Write(append(line, '\n'))
	return err
}

// ParseEvent implements Backend. The payload is one item; events are always tainted.
func (f *File) ParseEvent(ctx context.Context, payload []byte) (*Item, error) {
	var item Item
	if err := json.Unmarshal(payload, &item); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	if item.Record.Type == "" {
		return nil, nil
	}
	item.Tainted = true
	return &item, nil
}
