package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"watchstate/core/reconcile"
	"watchstate/core/storage"
	"watchstate/core/store"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Result describes one written snapshot.
type Result struct {
	Object   string `json:"object"`
	Entities int    `json:"entities"`
	Size     int    `json:"size"`
	Pruned   int    `json:"pruned"`
}

// Service writes and reads snapshots.
type Service struct {
	client storage.Client
	cfg    storage.Config
	reader store.Reader
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new backup service.
func NewService(client storage.Client, cfg storage.Config, reader store.Reader, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		cfg:    cfg,
		reader: reader,
		logger: logger,
		now:    time.Now,
	}
}

// Backup writes a snapshot of every stored entity and prunes old snapshots.
func (s *Service) Backup(ctx context.Context) (*Result, error) {
	entities, err := s.reader.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}

	now := s.now().UTC()
	data, err := json.Marshal(Snapshot{Version: SnapshotVersion, Created: now.Unix(), Entities: entities})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	if err := storage.EnsureBucket(ctx, s.client, s.cfg.Bucket, s.cfg.Region); err != nil {
		return nil, err
	}

	name := s.cfg.Prefix + "watchstate-" + now.Format("20060102T150405Z") + ".json"
	_, err = s.client.PutObject(ctx, s.cfg.Bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("upload snapshot: %w", err)
	}

	res := &Result{Object: name, Entities: len(entities), Size: len(data)}
	s.logger.Info("Snapshot written", zap.String("object", name), zap.Int("entities", res.Entities))

	pruned, err := s.Prune(ctx)
	if err != nil {
		s.logger.Warn("Failed to prune snapshots", zap.Error(err))
	}
	res.Pruned = pruned
	return res, nil
}

// List returns the snapshot object names, oldest first.
func (s *Service) List(ctx context.Context) ([]string, error) {
	var names []string
	for obj := range s.client.ListObjects(ctx, s.cfg.Bucket, minio.ListObjectsOptions{Prefix: s.cfg.Prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list snapshots: %w", obj.Err)
		}
		if strings.HasSuffix(obj.Key, ".json") {
			names = append(names, obj.Key)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Latest returns the newest snapshot name.
func (s *Service) Latest(ctx context.Context) (string, error) {
	names, err := s.List(ctx)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no snapshots in %s/%s", s.cfg.Bucket, s.cfg.Prefix)
	}
	return names[len(names)-1], nil
}

// Prune removes the oldest snapshots beyond the retention count.
func (s *Service) Prune(ctx context.Context) (int, error) {
	if s.cfg.Retain <= 0 {
		return 0, nil
	}
	names, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(names) <= s.cfg.Retain {
		return 0, nil
	}

	stale := names[:len(names)-s.cfg.Retain]
	for i, name := range stale {
		if err := s.client.RemoveObject(ctx, s.cfg.Bucket, name, minio.RemoveObjectOptions{}); err != nil {
			return i, fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return len(stale), nil
}

// Load downloads and decodes one snapshot.
func (s *Service) Load(ctx context.Context, name string) (*Snapshot, error) {
	body, err := s.client.GetObject(ctx, s.cfg.Bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", name, err)
	}
	defer body.Close()
	return Decode(body)
}

// Restore replays a snapshot into st and commits it. Metadata refresh is
// forced so blocks of secondary origins survive the replay.
func (s *Service) Restore(ctx context.Context, name string, st store.Store, opts reconcile.Options) (reconcile.Stats, error) {
	snap, err := s.Load(ctx, name)
	if err != nil {
		return nil, err
	}

	opts.AlwaysUpdateMetadata = true
	opts.MetadataOnly = false
	im, err := reconcile.NewImporter(st, s.logger, opts)
	if err != nil {
		return nil, err
	}
	if err := im.LoadData(ctx); err != nil {
		return nil, err
	}

	for _, e := range snap.Entities {
		for _, o := range Replay(e) {
			im.Add(ctx, o.Name, e.Label(), o.Record)
		}
	}

	s.logger.Info("Snapshot replayed", zap.String("object", name), zap.Int("entities", len(snap.Entities)))
	return im.Commit(ctx)
}
