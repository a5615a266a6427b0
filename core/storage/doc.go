// Package storage wraps the minio client used to keep state snapshots in S3
// compatible object storage.
//
// The Client interface is kept narrow so tests can use the testify mock in
// core/storage/mocks.
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
