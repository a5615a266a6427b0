package storage_test

import (
	"context"
	"errors"
	"testing"

	"watchstate/core/storage"
	"watchstate/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name string
		cfg  storage.Config
	}{
		{"Plain", storage.Config{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s"}},
		{"HTTPScheme", storage.Config{Endpoint: "http://localhost:9000", AccessKey: "k", SecretKey: "s"}},
		{"HTTPSScheme", storage.Config{Endpoint: "https://s3.amazonaws.com", UseSSL: true, Region: "us-east-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := storage.NewClient(tt.cfg)
			assert.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestEnsureBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("Exists", func(t *testing.T) {
		c := new(mocks.Client)
		c.On("BucketExists", ctx, "watchstate").Return(true, nil)

		assert.NoError(t, storage.EnsureBucket(ctx, c, "watchstate", ""))
		c.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Creates", func(t *testing.T) {
		c := new(mocks.Client)
		c.On("BucketExists", ctx, "watchstate").Return(false, nil)
		c.On("MakeBucket", ctx, "watchstate", minio.MakeBucketOptions{Region: "eu-west-1"}).Return(nil)

		assert.NoError(t, storage.EnsureBucket(ctx, c, "watchstate", "eu-west-1"))
		c.AssertExpectations(t)
	})

	t.Run("CheckFails", func(t *testing.T) {
		c := new(mocks.Client)
		c.On("BucketExists", ctx, "watchstate").Return(false, errors.New("denied"))

		err := storage.EnsureBucket(ctx, c, "watchstate", "")
		assert.ErrorContains(t, err, "check bucket watchstate")
	})
}
