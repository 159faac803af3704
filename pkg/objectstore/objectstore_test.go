package objectstore

import (
	"context"
	"net/url"
	"testing"
	"time"

	"tajeryar/pkg/config"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestPresignedURL(t *testing.T) {
	store, err := New(&config.StorageConfig{
		Endpoint:  "localhost",
		Port:      9000,
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "file",
		Region:    "us-east-1",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	raw, err := store.PresignedURL(context.Background(), "transactions/a.webm", 24*time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "http", u.Scheme)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/file/transactions/a.webm", u.Path)
	assert.Equal(t, "86400", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestToObject(t *testing.T) {
	modified := time.Date(2025, 10, 8, 10, 0, 0, 0, time.UTC)
	obj := toObject(minio.ObjectInfo{
		Key:          "transactions/1.webm",
		Size:         2048,
		LastModified: modified,
		ETag:         "abc",
		UserMetadata: minio.StringMap{
			"X-Amz-Meta-Original-Name": url.QueryEscape("صدا ۱.webm"),
			"X-Amz-Meta-Upload-Date":   "2025-10-08T10:00:00Z",
			"Content-Type":             "audio/webm",
		},
	})

	assert.Equal(t, "transactions/1.webm", obj.Name)
	assert.Equal(t, "صدا ۱.webm", obj.OriginalName)
	assert.Equal(t, "2025-10-08T10:00:00Z", obj.UploadDate)
	assert.Equal(t, "audio/webm", obj.ContentType)
	assert.Equal(t, modified, obj.LastModified)
}

func TestToObject_NoMetadata(t *testing.T) {
	obj := toObject(minio.ObjectInfo{Key: "a.bin"})
	assert.Equal(t, "a.bin", obj.OriginalName)
	assert.Equal(t, "unknown", obj.ContentType)
}
