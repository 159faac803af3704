// Package objectstore stores blobs (recorded audio, receipt photos) in an
// S3-compatible bucket.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"tajeryar/pkg/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

var ErrBucketNotFound = errors.New("bucket not found")

type Object struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	ETag         string    `json:"etag"`
	ContentType  string    `json:"contentType"`
	OriginalName string    `json:"originalName"`
	UploadDate   string    `json:"uploadDate,omitempty"`
}

type Listing struct {
	Bucket    string   `json:"bucket"`
	Prefix    string   `json:"prefix"`
	Objects   []Object `json:"objects"`
	Count     int      `json:"count"`
	Truncated bool     `json:"truncated"`
}

type Store struct {
	client *minio.Client
	bucket string
	region string
	logger *zap.Logger
}

func New(cfg *config.StorageConfig, logger *zap.Logger) (*Store, error) {
	endpoint := cfg.Endpoint
	if cfg.Port > 0 {
		endpoint = fmt.Sprintf("%s:%d", cfg.Endpoint, cfg.Port)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	logger.Info("Object storage configured",
		zap.String("endpoint", endpoint),
		zap.String("bucket", cfg.Bucket),
	)

	return &Store{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		logger: logger,
	}, nil
}

func (s *Store) Bucket() string {
	return s.bucket
}

// Put uploads data under name, creating the bucket on first use. The upload
// time and the client-side file name are kept as user metadata.
func (s *Store) Put(ctx context.Context, name string, data []byte, contentType, originalName string) error {
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}

	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"Upload-Date":   time.Now().UTC().Format(time.RFC3339),
			"Original-Name": url.QueryEscape(originalName),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", name, err)
	}

	s.logger.Info("Object stored", zap.String("object", name), zap.Int("size", len(data)))
	return nil
}

func (s *Store) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	s.logger.Info("Bucket created", zap.String("bucket", s.bucket))
	return nil
}

// PresignedURL returns a temporary read link for name.
func (s *Store) PresignedURL(ctx context.Context, name string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, name, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", name, err)
	}
	return u.String(), nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}

// List returns up to maxKeys objects directly under prefix, with their stored metadata.
func (s *Store) List(ctx context.Context, prefix string, maxKeys int) (*Listing, error) {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return nil, ErrBucketNotFound
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	listing := &Listing{Bucket: s.bucket, Prefix: prefix, Objects: []Object{}}
	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, WithMetadata: true}) {
		if info.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", info.Err)
		}
		if len(listing.Objects) >= maxKeys {
			listing.Truncated = true
			break
		}
		listing.Objects = append(listing.Objects, toObject(info))
	}
	listing.Count = len(listing.Objects)
	return listing, nil
}

func toObject(info minio.ObjectInfo) Object {
	obj := Object{
		Name:         info.Key,
		Size:         info.Size,
		LastModified: info.LastModified,
		ETag:         info.ETag,
		ContentType:  info.ContentType,
		OriginalName: info.Key,
	}
	if obj.ContentType == "" {
		obj.ContentType = "unknown"
	}
	for k, v := range info.UserMetadata {
		switch strings.TrimPrefix(strings.ToLower(k), "x-amz-meta-") {
		case "original-name":
			if name, err := url.QueryUnescape(v); err == nil {
				obj.OriginalName = name
			}
		case "upload-date":
			obj.UploadDate = v
		case "content-type":
			obj.ContentType = v
		}
	}
	return obj
}
