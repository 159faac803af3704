package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"tajeryar/internal/dto"
	"tajeryar/pkg/objectstore"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultUploadPath   = "transactions"
	DefaultListMaxKeys  = 1000
	defaultMaxFileBytes = 25 << 20

	// MaxPresignTTL is the longest link S3 signature v4 allows.
	MaxPresignTTL = 7 * 24 * time.Hour
)

var (
	ErrEmptyFile     = errors.New("file is empty")
	ErrFileTooLarge  = errors.New("file is too large")
	ErrInvalidObject = errors.New("invalid object name")
	ErrForeignObject = errors.New("object belongs to another user")
)

type ObjectStore interface {
	Bucket() string
	Put(ctx context.Context, name string, data []byte, contentType, originalName string) error
	PresignedURL(ctx context.Context, name string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context, prefix string, maxKeys int) (*objectstore.Listing, error)
}

// FileService stores uploaded audio and receipts in object storage.
type FileService struct {
	store     ObjectStore
	readTTL   time.Duration
	uploadTTL time.Duration
	maxBytes  int64
	logger    *zap.Logger
}

func NewFileService(store ObjectStore, readTTL, uploadTTL time.Duration, logger *zap.Logger) *FileService {
	return &FileService{
		store:     store,
		readTTL:   readTTL,
		uploadTTL: uploadTTL,
		maxBytes:  defaultMaxFileBytes,
		logger:    logger,
	}
}

// Upload stores file as {userID}/{path}/{uuid}{ext} and returns a long-lived
// link to it.
func (s *FileService) Upload(ctx context.Context, userID uuid.UUID, file io.Reader, fileName, contentType, path string) (*dto.UploadResponse, error) {
	data, err := io.ReadAll(io.LimitReader(file, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	path = strings.Trim(path, "/")
	if path == "" {
		path = DefaultUploadPath
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	objectName := objectPrefix(userID) + path + "/" + uuid.New().String() + strings.ToLower(filepath.Ext(fileName))

	if err := s.store.Put(ctx, objectName, data, contentType, fileName); err != nil {
		return nil, err
	}

	url, err := s.store.PresignedURL(ctx, objectName, s.uploadTTL)
	if err != nil {
		return nil, err
	}

	return &dto.UploadResponse{
		Bucket:       s.store.Bucket(),
		ObjectName:   objectName,
		OriginalName: fileName,
		Size:         int64(len(data)),
		ContentType:  contentType,
		PresignedURL: url,
		UploadDate:   time.Now().UTC(),
	}, nil
}

// Presign returns a read link; expirySeconds of zero means the default read TTL.
// Longer expiries are cut to MaxPresignTTL.
func (s *FileService) Presign(ctx context.Context, userID uuid.UUID, objectName string, expirySeconds int) (*dto.PresignResponse, error) {
	if err := checkObjectOwner(userID, objectName); err != nil {
		return nil, err
	}

	ttl := s.readTTL
	if expirySeconds > 0 {
		ttl = time.Duration(expirySeconds) * time.Second
	}
	ttl = min(ttl, MaxPresignTTL)

	url, err := s.store.PresignedURL(ctx, objectName, ttl)
	if err != nil {
		return nil, err
	}

	return &dto.PresignResponse{
		PresignedURL:  url,
		Bucket:        s.store.Bucket(),
		ObjectName:    objectName,
		ExpirySeconds: int(ttl / time.Second),
		ExpiresAt:     time.Now().UTC().Add(ttl),
	}, nil
}

func (s *FileService) Delete(ctx context.Context, userID uuid.UUID, objectName string) (*dto.DeleteResponse, error) {
	if err := checkObjectOwner(userID, objectName); err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, objectName); err != nil {
		return nil, err
	}

	s.logger.Info("Object deleted", zap.String("object", objectName))
	return &dto.DeleteResponse{
		Bucket:     s.store.Bucket(),
		ObjectName: objectName,
		DeletedAt:  time.Now().UTC(),
	}, nil
}

// List looks only inside the user's folder; prefix is relative to it.
func (s *FileService) List(ctx context.Context, userID uuid.UUID, prefix string, maxKeys int) (*objectstore.Listing, error) {
	if maxKeys <= 0 {
		maxKeys = DefaultListMaxKeys
	}
	return s.store.List(ctx, objectPrefix(userID)+strings.TrimLeft(prefix, "/"), maxKeys)
}

func objectPrefix(userID uuid.UUID) string {
	return userID.String() + "/"
}

// checkObjectOwner accepts only well-formed names inside the user's folder.
func checkObjectOwner(userID uuid.UUID, name string) error {
	if err := checkObjectName(name); err != nil {
		return err
	}
	if !strings.HasPrefix(name, objectPrefix(userID)) {
		return ErrForeignObject
	}
	return nil
}

func checkObjectName(name string) error {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "..") {
		return ErrInvalidObject
	}
	return nil
}
