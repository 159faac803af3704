package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tajeryar/internal/extraction"
	"tajeryar/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type scriptedExtractor struct {
	calls  []string
	errFor map[string]error
}

func (e *scriptedExtractor) Extract(_ context.Context, transcript string) (*extraction.Result, error) {
	e.calls = append(e.calls, transcript)
	if err, ok := e.errFor[transcript]; ok {
		return nil, err
	}
	return &extraction.Result{Transaction: &models.Transaction{
		ID:        uuid.New(),
		Type:      models.TransactionTypeBuy,
		CreatedAt: time.Now(),
	}}, nil
}

type memoryRepo struct {
	created []*models.Transaction
}

func (r *memoryRepo) Create(_ context.Context, tx *models.Transaction) error {
	r.created = append(r.created, tx)
	return nil
}

func writeTranscript(t *testing.T, dir, name, text string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(text), 0644))
}

func TestSeedTranscripts_SkipsUnchangedFiles(t *testing.T) {
	dir := t.TempDir()
	cacheFile := filepath.Join(dir, "cache.json")
	writeTranscript(t, dir, "a.txt", "ده کیلو برنج خریدم")
	writeTranscript(t, dir, "b.txt", "  \n")
	writeTranscript(t, dir, "notes.md", "ignored")

	extractor := &scriptedExtractor{errFor: map[string]error{
		"": &extraction.Error{Kind: extraction.KindEmptyInput},
	}}
	repo := &memoryRepo{}
	userID := uuid.New()
	logger := zaptest.NewLogger(t)

	n, err := seedTranscripts(context.Background(), dir, cacheFile, extractor, repo, userID, logger)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, repo.created, 1)
	assert.Equal(t, userID, repo.created[0].UserID)
	assert.Equal(t, repo.created[0].CreatedAt, repo.created[0].UpdatedAt)
	assert.Len(t, extractor.calls, 2)

	n, err = seedTranscripts(context.Background(), dir, cacheFile, extractor, repo, userID, logger)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, extractor.calls, 2)

	writeTranscript(t, dir, "a.txt", "دو بسته چای فروختم")
	n, err = seedTranscripts(context.Background(), dir, cacheFile, extractor, repo, userID, logger)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSeedTranscripts_RetriesUpstreamFailures(t *testing.T) {
	dir := t.TempDir()
	cacheFile := filepath.Join(dir, "cache.json")
	writeTranscript(t, dir, "a.txt", "x")

	extractor := &scriptedExtractor{errFor: map[string]error{
		"x": &extraction.Error{Kind: extraction.KindUpstreamFailure, Err: context.DeadlineExceeded},
	}}
	repo := &memoryRepo{}
	logger := zaptest.NewLogger(t)

	_, err := seedTranscripts(context.Background(), dir, cacheFile, extractor, repo, uuid.New(), logger)
	require.NoError(t, err)
	_, err = seedTranscripts(context.Background(), dir, cacheFile, extractor, repo, uuid.New(), logger)
	require.NoError(t, err)

	assert.Len(t, extractor.calls, 2)
	assert.Empty(t, repo.created)
}

func TestLoadCache_Missing(t *testing.T) {
	cache, err := loadCache(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.Empty(t, cache.ProcessedFiles)
}
