package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tajeryar/internal/models"
	"tajeryar/internal/repository"
	"tajeryar/pkg/objectstore"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// newTestApp mounts routes behind a stub that authenticates every request as userID.
func newTestApp(userID uuid.UUID, mount func(app *fiber.App)) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID.String())
		return c.Next()
	})
	mount(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func doMultipart(t *testing.T, app *fiber.App, path, field, fileName string, content []byte, fields map[string]string) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		part, err := w.CreateFormFile(field, fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) == 0 || resp.Header.Get("Content-Type") != fiber.MIMEApplicationJSON {
		return nil
	}
	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	return body
}

type memoryTransactions struct {
	txs map[uuid.UUID]*models.Transaction
}

func newMemoryTransactions() *memoryTransactions {
	return &memoryTransactions{txs: map[uuid.UUID]*models.Transaction{}}
}

func (m *memoryTransactions) Create(_ context.Context, tx *models.Transaction) error {
	c := *tx
	m.txs[tx.ID] = &c
	return nil
}

func (m *memoryTransactions) FindByID(_ context.Context, userID, id uuid.UUID) (*models.Transaction, error) {
	tx, ok := m.txs[id]
	if !ok || tx.UserID != userID {
		return nil, repository.ErrNotFound
	}
	c := *tx
	return &c, nil
}

func (m *memoryTransactions) FindAll(_ context.Context, filter models.TransactionFilter) ([]*models.Transaction, error) {
	out := []*models.Transaction{}
	for _, tx := range m.txs {
		if tx.UserID == filter.UserID && (filter.Status == "" || tx.Status == filter.Status) {
			c := *tx
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memoryTransactions) Update(_ context.Context, userID, id uuid.UUID, patch *models.TransactionPatch, updatedAt time.Time) (*models.Transaction, error) {
	tx, ok := m.txs[id]
	if !ok || tx.UserID != userID {
		return nil, repository.ErrNotFound
	}
	patch.Apply(tx)
	tx.UpdatedAt = updatedAt
	c := *tx
	return &c, nil
}

func (m *memoryTransactions) Delete(_ context.Context, userID, id uuid.UUID) (bool, error) {
	tx, ok := m.txs[id]
	if !ok || tx.UserID != userID {
		return false, nil
	}
	delete(m.txs, id)
	return true, nil
}

func (m *memoryTransactions) GetStats(_ context.Context, userID uuid.UUID) (*models.TransactionStats, error) {
	stats := &models.TransactionStats{}
	for _, tx := range m.txs {
		if tx.UserID == userID {
			stats.Total++
		}
	}
	return stats, nil
}

type memoryObjects struct {
	objects map[string][]byte
}

func newMemoryObjects() *memoryObjects {
	return &memoryObjects{objects: map[string][]byte{}}
}

func (m *memoryObjects) Bucket() string { return "file" }

func (m *memoryObjects) Put(_ context.Context, name string, data []byte, _, _ string) error {
	m.objects[name] = data
	return nil
}

func (m *memoryObjects) PresignedURL(_ context.Context, name string, _ time.Duration) (string, error) {
	return "https://minio.local/file/" + name, nil
}

func (m *memoryObjects) Delete(_ context.Context, name string) error {
	delete(m.objects, name)
	return nil
}

func (m *memoryObjects) List(_ context.Context, prefix string, _ int) (*objectstore.Listing, error) {
	listing := &objectstore.Listing{Bucket: "file", Prefix: prefix, Objects: []objectstore.Object{}}
	for name := range m.objects {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		listing.Objects = append(listing.Objects, objectstore.Object{Name: name})
	}
	listing.Count = len(listing.Objects)
	return listing, nil
}
