package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"tajeryar/internal/models"
	"tajeryar/internal/repository"
	"tajeryar/pkg/objectstore"

	"github.com/google/uuid"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uuid.UUID]*models.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := *user
	f.users[user.ID] = &u
	return nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

type fakeTransactionStore struct {
	txs        map[uuid.UUID]*models.Transaction
	statsCalls int
	lastFilter models.TransactionFilter
}

func newFakeTransactionStore() *fakeTransactionStore {
	return &fakeTransactionStore{txs: map[uuid.UUID]*models.Transaction{}}
}

func (f *fakeTransactionStore) Create(_ context.Context, tx *models.Transaction) error {
	c := *tx
	f.txs[tx.ID] = &c
	return nil
}

func (f *fakeTransactionStore) FindByID(_ context.Context, userID, id uuid.UUID) (*models.Transaction, error) {
	tx, ok := f.txs[id]
	if !ok || tx.UserID != userID {
		return nil, repository.ErrNotFound
	}
	c := *tx
	return &c, nil
}

func (f *fakeTransactionStore) FindAll(_ context.Context, filter models.TransactionFilter) ([]*models.Transaction, error) {
	f.lastFilter = filter
	out := []*models.Transaction{}
	for _, tx := range f.txs {
		if tx.UserID == filter.UserID {
			c := *tx
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeTransactionStore) Update(_ context.Context, userID, id uuid.UUID, patch *models.TransactionPatch, updatedAt time.Time) (*models.Transaction, error) {
	tx, ok := f.txs[id]
	if !ok || tx.UserID != userID {
		return nil, repository.ErrNotFound
	}
	patch.Apply(tx)
	tx.UpdatedAt = updatedAt
	c := *tx
	return &c, nil
}

func (f *fakeTransactionStore) Delete(_ context.Context, userID, id uuid.UUID) (bool, error) {
	tx, ok := f.txs[id]
	if !ok || tx.UserID != userID {
		return false, nil
	}
	delete(f.txs, id)
	return true, nil
}

func (f *fakeTransactionStore) GetStats(_ context.Context, userID uuid.UUID) (*models.TransactionStats, error) {
	f.statsCalls++
	stats := &models.TransactionStats{}
	for _, tx := range f.txs {
		if tx.UserID != userID {
			continue
		}
		stats.Total++
		if tx.Type == models.TransactionTypeBuy {
			stats.TotalBuyAmount += tx.TotalAmount
		} else {
			stats.TotalSellAmount += tx.TotalAmount
		}
	}
	return stats, nil
}

type memoryStatsCache struct {
	entries     map[uuid.UUID]*models.TransactionStats
	invalidated int
}

func newMemoryStatsCache() *memoryStatsCache {
	return &memoryStatsCache{entries: map[uuid.UUID]*models.TransactionStats{}}
}

func (c *memoryStatsCache) Get(_ context.Context, userID uuid.UUID) (*models.TransactionStats, bool) {
	s, ok := c.entries[userID]
	return s, ok
}

func (c *memoryStatsCache) Set(_ context.Context, userID uuid.UUID, stats *models.TransactionStats) {
	c.entries[userID] = stats
}

func (c *memoryStatsCache) Invalidate(_ context.Context, userID uuid.UUID) {
	c.invalidated++
	delete(c.entries, userID)
}

type fakeObjectStore struct {
	objects   map[string][]byte
	meta      map[string]string
	deleted   []string
	deleteErr error
	lastTTL   time.Duration
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}, meta: map[string]string{}}
}

func (f *fakeObjectStore) Bucket() string { return "file" }

func (f *fakeObjectStore) Put(_ context.Context, name string, data []byte, contentType, originalName string) error {
	f.objects[name] = data
	f.meta[name] = contentType + "|" + originalName
	return nil
}

func (f *fakeObjectStore) PresignedURL(_ context.Context, name string, ttl time.Duration) (string, error) {
	f.lastTTL = ttl
	return "https://minio.local/file/" + name + "?sig=1", nil
}

func (f *fakeObjectStore) Delete(_ context.Context, name string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, name)
	delete(f.objects, name)
	return nil
}

func (f *fakeObjectStore) List(_ context.Context, prefix string, maxKeys int) (*objectstore.Listing, error) {
	if maxKeys <= 0 {
		return nil, errors.New("maxKeys must be positive")
	}
	listing := &objectstore.Listing{Bucket: "file", Prefix: prefix, Objects: []objectstore.Object{}}
	for name, data := range f.objects {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if len(listing.Objects) == maxKeys {
			listing.Truncated = true
			break
		}
		listing.Objects = append(listing.Objects, objectstore.Object{Name: name, Size: int64(len(data))})
	}
	listing.Count = len(listing.Objects)
	return listing, nil
}
