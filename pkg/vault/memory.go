package vault

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"sync"
	"time"

	"adminpanel/models"
)

// MemoryStorage keeps objects in process. Used in memory mode and tests.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string][]byte
	base    string
}

func NewMemoryStorage(publicBase string) *MemoryStorage {
	return &MemoryStorage{objects: map[string][]byte{}, base: publicBase}
}

func (m *MemoryStorage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.objects[key] = b
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	b, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *MemoryStorage) PublicURL(key string) string {
	return m.base + "/" + url.PathEscape(key)
}

// Keys lists stored keys.
func (m *MemoryStorage) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MemoryMeta is an in-process metadata table that announces every insert on
// its LocalFeed, like the database trigger does for the real table.
type MemoryMeta struct {
	mu     sync.RWMutex
	rows   []models.FileMeta
	nextID uint
	feed   *LocalFeed
	now    func() time.Time
}

func NewMemoryMeta(feed *LocalFeed) *MemoryMeta {
	return &MemoryMeta{feed: feed, now: time.Now}
}

func (m *MemoryMeta) List(ctx context.Context) ([]models.FileMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.FileMeta, len(m.rows))
	copy(out, m.rows)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryMeta) Insert(ctx context.Context, f *models.FileMeta) error {
	m.mu.Lock()
	m.nextID++
	f.ID = m.nextID
	if f.CreatedAt.IsZero() {
		f.CreatedAt = m.now()
	}
	m.rows = append(m.rows, *f)
	m.mu.Unlock()
	if m.feed != nil {
		m.feed.Notify()
	}
	return nil
}

func (m *MemoryMeta) Get(ctx context.Context, id uint) (models.FileMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return models.FileMeta{}, ErrFileNotFound
}
