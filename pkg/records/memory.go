package records

import (
	"context"
	"sync"
	"time"

	"adminpanel/models"
)

// MemoryStore is an insertion-ordered in-process store. It backs the
// RECORD_STORE=memory mode and the handler tests.
type MemoryStore struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]models.Record
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: map[string]models.Record{}, now: time.Now}
}

func (s *MemoryStore) ListAll(ctx context.Context) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Record, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out, nil
}

func (s *MemoryStore) Create(ctx context.Context, f Fields) (models.Record, error) {
	if err := f.Validate(); err != nil {
		return models.Record{}, err
	}
	now := s.now()
	rec := models.Record{ID: models.NewRecordID(), CreatedAt: now, UpdatedAt: now}
	f.Apply(&rec)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[rec.ID] = rec
	s.order = append(s.order, rec.ID)
	return rec, nil
}

func (s *MemoryStore) UpdateByID(ctx context.Context, id string, f Fields) (models.Record, error) {
	if err := f.Validate(); err != nil {
		return models.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	if !ok {
		return models.Record{}, ErrNotFound
	}
	f.Apply(&rec)
	rec.UpdatedAt = s.now()
	s.byID[id] = rec
	return rec, nil
}

func (s *MemoryStore) DeleteByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return nil
	}
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
