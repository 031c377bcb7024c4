package repository

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"github.com/okian/racecard/internal/domain/model"
	"github.com/okian/racecard/pkg/metrics"
)

const defaultCapacity = 10_000

// MemoryStore is a bounded in-memory Store. When full, the card saved
// longest ago is evicted. Replacing a card does not refresh its position.
type MemoryStore struct {
	mu       sync.RWMutex
	byID     map[string]*list.Element
	order    *list.List // of model.CardAnalysis, oldest first
	capacity int        // <= 0 means unbounded
	onEvict  func(id string)
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(s)
	}
	s.byID = make(map[string]*list.Element)
	s.order = list.New()
	return s
}

// Save stores a copy of a.
func (s *MemoryStore) Save(_ context.Context, a model.CardAnalysis) error {
	if a.ID == "" {
		metrics.RecordErrorByComponent("repository", "invalid_id")
		return ErrInvalidID
	}
	a = a.Clone()

	s.mu.Lock()
	if el, ok := s.byID[a.ID]; ok {
		el.Value = a
		s.mu.Unlock()
		return nil
	}
	evicted := ""
	if s.capacity > 0 && s.order.Len() >= s.capacity {
		oldest := s.order.Front()
		s.order.Remove(oldest)
		evicted = oldest.Value.(model.CardAnalysis).ID
		delete(s.byID, evicted)
		metrics.RecordStoreEviction()
	}
	s.byID[a.ID] = s.order.PushBack(a)
	n := s.order.Len()
	s.mu.Unlock()

	if evicted != "" && s.onEvict != nil {
		s.onEvict(evicted)
	}
	metrics.UpdateCardsStored(n)
	return nil
}

// Get returns a copy of the stored analysis.
func (s *MemoryStore) Get(_ context.Context, id string) (model.CardAnalysis, error) {
	s.mu.RLock()
	el, ok := s.byID[id]
	var a model.CardAnalysis
	if ok {
		a = el.Value.(model.CardAnalysis).Clone()
	}
	s.mu.RUnlock()

	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.CardAnalysis{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return a, nil
}

// Count returns the number of stored cards.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.order.Len()
}
