// Package history keeps the per-user scan history: a bounded,
// most-recent-first list capped at 50 entries, keyed by the
// authenticated user's id. Persisted storage survives sign-out.
package history

import (
	"context"
	"sync"

	"github.com/pickbetter/labelscan/internal/models"
)

// Cap is the maximum number of history items kept per user. The
// oldest entry is evicted when a new one would exceed it.
const Cap = 50

type Store interface {
	// Append adds the item at the head of the user's history,
	// evicting the oldest entry beyond Cap.
	Append(ctx context.Context, userID string, item models.HistoryItem) error
	// List returns up to limit items, most recent first. limit <= 0
	// means everything up to Cap.
	List(ctx context.Context, userID string, limit int) ([]models.HistoryItem, error)
	// Clear removes the user's persisted history.
	Clear(ctx context.Context, userID string) error
	Close() error
}

// MemoryStore is the in-session history used in offline mode and in
// tests. Same cap semantics as the persistent backends.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string][]models.HistoryItem
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string][]models.HistoryItem)}
}

func (s *MemoryStore) Append(ctx context.Context, userID string, item models.HistoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := append([]models.HistoryItem{item}, s.items[userID]...)
	if len(list) > Cap {
		list = list[:Cap]
	}
	s.items[userID] = list
	return nil
}

func (s *MemoryStore) List(ctx context.Context, userID string, limit int) ([]models.HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.items[userID]
	if limit <= 0 || limit > len(list) {
		limit = len(list)
	}
	out := make([]models.HistoryItem, limit)
	copy(out, list[:limit])
	return out, nil
}

func (s *MemoryStore) Clear(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, userID)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
