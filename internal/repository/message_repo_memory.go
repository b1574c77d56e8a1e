package repository

import (
	"context"
	"sort"
	"sync"

	"concierge-llm/internal/domain"
)

// MemoryMessageRepository es un message store en memoria para tests y para
// el modo demo del CLI. Operaciones sobre threads distintos no interfieren.
type MemoryMessageRepository struct {
	mu       sync.RWMutex
	byThread map[string][]domain.Message
}

func NewMemoryMessageRepository() *MemoryMessageRepository {
	return &MemoryMessageRepository{
		byThread: make(map[string][]domain.Message),
	}
}

func (r *MemoryMessageRepository) Save(ctx context.Context, message domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byThread[message.SessionID] = append(r.byThread[message.SessionID], message)
	return nil
}

func (r *MemoryMessageRepository) GetByThread(ctx context.Context, threadID string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 50
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.byThread[threadID]
	out := make([]domain.Message, len(stored))
	copy(out, stored)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryMessageRepository) CountByThread(ctx context.Context, threadID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byThread[threadID]), nil
}
