package volatility

import (
	"context"
	"sync"
)

// MemoryRegistry is a mutex-guarded in-process Registry. Classifications
// are lost on restart; use RedisRegistry when persistence matters.
type MemoryRegistry struct {
	mu      sync.RWMutex
	high    map[string]struct{}
	extreme map[string]struct{}
}

// NewMemoryRegistry creates a registry seeded with known-volatile tokens.
func NewMemoryRegistry(seedHigh, seedExtreme []string) *MemoryRegistry {
	r := &MemoryRegistry{
		high:    make(map[string]struct{}),
		extreme: make(map[string]struct{}),
	}
	for _, token := range seedHigh {
		r.high[token] = struct{}{}
	}
	for _, token := range seedExtreme {
		r.extreme[token] = struct{}{}
	}
	return r
}

var _ Registry = (*MemoryRegistry)(nil)

func (r *MemoryRegistry) IsHigh(_ context.Context, token string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.extreme[token]; ok {
		return true, nil
	}
	_, ok := r.high[token]
	return ok, nil
}

func (r *MemoryRegistry) IsExtreme(_ context.Context, token string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.extreme[token]
	return ok, nil
}

func (r *MemoryRegistry) MarkHigh(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.high[token] = struct{}{}
	return nil
}

func (r *MemoryRegistry) MarkExtreme(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extreme[token] = struct{}{}
	return nil
}
