package scheduler

import (
	"context"
	"sync"

	"solana-meme-trader/internal/domain"
)

// DefaultQueueCapacity bounds the pending suggestion backlog.
const DefaultQueueCapacity = 50

// SuggestionQueue is a bounded FIFO connecting the scheduler to the trade
// monitor. A newer suggestion for a token already pending replaces the old
// one in place; on overflow the oldest entry is dropped.
type SuggestionQueue struct {
	mu       sync.Mutex
	capacity int
	pending  []domain.Suggestion
}

// NewSuggestionQueue creates a queue. capacity <= 0 uses the default.
func NewSuggestionQueue(capacity int) *SuggestionQueue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &SuggestionQueue{capacity: capacity}
}

var _ Sink = (*SuggestionQueue)(nil)

// Offer enqueues a suggestion. Never blocks.
func (q *SuggestionQueue) Offer(_ context.Context, s domain.Suggestion) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, pending := range q.pending {
		if pending.TokenAddress == s.TokenAddress {
			q.pending[i] = s
			return
		}
	}

	q.pending = append(q.pending, s)
	if len(q.pending) > q.capacity {
		q.pending = q.pending[1:]
	}
}

// Drain removes and returns all pending suggestions in arrival order.
func (q *SuggestionQueue) Drain() []domain.Suggestion {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.pending
	q.pending = nil
	return out
}

// Len returns the number of pending suggestions.
func (q *SuggestionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
