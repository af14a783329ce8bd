package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/okian/teambalance/internal/domain/model"
	"github.com/okian/teambalance/pkg/metrics"
)

const defaultCapacity = 256

type entry struct {
	summary Summary
	payload []byte
}

// MemoryStore keeps the most recent runs as JSON in a ring buffer.
type MemoryStore struct {
	mu       sync.RWMutex
	capacity int
	ring     []entry
	// next is the ring slot the next Save writes to.
	next int
	byID map[string]int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(s)
	}
	s.ring = make([]entry, 0, s.capacity)
	s.byID = make(map[string]int, s.capacity)
	return s
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, run Run) error {
	if run.ID == "" || run.Result == nil {
		return fmt.Errorf("%w: id and result are required", ErrInvalidRun)
	}
	payload, err := json.Marshal(run.Result)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRun, err)
	}
	e := entry{summary: summarize(run), payload: payload}

	s.mu.Lock()
	if slot, ok := s.byID[run.ID]; ok {
		s.ring[slot] = e
		s.mu.Unlock()
		return nil
	}
	if len(s.ring) < s.capacity {
		s.ring = append(s.ring, e)
	} else {
		delete(s.byID, s.ring[s.next].summary.ID)
		s.ring[s.next] = e
	}
	s.byID[run.ID] = s.next
	s.next = (s.next + 1) % s.capacity
	size := len(s.ring)
	s.mu.Unlock()

	metrics.UpdateRunStoreSize(size)
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id string) (Run, error) {
	s.mu.RLock()
	slot, ok := s.byID[id]
	var e entry
	if ok {
		e = s.ring[slot]
	}
	s.mu.RUnlock()
	if !ok {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	var res model.Result
	if err := json.Unmarshal(e.payload, &res); err != nil {
		return Run{}, fmt.Errorf("decode run %s: %w", id, err)
	}
	return Run{ID: id, CreatedAt: e.summary.CreatedAt, Result: &res}, nil
}

// Raw implements Store. The returned slice must not be modified.
func (s *MemoryStore) Raw(_ context.Context, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.ring[slot].payload, nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := min(limit, len(s.ring))
	out := make([]Summary, 0, n)
	// Walk backwards from the most recent write.
	for k := 1; k <= n; k++ {
		slot := (s.next - k + len(s.ring)) % len(s.ring)
		out = append(out, s.ring[slot].summary)
	}
	return out, nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ring)
}

func summarize(run Run) Summary {
	r := run.Result
	return Summary{
		ID:                run.ID,
		CreatedAt:         run.CreatedAt,
		Mode:              r.Mode,
		Teams:             len(r.Teams),
		AssignedPlayers:   r.Stats.AssignedPlayers,
		UnassignedPlayers: r.Stats.UnassignedPlayers,
		NearMisses:        len(r.NearMisses),
	}
}
