package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is a simple in-process memory store for local/dev use.
type InMemoryStore struct {
	mu    sync.RWMutex
	turns map[string][]Turn
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{turns: make(map[string][]Turn)}
}

func (s *InMemoryStore) SaveTurn(_ context.Context, turn Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}
	arr := s.turns[turn.UserEmail]
	// Keep per-user slices sorted; concurrent writers may land out of order.
	idx := sort.Search(len(arr), func(i int) bool { return arr[i].CreatedAt.After(turn.CreatedAt) })
	arr = append(arr, Turn{})
	copy(arr[idx+1:], arr[idx:])
	arr[idx] = turn
	s.turns[turn.UserEmail] = arr
	return nil
}

func (s *InMemoryStore) RecentTurns(_ context.Context, userEmail string, limit int) ([]Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	arr := s.turns[userEmail]
	if len(arr) == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > len(arr) {
		limit = len(arr)
	}
	out := make([]Turn, limit)
	copy(out, arr[len(arr)-limit:])
	return out, nil
}

func (s *InMemoryStore) RelevantTurns(ctx context.Context, userEmail string, query []float32, limit int) ([]Turn, error) {
	if IsZeroVector(query) {
		return s.RecentTurns(ctx, userEmail, limit)
	}

	s.mu.RLock()
	arr := make([]Turn, len(s.turns[userEmail]))
	copy(arr, s.turns[userEmail])
	s.mu.RUnlock()

	type scored struct {
		turn  Turn
		score float64
	}
	ranked := make([]scored, 0, len(arr))
	for _, t := range arr {
		if IsZeroVector(t.Embedding) {
			continue
		}
		ranked = append(ranked, scored{turn: t, score: cosine(query, t.Embedding)})
	}
	if len(ranked) == 0 {
		return s.RecentTurns(ctx, userEmail, limit)
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]Turn, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.turn)
	}
	sortChronological(out)
	return out, nil
}

func (s *InMemoryStore) Close() error { return nil }

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func sortChronological(turns []Turn) {
	sort.SliceStable(turns, func(i, j int) bool { return turns[i].CreatedAt.Before(turns[j].CreatedAt) })
}
