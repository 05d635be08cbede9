package memory

import (
	"context"
	"fmt"
	"strings"
)

// Retriever assembles the context window for a turn: the most recent turns
// plus the turns most similar to the inbound message.
type Retriever struct {
	store    Store
	embedder Embedder
}

func NewRetriever(store Store, embedder Embedder) *Retriever {
	return &Retriever{store: store, embedder: embedder}
}

// Retrieve returns up to 2*limit distinct turns, oldest first. Relevance
// lookup failures degrade to recency only.
func (r *Retriever) Retrieve(ctx context.Context, userEmail, query string, limit int) ([]Turn, error) {
	if strings.TrimSpace(userEmail) == "" {
		return nil, nil
	}
	recent, err := r.store.RecentTurns(ctx, userEmail, limit)
	if err != nil {
		return nil, fmt.Errorf("recent turns: %w", err)
	}
	if r.embedder == nil || strings.TrimSpace(query) == "" {
		return recent, nil
	}

	vec := r.embedder.Embed(ctx, query)
	if IsZeroVector(vec) {
		return recent, nil
	}
	relevant, err := r.store.RelevantTurns(ctx, userEmail, vec, limit)
	if err != nil {
		return recent, nil
	}
	return mergeTurns(recent, relevant), nil
}

func mergeTurns(a, b []Turn) []Turn {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]Turn, 0, len(a)+len(b))
	for _, set := range [][]Turn{a, b} {
		for _, t := range set {
			if t.ID != "" && seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			out = append(out, t)
		}
	}
	sortChronological(out)
	return out
}
