package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"scholarag/internal/embedding"
	"scholarag/internal/rag/schema"
)

// Memory is a brute-force Store kept entirely in process memory. It backs
// the --local CLI mode and the store-level tests; it holds no persistence
// and scans every entry per query.
type Memory struct {
	mu       sync.RWMutex
	embedder embedding.Embedding
	entries  []memoryEntry
}

type memoryEntry struct {
	passage schema.Passage
	vector  []float32
}

// overFetchFactor widens the candidate pool before client-side filtering so
// a selective filter still fills k results.
const overFetchFactor = 4

// NewMemory returns an empty in-memory store over the given embedder.
func NewMemory(embedder embedding.Embedding) *Memory {
	return &Memory{embedder: embedder}
}

func (m *Memory) Add(ctx context.Context, passages []schema.Passage) error {
	if len(passages) == 0 {
		return nil
	}
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Content
	}
	vectors, err := m.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(passages) {
		return fmt.Errorf("%w: got %d embeddings for %d passages", embedding.ErrUnavailable, len(vectors), len(passages))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range passages {
		m.entries = append(m.entries, memoryEntry{passage: p, vector: vectors[i]})
	}
	return nil
}

func (m *Memory) Query(ctx context.Context, text string, k int) ([]schema.ScoredPassage, error) {
	return m.QueryWithFilters(ctx, text, k, nil)
}

// QueryWithFilters scores every entry by cosine similarity, over-fetches,
// applies the filter predicate client-side and truncates to k.
func (m *Memory) QueryWithFilters(ctx context.Context, text string, k int, filters schema.Filters) ([]schema.ScoredPassage, error) {
	if k <= 0 {
		return nil, nil
	}
	query, err := m.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	scored := make([]schema.ScoredPassage, 0, len(m.entries))
	for _, e := range m.entries {
		scored = append(scored, schema.ScoredPassage{
			Passage: e.passage,
			Score:   cosine(query, e.vector),
		})
	}
	m.mu.RUnlock()

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	pool := k * overFetchFactor
	if pool > len(scored) {
		pool = len(scored)
	}

	var out []schema.ScoredPassage
	for _, sp := range scored[:pool] {
		if !filters.Matches(sp.Passage.Metadata) {
			continue
		}
		out = append(out, sp)
		if len(out) == k {
			break
		}
	}
	return out, nil
}

// AvailableFilterValues collects the distinct values of every filterable
// field across all stored passages.
func (m *Memory) AvailableFilterValues(ctx context.Context) map[string][]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	raw := make(map[string][]string, len(filterValueKeys))
	for _, e := range m.entries {
		fields := e.passage.Metadata.Fields()
		for field, key := range filterValueKeys {
			if v := fields[field]; v != "" {
				raw[key] = append(raw[key], v)
			}
		}
	}

	values := make(map[string][]string, len(filterValueKeys))
	for _, key := range filterValueKeys {
		values[key] = distinct(raw[key])
	}
	return values
}

func (m *Memory) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.entries)), nil
}

func (m *Memory) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}

func (m *Memory) Drop(ctx context.Context) error {
	return m.Reset(ctx)
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

var _ Store = (*Memory)(nil)
