package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"scholarag/internal/embedding"
	"scholarag/internal/rag/schema"
)

// wordEmbedder produces deterministic vectors from keyword hits, so tests
// control similarity ordering without a live model.
type wordEmbedder struct {
	vocabulary []string
	err        error
}

func (w wordEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if w.err != nil {
		return nil, w.err
	}
	vec := make([]float32, len(w.vocabulary)+1)
	vec[len(w.vocabulary)] = 0.1 // keeps vectors nonzero
	for i, word := range w.vocabulary {
		if strings.Contains(strings.ToLower(text), word) {
			vec[i] = 1
		}
	}
	return vec, nil
}

func (w wordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := w.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func testEmbedder() wordEmbedder {
	return wordEmbedder{vocabulary: []string{"python", "java", "aptitude"}}
}

func passage(id, content string, md schema.Metadata) schema.Passage {
	md.Source = "/data/" + id
	md.FileName = id
	return schema.Passage{ID: id, Content: content, Metadata: md}
}

func seedStore(t *testing.T) *Memory {
	t.Helper()
	store := NewMemory(testEmbedder())
	err := store.Add(context.Background(), []schema.Passage{
		passage("p1", "python decorators explained", schema.Metadata{
			Subject: "Python", DocumentType: schema.LearningMaterial, Difficulty: schema.Easy,
		}),
		passage("p2", "python generators for interviews", schema.Metadata{
			Subject: "Python", DocumentType: schema.MockTest, Difficulty: schema.Hard,
		}),
		passage("p3", "java collections deep dive", schema.Metadata{
			Subject: "Java", DocumentType: schema.LearningMaterial, Difficulty: schema.Medium,
		}),
		passage("p4", "aptitude problems from cocubes", schema.Metadata{
			Subject: "Quantitative Aptitude", DocumentType: schema.PlacementPaper,
			Company: "Cocubes", Year: "2023", Difficulty: schema.Medium,
		}),
	})
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestMemoryQueryRanksByRelevance(t *testing.T) {
	store := seedStore(t)

	results, err := store.Query(context.Background(), "python question", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, sp := range results {
		if sp.Passage.Metadata.Subject != "Python" {
			t.Errorf("result %s subject = %q, python passages must rank first", sp.Passage.ID, sp.Passage.Metadata.Subject)
		}
	}
	if results[0].Score < results[1].Score {
		t.Error("results not in descending score order")
	}
}

func TestMemoryQueryWithFilters(t *testing.T) {
	store := seedStore(t)

	results, err := store.QueryWithFilters(context.Background(), "python question", 5, schema.Filters{
		schema.KeyDocumentType: string(schema.MockTest),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Passage.ID != "p2" {
		t.Fatalf("got %v, want only p2", results)
	}
}

func TestMemoryQueryFilterExcludesAll(t *testing.T) {
	store := seedStore(t)

	results, err := store.QueryWithFilters(context.Background(), "python", 5, schema.Filters{
		schema.KeyCompany: "Amazon",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want none for an unmatched filter", len(results))
	}
}

func TestMemoryQueryEmptyStore(t *testing.T) {
	store := NewMemory(testEmbedder())
	results, err := store.Query(context.Background(), "anything", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("empty store returned %d results", len(results))
	}
}

func TestMemoryQueryEmbeddingFailurePropagates(t *testing.T) {
	store := NewMemory(wordEmbedder{err: errors.New("model offline")})
	if _, err := store.Query(context.Background(), "q", 3); err == nil {
		t.Error("expected the embedding error to propagate")
	}
}

// shortBatchEmbedder drops the last vector of every batch, modeling a
// provider that silently returns fewer embeddings than inputs.
type shortBatchEmbedder struct {
	inner wordEmbedder
}

func (s shortBatchEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.inner.Embed(ctx, text)
}

func (s shortBatchEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out, err := s.inner.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	return out[:len(out)-1], nil
}

func TestMemoryAddShortBatchFails(t *testing.T) {
	store := NewMemory(shortBatchEmbedder{inner: testEmbedder()})
	ctx := context.Background()

	err := store.Add(ctx, []schema.Passage{
		passage("p1", "python text", schema.Metadata{Subject: "Python"}),
		passage("p2", "java text", schema.Metadata{Subject: "Java"}),
	})
	if !errors.Is(err, embedding.ErrUnavailable) {
		t.Fatalf("err = %v, want an embedding unavailability error", err)
	}

	// The mismatched batch must not be partially stored.
	count, countErr := store.Count(ctx)
	if countErr != nil {
		t.Fatal(countErr)
	}
	if count != 0 {
		t.Errorf("count = %d after a failed Add, want 0", count)
	}
}

func TestMemoryAddAllowsDuplicates(t *testing.T) {
	store := NewMemory(testEmbedder())
	p := passage("p1", "python text", schema.Metadata{Subject: "Python"})
	ctx := context.Background()

	// The store is append-only; deduplication is the caller's concern.
	if err := store.Add(ctx, []schema.Passage{p}); err != nil {
		t.Fatal(err)
	}
	if err := store.Add(ctx, []schema.Passage{p}); err != nil {
		t.Fatal(err)
	}
	count, err := store.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestMemoryAvailableFilterValues(t *testing.T) {
	store := seedStore(t)
	values := store.AvailableFilterValues(context.Background())

	want := map[string][]string{
		"document_types": {string(schema.LearningMaterial), string(schema.MockTest), string(schema.PlacementPaper)},
		"companies":      {"Cocubes"},
		"subjects":       {"Java", "Python", "Quantitative Aptitude"},
		"difficulties":   {string(schema.Easy), string(schema.Hard), string(schema.Medium)},
		"years":          {"2023"},
	}
	for key, wantValues := range want {
		got := values[key]
		if fmt.Sprint(got) != fmt.Sprint(wantValues) {
			t.Errorf("%s = %v, want %v", key, got, wantValues)
		}
	}
}

func TestMemoryFilterValuesEmptyStore(t *testing.T) {
	store := NewMemory(testEmbedder())
	values := store.AvailableFilterValues(context.Background())
	for key, got := range values {
		if len(got) != 0 {
			t.Errorf("%s = %v, want empty", key, got)
		}
	}
}

func TestMemoryReset(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()

	if err := store.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	count, err := store.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("count after reset = %d, want 0", count)
	}
}
