package vectorstore

import (
	"context"
	"errors"

	"scholarag/internal/rag/schema"
)

// ErrStoreUnavailable marks backing-store failures on write paths. Read
// paths never surface it: they log a warning and return empty results.
var ErrStoreUnavailable = errors.New("vector store unavailable")

// filterValueKeys maps each filterable metadata field to the plural key
// used in the AvailableFilterValues result, which drives filter UIs.
var filterValueKeys = map[string]string{
	schema.KeyDocumentType: "document_types",
	schema.KeyCompany:      "companies",
	schema.KeySubject:      "subjects",
	schema.KeyDifficulty:   "difficulties",
	schema.KeyYear:         "years",
}

// Store persists passages with their embeddings and serves similarity
// search with optional exact-match metadata filters. Embedding happens
// inside the store: Add and the query methods call the injected embedding
// provider, and embedding failures propagate to the caller.
//
// Add is append-only: re-ingesting a source file produces duplicate
// passages. Deduplication by source is the ingestion caller's job.
type Store interface {
	// Add embeds and inserts the passages. Empty input is a no-op.
	Add(ctx context.Context, passages []schema.Passage) error

	// Query returns the top-k most similar passages, ordered by descending
	// score. An empty or uninitialized collection yields an empty result.
	Query(ctx context.Context, text string, k int) ([]schema.ScoredPassage, error)

	// QueryWithFilters is Query restricted to passages matching every
	// entry of the filter predicate. It may return fewer than k matches.
	QueryWithFilters(ctx context.Context, text string, k int, filters schema.Filters) ([]schema.ScoredPassage, error)

	// AvailableFilterValues returns the distinct observed values per
	// filterable field. It tolerates an empty collection and never fails a
	// read: errors degrade to an empty map.
	AvailableFilterValues(ctx context.Context) map[string][]string

	// Count returns the number of stored passages.
	Count(ctx context.Context) (int64, error)

	// Reset drops all passages and leaves the store ready for a fresh Add.
	Reset(ctx context.Context) error

	// Drop removes the backing collection entirely.
	Drop(ctx context.Context) error
}
