package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"scholarag/internal/config"
	"scholarag/internal/embedding"
	"scholarag/internal/rag/schema"
	"scholarag/pkg/logger"
)

// Collection field names. The vector field holds the passage embedding; the
// rest mirror the metadata fields so filters can push down to Milvus.
const (
	fieldID        = "id"
	fieldContent   = "content"
	fieldEmbedding = "embedding"
)

// metadataFields are the scalar columns stored next to the embedding, in
// insert order. chunk_id and total_chunks are Int64 columns; the rest are
// VarChar.
var metadataFields = []string{
	schema.KeySource,
	schema.KeyFileName,
	schema.KeyFileType,
	schema.KeyDocumentType,
	schema.KeyCompany,
	schema.KeySubject,
	schema.KeyDifficulty,
	schema.KeyYear,
}

var intFields = []string{schema.KeyChunkID, schema.KeyTotalChunks}

// filterSampleCeiling bounds the scalar scan behind AvailableFilterValues.
const filterSampleCeiling = 1000

// Milvus is the production Store, using native filter pushdown for
// metadata-constrained search.
type Milvus struct {
	client   client.Client
	embedder embedding.Embedding
	cfg      config.MilvusConfig
	log      *logger.Logger
}

// NewMilvus connects to Milvus and ensures the collection exists with the
// passage schema and vector index from the config.
func NewMilvus(ctx context.Context, cfg config.MilvusConfig, embedder embedding.Embedding, log *logger.Logger) (*Milvus, error) {
	c, err := client.NewClient(ctx, client.Config{Address: cfg.Address})
	if err != nil {
		return nil, fmt.Errorf("connect to milvus at %s: %w", cfg.Address, err)
	}

	m := &Milvus{
		client:   c,
		embedder: embedder,
		cfg:      cfg,
		log:      log.WithComponent("milvus"),
	}
	if err := m.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// Close releases the Milvus connection.
func (m *Milvus) Close() error {
	return m.client.Close()
}

// ensureCollection creates and indexes the collection if absent, then loads
// it for search.
func (m *Milvus) ensureCollection(ctx context.Context) error {
	exists, err := m.client.HasCollection(ctx, m.cfg.Collection)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", m.cfg.Collection, err)
	}

	if !exists {
		sch := entity.NewSchema().
			WithName(m.cfg.Collection).
			WithDescription(m.cfg.Description).
			WithField(entity.NewField().WithName(fieldID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(64).WithIsPrimaryKey(true)).
			WithField(entity.NewField().WithName(fieldContent).WithDataType(entity.FieldTypeVarChar).WithMaxLength(65535)).
			WithField(entity.NewField().WithName(fieldEmbedding).WithDataType(entity.FieldTypeFloatVector).WithDim(int64(m.cfg.Dim)))
		for _, name := range metadataFields {
			sch = sch.WithField(entity.NewField().WithName(name).WithDataType(entity.FieldTypeVarChar).WithMaxLength(2048))
		}
		for _, name := range intFields {
			sch = sch.WithField(entity.NewField().WithName(name).WithDataType(entity.FieldTypeInt64))
		}

		if err := m.client.CreateCollection(ctx, sch, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("create collection %s: %w", m.cfg.Collection, err)
		}

		idx, err := m.buildIndex()
		if err != nil {
			return err
		}
		if err := m.client.CreateIndex(ctx, m.cfg.Collection, fieldEmbedding, idx, false); err != nil {
			return fmt.Errorf("create index on %s: %w", m.cfg.Collection, err)
		}
	}

	if err := m.client.LoadCollection(ctx, m.cfg.Collection, false); err != nil {
		return fmt.Errorf("load collection %s: %w", m.cfg.Collection, err)
	}
	return nil
}

func (m *Milvus) buildIndex() (entity.Index, error) {
	metric := entity.MetricType(m.cfg.Index.MetricType)
	switch m.cfg.Index.IndexType {
	case "IVF_FLAT":
		return entity.NewIndexIvfFlat(metric, m.cfg.Index.NList)
	case "IVF_SQ8":
		return entity.NewIndexIvfSQ8(metric, m.cfg.Index.NList)
	case "HNSW":
		return entity.NewIndexHNSW(metric, 8, 96)
	case "AUTOINDEX":
		return entity.NewIndexAUTOINDEX(metric)
	default:
		return nil, fmt.Errorf("unsupported index type: %s", m.cfg.Index.IndexType)
	}
}

// Add embeds the passages and inserts them as one columnar batch, then
// flushes so they become searchable. Write errors propagate.
func (m *Milvus) Add(ctx context.Context, passages []schema.Passage) error {
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

	ids := make([]string, len(passages))
	contents := make([]string, len(passages))
	scalar := make(map[string][]string, len(metadataFields))
	ints := map[string][]int64{
		schema.KeyChunkID:     make([]int64, len(passages)),
		schema.KeyTotalChunks: make([]int64, len(passages)),
	}
	for i, p := range passages {
		ids[i] = p.ID
		contents[i] = p.Content
		fields := p.Metadata.Fields()
		for _, name := range metadataFields {
			scalar[name] = append(scalar[name], fields[name])
		}
		ints[schema.KeyChunkID][i] = int64(p.Metadata.ChunkID)
		ints[schema.KeyTotalChunks][i] = int64(p.Metadata.TotalChunks)
	}

	columns := []entity.Column{
		entity.NewColumnVarChar(fieldID, ids),
		entity.NewColumnVarChar(fieldContent, contents),
		entity.NewColumnFloatVector(fieldEmbedding, m.cfg.Dim, vectors),
	}
	for _, name := range metadataFields {
		columns = append(columns, entity.NewColumnVarChar(name, scalar[name]))
	}
	for _, name := range intFields {
		columns = append(columns, entity.NewColumnInt64(name, ints[name]))
	}

	if _, err := m.client.Insert(ctx, m.cfg.Collection, "", columns...); err != nil {
		return fmt.Errorf("%w: insert: %v", ErrStoreUnavailable, err)
	}
	if err := m.client.Flush(ctx, m.cfg.Collection, false); err != nil {
		return fmt.Errorf("%w: flush: %v", ErrStoreUnavailable, err)
	}

	m.log.Info(fmt.Sprintf("inserted %d passages into %s", len(passages), m.cfg.Collection))
	return nil
}

// Query returns the top-k passages by similarity with no filter.
func (m *Milvus) Query(ctx context.Context, text string, k int) ([]schema.ScoredPassage, error) {
	return m.QueryWithFilters(ctx, text, k, nil)
}

// QueryWithFilters pushes the exact-match predicate down to Milvus as a
// boolean expression. Embedding failures propagate; store failures on this
// read path degrade to an empty result with a warning.
func (m *Milvus) QueryWithFilters(ctx context.Context, text string, k int, filters schema.Filters) ([]schema.ScoredPassage, error) {
	if k <= 0 {
		return nil, nil
	}
	vector, err := m.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	sp, _ := entity.NewIndexIvfFlatSearchParam(10)
	outputFields := append([]string{fieldID, fieldContent}, metadataFields...)
	outputFields = append(outputFields, intFields...)

	results, err := m.client.Search(
		ctx, m.cfg.Collection, nil, buildFilterExpr(filters), outputFields,
		[]entity.Vector{entity.FloatVector(vector)},
		fieldEmbedding, entity.MetricType(m.cfg.Index.MetricType), k, sp,
	)
	if err != nil {
		m.log.Warn(fmt.Sprintf("search failed, returning empty result: %v", err))
		return nil, nil
	}

	var scored []schema.ScoredPassage
	for _, res := range results {
		passages := decodeRows(res.Fields, res.ResultCount)
		for i, p := range passages {
			scored = append(scored, schema.ScoredPassage{
				Passage: p,
				Score:   m.normalizeScore(res.Scores[i]),
			})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// AvailableFilterValues scans a bounded sample of rows and collects the
// distinct values per filterable field. Any failure degrades to an empty
// map: this is a read path and must not propagate store errors.
func (m *Milvus) AvailableFilterValues(ctx context.Context) map[string][]string {
	values := make(map[string][]string)

	// Match-all expression: every passage has a non-negative chunk_id.
	rs, err := m.client.Query(
		ctx, m.cfg.Collection, nil,
		fmt.Sprintf("%s >= 0", schema.KeyChunkID),
		metadataFields,
		client.WithLimit(filterSampleCeiling),
	)
	if err != nil {
		m.log.Warn(fmt.Sprintf("filter value scan failed, returning empty sets: %v", err))
		return values
	}

	for field, key := range filterValueKeys {
		col := rs.GetColumn(field)
		varcharCol, ok := col.(*entity.ColumnVarChar)
		if !ok {
			continue
		}
		values[key] = distinct(varcharCol.Data())
	}
	return values
}

// Count reads the row count from collection statistics.
func (m *Milvus) Count(ctx context.Context) (int64, error) {
	stats, err := m.client.GetCollectionStatistics(ctx, m.cfg.Collection)
	if err != nil {
		return 0, fmt.Errorf("%w: statistics: %v", ErrStoreUnavailable, err)
	}
	count, err := strconv.ParseInt(stats["row_count"], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse row_count %q: %w", stats["row_count"], err)
	}
	return count, nil
}

// Reset drops the collection and recreates it empty, ready for Add.
func (m *Milvus) Reset(ctx context.Context) error {
	if err := m.Drop(ctx); err != nil {
		return err
	}
	return m.ensureCollection(ctx)
}

// Drop removes the backing collection.
func (m *Milvus) Drop(ctx context.Context) error {
	if err := m.client.DropCollection(ctx, m.cfg.Collection); err != nil {
		return fmt.Errorf("%w: drop collection: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// normalizeScore converts a metric value to descending-similarity order.
// L2 distances invert via 1/(1+d); inner-product style metrics are already
// similarities.
func (m *Milvus) normalizeScore(raw float32) float32 {
	if m.cfg.Index.MetricType == "L2" {
		return 1 / (1 + raw)
	}
	return raw
}

// buildFilterExpr renders the predicate as a Milvus boolean expression,
// ANDing an equality per key. Numeric fields compare unquoted.
func buildFilterExpr(filters schema.Filters) string {
	if len(filters) == 0 {
		return ""
	}
	keys := make([]string, 0, len(filters))
	for key := range filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	conditions := make([]string, 0, len(keys))
	for _, key := range keys {
		value := filters[key]
		if key == schema.KeyChunkID || key == schema.KeyTotalChunks {
			conditions = append(conditions, fmt.Sprintf("%s == %s", key, value))
			continue
		}
		conditions = append(conditions, fmt.Sprintf("%s == %q", key, value))
	}
	return strings.Join(conditions, " and ")
}

// decodeRows rebuilds passages from the output columns of one search result.
func decodeRows(columns []entity.Column, count int) []schema.Passage {
	find := func(name string) entity.Column {
		for _, col := range columns {
			if col.Name() == name {
				return col
			}
		}
		return nil
	}
	varcharData := func(name string) []string {
		if col, ok := find(name).(*entity.ColumnVarChar); ok {
			return col.Data()
		}
		return nil
	}
	intData := func(name string) []int64 {
		if col, ok := find(name).(*entity.ColumnInt64); ok {
			return col.Data()
		}
		return nil
	}

	ids := varcharData(fieldID)
	contents := varcharData(fieldContent)
	scalar := make(map[string][]string, len(metadataFields))
	for _, name := range metadataFields {
		scalar[name] = varcharData(name)
	}
	chunkIDs := intData(schema.KeyChunkID)
	totals := intData(schema.KeyTotalChunks)

	at := func(data []string, i int) string {
		if i < len(data) {
			return data[i]
		}
		return ""
	}

	passages := make([]schema.Passage, 0, count)
	for i := 0; i < count; i++ {
		fields := make(map[string]string, len(metadataFields)+2)
		for _, name := range metadataFields {
			fields[name] = at(scalar[name], i)
		}
		if i < len(chunkIDs) {
			fields[schema.KeyChunkID] = strconv.FormatInt(chunkIDs[i], 10)
		}
		if i < len(totals) {
			fields[schema.KeyTotalChunks] = strconv.FormatInt(totals[i], 10)
		}
		passages = append(passages, schema.Passage{
			ID:       at(ids, i),
			Content:  at(contents, i),
			Metadata: schema.MetadataFromFields(fields),
		})
	}
	return passages
}

// distinct deduplicates and sorts, dropping empty values: an absent
// optional field is not a filterable value.
func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	if out == nil {
		out = []string{}
	}
	return out
}

var _ Store = (*Milvus)(nil)
