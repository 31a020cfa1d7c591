package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"scholarag/internal/rag/engine"
	"scholarag/internal/rag/processor"
	"scholarag/internal/rag/schema"
	"scholarag/internal/rag/vectorstore"
	"scholarag/pkg/logger"
)

// Handler holds the components behind the HTTP endpoints.
type Handler struct {
	engine    *engine.Engine
	store     vectorstore.Store
	processor *processor.Processor
	dataDir   string
	log       *logger.Logger
}

// NewHandler creates a Handler. dataDir is the default ingestion root used
// when an ingest request names no path.
func NewHandler(eng *engine.Engine, store vectorstore.Store, proc *processor.Processor, dataDir string, log *logger.Logger) *Handler {
	return &Handler{
		engine:    eng,
		store:     store,
		processor: proc,
		dataDir:   dataDir,
		log:       log.WithComponent("api"),
	}
}

// QueryRequest is the JSON body of POST /api/v1/query. The filter fields
// are optional; empty ones are not applied.
type QueryRequest struct {
	Question     string `json:"question" binding:"required"`
	MaxDocs      int    `json:"max_docs"`
	DocumentType string `json:"document_type"`
	Company      string `json:"company"`
	Subject      string `json:"subject"`
	Difficulty   string `json:"difficulty"`
	Year         string `json:"year"`
}

func (r *QueryRequest) filters() schema.Filters {
	filters := schema.Filters{}
	for key, value := range map[string]string{
		schema.KeyDocumentType: r.DocumentType,
		schema.KeyCompany:      r.Company,
		schema.KeySubject:      r.Subject,
		schema.KeyDifficulty:   r.Difficulty,
		schema.KeyYear:         r.Year,
	} {
		if value != "" {
			filters[key] = value
		}
	}
	return filters
}

// Query answers a question over the corpus. Retrieval and generation
// failures surface inside the Answer body, not as HTTP errors.
func (h *Handler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer := h.engine.Answer(c.Request.Context(), req.Question, req.MaxDocs, req.filters())
	c.JSON(http.StatusOK, answer)
}

// Search returns raw scored passages without generation.
func (h *Handler) Search(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	passages, err := h.engine.RelevantPassages(c.Request.Context(), req.Question, req.MaxDocs, req.filters())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if passages == nil {
		passages = []schema.ScoredPassage{}
	}
	c.JSON(http.StatusOK, gin.H{"results": passages, "total": len(passages)})
}

// IngestRequest is the JSON body of POST /api/v1/ingest. An empty path
// ingests the configured data directory.
type IngestRequest struct {
	Path string `json:"path"`
}

// Ingest processes a directory tree and adds the resulting passages to the
// store.
func (h *Handler) Ingest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dir := req.Path
	if dir == "" {
		dir = h.dataDir
	}

	ctx := c.Request.Context()
	passages, err := h.processor.ProcessDirectory(ctx, dir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.Add(ctx, passages); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.log.Info(fmt.Sprintf("ingested %d passages from %s", len(passages), dir))
	c.JSON(http.StatusOK, gin.H{"path": dir, "passages_added": len(passages)})
}

// Filters reports the distinct values available per filterable field.
func (h *Handler) Filters(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.AvailableFilterValues(c.Request.Context()))
}

// Stats reports the size of the store.
func (h *Handler) Stats(c *gin.Context) {
	count, err := h.store.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_passages": count})
}

// Reset clears the store.
func (h *Handler) Reset(c *gin.Context) {
	if err := h.store.Reset(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "store reset"})
}

// Health is a liveness probe that also reports the passage count when the
// store is reachable.
func (h *Handler) Health(c *gin.Context) {
	count, err := h.store.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "total_passages": count})
}
