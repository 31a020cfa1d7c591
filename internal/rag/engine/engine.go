package engine

import (
	"context"
	"fmt"
	"strings"

	"scholarag/internal/config"
	"scholarag/internal/llm"
	"scholarag/internal/rag/schema"
	"scholarag/internal/rag/vectorstore"
	"scholarag/pkg/logger"
)

// promptTemplate frames retrieved passages for the generator. The context
// block is assembled from passage contents joined by blank lines.
const promptTemplate = `You are an AI assistant helping students with their learning materials, mock tests, and placement preparation.

Context from learning materials:
%s

Student Question: %s

Instructions:
1. Provide accurate, educational responses based on the context
2. If the question is about a specific topic, explain concepts clearly
3. For practice questions, provide step-by-step solutions
4. If information is not in the context, clearly state that
5. Always encourage learning and provide additional study tips when relevant

Answer:`

const noResultsAnswer = "I couldn't find any relevant information in the specified documents for your question."

// Engine answers questions over the passage store. It never returns an
// error from Answer: empty retrievals and generation failures are reported
// inside the Answer itself with low confidence.
type Engine struct {
	store     vectorstore.Store
	generator llm.Generator
	cache     *AnswerCache
	cfg       config.ProcessingConfig
	log       *logger.Logger
}

// New builds an Engine. cache may be nil to disable answer caching.
func New(store vectorstore.Store, generator llm.Generator, cache *AnswerCache, cfg config.ProcessingConfig, log *logger.Logger) *Engine {
	return &Engine{
		store:     store,
		generator: generator,
		cache:     cache,
		cfg:       cfg,
		log:       log.WithComponent("engine"),
	}
}

// Answer retrieves up to k passages matching the filters, generates a
// grounded response and attaches per-source attribution. A k of zero or
// less falls back to the configured default.
func (e *Engine) Answer(ctx context.Context, question string, k int, filters schema.Filters) schema.Answer {
	if k <= 0 {
		k = e.cfg.MaxDocsPerQuery
	}

	if e.cache != nil {
		if answer, ok := e.cache.Get(ctx, question, k, filters); ok {
			e.log.Debug("answer cache hit")
			return answer
		}
	}

	scored, err := e.store.QueryWithFilters(ctx, question, k, filters)
	if err != nil {
		e.log.Error(fmt.Sprintf("retrieval failed: %v", err))
		return schema.Answer{
			Text:       fmt.Sprintf("I apologize, but I encountered an error while processing your question: %v", err),
			Confidence: schema.ConfidenceLow,
			Sources:    []schema.Source{},
			Err:        err.Error(),
		}
	}

	// An empty retrieval never reaches the generator.
	if len(scored) == 0 {
		return schema.Answer{
			Text:       noResultsAnswer,
			Confidence: schema.ConfidenceLow,
			Sources:    []schema.Source{},
		}
	}

	prompt := fmt.Sprintf(promptTemplate, e.buildContext(scored), question)
	text, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		e.log.Error(fmt.Sprintf("generation failed: %v", err))
		return schema.Answer{
			Text:         fmt.Sprintf("I apologize, but I encountered an error: %v", err),
			Confidence:   schema.ConfidenceLow,
			Sources:      []schema.Source{},
			TotalSources: 0,
			Err:          err.Error(),
		}
	}

	answer := schema.Answer{
		Text:         text,
		Confidence:   confidenceFor(len(scored)),
		Sources:      e.buildSources(scored),
		TotalSources: len(scored),
	}

	if e.cache != nil {
		e.cache.Set(ctx, question, k, filters, answer)
	}
	return answer
}

// RelevantPassages exposes raw retrieval without generation for callers
// that want the scored passages themselves.
func (e *Engine) RelevantPassages(ctx context.Context, question string, k int, filters schema.Filters) ([]schema.ScoredPassage, error) {
	if k <= 0 {
		k = e.cfg.MaxDocsPerQuery
	}
	return e.store.QueryWithFilters(ctx, question, k, filters)
}

// buildContext joins passage contents with blank lines, stopping before the
// configured context ceiling is crossed. At least one passage is always
// included.
func (e *Engine) buildContext(scored []schema.ScoredPassage) string {
	var b strings.Builder
	for i, sp := range scored {
		if i > 0 {
			if b.Len()+2+len(sp.Passage.Content) > e.cfg.MaxContextChars {
				break
			}
			b.WriteString("\n\n")
		}
		b.WriteString(sp.Passage.Content)
	}
	return b.String()
}

func (e *Engine) buildSources(scored []schema.ScoredPassage) []schema.Source {
	sources := make([]schema.Source, 0, len(scored))
	for _, sp := range scored {
		md := sp.Passage.Metadata
		sources = append(sources, schema.Source{
			FileName:       md.FileName,
			Source:         md.Source,
			ChunkID:        md.ChunkID,
			ContentPreview: preview(sp.Passage.Content, e.cfg.PreviewChars),
			DocumentType:   md.DocumentType,
			Company:        md.Company,
			Subject:        md.Subject,
			Difficulty:     md.Difficulty,
			Year:           md.Year,
		})
	}
	return sources
}

// confidenceFor maps the retrieved source count to a coarse label: three or
// more sources is high, any fewer is medium. The zero case never reaches
// here.
func confidenceFor(count int) schema.Confidence {
	if count >= 3 {
		return schema.ConfidenceHigh
	}
	return schema.ConfidenceMedium
}

// preview truncates content for attribution, appending an ellipsis marker
// only when something was cut. The limit counts characters, not bytes, so
// multibyte text is never cut mid-rune.
func preview(content string, limit int) string {
	runes := []rune(content)
	if len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return content
}
