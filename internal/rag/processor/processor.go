package processor

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"scholarag/internal/rag/chunker"
	"scholarag/internal/rag/extract"
	"scholarag/internal/rag/metadata"
	"scholarag/internal/rag/schema"
	"scholarag/pkg/logger"
)

// Processor turns source files into tagged passages: content extraction,
// metadata inference over the path, then chunking.
type Processor struct {
	extractor *extract.Extractor
	chunker   *chunker.Chunker
	workers   int
	log       *logger.Logger
}

// New creates a Processor. workers bounds the number of files processed
// concurrently by ProcessDirectory.
func New(extractor *extract.Extractor, ch *chunker.Chunker, workers int, log *logger.Logger) *Processor {
	if workers <= 0 {
		workers = 4
	}
	return &Processor{
		extractor: extractor,
		chunker:   ch,
		workers:   workers,
		log:       log.WithComponent("processor"),
	}
}

// ProcessDocument converts one file into its ordered passages. Each passage
// carries the shared file metadata plus its chunk position; chunk IDs form
// the contiguous range 0..TotalChunks-1.
func (p *Processor) ProcessDocument(path string) ([]schema.Passage, error) {
	text, err := p.extractor.Text(path)
	if err != nil {
		return nil, err
	}

	md := metadata.Extract(path, text)
	chunks := p.chunker.Split(text)

	passages := make([]schema.Passage, 0, len(chunks))
	for i, chunk := range chunks {
		chunkMD := md
		chunkMD.ChunkID = i
		chunkMD.TotalChunks = len(chunks)
		passages = append(passages, schema.Passage{
			ID:       uuid.New().String(),
			Content:  chunk,
			Metadata: chunkMD,
		})
	}
	return passages, nil
}

// ProcessDirectory walks the tree rooted at dir and processes every file on
// the supported-extension allowlist, up to p.workers files at a time. A
// failing file is logged and skipped; it never aborts the walk. Order across
// files follows completion and is not defined; order within a file is the
// chunk order.
func (p *Processor) ProcessDirectory(ctx context.Context, dir string) ([]schema.Passage, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if extract.Supported(filepath.Ext(path)) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	var (
		mu  sync.Mutex
		all []schema.Passage
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(p.workers)

	for _, path := range paths {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			passages, err := p.ProcessDocument(path)
			if err != nil {
				// Per-file failures are noise, not fatal.
				p.log.Warn(fmt.Sprintf("skipping %s: %v", path, err))
				return nil
			}
			p.log.Info(fmt.Sprintf("processed %s (%d chunks)", path, len(passages)))
			mu.Lock()
			all = append(all, passages...)
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return all, nil
}
