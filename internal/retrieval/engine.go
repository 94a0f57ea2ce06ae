// Package retrieval indexes a corpus of short documents into overlapping,
// embedded chunks and answers top-k cosine-similarity queries over them.
package retrieval

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cloudwego/eino/components/embedding"

	errx "github.com/hrassist-core-poc/server/internal/core/error"
	logx "github.com/hrassist-core-poc/server/pkg/logger"
)

const (
	DefaultTopK = 5

	// embedBatchSize bounds one embedding call; providers cap batch sizes.
	embedBatchSize = 64
)

// Document is a raw source document supplied by the corpus loader.
type Document struct {
	Title string
	Text  string
}

// Options tunes chunking and search.
type Options struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	Timeout      time.Duration
}

// Engine owns the current index and the embedder. The index reference is
// swapped atomically on rebuild, so concurrent readers either see the old
// complete index or the new complete index, never a partial one.
type Engine struct {
	embedder embedding.Embedder
	chunker  Chunker
	topK     int
	timeout  time.Duration
	current  atomic.Pointer[Index]
}

// NewEngine creates an engine without an index; call Rebuild or Restore
// before serving queries.
func NewEngine(embedder embedding.Embedder, opts Options) (*Engine, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is nil")
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Engine{
		embedder: embedder,
		chunker:  NewChunker(opts.ChunkSize, opts.ChunkOverlap),
		topK:     topK,
		timeout:  timeout,
	}, nil
}

// TopK returns the default result count for Search.
func (e *Engine) TopK() int {
	return e.topK
}

// Rebuild chunks and embeds the documents into a brand new index, then swaps
// it in. Destroy-and-recompute: nothing of a prior index survives, and the
// swap happens only after the build fully succeeds.
func (e *Engine) Rebuild(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return fmt.Errorf("no documents to index")
	}

	log := logx.Component("retrieval")

	var chunks []Chunk
	var texts []string
	for _, doc := range docs {
		parts := e.chunker.Split(doc.Text)
		log.Debug().Str("title", doc.Title).Int("chunks", len(parts)).Msg("chunked document")
		for _, p := range parts {
			chunks = append(chunks, Chunk{SourceTitle: doc.Title, Text: p})
			// Prefix the source title so the embedding captures document
			// identity as well as content.
			texts = append(texts, fmt.Sprintf("[%s]\n%s", doc.Title, p))
		}
	}

	vectors, err := e.embedAll(ctx, texts)
	if err != nil {
		return errx.WrapRetrieval(err)
	}
	for i := range chunks {
		chunks[i].Vector = vectors[i]
	}

	ix, err := NewIndex(chunks)
	if err != nil {
		return err
	}
	e.current.Store(ix)

	log.Info().Int("documents", len(docs)).Int("chunks", ix.Len()).Int("dim", ix.Dim()).Msg("index rebuilt")
	return nil
}

// Restore swaps in an index loaded from a snapshot, skipping re-embedding.
func (e *Engine) Restore(ix *Index) {
	e.current.Store(ix)
}

// Index returns the currently served index, nil before the first build.
func (e *Engine) Index() *Index {
	return e.current.Load()
}

// Search embeds the query and returns the top-k most similar chunks.
// Read-only and side-effect free with respect to the index.
func (e *Engine) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	ix := e.current.Load()
	if ix == nil {
		return nil, errx.WrapRetrieval(fmt.Errorf("no index built"))
	}
	if k <= 0 {
		k = e.topK
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	vecs, err := e.embedder.EmbedStrings(ctx, []string{query})
	if err != nil {
		return nil, errx.WrapRetrieval(err)
	}
	if len(vecs) != 1 {
		return nil, errx.WrapRetrieval(fmt.Errorf("embedder returned %d vectors for one query", len(vecs)))
	}

	hits, err := ix.Search(vecs[0], k)
	if err != nil {
		return nil, errx.WrapRetrieval(err)
	}
	return hits, nil
}

func (e *Engine) embedAll(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		vecs, err := e.embedder.EmbedStrings(callCtx, texts[start:end])
		cancel()
		if err != nil {
			return nil, fmt.Errorf("embed batch [%d:%d]: %w", start, end, err)
		}
		if len(vecs) != end-start {
			return nil, fmt.Errorf("embed batch [%d:%d]: got %d vectors", start, end, len(vecs))
		}
		out = append(out, vecs...)
	}
	return out, nil
}
