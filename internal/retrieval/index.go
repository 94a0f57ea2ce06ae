package retrieval

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
)

// Chunk is the immutable unit of indexed text. Created once during an index
// build and never mutated; retirement happens only through a full rebuild.
type Chunk struct {
	ID          int       `json:"id"`
	SourceTitle string    `json:"source_title"`
	Text        string    `json:"text"`
	Vector      []float64 `json:"vector"`
}

// Hit is one ranked search result.
type Hit struct {
	Chunk Chunk
	Score float64
}

// Index is a fully built, read-only similarity index. All vectors are
// unit-normalized so cosine similarity reduces to a dot product.
type Index struct {
	chunks []Chunk
	dim    int
}

// NewIndex wraps pre-embedded chunks. Vectors are normalized defensively in
// case the caller restored them from an external snapshot.
func NewIndex(chunks []Chunk) (*Index, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("index requires at least one chunk")
	}
	dim := len(chunks[0].Vector)
	for i := range chunks {
		if len(chunks[i].Vector) != dim {
			return nil, fmt.Errorf("chunk %d: vector dimension %d, want %d", i, len(chunks[i].Vector), dim)
		}
		chunks[i].ID = i
		chunks[i].Vector = normalize(chunks[i].Vector)
	}
	return &Index{chunks: chunks, dim: dim}, nil
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	return len(ix.chunks)
}

// Dim returns the embedding dimension.
func (ix *Index) Dim() int {
	return ix.dim
}

// Search returns the k chunks most similar to the query vector, scores
// descending, ties broken by original chunk order. Read-only and
// deterministic: identical index and query vector yield identical results.
func (ix *Index) Search(query []float64, k int) ([]Hit, error) {
	if len(query) != ix.dim {
		return nil, fmt.Errorf("query dimension %d, want %d", len(query), ix.dim)
	}
	if k <= 0 {
		return nil, nil
	}

	q := normalize(query)
	hits := make([]Hit, 0, len(ix.chunks))
	for _, c := range ix.chunks {
		hits = append(hits, Hit{Chunk: c, Score: dot(q, c.Vector)})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// snapshot is the persisted form of an index: enough to reconstruct exact
// search results without re-embedding.
type snapshot struct {
	Chunks []Chunk `json:"chunks"`
}

// WriteTo serializes all chunk records (source title, text, vector) as JSON.
func (ix *Index) WriteTo(w io.Writer) error {
	return json.NewEncoder(w).Encode(snapshot{Chunks: ix.chunks})
}

// ReadIndex restores an index from a snapshot written by WriteTo.
func ReadIndex(r io.Reader) (*Index, error) {
	var snap snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode index snapshot: %w", err)
	}
	return NewIndex(snap.Chunks)
}

func normalize(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
