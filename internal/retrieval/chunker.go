package retrieval

import (
	"strings"
)

// Boundary preference order, strongest first. Fixed-width splitting is the
// last resort when no boundary falls inside the allowed window.
var boundaries = []string{"\n\nSection", "\n\n", "\n", ". ", " "}

const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 150
)

// Chunker splits document text into contiguous, overlapping substrings.
// Because every chunk is a raw slice of the source and consecutive chunks
// overlap by exactly Overlap characters, concatenating chunk[0] with
// chunk[i][Overlap:] reproduces the source text without loss.
type Chunker struct {
	Size    int
	Overlap int
}

// NewChunker normalises invalid size/overlap combinations to the defaults.
func NewChunker(size, overlap int) Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
		if overlap >= size {
			overlap = size / 4
		}
	}
	return Chunker{Size: size, Overlap: overlap}
}

// Split cuts text into chunks of at most Size characters, preferring to cut
// at the strongest boundary available in the tail of each tentative chunk.
func (c Chunker) Split(text string) []string {
	if text == "" {
		return nil
	}
	if len(text) <= c.Size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for {
		end := start + c.Size
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}
		cut := c.cutPoint(text, start, end)
		chunks = append(chunks, text[start:cut])
		start = cut - c.Overlap
	}
	return chunks
}

// cutPoint returns the absolute cut position in (start, end]. The cut must
// leave at least Overlap+1 characters in the chunk so the next start always
// advances past the previous one.
func (c Chunker) cutPoint(text string, start, end int) int {
	window := text[start:end]
	min := c.Size / 2
	if min <= c.Overlap {
		min = c.Overlap + 1
	}
	for _, sep := range boundaries {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		cut := idx + len(sep)
		if cut >= min && cut <= len(window) {
			return start + cut
		}
	}
	return end
}

// Reassemble is the inverse of Split: it concatenates chunks while dropping
// the Overlap-character prefix each non-initial chunk shares with its
// predecessor.
func (c Chunker) Reassemble(chunks []string) string {
	if len(chunks) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(chunks[0])
	for _, ch := range chunks[1:] {
		if len(ch) > c.Overlap {
			sb.WriteString(ch[c.Overlap:])
		}
	}
	return sb.String()
}
