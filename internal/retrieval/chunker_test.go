package retrieval

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func policyText(paragraphs int) string {
	var sb strings.Builder
	for i := 0; i < paragraphs; i++ {
		sb.WriteString("Employees are entitled to paid annual leave accrued monthly. ")
		sb.WriteString("Requests must be submitted through the portal in advance. ")
		sb.WriteString("Unused balance may be carried over into the next quarter.")
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String())
}

func TestNewChunkerNormalizesInvalidSettings(t *testing.T) {
	c := NewChunker(0, -1)
	assert.Equal(t, DefaultChunkSize, c.Size)
	assert.Equal(t, DefaultChunkOverlap, c.Overlap)

	c = NewChunker(100, 100)
	assert.Equal(t, 100, c.Size)
	assert.Equal(t, 25, c.Overlap)
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	c := NewChunker(800, 150)
	chunks := c.Split("short policy text")
	require.Len(t, chunks, 1)
	assert.Equal(t, "short policy text", chunks[0])

	assert.Nil(t, c.Split(""))
}

func TestSplitRespectsMaxSize(t *testing.T) {
	c := NewChunker(200, 40)
	text := policyText(10)

	chunks := c.Split(text)
	require.Greater(t, len(chunks), 1)
	for i, ch := range chunks {
		assert.LessOrEqual(t, len(ch), c.Size, "chunk %d exceeds max size", i)
		assert.NotEmpty(t, ch)
	}
}

func TestSplitChunksAreContiguousWithExactOverlap(t *testing.T) {
	c := NewChunker(200, 40)
	text := policyText(10)

	chunks := c.Split(text)
	require.Greater(t, len(chunks), 1)

	pos := 0
	for i, ch := range chunks {
		require.Equal(t, text[pos:pos+len(ch)], ch, "chunk %d is not a contiguous slice of the source", i)
		if i < len(chunks)-1 {
			pos += len(ch) - c.Overlap
		}
	}

	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		shared := prev[len(prev)-c.Overlap:]
		assert.True(t, strings.HasPrefix(chunks[i], shared), "chunk %d does not start with the previous chunk's tail", i)
	}
}

func TestSplitPrefersParagraphBoundaries(t *testing.T) {
	c := NewChunker(200, 40)
	text := policyText(10)

	chunks := c.Split(text)
	require.Greater(t, len(chunks), 1)

	// The source is paragraph-structured, so at least one cut should land on
	// a blank-line boundary rather than mid-word.
	boundaryCuts := 0
	for _, ch := range chunks[:len(chunks)-1] {
		if strings.HasSuffix(ch, "\n\n") || strings.HasSuffix(ch, ". ") || strings.HasSuffix(ch, "\n") {
			boundaryCuts++
		}
	}
	assert.Greater(t, boundaryCuts, 0)
}

func TestReassembleRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		c    Chunker
		text string
	}{
		{"default settings", NewChunker(800, 150), policyText(20)},
		{"small chunks", NewChunker(120, 30), policyText(8)},
		{"no natural boundaries", NewChunker(100, 20), strings.Repeat("x", 950)},
		{"single chunk", NewChunker(800, 150), "fits in one chunk"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chunks := tc.c.Split(tc.text)
			assert.Equal(t, tc.text, tc.c.Reassemble(chunks))
		})
	}
}

func TestSplitDeterministic(t *testing.T) {
	c := NewChunker(200, 40)
	text := policyText(12)
	assert.Equal(t, c.Split(text), c.Split(text))
}
