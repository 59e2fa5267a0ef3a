package chunk

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEmpty(t *testing.T) {
	assert.Empty(t, Split("", 512, 50))
	assert.Empty(t, Split("   \n\t  ", 512, 50))
}

func TestSplitShortText(t *testing.T) {
	chunks := Split("hello world", 512, 50)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0])
}

func TestSplitRespectsMaxSize(t *testing.T) {
	text := strings.Repeat("word ", 400) // 2000 chars
	chunks := Split(text, 100, 10)

	for i, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 100, "chunk %d exceeds max size", i)
	}
}

func TestSplitPrefersSentenceBoundary(t *testing.T) {
	// One sentence end well past maxSize/2; the first chunk should stop there.
	text := strings.Repeat("a", 60) + ". " + strings.Repeat("b", 200)
	chunks := Split(text, 100, 0)

	require.NotEmpty(t, chunks)
	assert.Equal(t, strings.Repeat("a", 60)+".", chunks[0])
}

func TestSplitIgnoresEarlyBoundary(t *testing.T) {
	// Sentence end before maxSize/2 must not shorten the chunk.
	text := strings.Repeat("a", 20) + ". " + strings.Repeat("b", 200)
	chunks := Split(text, 100, 0)

	require.NotEmpty(t, chunks)
	assert.Greater(t, len([]rune(chunks[0])), 50)
}

func TestSplitTerminatesWithLargeOverlap(t *testing.T) {
	// Overlap >= maxSize would stall the cursor without forced progress.
	text := strings.Repeat("x", 1000)
	chunks := Split(text, 10, 50)

	assert.NotEmpty(t, chunks)
	assert.LessOrEqual(t, len(chunks), 1000)
}

func TestSplitChunkCountBound(t *testing.T) {
	tests := []struct {
		length, maxSize, overlap int
	}{
		{2000, 512, 50},
		{2000, 100, 0},
		{500, 64, 16},
		{10000, 256, 128},
	}

	for _, tt := range tests {
		name := fmt.Sprintf("len=%d,max=%d,overlap=%d", tt.length, tt.maxSize, tt.overlap)
		t.Run(name, func(t *testing.T) {
			text := strings.Repeat("lorem ipsum dolor sit amet. ", tt.length/28+1)[:tt.length]
			chunks := Split(text, tt.maxSize, tt.overlap)

			stride := tt.maxSize - tt.overlap
			bound := (tt.length+stride-1)/stride + 1
			assert.LessOrEqual(t, len(chunks), bound)
			assert.NotEmpty(t, chunks)
		})
	}
}

func TestSplitReconstructsContent(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog. " +
		"Pack my box with five dozen liquor jugs. " +
		"How vexingly quick daft zebras jump."
	chunks := Split(text, 60, 10)

	// Every chunk is literal document text, and together they cover all words.
	joined := strings.Join(chunks, " ")
	for _, c := range chunks {
		assert.Contains(t, text, c)
	}
	for _, word := range strings.Fields(text) {
		assert.Contains(t, joined, word)
	}
}

func TestSplit2000CharDocument(t *testing.T) {
	// 2000 characters with regular sentence boundaries: expect about 5 chunks
	// at the default 512/50 settings, with boundary-snap variance.
	var b strings.Builder
	i := 0
	for b.Len() < 2000 {
		fmt.Fprintf(&b, "This is sentence number %d of the report. ", i)
		i++
	}
	text := b.String()[:2000]

	chunks := Split(text, 512, 50)
	assert.GreaterOrEqual(t, len(chunks), 4)
	assert.LessOrEqual(t, len(chunks), 6)
}

func TestSplitUnicode(t *testing.T) {
	// Sizes are runes: multibyte text must not be cut mid-character.
	text := strings.Repeat("héllo wörld. ", 50)
	chunks := Split(text, 40, 5)

	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c))
		assert.Contains(t, text, c)
	}
}

func TestSplitZeroMaxSize(t *testing.T) {
	assert.Nil(t, Split("some text", 0, 0))
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 0, WordCount("   "))
	assert.Equal(t, 3, WordCount("one two three"))
	assert.Equal(t, 3, WordCount("  one\ttwo\nthree  "))
}
