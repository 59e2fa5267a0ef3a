// Package chunk splits document text into overlapping chunks for embedding.
package chunk

import (
	"strings"
)

// boundaries are the break markers tried in priority order when shortening a
// chunk to a natural boundary. Sentence ends beat paragraph breaks beat
// line breaks beat plain spaces.
var boundaries = []string{". ", ".\n", "\n\n", "\n", " "}

// Split cuts text into overlapping chunks of at most maxSize characters.
//
// A chunk that does not reach the end of the text is shortened to the last
// boundary marker found in it, but only when that boundary sits past
// maxSize/2; otherwise tiny chunks would pile up around early markers.
// Chunks are whitespace-trimmed and empty ones dropped. The cursor advances
// by the chunk length minus overlap, with forced forward progress so the
// split always terminates.
//
// Sizes are in characters (runes), not bytes. Split is a pure function.
func Split(text string, maxSize, overlap int) []string {
	if maxSize <= 0 {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxSize {
		overlap = maxSize - 1
	}

	runes := []rune(text)
	var chunks []string

	start := 0
	for start < len(runes) {
		// end stays unclamped for cursor arithmetic; only slicing clamps.
		end := start + maxSize
		sliceEnd := min(end, len(runes))
		slice := runes[start:sliceEnd]

		if end < len(runes) {
			for _, sep := range boundaries {
				if idx := lastIndexRunes(slice, []rune(sep)); idx > maxSize/2 {
					slice = slice[:idx+len([]rune(sep))]
					end = start + len(slice)
					sliceEnd = end
					break
				}
			}
		}

		if c := strings.TrimSpace(string(slice)); c != "" {
			chunks = append(chunks, c)
		}

		next := end - overlap
		if next <= start {
			// Overlap swallowed the whole advance; jump past the slice.
			next = sliceEnd
		}
		start = next
	}

	return chunks
}

// lastIndexRunes returns the index of the last occurrence of sep in s,
// or -1 if sep is not present. Indices are rune offsets.
func lastIndexRunes(s, sep []rune) int {
	if len(sep) == 0 || len(sep) > len(s) {
		return -1
	}
	for i := len(s) - len(sep); i >= 0; i-- {
		match := true
		for j := range sep {
			if s[i+j] != sep[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// WordCount counts whitespace-separated words, matching how document word
// counts are reported in listings and stats.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
