package ingest

import (
	"fmt"
	"iter"
	"strings"
	"unicode/utf8"
)

// separators is the boundary hierarchy used when choosing a split point,
// ordered coarsest first: paragraph, line, sentence, word. A hard cut at the
// size limit is the final fallback.
var separators = []string{"\n\n", "\n", ". ", " "}

// Chunker splits extracted document text into overlapping spans of at most
// `size` runes, with consecutive spans sharing exactly `overlap` runes.
// Splitting prefers the coarsest separator available inside the window so
// chunks do not arbitrarily sever semantic units.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a chunker for the given target size and overlap,
// both measured in runes. The overlap must be smaller than the size.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be greater than 0, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, size), got %d for size %d", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Chunks returns a lazy, restartable sequence of chunks of text.
// Whitespace-only chunks are dropped; all other chunks are exact substrings of
// the input, so joining them with the overlap removed reconstructs the text.
func (c *Chunker) Chunks(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		runes := []rune(text)
		start := 0
		for start < len(runes) {
			if start+c.size >= len(runes) {
				// Last chunk takes whatever remains.
				chunk := string(runes[start:])
				if strings.TrimSpace(chunk) != "" {
					yield(chunk)
				}
				return
			}

			split := c.splitPoint(runes[start : start+c.size])
			chunk := string(runes[start : start+split])
			if strings.TrimSpace(chunk) != "" {
				if !yield(chunk) {
					return
				}
			}
			start += split - c.overlap
		}
	}
}

// Split collects the chunk sequence into a slice.
func (c *Chunker) Split(text string) []string {
	var chunks []string
	for chunk := range c.Chunks(text) {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// splitPoint returns the length, in runes, of the chunk to cut from the front
// of the window. It prefers the coarsest separator whose cut still makes
// progress past the overlap; otherwise it hard-cuts at the window end.
func (c *Chunker) splitPoint(window []rune) int {
	text := string(window)
	for _, sep := range separators {
		idx := strings.LastIndex(text, sep)
		if idx == -1 {
			continue
		}
		point := utf8.RuneCountInString(text[:idx+len(sep)])
		if point > c.overlap {
			return point
		}
	}
	return len(window)
}
