package rag

import (
	"strings"

	appErr "github.com/docuchat/docuchat/internal/pkg/errors"
)

const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 150
)

// Chunker splits extracted text into overlapping segments measured in
// runes. Each chunk after the first starts exactly overlap runes before the
// previous chunk's end, so adjacent chunks share that many runes verbatim
// and the original text can be reconstructed by stripping the overlap.
type Chunker struct {
	size     int
	overlap  int
	lookback int
}

func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}
	lookback := overlap
	if max := size - overlap - 1; lookback > max {
		lookback = max
	}
	return &Chunker{size: size, overlap: overlap, lookback: lookback}
}

func (c *Chunker) Size() int    { return c.size }
func (c *Chunker) Overlap() int { return c.overlap }

// Split chunks text into ordered segments. Whitespace-only input is an
// error: a document that produces no chunks must fail ingestion, not slip
// through as an empty but "ready" document.
func (c *Chunker) Split(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, appErr.ErrEmptyDocument
	}
	runes := []rune(text)
	if len(runes) <= c.size {
		return []string{text}, nil
	}
	var chunks []string
	start := 0
	for {
		end := start + c.size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		end = c.snap(runes, start, end)
		chunks = append(chunks, string(runes[start:end]))
		next := end - c.overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks, nil
}

// Boundary preference for chunk cuts, strongest first. A hard mid-word cut
// happens only when none of these appear inside the lookback window.
var boundaries = []string{"\n\n", ". ", "! ", "? ", "\n", " "}

func (c *Chunker) snap(runes []rune, start, end int) int {
	windowStart := end - c.lookback
	if windowStart < start+1 {
		windowStart = start + 1
	}
	window := string(runes[windowStart:end])
	for _, boundary := range boundaries {
		idx := strings.LastIndex(window, boundary)
		if idx < 0 {
			continue
		}
		// LastIndex is a byte offset into the window; the window needs
		// rune-wise re-measuring before mapping back.
		cut := windowStart + len([]rune(window[:idx])) + len([]rune(boundary))
		if cut > start && cut <= end {
			return cut
		}
	}
	return end
}
