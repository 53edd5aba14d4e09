// Package chunker splits document text into overlapping, boundary-aware
// windows with stable character offsets. Chunking is fully deterministic:
// citation offsets are derived from chunk boundaries and must survive
// re-ingestion unchanged.
package chunker

import (
	"regexp"
	"strings"

	"github.com/pkarels/appealsmith/internal/model"
)

// DefaultSize is the default chunk size in characters.
const DefaultSize = 1200

// DefaultOverlap is the default overlap between adjacent chunks.
const DefaultOverlap = 200

// breakWindow is how far back from the candidate end we search for a
// natural break point.
const breakWindow = 200

// minChunkRatio rejects break points that would leave a chunk shorter than
// this fraction of the configured size.
const minChunkRatio = 0.4

// sentenceBreak matches terminal punctuation followed by whitespace and a
// capital letter. The next chunk starts at the capital.
var sentenceBreak = regexp.MustCompile(`[.!?]\s+[A-Z]`)

// Chunker produces chunks of a configured size and overlap.
type Chunker struct {
	size    int
	overlap int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithSize sets the target chunk size in characters.
func WithSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.size = size
		}
	}
}

// WithOverlap sets the overlap between adjacent chunks.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a Chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		size:    DefaultSize,
		overlap: DefaultOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chunk splits text into ordered, overlapping chunks. It always terminates
// and returns nil for empty or whitespace-only input. Identical
// (text, size, overlap) inputs always produce identical boundaries.
func (c *Chunker) Chunk(documentID, text string) []model.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []model.Chunk
	cursor := 0

	for cursor < len(text) {
		end := cursor + c.size
		if end > len(text) {
			end = len(text)
		}

		breakpoint := end
		if end < len(text) {
			breakpoint = c.findBreak(text, cursor, end)
		}

		piece := text[cursor:breakpoint]
		if strings.TrimSpace(piece) != "" {
			chunks = append(chunks, model.Chunk{
				DocumentID: documentID,
				Index:      len(chunks),
				Text:       piece,
				Start:      cursor,
				End:        breakpoint,
			})
		}

		if breakpoint >= len(text) {
			break
		}

		next := breakpoint - c.overlap
		if next < cursor+1 {
			// Guarantees forward progress even when overlap >= size.
			next = cursor + 1
		}
		cursor = next
	}

	return chunks
}

// findBreak searches the last breakWindow characters before end for, in
// priority order: a paragraph break, a sentence boundary, the last space.
// Priority wins over position. A break that would leave the chunk shorter
// than minChunkRatio of the configured size is ignored.
func (c *Chunker) findBreak(text string, cursor, end int) int {
	winStart := end - breakWindow
	if winStart < cursor {
		winStart = cursor
	}
	window := text[winStart:end]

	breakpoint := -1
	if idx := strings.LastIndex(window, "\n\n"); idx >= 0 {
		breakpoint = winStart + idx + 2
	} else if locs := sentenceBreak.FindAllStringIndex(window, -1); len(locs) > 0 {
		// The match ends on the capital letter that opens the next sentence.
		last := locs[len(locs)-1]
		breakpoint = winStart + last[1] - 1
	} else if idx := strings.LastIndex(window, " "); idx >= 0 {
		breakpoint = winStart + idx + 1
	}

	if breakpoint <= cursor {
		return end
	}
	if float64(breakpoint-cursor) < minChunkRatio*float64(c.size) {
		return end
	}
	return breakpoint
}
