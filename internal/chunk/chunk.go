// Package chunk splits extracted page text into overlapping windows
// suitable for embedding.
package chunk

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidSize indicates the chunk size is not positive.
	ErrInvalidSize = errors.New("chunk size must be positive")

	// ErrOverlapTooLarge indicates the overlap is not strictly smaller than
	// the chunk size. Allowing it would make the stride non-positive and the
	// split loop would never terminate.
	ErrOverlapTooLarge = errors.New("chunk overlap must be smaller than chunk size")
)

// Splitter produces overlapping fixed-size windows over a text.
// Sizes are counted in runes so multi-byte content never splits mid-character.
type Splitter struct {
	size    int
	overlap int
}

// NewSplitter creates a Splitter with the given window size and overlap.
func NewSplitter(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: size %d, overlap %d", ErrOverlapTooLarge, size, overlap)
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

// Split cuts text into windows of at most size runes, each window starting
// size-overlap runes after the previous one. The final window may be
// shorter. Empty or whitespace-only input yields no chunks.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	stride := s.size - s.overlap

	var chunks []string
	for start := 0; start < len(runes); start += stride {
		end := start + s.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// Size returns the configured window size.
func (s *Splitter) Size() int { return s.size }

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int { return s.overlap }
