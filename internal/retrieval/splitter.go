package retrieval

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Chunking defaults, in characters.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// DefaultSeparators go from paragraph to line to word to character.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter recursively splits text into chunks of at most ChunkSize characters,
// preferring the coarsest separator that keeps pieces under the limit. Consecutive
// chunks from one merge run share up to ChunkOverlap characters.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
}

// NewSplitter validates the window and returns a Splitter using DefaultSeparators.
func NewSplitter(chunkSize, chunkOverlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", chunkSize, chunkOverlap)
	}
	return &Splitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		Separators:   DefaultSeparators,
	}, nil
}

type piece struct {
	text    string
	overlap int
}

// Split chunks one document.
func (s *Splitter) Split(doc Document) []Chunk {
	pieces := s.splitText(doc.Content, s.separators())
	chunks := make([]Chunk, 0, len(pieces))
	for i, p := range pieces {
		chunks = append(chunks, Chunk{
			SourceID:        doc.SourceID,
			Index:           i,
			Content:         p.text,
			OverlapWithPrev: p.overlap,
		})
	}
	return chunks
}

// SplitDocuments chunks every document in order.
func (s *Splitter) SplitDocuments(docs []Document) []Chunk {
	var chunks []Chunk
	for _, doc := range docs {
		chunks = append(chunks, s.Split(doc)...)
	}
	return chunks
}

func (s *Splitter) separators() []string {
	if len(s.Separators) == 0 {
		return DefaultSeparators
	}
	return s.Separators
}

func (s *Splitter) splitText(text string, separators []string) []piece {
	separator := separators[len(separators)-1]
	var next []string
	for i, sep := range separators {
		if sep == "" {
			separator = ""
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			next = separators[i+1:]
			break
		}
	}

	var out []piece
	var small []string
	for _, split := range splitKeepingSeparator(text, separator) {
		if runeLen(split) < s.ChunkSize {
			small = append(small, split)
			continue
		}
		if len(small) > 0 {
			out = append(out, s.merge(small)...)
			small = nil
		}
		if len(next) == 0 {
			out = appendPiece(out, []string{split}, 0)
		} else {
			out = append(out, s.splitText(split, next)...)
		}
	}
	if len(small) > 0 {
		out = append(out, s.merge(small)...)
	}
	return out
}

// merge greedily packs splits into chunks, carrying the tail of each chunk forward
// while it is longer than the overlap.
func (s *Splitter) merge(splits []string) []piece {
	var out []piece
	var current []string
	total, carried := 0, 0

	for _, split := range splits {
		n := runeLen(split)
		if total+n > s.ChunkSize && len(current) > 0 {
			out = appendPiece(out, current, carried)
			for total > s.ChunkOverlap || (total+n > s.ChunkSize && total > 0) {
				total -= runeLen(current[0])
				current = current[1:]
			}
			carried = total
		}
		current = append(current, split)
		total += n
	}

	return appendPiece(out, current, carried)
}

// appendPiece joins parts, trims surrounding whitespace and drops empty results.
func appendPiece(out []piece, parts []string, carried int) []piece {
	joined := strings.Join(parts, "")
	left := strings.TrimLeftFunc(joined, unicode.IsSpace)
	text := strings.TrimRightFunc(left, unicode.IsSpace)
	if text == "" {
		return out
	}

	overlap := carried - (runeLen(joined) - runeLen(left))
	if overlap < 0 {
		overlap = 0
	}
	if n := runeLen(text); overlap > n {
		overlap = n
	}
	return append(out, piece{text: text, overlap: overlap})
}

// splitKeepingSeparator splits text on sep, keeping sep at the start of each
// following piece. An empty sep splits into characters.
func splitKeepingSeparator(text, sep string) []string {
	if sep == "" {
		out := make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}

	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	if parts[0] != "" {
		out = append(out, parts[0])
	}
	for _, p := range parts[1:] {
		out = append(out, sep+p)
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
