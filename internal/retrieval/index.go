package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// Index is an immutable in-memory vector index. Build a new one instead of
// modifying an existing one.
type Index struct {
	entries   []entry
	dimension int
}

type entry struct {
	chunk  Chunk
	vector []float32
	norm   float64
}

// BuildIndex embeds every chunk and returns a new Index over them.
func BuildIndex(ctx context.Context, embedder Embedder, chunks []Chunk) (*Index, error) {
	if len(chunks) == 0 {
		return &Index{}, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed %d chunks: %w", len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	ix := &Index{entries: make([]entry, len(chunks))}
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("empty embedding for chunk %d of %s", chunks[i].Index, chunks[i].SourceID)
		}
		if ix.dimension == 0 {
			ix.dimension = len(v)
		} else if len(v) != ix.dimension {
			return nil, fmt.Errorf("embedding dimension mismatch: chunk %d has %d, expected %d", i, len(v), ix.dimension)
		}
		ix.entries[i] = entry{chunk: chunks[i], vector: v, norm: norm(v)}
	}
	return ix, nil
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.entries)
}

// Dimension returns the embedding dimension, or 0 for an empty index.
func (ix *Index) Dimension() int {
	if ix == nil {
		return 0
	}
	return ix.dimension
}

// Search returns up to k chunks ordered by descending cosine similarity to query.
// Equal scores keep index order.
func (ix *Index) Search(query []float32, k int) []Match {
	if ix.Len() == 0 || k <= 0 || len(query) != ix.dimension {
		return nil
	}

	qNorm := norm(query)
	matches := make([]Match, len(ix.entries))
	for i, e := range ix.entries {
		matches[i] = Match{Chunk: e.chunk, Score: cosine(query, qNorm, e.vector, e.norm)}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if k < len(matches) {
		matches = matches[:k]
	}
	return matches
}

func cosine(a []float32, aNorm float64, b []float32, bNorm float64) float64 {
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (aNorm * bNorm)
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
