// Package retrieval supplies style context for generation: reference documents are
// split into overlapping chunks, embedded into an immutable in-memory index and
// searched by cosine similarity.
package retrieval

import "context"

// Document is a reference document. It is never mutated after creation.
type Document struct {
	SourceID string
	Content  string
}

// Chunk is a contiguous piece of one Document, held by value in the index.
type Chunk struct {
	SourceID string
	// Index is the position of the chunk within its document.
	Index   int
	Content string
	// OverlapWithPrev counts the leading characters shared with the previous chunk.
	OverlapWithPrev int
}

// Match is a chunk returned by a similarity search.
type Match struct {
	Chunk Chunk
	Score float64
}

// Embedder maps text into a vector space. Documents and queries must share one space.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}
