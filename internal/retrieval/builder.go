package retrieval

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// DefaultTopK is the number of chunks returned by Query.
const DefaultTopK = 3

// BuilderOptions configures a Builder.
type BuilderOptions struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	Logger       *zerolog.Logger
}

// Stats describes the currently active index.
type Stats struct {
	Documents int
	Chunks    int
}

// snapshot pairs an index with the document count it was built from.
type snapshot struct {
	index     *Index
	documents int
}

// Builder owns the session's reference index. Load rebuilds the index wholesale and
// swaps it in atomically; Query always reads a complete snapshot.
type Builder struct {
	embedder Embedder
	splitter *Splitter
	topK     int
	logger   zerolog.Logger

	loadMu  sync.Mutex
	current atomic.Pointer[snapshot]
}

// NewBuilder creates a Builder with an empty index.
func NewBuilder(embedder Embedder, opts BuilderOptions) (*Builder, error) {
	if embedder == nil {
		return nil, errors.New("retrieval builder requires an embedder")
	}
	// Chunking defaults apply only when no chunk size is given; an explicit
	// overlap of 0 is kept.
	if opts.ChunkSize == 0 {
		opts.ChunkSize = DefaultChunkSize
		if opts.ChunkOverlap == 0 {
			opts.ChunkOverlap = DefaultChunkOverlap
		}
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}

	splitter, err := NewSplitter(opts.ChunkSize, opts.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	b := &Builder{
		embedder: embedder,
		splitter: splitter,
		topK:     opts.TopK,
		logger:   logger.With().Str("component", "retrieval").Logger(),
	}
	b.current.Store(&snapshot{index: &Index{}})
	return b, nil
}

// Load replaces the index with one built from docs and returns the document count.
// On failure the previous index stays active. Loads are serialized.
func (b *Builder) Load(ctx context.Context, docs []Document) (int, error) {
	b.loadMu.Lock()
	defer b.loadMu.Unlock()

	chunks := b.splitter.SplitDocuments(docs)
	b.logger.Debug().Int("documents", len(docs)).Int("chunks", len(chunks)).Msg("building index")

	index, err := BuildIndex(ctx, b.embedder, chunks)
	if err != nil {
		b.logger.Error().Err(err).Msg("index build failed, keeping previous index")
		return 0, err
	}

	b.current.Store(&snapshot{index: index, documents: len(docs)})
	b.logger.Info().Int("documents", len(docs)).Int("chunks", index.Len()).Msg("index rebuilt")
	return len(docs), nil
}

// Query returns the top-k chunk contents most similar to text, separated by blank
// lines. It returns "" when nothing is indexed or the query cannot be embedded.
func (b *Builder) Query(ctx context.Context, text string) string {
	matches, err := b.Retrieve(ctx, text)
	if err != nil {
		b.logger.Warn().Err(err).Msg("retrieval failed, continuing without context")
		return ""
	}

	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, m.Chunk.Content)
	}
	return strings.Join(parts, "\n\n")
}

// Retrieve returns the top-k matches for text. An empty index yields no matches
// and no error.
func (b *Builder) Retrieve(ctx context.Context, text string) ([]Match, error) {
	snap := b.current.Load()
	if snap.index.Len() == 0 || strings.TrimSpace(text) == "" {
		return nil, nil
	}

	vector, err := b.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	return snap.index.Search(vector, b.topK), nil
}

// Stats reports the size of the active index.
func (b *Builder) Stats() Stats {
	snap := b.current.Load()
	return Stats{Documents: snap.documents, Chunks: snap.index.Len()}
}
