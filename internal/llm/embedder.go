// Package llm - embedder.go embeds reference chunks and queries with Gemini.
package llm

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/sync/errgroup"
)

// Embedding batch limits.
const (
	MaxEmbedBatchSize   = 100
	DefaultEmbedWorkers = 4
)

type batchFunc func(ctx context.Context, texts []string) ([][]float32, error)
type queryFunc func(ctx context.Context, text string) ([]float32, error)

// GeminiEmbedder embeds documents and queries into one vector space. Documents
// are sent in batches of at most MaxEmbedBatchSize, several batches at a time.
type GeminiEmbedder struct {
	batchSize  int
	workers    int
	embedBatch batchFunc
	embedQuery queryFunc
}

func newGeminiEmbedder(client *genai.Client, modelName string) *GeminiEmbedder {
	if modelName == "" {
		modelName = DefaultEmbeddingModel
	}

	// Separate handles so the task types never race.
	docModel := client.EmbeddingModel(modelName)
	docModel.TaskType = genai.TaskTypeRetrievalDocument
	queryModel := client.EmbeddingModel(modelName)
	queryModel.TaskType = genai.TaskTypeRetrievalQuery

	return &GeminiEmbedder{
		batchSize: MaxEmbedBatchSize,
		workers:   DefaultEmbedWorkers,
		embedBatch: func(ctx context.Context, texts []string) ([][]float32, error) {
			batch := docModel.NewBatch()
			for _, t := range texts {
				batch.AddContent(genai.Text(t))
			}
			resp, err := docModel.BatchEmbedContents(ctx, batch)
			if err != nil {
				return nil, err
			}
			vectors := make([][]float32, len(resp.Embeddings))
			for i, e := range resp.Embeddings {
				if e != nil {
					vectors[i] = e.Values
				}
			}
			return vectors, nil
		},
		embedQuery: func(ctx context.Context, text string) ([]float32, error) {
			resp, err := queryModel.EmbedContent(ctx, genai.Text(text))
			if err != nil {
				return nil, err
			}
			if resp.Embedding == nil {
				return nil, fmt.Errorf("empty embedding in response")
			}
			return resp.Embedding.Values, nil
		},
	}
}

// EmbedDocuments embeds texts in order.
func (e *GeminiEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	if len(texts) == 0 {
		return vectors, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))
		g.Go(func() error {
			batch, err := e.embedBatch(gctx, texts[start:end])
			if err != nil {
				return &GenerationError{Message: fmt.Sprintf("failed to embed batch %d-%d", start, end), Cause: err}
			}
			if len(batch) != end-start {
				return &GenerationError{Message: fmt.Sprintf("embedding batch %d-%d returned %d vectors", start, end, len(batch))}
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// EmbedQuery embeds a single retrieval query.
func (e *GeminiEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vector, err := e.embedQuery(ctx, text)
	if err != nil {
		return nil, &GenerationError{Message: "failed to embed query", Cause: err}
	}
	return vector, nil
}
