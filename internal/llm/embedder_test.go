package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubEmbedder(batch batchFunc, query queryFunc) *GeminiEmbedder {
	return &GeminiEmbedder{
		batchSize:  MaxEmbedBatchSize,
		workers:    DefaultEmbedWorkers,
		embedBatch: batch,
		embedQuery: query,
	}
}

func TestEmbedDocuments_BatchesPreserveOrder(t *testing.T) {
	var mu sync.Mutex
	var sizes []int

	e := stubEmbedder(func(_ context.Context, texts []string) ([][]float32, error) {
		mu.Lock()
		sizes = append(sizes, len(texts))
		mu.Unlock()

		out := make([][]float32, len(texts))
		for i, t := range texts {
			var n float32
			_, _ = fmt.Sscanf(t, "chunk-%f", &n)
			out[i] = []float32{n}
		}
		return out, nil
	}, nil)

	texts := make([]string, 250)
	for i := range texts {
		texts[i] = fmt.Sprintf("chunk-%d", i)
	}

	vectors, err := e.EmbedDocuments(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, 250)
	for i, v := range vectors {
		assert.Equal(t, float32(i), v[0])
	}
	assert.ElementsMatch(t, []int{100, 100, 50}, sizes)
}

func TestEmbedDocuments_LimitsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	e := stubEmbedder(func(_ context.Context, texts []string) ([][]float32, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		defer inFlight.Add(-1)
		return make([][]float32, len(texts)), nil
	}, nil)
	e.batchSize = 1

	_, err := e.EmbedDocuments(context.Background(), make([]string, 40))
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(DefaultEmbedWorkers))
}

func TestEmbedDocuments_Errors(t *testing.T) {
	t.Run("upstream failure", func(t *testing.T) {
		upstream := errors.New("permission denied")
		e := stubEmbedder(func(context.Context, []string) ([][]float32, error) {
			return nil, upstream
		}, nil)

		_, err := e.EmbedDocuments(context.Background(), []string{"a"})
		var genErr *GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.ErrorIs(t, err, upstream)
	})

	t.Run("short batch", func(t *testing.T) {
		e := stubEmbedder(func(context.Context, []string) ([][]float32, error) {
			return [][]float32{{1}}, nil
		}, nil)

		_, err := e.EmbedDocuments(context.Background(), []string{"a", "b"})
		assert.ErrorContains(t, err, "returned 1 vectors")
	})
}

func TestEmbedDocuments_Empty(t *testing.T) {
	e := stubEmbedder(func(context.Context, []string) ([][]float32, error) {
		t.Fatal("should not be called")
		return nil, nil
	}, nil)

	vectors, err := e.EmbedDocuments(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestEmbedQuery(t *testing.T) {
	e := stubEmbedder(nil, func(_ context.Context, text string) ([]float32, error) {
		if text == "fail" {
			return nil, errors.New("timeout")
		}
		return []float32{1, 2, 3}, nil
	})

	v, err := e.EmbedQuery(context.Background(), "nurse")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, v)

	_, err = e.EmbedQuery(context.Background(), "fail")
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "failed to embed query", genErr.Message)
}
