package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func unlimited() *rate.Limiter {
	return rate.NewLimiter(rate.Inf, 1)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, cosine([]float32{1, 2, 3}, []float32{2, 4, 6}), 1e-9)
	assert.Equal(t, 0.0, cosine([]float32{1, 0}, []float32{0, 1}))
	assert.Equal(t, 0.0, cosine([]float32{1, 0}, []float32{-1, 0}), "negative similarity is clamped")
	assert.Equal(t, 0.0, cosine([]float32{1}, []float32{1, 2}))
	assert.Equal(t, 0.0, cosine(nil, nil))
}

func TestEmbeddingSimilarity_BestChunkWins(t *testing.T) {
	gemini := &fakeGemini{embeddings: map[string][]float32{
		"kubernetes operations": {1, 0, 0},
		"first paragraph":       {0, 1, 0},
		"ran kubernetes":        {1, 0.1, 0},
	}}
	sim := NewEmbeddingSimilarity(gemini, nil, NewTextChunker(), unlimited(), 16, 0)

	score, err := sim.Similarity(context.Background(), "kubernetes operations", "first paragraph\n\nran kubernetes")
	require.NoError(t, err)
	assert.Greater(t, score, 0.99)
}

func TestEmbeddingSimilarity_UsesCache(t *testing.T) {
	gemini := &fakeGemini{}
	cache := newFakeCache()
	sim := NewEmbeddingSimilarity(gemini, cache, NewTextChunker(), unlimited(), 1000, 0)

	_, err := sim.Similarity(context.Background(), "go", "golang services")
	require.NoError(t, err)
	assert.Equal(t, 2, gemini.embedCalls)

	_, err = sim.Similarity(context.Background(), "go", "golang services")
	require.NoError(t, err)
	assert.Equal(t, 2, gemini.embedCalls, "second call is served from the cache")
}

func TestEmbeddingSimilarity_CacheErrorFallsBack(t *testing.T) {
	gemini := &fakeGemini{}
	cache := newFakeCache()
	cache.getErr = errors.New("qdrant unavailable")
	sim := NewEmbeddingSimilarity(gemini, cache, NewTextChunker(), unlimited(), 1000, 0)

	score, err := sim.Similarity(context.Background(), "go", "golang")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestEmbeddingSimilarity_BackendError(t *testing.T) {
	gemini := &fakeGemini{err: errors.New("quota exceeded")}
	sim := NewEmbeddingSimilarity(gemini, nil, NewTextChunker(), unlimited(), 1000, 0)

	_, err := sim.Similarity(context.Background(), "go", "golang")
	assert.Error(t, err)
}

func TestEmbeddingSimilarity_EmptyInput(t *testing.T) {
	gemini := &fakeGemini{}
	sim := NewEmbeddingSimilarity(gemini, nil, NewTextChunker(), unlimited(), 1000, 0)

	score, err := sim.Similarity(context.Background(), "go", "   ")
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
	assert.Equal(t, 0, gemini.embedCalls)
}

func TestLLMSimilarity_ParsesVerdict(t *testing.T) {
	gemini := &fakeGemini{text: "```json\n{\"similarity\": 0.75, \"reason\": \"close\"}\n```"}
	sim := NewLLMSimilarity(gemini, unlimited(), 1)

	score, err := sim.Similarity(context.Background(), "lead a team", "managed five engineers")
	require.NoError(t, err)
	assert.Equal(t, 0.75, score)
}

func TestLLMSimilarity_ClampsOutOfRange(t *testing.T) {
	gemini := &fakeGemini{text: `{"similarity": 1.4}`}
	sim := NewLLMSimilarity(gemini, unlimited(), 1)

	score, err := sim.Similarity(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
}

func TestLLMSimilarity_BadResponse(t *testing.T) {
	gemini := &fakeGemini{text: "I cannot answer that"}
	sim := NewLLMSimilarity(gemini, unlimited(), 1)

	_, err := sim.Similarity(context.Background(), "a", "b")
	assert.Error(t, err)
}

func TestLLMSimilarity_CancelledContext(t *testing.T) {
	limiter := rate.NewLimiter(rate.Every(1e12), 1)
	limiter.Allow()
	sim := NewLLMSimilarity(&fakeGemini{text: `{"similarity": 1}`}, limiter, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.Similarity(ctx, "a", "b")
	assert.Error(t, err)
}
