package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	"golang.org/x/time/rate"
)

// EmbeddingSimilarity compares texts by the cosine similarity of their
// Gemini embeddings. Long candidate text is chunked and the best chunk wins.
type EmbeddingSimilarity struct {
	gemini       GeminiService
	cache        EmbeddingCache
	chunker      TextChunker
	limiter      *rate.Limiter
	chunkSize    int
	chunkOverlap int
}

// NewEmbeddingSimilarity builds the vector comparator. cache may be nil.
func NewEmbeddingSimilarity(gemini GeminiService, cache EmbeddingCache, chunker TextChunker, limiter *rate.Limiter, chunkSize, chunkOverlap int) *EmbeddingSimilarity {
	return &EmbeddingSimilarity{
		gemini:       gemini,
		cache:        cache,
		chunker:      chunker,
		limiter:      limiter,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

func (s *EmbeddingSimilarity) Similarity(ctx context.Context, expected, candidate string) (float64, error) {
	if strings.TrimSpace(expected) == "" || strings.TrimSpace(candidate) == "" {
		return 0, nil
	}

	want, err := s.embed(ctx, expected)
	if err != nil {
		return 0, err
	}

	chunks := s.chunker.ChunkText(candidate, s.chunkSize, s.chunkOverlap)
	best := 0.0
	for _, chunk := range chunks {
		got, err := s.embed(ctx, chunk)
		if err != nil {
			return 0, err
		}
		if sim := cosine(want, got); sim > best {
			best = sim
		}
	}
	return best, nil
}

func (s *EmbeddingSimilarity) embed(ctx context.Context, text string) ([]float32, error) {
	model := s.gemini.EmbedModel()

	if s.cache != nil {
		vec, ok, err := s.cache.Get(ctx, model, text)
		if err != nil {
			log.Printf("⚠️ Embedding cache read failed: %v\n", err)
		} else if ok {
			return vec, nil
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	vec, err := s.gemini.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, model, text, vec); err != nil {
			log.Printf("⚠️ Embedding cache write failed: %v\n", err)
		}
	}
	return vec, nil
}

// cosine returns the cosine similarity clamped to [0, 1].
func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return math.Max(0, math.Min(1, dot/(math.Sqrt(na)*math.Sqrt(nb))))
}

// LLMSimilarity asks Gemini to judge how well candidate text satisfies a
// requirement.
type LLMSimilarity struct {
	gemini     GeminiService
	prompts    *PromptBuilder
	limiter    *rate.Limiter
	maxRetries int
}

func NewLLMSimilarity(gemini GeminiService, limiter *rate.Limiter, maxRetries int) *LLMSimilarity {
	return &LLMSimilarity{
		gemini:     gemini,
		prompts:    NewPromptBuilder(),
		limiter:    limiter,
		maxRetries: maxRetries,
	}
}

func (s *LLMSimilarity) Similarity(ctx context.Context, expected, candidate string) (float64, error) {
	if strings.TrimSpace(expected) == "" || strings.TrimSpace(candidate) == "" {
		return 0, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit wait: %w", err)
	}

	prompt := s.prompts.BuildSimilarityPrompt(expected, candidate)
	response, err := s.gemini.GenerateTextWithRetry(ctx, prompt, 0, s.maxRetries)
	if err != nil {
		return 0, fmt.Errorf("failed to judge similarity: %w", err)
	}

	var verdict SimilarityVerdict
	if err := parseJSONResponse(response, &verdict); err != nil {
		return 0, err
	}
	return math.Max(0, math.Min(1, verdict.Similarity)), nil
}
