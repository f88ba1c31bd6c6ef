package matching

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Similarity compares an expected text with candidate text and returns a
// value in [0, 1]. Implementations must be deterministic for equal inputs.
type Similarity interface {
	Similarity(ctx context.Context, expected, candidate string) (float64, error)
}

// SimilarityFunc adapts a function to Similarity.
type SimilarityFunc func(ctx context.Context, expected, candidate string) (float64, error)

func (f SimilarityFunc) Similarity(ctx context.Context, expected, candidate string) (float64, error) {
	return f(ctx, expected, candidate)
}

var punctuation = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

func tokenSet(text string) map[string]struct{} {
	text = punctuation.ReplaceAllString(strings.ToLower(text), "")
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(text) {
		set[tok] = struct{}{}
	}
	return set
}

// Jaccard is token-set overlap: |A ∩ B| / |A ∪ B|.
type Jaccard struct{}

func (Jaccard) Similarity(_ context.Context, expected, candidate string) (float64, error) {
	a, b := tokenSet(expected), tokenSet(candidate)
	if len(a) == 0 || len(b) == 0 {
		return 0, nil
	}

	inter := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union), nil
}

// Fuzzy is the normalized Levenshtein ratio of the lower-cased texts.
type Fuzzy struct{}

func (Fuzzy) Similarity(_ context.Context, expected, candidate string) (float64, error) {
	return levenshteinRatio(normalize(expected), normalize(candidate)), nil
}

func levenshteinRatio(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// normalize lower-cases and collapses whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
