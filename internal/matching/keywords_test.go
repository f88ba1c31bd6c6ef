package matching

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/talent-matcher/internal/models"
)

const resumeSample = `Backend engineer experienced in Go and python.
Managed team of five. Worked on Machine Learning pipelines with PostgreSQ1.
Built google cloud tooling.`

func TestKeywordMatcher_ExactWords(t *testing.T) {
	categories := []models.KeywordCategory{{
		Name:      "languages",
		MatchType: models.KeywordExact,
		Keywords: []models.KeywordEntry{
			{Keyword: "Go", Weight: models.KeywordWeight(2)},
			{Keyword: "Python", Weight: models.KeywordWeight(1)},
			{Keyword: "Rust", Weight: models.KeywordWeight(1)},
		},
	}}

	res := NewKeywordMatcher(88).Match(categories, resumeSample)

	assert.Equal(t, 4.0, res.TotalPossibleScore)
	assert.Equal(t, 3.0, res.TotalAchievedScore)
	assert.Equal(t, 75.0, res.OverallMatchScore)
	assert.Equal(t, 75.0, res.CategoryScores["languages"])
	assert.Equal(t, []string{"Go", "Python"}, res.MatchedKeywords)
	assert.Equal(t, []string{"Rust"}, res.MissingKeywords)

	require.Len(t, res.MatchedDetails["languages"], 2)
	assert.Equal(t, models.MatchedExactWord, res.MatchedDetails["languages"][0].MatchType)
	assert.Equal(t, "go", res.MatchedDetails["languages"][0].MatchedFormInText)
	require.Len(t, res.MissingDetails["languages"], 1)
	assert.Equal(t, 1.0, res.MissingDetails["languages"][0].Weight)
}

func TestKeywordMatcher_WordBoundary(t *testing.T) {
	assert.False(t, containsWord("built google tooling", "go"))
	assert.True(t, containsWord("knows c++ and go.", "c++"))
	assert.True(t, containsWord("go", "go"))
}

func TestKeywordMatcher_Phrase(t *testing.T) {
	categories := []models.KeywordCategory{{
		Name:     "domains",
		Keywords: []models.KeywordEntry{{Keyword: "machine learning", Weight: models.KeywordWeight(3)}},
	}}
	res := NewKeywordMatcher(88).Match(categories, resumeSample)

	require.Len(t, res.MatchedDetails["domains"], 1)
	assert.Equal(t, models.MatchedExactPhrase, res.MatchedDetails["domains"][0].MatchType)
	assert.Equal(t, 100.0, res.OverallMatchScore)
}

func TestKeywordMatcher_Variations(t *testing.T) {
	categories := []models.KeywordCategory{{
		Name:      "languages",
		MatchType: models.KeywordExact,
		Keywords:  []models.KeywordEntry{{Keyword: "Golang", Weight: models.KeywordWeight(1), Variations: []string{"Go"}}},
	}}
	res := NewKeywordMatcher(88).Match(categories, resumeSample)

	require.Len(t, res.MatchedDetails["languages"], 1)
	assert.Equal(t, "Golang", res.MatchedDetails["languages"][0].Keyword)
	assert.Equal(t, "go", res.MatchedDetails["languages"][0].MatchedFormInText)
}

func TestKeywordMatcher_Stemmed(t *testing.T) {
	entry := models.KeywordEntry{Keyword: "managing teams", Weight: models.KeywordWeight(1)}

	exact := NewKeywordMatcher(88).Match([]models.KeywordCategory{{Name: "lead", MatchType: models.KeywordExact, Keywords: []models.KeywordEntry{entry}}}, resumeSample)
	assert.Equal(t, 0.0, exact.OverallMatchScore, "exact categories do not stem")

	stemmed := NewKeywordMatcher(88).Match([]models.KeywordCategory{{Name: "lead", MatchType: models.KeywordStemmed, Keywords: []models.KeywordEntry{entry}}}, resumeSample)
	require.Len(t, stemmed.MatchedDetails["lead"], 1)
	assert.Equal(t, models.MatchedStemmed, stemmed.MatchedDetails["lead"][0].MatchType)
	assert.Equal(t, "managed team", stemmed.MatchedDetails["lead"][0].MatchedFormInText)
}

func TestKeywordMatcher_Fuzzy(t *testing.T) {
	entry := models.KeywordEntry{Keyword: "PostgreSQL", Weight: models.KeywordWeight(2)}

	stemmed := NewKeywordMatcher(88).Match([]models.KeywordCategory{{Name: "db", MatchType: models.KeywordStemmed, Keywords: []models.KeywordEntry{entry}}}, resumeSample)
	assert.Equal(t, 0.0, stemmed.TotalAchievedScore)

	fuzzy := NewKeywordMatcher(88).Match([]models.KeywordCategory{{Name: "db", MatchType: models.KeywordFuzzy, Keywords: []models.KeywordEntry{entry}}}, resumeSample)
	require.Len(t, fuzzy.MatchedDetails["db"], 1)
	assert.Equal(t, models.MatchedFuzzy, fuzzy.MatchedDetails["db"][0].MatchType)
	assert.Equal(t, "postgresq1", fuzzy.MatchedDetails["db"][0].MatchedFormInText)

	strict := NewKeywordMatcher(95).Match([]models.KeywordCategory{{Name: "db", MatchType: models.KeywordFuzzy, Keywords: []models.KeywordEntry{entry}}}, resumeSample)
	assert.Equal(t, 0.0, strict.TotalAchievedScore, "ratio 90 is below a threshold of 95")
}

func TestKeywordMatcher_MissingWeightCountsAsOne(t *testing.T) {
	categories := []models.KeywordCategory{{Name: "x", Keywords: []models.KeywordEntry{{Keyword: "go"}}}}
	res := NewKeywordMatcher(88).Match(categories, resumeSample)
	assert.Equal(t, 1.0, res.TotalPossibleScore)
	assert.Equal(t, 1.0, res.TotalAchievedScore)
}

func TestKeywordMatcher_ZeroWeightIsKept(t *testing.T) {
	categories := []models.KeywordCategory{{Name: "languages", Keywords: []models.KeywordEntry{
		{Keyword: "go", Weight: models.KeywordWeight(3)},
		{Keyword: "rust", Weight: models.KeywordWeight(0)},
	}}}
	res := NewKeywordMatcher(88).Match(categories, "I write Go")

	assert.Equal(t, 3.0, res.TotalPossibleScore)
	assert.Equal(t, 3.0, res.TotalAchievedScore)
	assert.Equal(t, 100.0, res.OverallMatchScore)
	require.Len(t, res.MissingDetails["languages"], 1)
	assert.Equal(t, 0.0, res.MissingDetails["languages"][0].Weight)
}

func TestKeywordMatcher_PhraseAcrossLineBreak(t *testing.T) {
	categories := []models.KeywordCategory{{
		Name:      "domains",
		MatchType: models.KeywordExact,
		Keywords:  []models.KeywordEntry{{Keyword: "machine learning"}},
	}}
	for _, text := range []string{"Experienced in machine\nlearning", "machine\tlearning", "machine   learning"} {
		res := NewKeywordMatcher(88).Match(categories, text)
		require.Len(t, res.MatchedDetails["domains"], 1, text)
		assert.Equal(t, models.MatchedExactPhrase, res.MatchedDetails["domains"][0].MatchType)
		assert.Equal(t, "machine learning", res.MatchedDetails["domains"][0].MatchedFormInText)
		assert.Equal(t, 100.0, res.OverallMatchScore)
	}
}

func TestKeywordCategories_WeightFromJSON(t *testing.T) {
	var categories []models.KeywordCategory
	require.NoError(t, json.Unmarshal([]byte(`[{"name":"x","keywords":[{"keyword":"go"},{"keyword":"rust","weight":0}]}]`), &categories))
	require.NoError(t, models.ValidateKeywordCategories(categories))

	assert.Equal(t, 1.0, categories[0].Keywords[0].EffectiveWeight())
	assert.Equal(t, 0.0, categories[0].Keywords[1].EffectiveWeight())
}

func TestKeywordMatcher_NoKeywords(t *testing.T) {
	res := NewKeywordMatcher(88).Match(nil, resumeSample)
	assert.Equal(t, 0.0, res.OverallMatchScore)
	assert.Equal(t, 0.0, res.TotalPossibleScore)

	res = NewKeywordMatcher(88).Match([]models.KeywordCategory{{Name: "empty"}}, resumeSample)
	assert.Equal(t, 0.0, res.CategoryScores["empty"])
	assert.Empty(t, res.MatchedDetails["empty"])
}

func TestKeywordMatcher_ScoreBounds(t *testing.T) {
	categories := []models.KeywordCategory{
		{Name: "a", Keywords: []models.KeywordEntry{{Keyword: "go", Weight: models.KeywordWeight(5)}, {Keyword: "java", Weight: models.KeywordWeight(0.5)}}},
		{Name: "b", MatchType: models.KeywordExact, Keywords: []models.KeywordEntry{{Keyword: "kotlin", Weight: models.KeywordWeight(3)}}},
	}
	for _, text := range []string{"", resumeSample, "go java kotlin"} {
		res := NewKeywordMatcher(88).Match(categories, text)
		assert.LessOrEqual(t, res.TotalAchievedScore, res.TotalPossibleScore)
		assert.GreaterOrEqual(t, res.OverallMatchScore, 0.0)
		assert.LessOrEqual(t, res.OverallMatchScore, 100.0)
	}
}
