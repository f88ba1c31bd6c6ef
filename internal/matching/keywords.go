package matching

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball"

	"alfredoptarigan/talent-matcher/internal/models"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// KeywordMatcher looks for weighted keywords in free resume text. Each
// keyword is tried exact first, then stemmed, then fuzzy; a category's
// match_type caps how far down that cascade it goes. Categories without a
// match_type use the whole cascade.
type KeywordMatcher struct {
	fuzzyThreshold float64
}

func NewKeywordMatcher(fuzzyThreshold float64) *KeywordMatcher {
	return &KeywordMatcher{fuzzyThreshold: fuzzyThreshold}
}

type resumeText struct {
	// lower is the text lowercased with whitespace runs collapsed, the same
	// form keyword phrases are normalized to.
	lower  string
	tokens []string
	stems  []string
}

func prepareText(text string) resumeText {
	lower := normalize(text)
	tokens := wordPattern.FindAllString(lower, -1)
	stems := make([]string, len(tokens))
	for i, tok := range tokens {
		stems[i] = stem(tok)
	}
	return resumeText{lower: lower, tokens: tokens, stems: stems}
}

func stem(word string) string {
	s, err := snowball.Stem(word, "english", true)
	if err != nil || s == "" {
		return word
	}
	return s
}

// Match evaluates every category against text.
func (m *KeywordMatcher) Match(categories []models.KeywordCategory, text string) *models.KeywordMatchResult {
	result := &models.KeywordMatchResult{
		CategoryScores:  make(map[string]float64, len(categories)),
		MatchedDetails:  make(map[string][]models.MatchedKeywordDetail, len(categories)),
		MissingDetails:  make(map[string][]models.MissingKeywordDetail, len(categories)),
		MatchedKeywords: []string{},
		MissingKeywords: []string{},
	}
	doc := prepareText(text)

	for _, category := range categories {
		matched := []models.MatchedKeywordDetail{}
		missing := []models.MissingKeywordDetail{}
		var possible, achieved float64

		for _, entry := range category.Keywords {
			weight := entry.EffectiveWeight()
			possible += weight

			form, how, ok := m.find(category.MatchType, entry, doc)
			if !ok {
				missing = append(missing, models.MissingKeywordDetail{Keyword: entry.Keyword, Weight: weight})
				result.MissingKeywords = append(result.MissingKeywords, entry.Keyword)
				continue
			}

			achieved += weight
			matched = append(matched, models.MatchedKeywordDetail{
				Keyword:           entry.Keyword,
				MatchedFormInText: form,
				MatchType:         how,
				Weight:            weight,
			})
			result.MatchedKeywords = append(result.MatchedKeywords, entry.Keyword)
		}

		result.MatchedDetails[category.Name] = matched
		result.MissingDetails[category.Name] = missing
		result.CategoryScores[category.Name] = percent(achieved, possible)
		result.TotalPossibleScore += possible
		result.TotalAchievedScore += achieved
	}

	result.OverallMatchScore = percent(result.TotalAchievedScore, result.TotalPossibleScore)
	return result
}

func percent(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return round2(part / whole * 100)
}

func keywordForms(entry models.KeywordEntry) []string {
	forms := make([]string, 0, len(entry.Variations)+1)
	for _, f := range append([]string{entry.Keyword}, entry.Variations...) {
		if f = normalize(f); f != "" {
			forms = append(forms, f)
		}
	}
	return forms
}

func (m *KeywordMatcher) find(matchType models.KeywordMatchType, entry models.KeywordEntry, doc resumeText) (string, string, bool) {
	forms := keywordForms(entry)

	for _, form := range forms {
		if containsWord(doc.lower, form) {
			if strings.Contains(form, " ") {
				return form, models.MatchedExactPhrase, true
			}
			return form, models.MatchedExactWord, true
		}
	}
	if matchType == models.KeywordExact {
		return "", "", false
	}

	for _, form := range forms {
		if found, ok := findStemmed(form, doc); ok {
			return found, models.MatchedStemmed, true
		}
	}
	if matchType == models.KeywordStemmed {
		return "", "", false
	}

	for _, form := range forms {
		if found, ok := m.findFuzzy(form, doc); ok {
			return found, models.MatchedFuzzy, true
		}
	}
	return "", "", false
}

// containsWord reports whether form appears in text bounded by non-word
// characters, so "go" does not hit "google" while "c++" still matches.
func containsWord(text, form string) bool {
	pattern := `(^|[^\p{L}\p{N}])` + regexp.QuoteMeta(form) + `($|[^\p{L}\p{N}])`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

func findStemmed(form string, doc resumeText) (string, bool) {
	words := wordPattern.FindAllString(form, -1)
	if len(words) == 0 || len(words) > len(doc.stems) {
		return "", false
	}
	want := make([]string, len(words))
	for i, w := range words {
		want[i] = stem(w)
	}

	for i := 0; i+len(want) <= len(doc.stems); i++ {
		hit := true
		for j := range want {
			if doc.stems[i+j] != want[j] {
				hit = false
				break
			}
		}
		if hit {
			return strings.Join(doc.tokens[i:i+len(want)], " "), true
		}
	}
	return "", false
}

// findFuzzy compares the form with every window of the same token count.
func (m *KeywordMatcher) findFuzzy(form string, doc resumeText) (string, bool) {
	n := len(wordPattern.FindAllString(form, -1))
	if n == 0 || n > len(doc.tokens) {
		return "", false
	}
	for i := 0; i+n <= len(doc.tokens); i++ {
		window := strings.Join(doc.tokens[i:i+n], " ")
		if levenshteinRatio(form, window)*100 >= m.fuzzyThreshold {
			return window, true
		}
	}
	return "", false
}
