package models

import "fmt"

type KeywordMatchType string

const (
	KeywordExact   KeywordMatchType = "exact"
	KeywordStemmed KeywordMatchType = "stemmed"
	KeywordFuzzy   KeywordMatchType = "fuzzy"
)

// KeywordEntry is one weighted keyword of a category. A missing weight
// counts as 1; an explicit 0 is kept.
type KeywordEntry struct {
	Keyword    string   `json:"keyword" yaml:"keyword" validate:"required"`
	Weight     *float64 `json:"weight,omitempty" yaml:"weight" validate:"omitempty,min=0"`
	Variations []string `json:"variations,omitempty" yaml:"variations"`
}

// KeywordWeight returns w as an entry weight.
func KeywordWeight(w float64) *float64 {
	return &w
}

func (e KeywordEntry) EffectiveWeight() float64 {
	if e.Weight == nil {
		return 1
	}
	return *e.Weight
}

// KeywordCategory groups keywords evaluated with the same match type.
type KeywordCategory struct {
	Name      string           `json:"name" yaml:"name" validate:"required"`
	MatchType KeywordMatchType `json:"match_type,omitempty" yaml:"match_type" validate:"omitempty,oneof=exact stemmed fuzzy"`
	Keywords  []KeywordEntry   `json:"keywords" yaml:"keywords" validate:"dive"`
}

// How a keyword was found in the text.
const (
	MatchedExactPhrase = "exact_phrase"
	MatchedExactWord   = "exact_word"
	MatchedStemmed     = "stemmed_word"
	MatchedFuzzy       = "fuzzy_match"
)

type MatchedKeywordDetail struct {
	Keyword           string  `json:"keyword"`
	MatchedFormInText string  `json:"matched_form_in_text"`
	MatchType         string  `json:"match_type"`
	Weight            float64 `json:"weight"`
}

type MissingKeywordDetail struct {
	Keyword string  `json:"keyword"`
	Weight  float64 `json:"weight"`
}

// KeywordMatchResult is the keyword matcher output for one resume.
type KeywordMatchResult struct {
	OverallMatchScore  float64                           `json:"overall_match_score"`
	CategoryScores     map[string]float64                `json:"category_scores"`
	MatchedDetails     map[string][]MatchedKeywordDetail `json:"matched_details"`
	MissingDetails     map[string][]MissingKeywordDetail `json:"missing_details"`
	TotalPossibleScore float64                           `json:"total_possible_score"`
	TotalAchievedScore float64                           `json:"total_achieved_score"`
	MatchedKeywords    []string                          `json:"matched_keywords"`
	MissingKeywords    []string                          `json:"missing_keywords"`
}

// ValidateKeywordCategories checks category names are unique and entries valid.
func ValidateKeywordCategories(categories []KeywordCategory) error {
	seen := make(map[string]bool, len(categories))
	for _, category := range categories {
		if err := validate.Struct(category); err != nil {
			return err
		}
		if seen[category.Name] {
			return fmt.Errorf("duplicate keyword category: %s", category.Name)
		}
		seen[category.Name] = true
	}
	return nil
}
