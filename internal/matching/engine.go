package matching

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"alfredoptarigan/talent-matcher/internal/models"
)

// Candidate is the profile data a match is computed from.
type Candidate struct {
	ID         uuid.UUID
	Name       string
	Document   map[string]any
	ResumeText string
}

// Text is the free text the keyword matcher reads.
func (c Candidate) Text() string {
	if c.ResumeText != "" {
		return c.ResumeText
	}
	return ProfileText(c.Document)
}

// Engine scores a candidate against a rule set. It holds no per-match
// state and is safe for concurrent use.
type Engine struct {
	scorer   *Scorer
	keywords *KeywordMatcher
}

func NewEngine(scorer *Scorer, keywords *KeywordMatcher) *Engine {
	return &Engine{scorer: scorer, keywords: keywords}
}

// Match folds every rule of rs over the candidate. Rules gated on another
// field are scored once that field has a score.
func (e *Engine) Match(ctx context.Context, rs *models.RuleSet, c Candidate) *models.MatchResult {
	result := &models.MatchResult{
		Results:   make([]models.FieldResult, len(rs.Rules)),
		RuleSetID: rs.ID,
		JDVersion: rs.Version,
	}

	scores := make(map[string]float64, len(rs.Rules))
	done := make([]bool, len(rs.Rules))

	for i, rule := range rs.Rules {
		if _, gated := rule.Gate(); gated {
			continue
		}
		fr := e.scorer.ScoreField(ctx, rule, c.Document)
		result.Results[i] = fr
		scores[rule.Field] = fr.Score
		done[i] = true
	}

	// gates may chain, so keep passing until nothing new resolves
	for progress := true; progress; {
		progress = false
		for i, rule := range rs.Rules {
			if done[i] {
				continue
			}
			gate, _ := rule.Gate()
			score, ok := scores[gate.Field]
			if !ok {
				continue
			}
			done[i], progress = true, true

			if !gate.Allows(score) {
				result.Results[i] = skippedResult(rule)
				result.Warnings = append(result.Warnings, fmt.Sprintf("field %s skipped: condition %s not met (score %.2f)", rule.Field, gate, score))
				continue
			}
			fr := e.scorer.ScoreField(ctx, rule, c.Document)
			result.Results[i] = fr
			scores[rule.Field] = fr.Score
		}
	}

	for i, rule := range rs.Rules {
		if done[i] {
			continue
		}
		gate, _ := rule.Gate()
		result.Results[i] = skippedResult(rule)
		result.Warnings = append(result.Warnings, fmt.Sprintf("field %s skipped: condition %s references a field without a score", rule.Field, gate))
	}

	for _, fr := range result.Results {
		switch {
		case fr.Skipped:
		case fr.Failed:
			result.Warnings = append(result.Warnings, fmt.Sprintf("field %s failed: %s", fr.Field, fr.FailureReason))
		case fr.MatchReq == models.Mandatory && !anyData(fr.SourcesEvaluated):
			result.Warnings = append(result.Warnings, fmt.Sprintf("mandatory field %s has no candidate data", fr.Field))
		}
	}

	result.Summary = Aggregate(result.Results)

	if len(rs.KeywordCategories) > 0 {
		result.KeywordMatch = e.keywords.Match(rs.KeywordCategories, c.Text())
	}
	return result
}

// MatchKeywords runs only the keyword matcher.
func (e *Engine) MatchKeywords(categories []models.KeywordCategory, text string) *models.KeywordMatchResult {
	return e.keywords.Match(categories, text)
}

func skippedResult(rule models.Rule) models.FieldResult {
	sources := rule.Sources()
	evaluated := make([]models.CandidateSourceValue, 0, len(sources))
	for _, s := range sources {
		evaluated = append(evaluated, models.CandidateSourceValue{SourceField: s, Data: models.Null()})
	}
	return models.FieldResult{
		Field:            rule.Field,
		ReqData:          rule.Data,
		SourcesEvaluated: evaluated,
		MatchReq:         rule.MatchReq,
		Weightage:        rule.Weightage,
		Skipped:          true,
	}
}

func anyData(sources []models.CandidateSourceValue) bool {
	for _, s := range sources {
		if s.HasData() {
			return true
		}
	}
	return false
}
