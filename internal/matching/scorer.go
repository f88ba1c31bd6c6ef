package matching

import (
	"context"
	"errors"
	"fmt"
	"math"

	"alfredoptarigan/talent-matcher/internal/models"
)

var (
	errNotNumeric        = errors.New("candidate data is not numeric")
	errMethodUnavailable = errors.New("similarity method is not configured")
)

// Scorer evaluates one rule against a candidate document.
type Scorer struct {
	policy       Policy
	similarities map[models.SimilarityMethod]Similarity
}

// NewScorer builds a scorer. jaccard and fuzzy are always available;
// extra holds backend comparators such as vector or llm.
func NewScorer(policy Policy, extra map[models.SimilarityMethod]Similarity) *Scorer {
	sims := map[models.SimilarityMethod]Similarity{
		models.MethodJaccard: Jaccard{},
		models.MethodFuzzy:   Fuzzy{},
	}
	for method, sim := range extra {
		if sim != nil {
			sims[method] = sim
		}
	}
	return &Scorer{policy: policy, similarities: sims}
}

type sourceOutcome struct {
	entry   models.CandidateSourceValue
	backend bool // error came from the similarity backend
}

// ScoreField resolves every configured source for the rule, scores each
// one and picks the winner.
func (s *Scorer) ScoreField(ctx context.Context, rule models.Rule, doc map[string]any) models.FieldResult {
	var outcomes []sourceOutcome

	for i, path := range rule.Sources() {
		confidence := s.policy.confidenceFor(i)
		data := Resolve(doc, path)

		if data.IsEmpty() {
			outcomes = append(outcomes, sourceOutcome{entry: models.CandidateSourceValue{
				SourceField: path,
				Data:        models.Null(),
			}})
			continue
		}

		if rule.CombineMode() == models.ConditionOr && data.Kind == models.KindList {
			for j, item := range data.Items {
				if item.IsEmpty() {
					continue
				}
				outcomes = append(outcomes, s.scoreSource(ctx, rule, fmt.Sprintf("%s[%d]", path, j), item, confidence))
			}
			continue
		}

		outcomes = append(outcomes, s.scoreSource(ctx, rule, path, data, confidence))
	}

	return s.pick(rule, outcomes)
}

// Score applies the rule to already extracted source values.
func (s *Scorer) Score(ctx context.Context, rule models.Rule, sources []models.CandidateSourceValue) models.FieldResult {
	outcomes := make([]sourceOutcome, 0, len(sources))
	for i, src := range sources {
		if src.Data.IsEmpty() {
			outcomes = append(outcomes, sourceOutcome{entry: models.CandidateSourceValue{SourceField: src.SourceField, Data: models.Null()}})
			continue
		}
		outcomes = append(outcomes, s.scoreSource(ctx, rule, src.SourceField, src.Data, s.policy.confidenceFor(i)))
	}
	return s.pick(rule, outcomes)
}

func (s *Scorer) scoreSource(ctx context.Context, rule models.Rule, path string, data models.Value, confidence float64) sourceOutcome {
	entry := models.CandidateSourceValue{SourceField: path, Data: data}

	var (
		score   float64
		err     error
		backend bool
	)
	switch rule.Type {
	case models.RuleExact:
		score = scoreExact(rule.Data, data)
	case models.RuleRange:
		score, err = scoreRange(rule, data)
	case models.RuleNegativeConstraint:
		score, err = s.scoreNegative(rule, data)
	case models.RuleDescriptive:
		score, err = s.scoreDescriptive(ctx, rule, data)
		backend = err != nil
	default:
		err = fmt.Errorf("unknown rule type %q", rule.Type)
	}

	if err != nil {
		entry.Error = err.Error()
		return sourceOutcome{entry: entry, backend: backend}
	}

	entry.Score = round2(score)
	entry.Confidence = round2(confidence)
	return sourceOutcome{entry: entry}
}

// pick selects the highest-scoring usable source; ties go to the earlier one.
func (s *Scorer) pick(rule models.Rule, outcomes []sourceOutcome) models.FieldResult {
	result := models.FieldResult{
		Field:            rule.Field,
		ReqData:          rule.Data,
		MatchReq:         rule.MatchReq,
		Weightage:        rule.Weightage,
		SourcesEvaluated: make([]models.CandidateSourceValue, 0, len(outcomes)),
	}

	best := -1
	backendFailure := ""
	for i, o := range outcomes {
		result.SourcesEvaluated = append(result.SourcesEvaluated, o.entry)

		if o.entry.Error != "" {
			if o.backend && backendFailure == "" {
				backendFailure = o.entry.Error
			}
			continue
		}
		if !o.entry.HasData() {
			continue
		}
		if best == -1 || o.entry.Score > outcomes[best].entry.Score {
			best = i
		}
	}

	if best == -1 {
		if backendFailure != "" {
			result.Failed = true
			result.FailureReason = backendFailure
		}
		return result
	}

	winner := outcomes[best].entry
	result.Score = winner.Score
	result.Confidence = winner.Confidence
	result.BestSourceUsed = winner.SourceField
	return result
}

func scoreExact(expected, candidate models.Value) float64 {
	want := make(map[string]struct{})
	for _, s := range expected.Strings() {
		want[normalize(s)] = struct{}{}
	}
	for _, s := range candidate.Strings() {
		if _, ok := want[normalize(s)]; ok {
			return 100
		}
	}
	return 0
}

func scoreRange(rule models.Rule, data models.Value) (float64, error) {
	rg, err := rule.Range()
	if err != nil {
		return 0, err
	}

	if data.Kind == models.KindList {
		best, found := 0.0, false
		for _, item := range data.Items {
			score, err := scoreRange(rule, item)
			if err != nil {
				continue
			}
			if !found || score > best {
				best, found = score, true
			}
		}
		if !found {
			return 0, errNotNumeric
		}
		return best, nil
	}

	if data.Kind == models.KindObject {
		lo, okLo := data.Field("min").Number()
		hi, okHi := data.Field("max").Number()
		switch {
		case okLo && okHi:
			return rangeOverlapScore(rg, lo, hi), nil
		case okLo:
			return rangePointScore(rg, lo), nil
		case okHi:
			return rangePointScore(rg, hi), nil
		}
		return 0, errNotNumeric
	}

	v, ok := data.Number()
	if !ok {
		return 0, errNotNumeric
	}
	return rangePointScore(rg, v), nil
}

func bounds(rg models.Range) (float64, float64) {
	lo, hi := math.Inf(-1), math.Inf(1)
	if rg.Min != nil {
		lo = *rg.Min
	}
	if rg.Max != nil {
		hi = *rg.Max
	}
	return lo, hi
}

// rangePointScore is 100 inside the range and falls linearly with the
// distance to the nearer bound, reaching 0 one span away.
func rangePointScore(rg models.Range, v float64) float64 {
	lo, hi := bounds(rg)
	if v >= lo && v <= hi {
		return 100
	}

	var dist, bound float64
	if v < lo {
		dist, bound = lo-v, lo
	} else {
		dist, bound = v-hi, hi
	}
	return 100 * math.Max(0, 1-dist/rangeSpan(rg, bound))
}

func rangeSpan(rg models.Range, bound float64) float64 {
	if rg.Min != nil && rg.Max != nil && *rg.Max > *rg.Min {
		return *rg.Max - *rg.Min
	}
	return math.Max(math.Abs(bound), 1)
}

// rangeOverlapScore scores a candidate interval by the share of it that
// falls inside the expected range.
func rangeOverlapScore(rg models.Range, a, b float64) float64 {
	if a > b {
		a, b = b, a
	}
	if a == b {
		return rangePointScore(rg, a)
	}

	lo, hi := bounds(rg)
	if b < lo {
		return rangePointScore(rg, b)
	}
	if a > hi {
		return rangePointScore(rg, a)
	}

	overlap := math.Min(b, hi) - math.Max(a, lo)
	return 100 * overlap / (b - a)
}

func (s *Scorer) scoreNegative(rule models.Rule, data models.Value) (float64, error) {
	c, err := rule.Constraint()
	if err != nil {
		return 0, err
	}

	values := []models.Value{data}
	if data.Kind == models.KindList {
		values = data.Items
	}

	worst, found := 0.0, false
	for _, item := range values {
		v, ok := item.Number()
		if !ok {
			continue
		}
		found = true
		if dev := c.Deviation(v); dev > worst {
			worst = dev
		}
	}
	if !found {
		return 0, errNotNumeric
	}
	if worst == 0 {
		return 0, nil
	}

	unit := c.PenaltyPerUnit
	if unit == 0 {
		unit = float64(max(rule.Weightage, 1)) * s.policy.PenaltyPerWeight
	}
	// any violation stays visible after rounding to 2 decimals
	penalty := math.Max(minPenalty, math.Min(s.policy.MaxPenalty, worst*unit))
	return -penalty, nil
}

func (s *Scorer) scoreDescriptive(ctx context.Context, rule models.Rule, data models.Value) (float64, error) {
	method := rule.SimilarityMethod()
	sim, ok := s.similarities[method]
	if !ok {
		return 0, fmt.Errorf("%w: %s", errMethodUnavailable, method)
	}

	candidate := data.Text()
	expected := []string{rule.Data.Text()}
	if rule.CombineMode() == models.ConditionOr && rule.Data.Kind == models.KindList {
		expected = rule.Data.Strings()
	}

	best := 0.0
	for _, want := range expected {
		v, err := sim.Similarity(ctx, want, candidate)
		if err != nil {
			return 0, fmt.Errorf("%s similarity failed: %w", method, err)
		}
		v = math.Max(0, math.Min(1, v))
		if v > best {
			best = v
		}
	}
	return math.Round(best * 100), nil
}

const minPenalty = 0.01

func round2(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0
	}
	return r
}
