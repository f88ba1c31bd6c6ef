package models

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type MatchReq string

const (
	Mandatory MatchReq = "MANDATORY"
	Optional  MatchReq = "OPTIONAL"
)

type RuleType string

const (
	RuleExact              RuleType = "EXACT"
	RuleRange              RuleType = "RANGE"
	RuleDescriptive        RuleType = "DESCRIPTIVE"
	RuleNegativeConstraint RuleType = "NEGATIVE_CONSTRAINT"
)

// SimilarityMethod selects the comparator used by DESCRIPTIVE rules.
type SimilarityMethod string

const (
	MethodJaccard SimilarityMethod = "jaccard"
	MethodFuzzy   SimilarityMethod = "fuzzy"
	MethodVector  SimilarityMethod = "vector"
	MethodLLM     SimilarityMethod = "llm"
)

const (
	ConditionAnd = "AND"
	ConditionOr  = "OR"
)

const MaxWeightage = 5

// Rule configures how one job-description field is scored.
type Rule struct {
	Field             string           `json:"field" yaml:"field" validate:"required"`
	MatchReq          MatchReq         `json:"matchreq,omitempty" yaml:"matchreq" validate:"omitempty,oneof=MANDATORY OPTIONAL"`
	Type              RuleType         `json:"type" yaml:"type" validate:"required,oneof=EXACT RANGE DESCRIPTIVE NEGATIVE_CONSTRAINT"`
	Weightage         int              `json:"weightage" yaml:"weightage" validate:"min=0,max=5"`
	Data              Value            `json:"data" yaml:"data"`
	ProfileDataSource []string         `json:"profiledatasource" yaml:"profiledatasource"`
	SourceCondition   string           `json:"sourcecondition,omitempty" yaml:"sourcecondition"`
	FromSource        string           `json:"fromsource,omitempty" yaml:"fromsource"`
	Method            SimilarityMethod `json:"method,omitempty" yaml:"method" validate:"omitempty,oneof=jaccard fuzzy vector llm"`
}

func (r Rule) IsMandatory() bool {
	return r.MatchReq == Mandatory
}

// SimilarityMethod returns the configured comparator, jaccard by default.
func (r Rule) SimilarityMethod() SimilarityMethod {
	if r.Method == "" {
		return MethodJaccard
	}
	return r.Method
}

// Sources returns the candidate paths in priority order, fromsource first.
func (r Rule) Sources() []string {
	sources := make([]string, 0, len(r.ProfileDataSource)+1)
	if r.FromSource != "" {
		sources = append(sources, r.FromSource)
	}
	for _, s := range r.ProfileDataSource {
		if s == r.FromSource {
			continue
		}
		sources = append(sources, s)
	}
	return sources
}

// CombineMode is AND or OR; gate expressions combine as AND.
func (r Rule) CombineMode() string {
	if strings.EqualFold(strings.TrimSpace(r.SourceCondition), ConditionOr) {
		return ConditionOr
	}
	return ConditionAnd
}

// Gate is a precondition on another field's score.
type Gate struct {
	Field     string
	Operator  string
	Threshold float64
}

var gatePattern = regexp.MustCompile(`^\s*([A-Za-z0-9_.\-]+)\s*(>=|<=|==|!=|>|<)\s*(-?\d+(?:\.\d+)?)\s*$`)

// Gate parses sourcecondition as a gate expression such as "job_title >= 50".
func (r Rule) Gate() (*Gate, bool) {
	cond := strings.TrimSpace(r.SourceCondition)
	if cond == "" || strings.EqualFold(cond, ConditionAnd) || strings.EqualFold(cond, ConditionOr) {
		return nil, false
	}
	m := gatePattern.FindStringSubmatch(cond)
	if m == nil {
		return nil, false
	}
	threshold, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return nil, false
	}
	return &Gate{Field: m[1], Operator: m[2], Threshold: threshold}, true
}

func (g Gate) Allows(score float64) bool {
	switch g.Operator {
	case ">=":
		return score >= g.Threshold
	case ">":
		return score > g.Threshold
	case "<=":
		return score <= g.Threshold
	case "<":
		return score < g.Threshold
	case "==":
		return score == g.Threshold
	case "!=":
		return score != g.Threshold
	}
	return false
}

func (g Gate) String() string {
	return fmt.Sprintf("%s %s %s", g.Field, g.Operator, strconv.FormatFloat(g.Threshold, 'f', -1, 64))
}

// Range is the expected interval of a RANGE rule. Nil bounds are open.
type Range struct {
	Min *float64
	Max *float64
}

// Range reads {"min": n, "max": n} or a bare number.
func (r Rule) Range() (Range, error) {
	if n, ok := r.Data.Number(); ok && r.Data.Kind != KindObject {
		return Range{Min: &n, Max: &n}, nil
	}
	if r.Data.Kind != KindObject {
		return Range{}, fmt.Errorf("range rule %q: data must be an object with min/max or a number", r.Field)
	}

	var rg Range
	if n, ok := r.Data.Field("min").Number(); ok {
		rg.Min = &n
	}
	if n, ok := r.Data.Field("max").Number(); ok {
		rg.Max = &n
	}
	if rg.Min == nil && rg.Max == nil {
		return Range{}, fmt.Errorf("range rule %q: at least one of min or max is required", r.Field)
	}
	if rg.Min != nil && rg.Max != nil && *rg.Min > *rg.Max {
		return Range{}, fmt.Errorf("range rule %q: min %.2f is greater than max %.2f", r.Field, *rg.Min, *rg.Max)
	}
	return rg, nil
}

type ConstraintDirection string

const (
	// DirectionMax is violated when the candidate value exceeds the threshold.
	DirectionMax ConstraintDirection = "max"
	// DirectionMin is violated when the candidate value falls below it.
	DirectionMin ConstraintDirection = "min"
)

// Constraint is the threshold of a NEGATIVE_CONSTRAINT rule.
type Constraint struct {
	Threshold      float64
	Direction      ConstraintDirection
	Strict         bool
	PenaltyPerUnit float64
}

var constraintPattern = regexp.MustCompile(`^\s*(<=|>=|<|>)\s*(-?\d+(?:\.\d+)?)\s*$`)

// Constraint reads the object form or the "<=3" style shorthand.
func (r Rule) Constraint() (Constraint, error) {
	if r.Data.Kind == KindString {
		m := constraintPattern.FindStringSubmatch(r.Data.Str)
		if m == nil {
			return Constraint{}, fmt.Errorf("negative constraint %q: cannot parse %q", r.Field, r.Data.Str)
		}
		threshold, _ := strconv.ParseFloat(m[2], 64)
		c := Constraint{Threshold: threshold}
		switch m[1] {
		case "<=":
			c.Direction = DirectionMax
		case "<":
			c.Direction, c.Strict = DirectionMax, true
		case ">=":
			c.Direction = DirectionMin
		case ">":
			c.Direction, c.Strict = DirectionMin, true
		}
		return c, nil
	}

	if r.Data.Kind != KindObject {
		return Constraint{}, fmt.Errorf("negative constraint %q: data must define threshold and direction", r.Field)
	}

	threshold, ok := r.Data.Field("threshold").Number()
	if !ok {
		return Constraint{}, fmt.Errorf("negative constraint %q: threshold is required", r.Field)
	}

	direction := ConstraintDirection(strings.ToLower(strings.TrimSpace(r.Data.Field("direction").Text())))
	if direction != DirectionMax && direction != DirectionMin {
		return Constraint{}, fmt.Errorf("negative constraint %q: direction must be %q or %q", r.Field, DirectionMax, DirectionMin)
	}

	c := Constraint{Threshold: threshold, Direction: direction}
	if strict := r.Data.Field("strict"); strict.Kind == KindBool {
		c.Strict = strict.Bool
	}
	if p, ok := r.Data.Field("penalty_per_unit").Number(); ok {
		if p < 0 {
			return Constraint{}, fmt.Errorf("negative constraint %q: penalty_per_unit must not be negative", r.Field)
		}
		c.PenaltyPerUnit = p
	}
	return c, nil
}

// Deviation returns how many units the value lies beyond the threshold,
// zero when the constraint holds.
func (c Constraint) Deviation(value float64) float64 {
	var over float64
	switch c.Direction {
	case DirectionMax:
		over = value - c.Threshold
	case DirectionMin:
		over = c.Threshold - value
	}
	if c.Strict {
		// the boundary itself is already one unit over
		if over < 0 {
			return 0
		}
		return over + 1
	}
	if over <= 0 {
		return 0
	}
	return over
}

var validate = validator.New()

var ErrInvalidRuleSet = errors.New("invalid rule set")

// ValidateRules checks every rule and the set as a whole.
func ValidateRules(rules []Rule) error {
	var problems []string
	seen := make(map[string]bool, len(rules))

	for i, rule := range rules {
		label := fmt.Sprintf("rule %d (%s)", i, rule.Field)
		if err := validate.Struct(rule); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", label, err))
			continue
		}
		if seen[rule.Field] {
			problems = append(problems, fmt.Sprintf("%s: duplicate field", label))
		}
		seen[rule.Field] = true

		if len(rule.Sources()) == 0 {
			problems = append(problems, fmt.Sprintf("%s: profiledatasource or fromsource is required", label))
		}

		switch rule.Type {
		case RuleRange:
			if _, err := rule.Range(); err != nil {
				problems = append(problems, err.Error())
			}
		case RuleNegativeConstraint:
			if _, err := rule.Constraint(); err != nil {
				problems = append(problems, err.Error())
			}
		case RuleExact, RuleDescriptive:
			if len(rule.Data.Strings()) == 0 {
				problems = append(problems, fmt.Sprintf("%s: data is required", label))
			}
		}

		if rule.Method != "" && rule.Type != RuleDescriptive {
			problems = append(problems, fmt.Sprintf("%s: method only applies to DESCRIPTIVE rules", label))
		}
	}

	for i, rule := range rules {
		cond := strings.TrimSpace(rule.SourceCondition)
		if cond == "" || strings.EqualFold(cond, ConditionAnd) || strings.EqualFold(cond, ConditionOr) {
			continue
		}
		gate, ok := rule.Gate()
		if !ok {
			problems = append(problems, fmt.Sprintf("rule %d (%s): cannot parse sourcecondition %q", i, rule.Field, cond))
			continue
		}
		if gate.Field == rule.Field || !seen[gate.Field] {
			problems = append(problems, fmt.Sprintf("rule %d (%s): sourcecondition references unknown field %q", i, rule.Field, gate.Field))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRuleSet, strings.Join(problems, "; "))
	}
	return nil
}

// RuleSet is one version of a job description's scoring configuration.
type RuleSet struct {
	ID                uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JobID             uuid.UUID         `gorm:"type:uuid;not null;index" json:"job_id"`
	OrganizationID    string            `gorm:"type:text;not null;index" json:"organization_id"`
	Version           int               `gorm:"not null" json:"jd_version"`
	IsActive          bool              `gorm:"not null;default:true" json:"is_active"`
	Rules             []Rule            `gorm:"type:jsonb;serializer:json" json:"rules"`
	KeywordCategories []KeywordCategory `gorm:"type:jsonb;serializer:json" json:"keyword_categories,omitempty"`
	CreatedBy         string            `gorm:"type:text" json:"created_by"`
	CreatedAt         time.Time         `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (RuleSet) TableName() string {
	return "rule_sets"
}

// RuleNotFoundError reports a job without an active rule set.
type RuleNotFoundError struct {
	JobID uuid.UUID
}

func (e *RuleNotFoundError) Error() string {
	return fmt.Sprintf("no rule set configured for job %s", e.JobID)
}

func (e *RuleNotFoundError) Is(target error) bool {
	return target == ErrRuleNotFound
}

var ErrRuleNotFound = errors.New("rule set not found")
