package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CandidateSourceValue records one attempted profile source for a rule,
// kept even when it did not win.
type CandidateSourceValue struct {
	SourceField string  `json:"source_field"`
	Data        Value   `json:"data"`
	Score       float64 `json:"score"`
	Confidence  float64 `json:"confidence"`
	Error       string  `json:"error,omitempty"`
}

// HasData reports whether the source produced something to score.
func (s CandidateSourceValue) HasData() bool {
	return !s.Data.IsEmpty()
}

type FieldResult struct {
	Field            string                 `json:"field"`
	Score            float64                `json:"score"`
	Confidence       float64                `json:"confidence"`
	BestSourceUsed   string                 `json:"best_source_used"`
	ReqData          Value                  `json:"req_data"`
	SourcesEvaluated []CandidateSourceValue `json:"sources_evaluated"`
	MatchReq         MatchReq               `json:"matchreq,omitempty"`
	Weightage        int                    `json:"weightage"`
	Failed           bool                   `json:"failed,omitempty"`
	FailureReason    string                 `json:"failure_reason,omitempty"`
	Skipped          bool                   `json:"skipped,omitempty"`
}

// Summary holds the aggregate statistics over field results.
type Summary struct {
	OverallScoreWeighted       float64 `json:"overall_score_weighted"`
	OverallScoreAverageAll     float64 `json:"overall_score_average_all"`
	OverallScoreAverageNonZero float64 `json:"overall_score_average_non_zero"`
	MaxScore                   float64 `json:"max_score"`
	MaxScoreField              string  `json:"max_score_field"`
}

// MatchResult is the scoring outcome of one job x candidate pair.
type MatchResult struct {
	Results []FieldResult `json:"results"`
	Summary
	Warnings     []string            `json:"warnings,omitempty"`
	KeywordMatch *KeywordMatchResult `json:"keyword_match,omitempty"`
	RuleSetID    uuid.UUID           `json:"rule_set_id"`
	JDVersion    int                 `json:"jd_version"`
}

// MatchRecord is the persisted, immutable envelope of a MatchResult.
type MatchRecord struct {
	ID               uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JobID            uuid.UUID    `gorm:"type:uuid;not null;index" json:"jobId"`
	ProfileID        uuid.UUID    `gorm:"type:uuid;not null;index" json:"profileId"`
	CandidateName    string       `gorm:"type:text" json:"candidateName"`
	OverallScore     float64      `gorm:"not null;index" json:"overallScore"`
	MatchResultsJSON *MatchResult `gorm:"column:match_results_json;type:jsonb;serializer:json" json:"matchResultsJson"`
	OrganizationID   string       `gorm:"type:text;not null;index" json:"organizationId"`
	AgencyID         *string      `gorm:"type:text" json:"agencyId"`
	CreatedBy        string       `gorm:"type:text;not null" json:"createdBy"`
	CreatedAt        time.Time    `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	RuleSetID        uuid.UUID    `gorm:"type:uuid" json:"ruleSetId"`
	JDVersion        int          `json:"jdVersion"`
	BulkRunID        *uuid.UUID   `gorm:"type:uuid;index" json:"bulkRunId,omitempty"`
}

func (MatchRecord) TableName() string {
	return "job_profile_matches"
}

var ErrImmutableRecord = errors.New("match records are immutable")

func (MatchRecord) BeforeUpdate(tx *gorm.DB) error {
	return ErrImmutableRecord
}

func (MatchRecord) BeforeDelete(tx *gorm.DB) error {
	return ErrImmutableRecord
}

var ErrMatchNotFound = errors.New("match record not found")

// MatchSearchFilter narrows the ranking query over match records.
type MatchSearchFilter struct {
	OrganizationID   string
	JobID            *uuid.UUID
	CandidateName    string
	Limit            int
	OrderByScoreDesc bool
}
