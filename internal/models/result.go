package models

import (
	"errors"
	"strings"
)

type SaveRuleSetRequest struct {
	Rules             []Rule            `json:"rules" validate:"required,min=1,dive"`
	KeywordCategories []KeywordCategory `json:"keyword_categories,omitempty" validate:"dive"`
}

func (r *SaveRuleSetRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if err := ValidateRules(r.Rules); err != nil {
		return err
	}
	return ValidateKeywordCategories(r.KeywordCategories)
}

type CreateProfileRequest struct {
	Name       string         `json:"name" validate:"required"`
	Document   map[string]any `json:"document" validate:"required"`
	ResumeText string         `json:"resume_text,omitempty"`
}

func (r *CreateProfileRequest) Validate() error {
	return validate.Struct(r)
}

type MatchRequest struct {
	JobID     string  `json:"jobId" validate:"required,uuid"`
	ProfileID string  `json:"profileId" validate:"required,uuid"`
	AgencyID  *string `json:"agencyId,omitempty"`
}

func (r *MatchRequest) Validate() error {
	return validate.Struct(r)
}

type KeywordMatchRequest struct {
	JobID     string `json:"jobId" validate:"required,uuid"`
	ProfileID string `json:"profileId,omitempty" validate:"omitempty,uuid"`
	Text      string `json:"text,omitempty"`
}

func (r *KeywordMatchRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if r.ProfileID == "" && strings.TrimSpace(r.Text) == "" {
		return errors.New("either profileId or text is required")
	}
	return nil
}

type BulkMatchRequest struct {
	JobID      string   `json:"jobId" validate:"required,uuid"`
	ProfileIDs []string `json:"profileIds" validate:"required,min=1,dive,uuid"`
	AgencyID   *string  `json:"agencyId,omitempty"`
}

func (r *BulkMatchRequest) Validate() error {
	return validate.Struct(r)
}

// MatchResultResponse is what the match dialogs consume.
type MatchResultResponse struct {
	*MatchResult
	MatchID string `json:"match_id"`
}

type BulkMatchResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}
