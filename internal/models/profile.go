package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// CandidateProfile stores the semi-structured candidate document the
// resolver reads from: contact, skills by category, experience, education,
// certifications and derived metrics.
type CandidateProfile struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OrganizationID string         `gorm:"type:text;not null;index" json:"organization_id"`
	Name           string         `gorm:"type:text" json:"name"`
	Document       map[string]any `gorm:"type:jsonb;serializer:json" json:"document"`
	ResumeText     string         `gorm:"type:text" json:"resume_text,omitempty"`
	CreatedAt      time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CandidateProfile) TableName() string {
	return "candidate_profiles"
}

var ErrProfileNotFound = errors.New("candidate profile not found")
