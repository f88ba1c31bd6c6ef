package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type BulkRunStatus string

const (
	StatusQueued     BulkRunStatus = "queued"
	StatusProcessing BulkRunStatus = "processing"
	StatusCompleted  BulkRunStatus = "completed"
	StatusCancelled  BulkRunStatus = "cancelled"
	StatusFailed     BulkRunStatus = "failed"
)

// BulkRun scores one job against many candidate profiles.
type BulkRun struct {
	ID             uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JobID          uuid.UUID     `gorm:"type:uuid;not null;index" json:"job_id"`
	OrganizationID string        `gorm:"type:text;not null" json:"organization_id"`
	AgencyID       *string       `gorm:"type:text" json:"agency_id,omitempty"`
	CreatedBy      string        `gorm:"type:text;not null" json:"created_by"`
	ProfileIDs     []uuid.UUID   `gorm:"type:jsonb;serializer:json" json:"profile_ids"`
	Status         BulkRunStatus `gorm:"not null;default:'queued'" json:"status"`
	Total          int           `json:"total"`
	Succeeded      int           `json:"succeeded"`
	Failed         int           `json:"failed"`
	JDVersion      *int          `json:"jd_version,omitempty"`
	ErrorMessage   *string       `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt      time.Time     `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (BulkRun) TableName() string {
	return "bulk_match_runs"
}

var (
	ErrBulkRunNotFound       = errors.New("bulk run not found")
	ErrBulkRunNotCancellable = errors.New("bulk run cannot be cancelled in its current state")
)

// Finished reports whether the run reached a terminal status.
func (r BulkRun) Finished() bool {
	switch r.Status {
	case StatusCompleted, StatusCancelled, StatusFailed:
		return true
	}
	return false
}
