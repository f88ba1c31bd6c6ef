package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/talent-matcher/internal/models"
)

// MatchRecordRepository persists match records. Records are append-only:
// there is no update or delete.
type MatchRecordRepository interface {
	Create(record *models.MatchRecord) error
	FindByID(id uuid.UUID) (*models.MatchRecord, error)
	Search(filter models.MatchSearchFilter) ([]models.MatchRecord, error)
	ProfileIDsForRun(runID uuid.UUID) ([]uuid.UUID, error)
}

type matchRecordRepository struct {
	db *gorm.DB
}

func NewMatchRecordRepository(db *gorm.DB) MatchRecordRepository {
	return &matchRecordRepository{db: db}
}

func (r *matchRecordRepository) Create(record *models.MatchRecord) error {
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create match record: %w", err)
	}
	return nil
}

func (r *matchRecordRepository) FindByID(id uuid.UUID) (*models.MatchRecord, error) {
	var record models.MatchRecord
	if err := r.db.Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to find match record: %w", err)
	}
	return &record, nil
}

func (r *matchRecordRepository) Search(filter models.MatchSearchFilter) ([]models.MatchRecord, error) {
	query := r.db.Model(&models.MatchRecord{})

	if filter.OrganizationID != "" {
		query = query.Where("organization_id = ?", filter.OrganizationID)
	}
	if filter.JobID != nil {
		query = query.Where("job_id = ?", *filter.JobID)
	}
	if filter.CandidateName != "" {
		query = query.Where("candidate_name ILIKE ?", "%"+filter.CandidateName+"%")
	}

	if filter.OrderByScoreDesc {
		query = query.Order("overall_score DESC").Order("created_at DESC")
	} else {
		query = query.Order("created_at DESC")
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var records []models.MatchRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to search match records: %w", err)
	}
	return records, nil
}

// ProfileIDsForRun lists the profiles a bulk run already has records for.
func (r *matchRecordRepository) ProfileIDsForRun(runID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.Model(&models.MatchRecord{}).
		Where("bulk_run_id = ?", runID).
		Pluck("profile_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list run records: %w", err)
	}
	return ids, nil
}
