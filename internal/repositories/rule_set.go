package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/talent-matcher/internal/models"
)

type RuleSetRepository interface {
	Save(rs *models.RuleSet) error
	FindActive(jobID uuid.UUID) (*models.RuleSet, error)
}

type ruleSetRepository struct {
	db *gorm.DB
}

func NewRuleSetRepository(db *gorm.DB) RuleSetRepository {
	return &ruleSetRepository{db: db}
}

// Save stores rs as the new active version for its job. The previous
// active version is kept but deactivated.
func (r *ruleSetRepository) Save(rs *models.RuleSet) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var previous []models.RuleSet
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "version").
			Where("job_id = ?", rs.JobID).
			Find(&previous).Error; err != nil {
			return fmt.Errorf("failed to lock rule sets: %w", err)
		}

		version := 0
		for _, p := range previous {
			version = max(version, p.Version)
		}

		if err := tx.Model(&models.RuleSet{}).
			Where("job_id = ? AND is_active = ?", rs.JobID, true).
			Update("is_active", false).Error; err != nil {
			return fmt.Errorf("failed to deactivate rule set: %w", err)
		}

		rs.Version = version + 1
		rs.IsActive = true
		if err := tx.Create(rs).Error; err != nil {
			return fmt.Errorf("failed to create rule set: %w", err)
		}
		return nil
	})
}

func (r *ruleSetRepository) FindActive(jobID uuid.UUID) (*models.RuleSet, error) {
	var rs models.RuleSet
	err := r.db.
		Where("job_id = ? AND is_active = ?", jobID, true).
		Order("version DESC").
		First(&rs).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.RuleNotFoundError{JobID: jobID}
		}
		return nil, fmt.Errorf("failed to find rule set: %w", err)
	}
	return &rs, nil
}
