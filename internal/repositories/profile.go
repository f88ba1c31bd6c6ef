package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/talent-matcher/internal/models"
)

type ProfileRepository interface {
	Create(profile *models.CandidateProfile) error
	FindByID(id uuid.UUID) (*models.CandidateProfile, error)
	FindByIDs(ids []uuid.UUID) ([]models.CandidateProfile, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// Create implements ProfileRepository.
func (r *profileRepository) Create(profile *models.CandidateProfile) error {
	if err := r.db.Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// FindByID implements ProfileRepository.
func (r *profileRepository) FindByID(id uuid.UUID) (*models.CandidateProfile, error) {
	var profile models.CandidateProfile
	if err := r.db.Where("id = ?", id).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return &profile, nil
}

// FindByIDs implements ProfileRepository. Missing ids are left out.
func (r *profileRepository) FindByIDs(ids []uuid.UUID) ([]models.CandidateProfile, error) {
	var profiles []models.CandidateProfile
	if len(ids) == 0 {
		return profiles, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to find profiles: %w", err)
	}
	return profiles, nil
}
