package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/talent-matcher/internal/models"
)

type BulkRunRepository interface {
	Create(run *models.BulkRun) error
	FindByID(id uuid.UUID) (*models.BulkRun, error)
	Transition(id uuid.UUID, from, to models.BulkRunStatus) (bool, error)
	RecordRuleVersion(id uuid.UUID, version int) error
	UpdateProgress(id uuid.UUID, succeeded, failed int) error
	Finish(id uuid.UUID, status models.BulkRunStatus, succeeded, failed int) error
	UpdateError(id uuid.UUID, errorMsg string) error
	FindPendingJobs(limit int) ([]models.BulkRun, error)
	RequeueInterrupted() (int64, error)
}

type bulkRunRepository struct {
	db *gorm.DB
}

func NewBulkRunRepository(db *gorm.DB) BulkRunRepository {
	return &bulkRunRepository{db: db}
}

func (r *bulkRunRepository) Create(run *models.BulkRun) error {
	if err := r.db.Create(run).Error; err != nil {
		return fmt.Errorf("failed to create bulk run: %w", err)
	}
	return nil
}

func (r *bulkRunRepository) FindByID(id uuid.UUID) (*models.BulkRun, error) {
	var run models.BulkRun
	if err := r.db.Where("id = ?", id).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrBulkRunNotFound
		}
		return nil, fmt.Errorf("failed to find bulk run: %w", err)
	}
	return &run, nil
}

func (r *bulkRunRepository) update(id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result := r.db.Model(&models.BulkRun{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update bulk run: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return models.ErrBulkRunNotFound
	}

	return nil
}

// Transition moves a run from one status to another and reports false when
// the run was not in the from status. Claiming a queued run this way means
// it is only ever processed once.
func (r *bulkRunRepository) Transition(id uuid.UUID, from, to models.BulkRunStatus) (bool, error) {
	result := r.db.Model(&models.BulkRun{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to update bulk run status: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *bulkRunRepository) RecordRuleVersion(id uuid.UUID, version int) error {
	return r.update(id, map[string]interface{}{"jd_version": version})
}

func (r *bulkRunRepository) UpdateProgress(id uuid.UUID, succeeded, failed int) error {
	return r.update(id, map[string]interface{}{
		"succeeded": succeeded,
		"failed":    failed,
	})
}

func (r *bulkRunRepository) Finish(id uuid.UUID, status models.BulkRunStatus, succeeded, failed int) error {
	return r.update(id, map[string]interface{}{
		"status":    status,
		"succeeded": succeeded,
		"failed":    failed,
	})
}

func (r *bulkRunRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	return r.update(id, map[string]interface{}{
		"status":        models.StatusFailed,
		"error_message": errorMsg,
	})
}

func (r *bulkRunRepository) FindPendingJobs(limit int) ([]models.BulkRun, error) {
	var runs []models.BulkRun
	err := r.db.
		Where("status = ?", models.StatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&runs).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending jobs: %w", err)
	}

	return runs, nil
}

// RequeueInterrupted puts runs left in processing by a previous process
// back in the queue. Profiles already recorded for a run are not rescored.
func (r *bulkRunRepository) RequeueInterrupted() (int64, error) {
	result := r.db.Model(&models.BulkRun{}).
		Where("status = ?", models.StatusProcessing).
		Updates(map[string]interface{}{
			"status":     models.StatusQueued,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to requeue bulk runs: %w", result.Error)
	}
	return result.RowsAffected, nil
}
