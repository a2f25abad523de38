package repositories

import (
	"context"
	"errors"

	"github.com/edvantage/crm-backend/internal/crm/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatusRepo interface for workspace status configuration
type StatusRepo interface {
	Create(ctx context.Context, status *models.StatusConfig) error
	FindByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.StatusConfig, error)
	FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.StatusConfig, error)
	// FindByName returns (nil, nil) when the workspace has no status with
	// that name.
	FindByName(ctx context.Context, workspaceID uuid.UUID, name string) (*models.StatusConfig, error)
	// DefaultStatus returns the workspace's default status, or (nil, nil)
	// when none is configured.
	DefaultStatus(ctx context.Context, workspaceID uuid.UUID) (*models.StatusConfig, error)
	Update(ctx context.Context, status *models.StatusConfig) error
	Delete(ctx context.Context, workspaceID, id uuid.UUID) error
}

type statusRepo struct {
	db *gorm.DB
}

// NewStatusRepo creates a new status configuration repository
func NewStatusRepo(db *gorm.DB) StatusRepo {
	return &statusRepo{db: db}
}

func (r *statusRepo) Create(ctx context.Context, status *models.StatusConfig) error {
	if !status.IsDefault {
		return r.db.WithContext(ctx).Create(status).Error
	}
	// A workspace has at most one default status
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.StatusConfig{}).
			Where("workspace_id = ? AND is_default = ?", status.WorkspaceID, true).
			Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Create(status).Error
	})
}

func (r *statusRepo) FindByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.StatusConfig, error) {
	var status models.StatusConfig
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		First(&status).Error
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *statusRepo) FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.StatusConfig, error) {
	var statuses []models.StatusConfig
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("sort_order ASC, created_at ASC").
		Find(&statuses).Error
	return statuses, err
}

func (r *statusRepo) FindByName(ctx context.Context, workspaceID uuid.UUID, name string) (*models.StatusConfig, error) {
	var status models.StatusConfig
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND name = ?", workspaceID, name).
		First(&status).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &status, nil
}

func (r *statusRepo) DefaultStatus(ctx context.Context, workspaceID uuid.UUID) (*models.StatusConfig, error) {
	var status models.StatusConfig
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND is_default = ?", workspaceID, true).
		First(&status).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &status, nil
}

func (r *statusRepo) Update(ctx context.Context, status *models.StatusConfig) error {
	if !status.IsDefault {
		return r.db.WithContext(ctx).Save(status).Error
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.StatusConfig{}).
			Where("workspace_id = ? AND is_default = ? AND id <> ?", status.WorkspaceID, true, status.ID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Save(status).Error
	})
}

func (r *statusRepo) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		Delete(&models.StatusConfig{}).Error
}
