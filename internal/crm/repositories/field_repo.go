package repositories

import (
	"context"

	"github.com/edvantage/crm-backend/internal/crm/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FieldRepo interface for the per-workspace custom lead field registry
type FieldRepo interface {
	Create(ctx context.Context, field *models.LeadField) error
	FindByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.LeadField, error)
	FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.LeadField, error)
	Update(ctx context.Context, field *models.LeadField) error
	Delete(ctx context.Context, workspaceID, id uuid.UUID) error
}

type fieldRepo struct {
	db *gorm.DB
}

// NewFieldRepo creates a new lead field repository
func NewFieldRepo(db *gorm.DB) FieldRepo {
	return &fieldRepo{db: db}
}

func (r *fieldRepo) Create(ctx context.Context, field *models.LeadField) error {
	return r.db.WithContext(ctx).Create(field).Error
}

func (r *fieldRepo) FindByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.LeadField, error) {
	var field models.LeadField
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		First(&field).Error
	if err != nil {
		return nil, err
	}
	return &field, nil
}

func (r *fieldRepo) FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.LeadField, error) {
	var fields []models.LeadField
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at ASC").
		Find(&fields).Error
	return fields, err
}

func (r *fieldRepo) Update(ctx context.Context, field *models.LeadField) error {
	return r.db.WithContext(ctx).Save(field).Error
}

func (r *fieldRepo) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		Delete(&models.LeadField{}).Error
}
