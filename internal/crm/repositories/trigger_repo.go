package repositories

import (
	"context"
	"errors"

	"github.com/edvantage/crm-backend/internal/crm/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TriggerRepo interface for WhatsApp trigger database operations
type TriggerRepo interface {
	Create(ctx context.Context, trigger *models.WhatsAppTrigger) error
	FindByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.WhatsAppTrigger, error)
	FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.WhatsAppTrigger, error)
	// FindByStatus returns (nil, nil) when no trigger exists for the status.
	FindByStatus(ctx context.Context, workspaceID uuid.UUID, status string) (*models.WhatsAppTrigger, error)
	Update(ctx context.Context, trigger *models.WhatsAppTrigger) error
	Delete(ctx context.Context, workspaceID, id uuid.UUID) error
}

type triggerRepo struct {
	db *gorm.DB
}

// NewTriggerRepo creates a new WhatsApp trigger repository
func NewTriggerRepo(db *gorm.DB) TriggerRepo {
	return &triggerRepo{db: db}
}

func (r *triggerRepo) Create(ctx context.Context, trigger *models.WhatsAppTrigger) error {
	return r.db.WithContext(ctx).Create(trigger).Error
}

func (r *triggerRepo) FindByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.WhatsAppTrigger, error) {
	var trigger models.WhatsAppTrigger
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		First(&trigger).Error
	if err != nil {
		return nil, err
	}
	return &trigger, nil
}

func (r *triggerRepo) FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.WhatsAppTrigger, error) {
	var triggers []models.WhatsAppTrigger
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at ASC").
		Find(&triggers).Error
	return triggers, err
}

func (r *triggerRepo) FindByStatus(ctx context.Context, workspaceID uuid.UUID, status string) (*models.WhatsAppTrigger, error) {
	var trigger models.WhatsAppTrigger
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND status = ?", workspaceID, status).
		First(&trigger).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &trigger, nil
}

func (r *triggerRepo) Update(ctx context.Context, trigger *models.WhatsAppTrigger) error {
	return r.db.WithContext(ctx).Save(trigger).Error
}

func (r *triggerRepo) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		Delete(&models.WhatsAppTrigger{}).Error
}
