package repositories

import (
	"context"

	"github.com/edvantage/crm-backend/internal/crm/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityRepo interface for the append-only activity timeline.
// There is deliberately no update or delete.
type ActivityRepo interface {
	Append(ctx context.Context, activity *models.Activity) error
	ListForLead(ctx context.Context, workspaceID, leadID uuid.UUID, limit int) ([]models.Activity, error)
}

type activityRepo struct {
	db *gorm.DB
}

// NewActivityRepo creates a new activity repository
func NewActivityRepo(db *gorm.DB) ActivityRepo {
	return &activityRepo{db: db}
}

func (r *activityRepo) Append(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *activityRepo) ListForLead(ctx context.Context, workspaceID, leadID uuid.UUID, limit int) ([]models.Activity, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var activities []models.Activity
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND lead_id = ?", workspaceID, leadID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}
