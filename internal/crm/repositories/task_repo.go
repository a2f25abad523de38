package repositories

import (
	"context"
	"time"

	"github.com/edvantage/crm-backend/internal/crm/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskRepo interface for follow-up task database operations
type TaskRepo interface {
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Task, error)
	FindForLead(ctx context.Context, workspaceID, leadID uuid.UUID) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, workspaceID, id uuid.UUID) error

	// DueForReminder returns open tasks due before the cutoff whose reminder
	// has not been sent yet.
	DueForReminder(ctx context.Context, before time.Time) ([]models.Task, error)
	MarkReminded(ctx context.Context, id uuid.UUID) error
}

type taskRepo struct {
	db *gorm.DB
}

// NewTaskRepo creates a new task repository
func NewTaskRepo(db *gorm.DB) TaskRepo {
	return &taskRepo{db: db}
}

func (r *taskRepo) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepo) FindByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepo) FindForLead(ctx context.Context, workspaceID, leadID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND lead_id = ?", workspaceID, leadID).
		Order("due_at ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *taskRepo) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *taskRepo) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		Delete(&models.Task{}).Error
}

func (r *taskRepo) DueForReminder(ctx context.Context, before time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Where("is_completed = ? AND reminder_sent = ? AND due_at <= ?", false, false, before).
		Order("due_at ASC").
		Limit(100).
		Find(&tasks).Error
	return tasks, err
}

func (r *taskRepo) MarkReminded(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ?", id).
		Update("reminder_sent", true).Error
}
