package repositories

import (
	"context"

	"github.com/edvantage/crm-backend/internal/crm/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepo interface for user lookups used by assignment and reminders
type UserRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// FindActive returns (nil, gorm.ErrRecordNotFound) for unknown or
	// deactivated users.
	FindActive(ctx context.Context, id uuid.UUID) (*models.User, error)
	// ActiveMemberIDs returns the ids of active users in the workspace,
	// ordered by membership creation time.
	ActiveMemberIDs(ctx context.Context, workspaceID uuid.UUID) ([]uuid.UUID, error)
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *gorm.DB) UserRepo {
	return &userRepo{db: db}
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindActive(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) ActiveMemberIDs(ctx context.Context, workspaceID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.WorkspaceMember{}).
		Joins("JOIN users ON users.id = workspace_members.user_id AND users.is_active = true").
		Where("workspace_members.workspace_id = ?", workspaceID).
		Order("workspace_members.created_at ASC").
		Pluck("workspace_members.user_id", &ids).Error
	return ids, err
}
