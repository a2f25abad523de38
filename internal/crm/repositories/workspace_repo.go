package repositories

import (
	"context"
	"errors"

	"github.com/edvantage/crm-backend/internal/crm/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkspaceRepo interface for workspace and membership lookups
type WorkspaceRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Workspace, error)
	FindByWebhookToken(ctx context.Context, token string) (*models.Workspace, error)
	// MemberRole returns ("", nil) when the user is not a member.
	MemberRole(ctx context.Context, workspaceID, userID uuid.UUID) (string, error)
}

type workspaceRepo struct {
	db *gorm.DB
}

// NewWorkspaceRepo creates a new workspace repository
func NewWorkspaceRepo(db *gorm.DB) WorkspaceRepo {
	return &workspaceRepo{db: db}
}

func (r *workspaceRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Workspace, error) {
	var ws models.Workspace
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ws).Error
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

func (r *workspaceRepo) FindByWebhookToken(ctx context.Context, token string) (*models.Workspace, error) {
	var ws models.Workspace
	err := r.db.WithContext(ctx).Where("webhook_token = ?", token).First(&ws).Error
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

func (r *workspaceRepo) MemberRole(ctx context.Context, workspaceID, userID uuid.UUID) (string, error) {
	var member models.WorkspaceMember
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return member.Role, nil
}
