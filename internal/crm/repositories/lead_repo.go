package repositories

import (
	"context"

	"github.com/edvantage/crm-backend/internal/crm/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LeadRepo interface for lead database operations
type LeadRepo interface {
	FindByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Lead, error)
	FindByPhone(ctx context.Context, workspaceID uuid.UUID, phone string) (*models.Lead, error)
	// CreateOrGet inserts the lead unless another row already holds the same
	// (workspace, phone); in that case it returns the existing row. The bool
	// reports whether a new row was created. Safe under concurrent duplicate
	// submissions: the unique index arbitrates, losers re-read the winner.
	CreateOrGet(ctx context.Context, lead *models.Lead) (*models.Lead, bool, error)
	Update(ctx context.Context, lead *models.Lead) error
	UpdateStatus(ctx context.Context, workspaceID, id uuid.UUID, status string) error
	SetOwner(ctx context.Context, workspaceID, id uuid.UUID, ownerID *uuid.UUID) error
	AddRevenue(ctx context.Context, workspaceID, id uuid.UUID, amount float64) error
	FindUnassignedBySource(ctx context.Context, workspaceID uuid.UUID, source string) ([]models.Lead, error)
	List(ctx context.Context, workspaceID uuid.UUID, limit, offset int) ([]models.Lead, error)
}

type leadRepo struct {
	db *gorm.DB
}

// NewLeadRepo creates a new lead repository
func NewLeadRepo(db *gorm.DB) LeadRepo {
	return &leadRepo{db: db}
}

func (r *leadRepo) FindByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Lead, error) {
	var lead models.Lead
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		First(&lead).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *leadRepo) FindByPhone(ctx context.Context, workspaceID uuid.UUID, phone string) (*models.Lead, error) {
	var lead models.Lead
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND phone = ?", workspaceID, phone).
		First(&lead).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *leadRepo) CreateOrGet(ctx context.Context, lead *models.Lead) (*models.Lead, bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "workspace_id"}, {Name: "phone"}},
			DoNothing: true,
		}).
		Create(lead)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return lead, true, nil
	}

	// Lost the insert race (or the lead pre-existed): fetch the winner
	existing, err := r.FindByPhone(ctx, lead.WorkspaceID, lead.Phone)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *leadRepo) Update(ctx context.Context, lead *models.Lead) error {
	return r.db.WithContext(ctx).Save(lead).Error
}

func (r *leadRepo) UpdateStatus(ctx context.Context, workspaceID, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Model(&models.Lead{}).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		Update("status", status).Error
}

func (r *leadRepo) SetOwner(ctx context.Context, workspaceID, id uuid.UUID, ownerID *uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Lead{}).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		Update("owner_id", ownerID).Error
}

func (r *leadRepo) AddRevenue(ctx context.Context, workspaceID, id uuid.UUID, amount float64) error {
	return r.db.WithContext(ctx).Model(&models.Lead{}).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		Update("revenue", gorm.Expr("revenue + ?", amount)).Error
}

func (r *leadRepo) FindUnassignedBySource(ctx context.Context, workspaceID uuid.UUID, source string) ([]models.Lead, error) {
	var leads []models.Lead
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND source = ? AND owner_id IS NULL", workspaceID, source).
		Order("created_at ASC").
		Find(&leads).Error
	return leads, err
}

func (r *leadRepo) List(ctx context.Context, workspaceID uuid.UUID, limit, offset int) ([]models.Lead, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var leads []models.Lead
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&leads).Error
	return leads, err
}
