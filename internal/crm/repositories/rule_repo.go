package repositories

import (
	"context"

	"github.com/edvantage/crm-backend/internal/crm/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RuleRepo interface for assignment rule database operations.
//
// AdvanceRotation and AdvancePercentage are the only writers of the rule's
// rotation/counter state. Both run a read-increment-write inside one
// transaction holding a FOR UPDATE lock on the rule row, so concurrent
// ingestions serialize per rule and no slot is reused or skipped.
type RuleRepo interface {
	Create(ctx context.Context, rule *models.AssignmentRule) error
	FindByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.AssignmentRule, error)
	FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.AssignmentRule, error)
	// FindEnabled returns enabled rules ordered by priority ASC, ties broken
	// by creation order (first created wins).
	FindEnabled(ctx context.Context, workspaceID uuid.UUID) ([]models.AssignmentRule, error)
	Update(ctx context.Context, rule *models.AssignmentRule) error
	Delete(ctx context.Context, workspaceID, id uuid.UUID) error

	// AdvanceRotation atomically claims the next rotation slot for the rule
	// and returns it (0-based, already reduced modulo poolSize).
	AdvanceRotation(ctx context.Context, ruleID uuid.UUID, poolSize int) (int, error)
	// AdvancePercentage atomically increments the rule's running counter and
	// returns its pre-increment value.
	AdvancePercentage(ctx context.Context, ruleID uuid.UUID) (int64, error)
}

type ruleRepo struct {
	db *gorm.DB
}

// NewRuleRepo creates a new assignment rule repository
func NewRuleRepo(db *gorm.DB) RuleRepo {
	return &ruleRepo{db: db}
}

func (r *ruleRepo) Create(ctx context.Context, rule *models.AssignmentRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *ruleRepo) FindByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.AssignmentRule, error) {
	var rule models.AssignmentRule
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *ruleRepo) FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.AssignmentRule, error) {
	var rules []models.AssignmentRule
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("priority ASC, created_at ASC").
		Find(&rules).Error
	return rules, err
}

func (r *ruleRepo) FindEnabled(ctx context.Context, workspaceID uuid.UUID) ([]models.AssignmentRule, error) {
	var rules []models.AssignmentRule
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND is_enabled = ?", workspaceID, true).
		Order("priority ASC, created_at ASC").
		Find(&rules).Error
	return rules, err
}

func (r *ruleRepo) Update(ctx context.Context, rule *models.AssignmentRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

func (r *ruleRepo) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		Delete(&models.AssignmentRule{}).Error
}

func (r *ruleRepo) AdvanceRotation(ctx context.Context, ruleID uuid.UUID, poolSize int) (int, error) {
	slot := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rule models.AssignmentRule
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", ruleID).
			First(&rule).Error; err != nil {
			return err
		}

		slot = rule.RotationIndex % poolSize
		return tx.Model(&models.AssignmentRule{}).
			Where("id = ?", ruleID).
			Update("rotation_index", gorm.Expr("rotation_index + 1")).Error
	})
	if err != nil {
		return 0, err
	}
	return slot, nil
}

func (r *ruleRepo) AdvancePercentage(ctx context.Context, ruleID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rule models.AssignmentRule
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", ruleID).
			First(&rule).Error; err != nil {
			return err
		}

		count = rule.HitCount
		return tx.Model(&models.AssignmentRule{}).
			Where("id = ?", ruleID).
			Update("hit_count", gorm.Expr("hit_count + 1")).Error
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
