package repositories

import (
	"context"

	"github.com/edvantage/crm-backend/internal/crm/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentRepo interface for payment records against leads
type PaymentRepo interface {
	Create(ctx context.Context, payment *models.Payment) error
	ListForLead(ctx context.Context, workspaceID, leadID uuid.UUID) ([]models.Payment, error)
}

type paymentRepo struct {
	db *gorm.DB
}

// NewPaymentRepo creates a new payment repository
func NewPaymentRepo(db *gorm.DB) PaymentRepo {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepo) ListForLead(ctx context.Context, workspaceID, leadID uuid.UUID) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND lead_id = ?", workspaceID, leadID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}
