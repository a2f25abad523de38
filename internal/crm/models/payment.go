package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment is a completed payment against a lead. Recording one increments the
// lead's revenue; payments are never edited after the fact.
type Payment struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkspaceID uuid.UUID `json:"workspace_id" gorm:"type:uuid;not null;index"`
	LeadID      uuid.UUID `json:"lead_id" gorm:"type:uuid;not null;index"`

	Amount    float64 `json:"amount" gorm:"not null"`
	Method    string  `json:"method" gorm:"type:varchar(32)"`
	Reference string  `json:"reference" gorm:"type:varchar(255)"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Payment) TableName() string {
	return "payments"
}
