package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Activity types
const (
	ActivityStatusChange = "STATUS_CHANGE"
	ActivitySystem       = "SYSTEM"
	ActivityWhatsApp     = "WHATSAPP"
	ActivityLeadAssigned = "LEAD_ASSIGNED"
	ActivityNote         = "NOTE"
	ActivityCall         = "CALL"
	ActivityPayment      = "PAYMENT"
	ActivityTask         = "TASK"
)

// Activity is an append-only timeline entry on a lead. Rows are never updated
// or deleted; readers get them newest-first.
type Activity struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkspaceID uuid.UUID `json:"workspace_id" gorm:"type:uuid;not null;index"`
	LeadID      uuid.UUID `json:"lead_id" gorm:"type:uuid;not null;index"`

	// Nil for system-generated entries
	UserID *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid"`

	Type    string `json:"type" gorm:"type:varchar(32);not null;index"`
	Subject string `json:"subject" gorm:"type:varchar(255)"`
	Message string `json:"message" gorm:"type:text"`

	Metadata datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index:,sort:desc"`
}

func (Activity) TableName() string {
	return "activities"
}
