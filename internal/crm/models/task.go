package models

import (
	"time"

	"github.com/google/uuid"
)

// Task is a follow-up item attached to a lead. The reminder sweep sends the
// owner a WhatsApp nudge shortly before DueAt and sets ReminderSent.
type Task struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkspaceID uuid.UUID `json:"workspace_id" gorm:"type:uuid;not null;index"`
	LeadID      uuid.UUID `json:"lead_id" gorm:"type:uuid;not null;index"`
	OwnerID     uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`

	Title string `json:"title" gorm:"type:varchar(255);not null"`
	Notes string `json:"notes" gorm:"type:text"`

	DueAt        time.Time `json:"due_at" gorm:"not null;index"`
	IsCompleted  bool      `json:"is_completed" gorm:"default:false"`
	ReminderSent bool      `json:"reminder_sent" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Task) TableName() string {
	return "tasks"
}
