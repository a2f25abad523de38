package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WhatsAppTrigger binds a lead status to an outbound template campaign.
// At most one trigger exists per (workspace, status); the dispatcher reads it
// whenever a lead lands on that status.
type WhatsAppTrigger struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkspaceID uuid.UUID `json:"workspace_id" gorm:"type:uuid;not null;uniqueIndex:idx_triggers_workspace_status"`

	Status    string `json:"status" gorm:"type:varchar(64);not null;uniqueIndex:idx_triggers_workspace_status"`
	IsEnabled bool   `json:"is_enabled" gorm:"default:true"`

	// Template identifier on the gateway side
	CampaignName string `json:"campaign_name" gorm:"type:varchar(255);not null"`

	// Display-only hint about which source this campaign targets
	Source string `json:"source" gorm:"type:varchar(64)"`

	// Ordered placeholder names, e.g. ["{{FirstName}}","{{CourseInterested}}"]
	TemplateParams datatypes.JSON `json:"template_params" gorm:"type:jsonb;default:'[]'"`

	// Placeholder name -> default value when the lead lacks that field
	ParamsFallback datatypes.JSON `json:"params_fallback" gorm:"type:jsonb;default:'{}'"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (WhatsAppTrigger) TableName() string {
	return "whatsapp_triggers"
}

// ParamNames decodes the ordered placeholder list.
func (t *WhatsAppTrigger) ParamNames() []string {
	var names []string
	if len(t.TemplateParams) > 0 {
		_ = json.Unmarshal(t.TemplateParams, &names)
	}
	return names
}

// FallbackMap decodes the placeholder fallback values.
func (t *WhatsAppTrigger) FallbackMap() map[string]string {
	m := map[string]string{}
	if len(t.ParamsFallback) > 0 {
		_ = json.Unmarshal(t.ParamsFallback, &m)
	}
	return m
}
