package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Custom field types
const (
	FieldText    = "TEXT"
	FieldNumber  = "NUMBER"
	FieldSelect  = "SELECT"
	FieldDate    = "DATE"
	FieldBoolean = "BOOLEAN"
	FieldEmail   = "EMAIL"
	FieldPhone   = "PHONE"
)

// LeadField defines a workspace-level custom field. Webhook payload keys are
// validated against this registry before landing in Lead.CustomFields.
type LeadField struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkspaceID uuid.UUID `json:"workspace_id" gorm:"type:uuid;not null;uniqueIndex:idx_fields_workspace_key"`

	Key       string `json:"key" gorm:"type:varchar(64);not null;uniqueIndex:idx_fields_workspace_key"`
	Label     string `json:"label" gorm:"type:varchar(255);not null"`
	FieldType string `json:"field_type" gorm:"type:varchar(16);not null;default:'TEXT'"`

	// Allowed values for SELECT fields
	Options datatypes.JSON `json:"options,omitempty" gorm:"type:jsonb;default:'[]'"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (LeadField) TableName() string {
	return "lead_fields"
}

// OptionList decodes the allowed values of a SELECT field.
func (f *LeadField) OptionList() []string {
	var options []string
	if len(f.Options) > 0 {
		_ = json.Unmarshal(f.Options, &options)
	}
	return options
}

// HasOption reports whether a SELECT field allows the value.
func (f *LeadField) HasOption(value string) bool {
	for _, opt := range f.OptionList() {
		if opt == value {
			return true
		}
	}
	return false
}
