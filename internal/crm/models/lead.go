package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Well-known lead sources. The column is free-form so workspaces can add
// their own values; these are just the ones the marketing integrations send.
const (
	SourceWebsite       = "WEBSITE"
	SourceFacebook      = "FACEBOOK"
	SourceInstagram     = "INSTAGRAM"
	SourceGoogleAds     = "GOOGLE_ADS"
	SourceLinkedIn      = "LINKEDIN"
	SourceReferral      = "REFERRAL"
	SourceWalkIn        = "WALK_IN"
	SourcePhoneInquiry  = "PHONE_INQUIRY"
	SourceWhatsApp      = "WHATSAPP"
	SourceEmailCampaign = "EMAIL_CAMPAIGN"
)

// Lead represents a sales prospect. Phone is stored in canonical form
// (see internal/core/phone) and is the dedup key within a workspace.
type Lead struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkspaceID uuid.UUID `json:"workspace_id" gorm:"type:uuid;not null;uniqueIndex:idx_leads_workspace_phone;index"`

	Phone string `json:"phone" gorm:"type:varchar(32);not null;uniqueIndex:idx_leads_workspace_phone"`
	Name  string `json:"name" gorm:"type:varchar(255)"`
	Email string `json:"email" gorm:"type:varchar(255)"`

	Source string `json:"source" gorm:"type:varchar(64);index"`
	Status string `json:"status" gorm:"type:varchar(64);index"`

	OwnerID *uuid.UUID `json:"owner_id,omitempty" gorm:"type:uuid;index"`

	// Monotonically incremented by completed payments
	Revenue float64 `json:"revenue" gorm:"default:0"`

	// Workspace-defined custom field values, keyed by LeadField.Key
	CustomFields datatypes.JSON `json:"custom_fields" gorm:"type:jsonb;default:'{}'"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index:,sort:desc"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Lead) TableName() string {
	return "leads"
}

// CustomFieldMap decodes the jsonb column; a broken column decodes to empty.
func (l *Lead) CustomFieldMap() map[string]string {
	m := map[string]string{}
	if len(l.CustomFields) > 0 {
		_ = json.Unmarshal(l.CustomFields, &m)
	}
	return m
}

// FirstName returns the first whitespace-separated token of the lead's name.
func (l *Lead) FirstName() string {
	for i, r := range l.Name {
		if r == ' ' {
			return l.Name[:i]
		}
	}
	return l.Name
}
