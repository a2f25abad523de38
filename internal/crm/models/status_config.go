package models

import (
	"time"

	"github.com/google/uuid"
)

// Pipeline stages. Display-only grouping: any status may transition to any
// other status, there is no forbidden-transition table.
const (
	StageInitial = "INITIAL"
	StageActive  = "ACTIVE"
	StageClosed  = "CLOSED"
)

// StatusConfig is a workspace-defined lead status. Exactly one per workspace
// carries IsDefault; new leads land on it.
type StatusConfig struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkspaceID uuid.UUID `json:"workspace_id" gorm:"type:uuid;not null;uniqueIndex:idx_statuses_workspace_name"`

	Name      string `json:"name" gorm:"type:varchar(64);not null;uniqueIndex:idx_statuses_workspace_name"`
	Stage     string `json:"stage" gorm:"type:varchar(16);not null;default:'ACTIVE'"`
	IsDefault bool   `json:"is_default" gorm:"default:false"`
	SortOrder int    `json:"sort_order" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (StatusConfig) TableName() string {
	return "status_configs"
}
