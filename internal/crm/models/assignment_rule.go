package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Assignment strategies
const (
	AssignSpecific   = "SPECIFIC"
	AssignRoundRobin = "ROUND_ROBIN"
	AssignPercentage = "PERCENTAGE"
)

// AssignmentRule routes newly ingested leads to an owner. Rules are evaluated
// in ascending priority (ties broken by creation order) and exactly one rule
// fires per lead: the first enabled rule whose source/status filters match.
//
// RotationIndex and HitCount are engine-owned state; nothing outside the
// assignment engine's atomic advance operations may touch them.
type AssignmentRule struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkspaceID uuid.UUID `json:"workspace_id" gorm:"type:uuid;not null;index"`

	// Optional filters; empty string matches any value
	Source string `json:"source" gorm:"type:varchar(64)"`
	Status string `json:"status" gorm:"type:varchar(64)"`

	AssignmentType string    `json:"assignment_type" gorm:"type:varchar(20);not null"`
	Percentage     int       `json:"percentage" gorm:"default:0"`
	AssigneeID     uuid.UUID `json:"assignee_id" gorm:"type:uuid;not null"`

	// Ordered pool of user ids for ROUND_ROBIN; empty rotates over the
	// workspace's active members
	Pool datatypes.JSON `json:"pool" gorm:"type:jsonb;default:'[]'"`

	Priority  int  `json:"priority" gorm:"not null;index"`
	IsEnabled bool `json:"is_enabled" gorm:"default:true;index"`

	// Engine-owned rotation/counter state, persisted across restarts
	RotationIndex int   `json:"rotation_index" gorm:"default:0"`
	HitCount      int64 `json:"hit_count" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (AssignmentRule) TableName() string {
	return "assignment_rules"
}

// Matches reports whether the rule's filters accept a lead's source and status.
func (r *AssignmentRule) Matches(source, status string) bool {
	if r.Source != "" && r.Source != source {
		return false
	}
	if r.Status != "" && r.Status != status {
		return false
	}
	return true
}

// PoolMembers decodes the rotation pool. An empty result means the engine
// rotates over the workspace's active members instead.
func (r *AssignmentRule) PoolMembers() []uuid.UUID {
	var ids []uuid.UUID
	if len(r.Pool) > 0 {
		_ = json.Unmarshal(r.Pool, &ids)
	}
	return ids
}
