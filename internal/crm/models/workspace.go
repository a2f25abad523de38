package models

import (
	"time"

	"github.com/google/uuid"
)

// Membership roles. Rule and trigger management requires an elevated role.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleAgent   = "agent"
)

// IsElevated reports whether a role may manage rules, triggers and configs.
func IsElevated(role string) bool {
	return role == RoleAdmin || role == RoleManager
}

// Workspace is a tenant. Every other row in the system is scoped to one.
type Workspace struct {
	ID   uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name string    `json:"name" gorm:"type:varchar(255);not null"`

	// Shared secret identifying this workspace on unauthenticated webhook routes
	WebhookToken string `json:"-" gorm:"type:varchar(64);not null;uniqueIndex"`

	// Region used to normalize phones submitted without a country code
	PhoneRegion string `json:"phone_region" gorm:"type:varchar(2);default:'IN'"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Workspace) TableName() string {
	return "workspaces"
}

// WorkspaceMember links a user to a workspace with a role.
type WorkspaceMember struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkspaceID uuid.UUID `json:"workspace_id" gorm:"type:uuid;not null;uniqueIndex:idx_members_workspace_user"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_members_workspace_user"`
	Role        string    `json:"role" gorm:"type:varchar(20);not null;default:'agent'"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (WorkspaceMember) TableName() string {
	return "workspace_members"
}

// User mirrors the external auth provider's account record. We never create
// credentials here; rows exist so assignment can resolve names and liveness.
type User struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name     string    `json:"name" gorm:"type:varchar(255);not null"`
	Email    string    `json:"email" gorm:"type:varchar(255);uniqueIndex"`
	Phone    string    `json:"phone" gorm:"type:varchar(32)"`
	IsActive bool      `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
