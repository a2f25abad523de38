// Package workspace resolves which tenant an authenticated request acts on
// and what the caller may do inside it.
package workspace

import (
	"context"
	"errors"

	"github.com/edvantage/crm-backend/internal/crm/models"
	"github.com/google/uuid"
)

var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrWorkspaceNotSelected = errors.New("workspace not selected")
	ErrForbidden            = errors.New("not a member of this workspace")
)

// Identity is the authenticated caller extracted from the bearer token.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// Context is the resolved tenant scope a request operates in.
type Context struct {
	Workspace *models.Workspace
	UserID    uuid.UUID
	Role      string
}

// Elevated reports whether the caller may manage rules, triggers and configs.
func (c *Context) Elevated() bool {
	return models.IsElevated(c.Role)
}

// Store is the subset of workspace persistence the resolver needs.
type Store interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Workspace, error)
	MemberRole(ctx context.Context, workspaceID, userID uuid.UUID) (string, error)
}

type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve checks the caller's membership in the requested workspace and
// returns the scoped context. workspaceID comes from the X-Workspace-ID
// header; an empty value means the client never picked a workspace.
func (r *Resolver) Resolve(ctx context.Context, identity *Identity, workspaceID string) (*Context, error) {
	if identity == nil || identity.UserID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	if workspaceID == "" {
		return nil, ErrWorkspaceNotSelected
	}

	wsID, err := uuid.Parse(workspaceID)
	if err != nil {
		return nil, ErrWorkspaceNotSelected
	}

	ws, err := r.store.FindByID(ctx, wsID)
	if err != nil {
		return nil, ErrWorkspaceNotSelected
	}

	role, err := r.store.MemberRole(ctx, wsID, identity.UserID)
	if err != nil {
		return nil, err
	}
	if role == "" {
		return nil, ErrForbidden
	}

	return &Context{
		Workspace: ws,
		UserID:    identity.UserID,
		Role:      role,
	}, nil
}
