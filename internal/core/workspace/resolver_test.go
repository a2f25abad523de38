package workspace

import (
	"context"
	"testing"

	"github.com/edvantage/crm-backend/internal/crm/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeStore struct {
	workspaces map[uuid.UUID]*models.Workspace
	roles      map[uuid.UUID]map[uuid.UUID]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		workspaces: make(map[uuid.UUID]*models.Workspace),
		roles:      make(map[uuid.UUID]map[uuid.UUID]string),
	}
}

func (f *fakeStore) FindByID(_ context.Context, id uuid.UUID) (*models.Workspace, error) {
	ws, ok := f.workspaces[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return ws, nil
}

func (f *fakeStore) MemberRole(_ context.Context, workspaceID, userID uuid.UUID) (string, error) {
	return f.roles[workspaceID][userID], nil
}

func (f *fakeStore) addMember(wsID, userID uuid.UUID, role string) {
	if f.roles[wsID] == nil {
		f.roles[wsID] = make(map[uuid.UUID]string)
	}
	f.roles[wsID][userID] = role
}

func TestResolveMember(t *testing.T) {
	store := newFakeStore()
	wsID := uuid.New()
	userID := uuid.New()
	store.workspaces[wsID] = &models.Workspace{ID: wsID, Name: "Acme Academy"}
	store.addMember(wsID, userID, models.RoleAgent)

	resolver := NewResolver(store)
	scope, err := resolver.Resolve(context.Background(), &Identity{UserID: userID}, wsID.String())
	require.NoError(t, err)
	assert.Equal(t, wsID, scope.Workspace.ID)
	assert.Equal(t, userID, scope.UserID)
	assert.Equal(t, models.RoleAgent, scope.Role)
	assert.False(t, scope.Elevated())
}

func TestResolveElevatedRoles(t *testing.T) {
	store := newFakeStore()
	wsID := uuid.New()
	store.workspaces[wsID] = &models.Workspace{ID: wsID}
	resolver := NewResolver(store)

	for _, role := range []string{models.RoleAdmin, models.RoleManager} {
		userID := uuid.New()
		store.addMember(wsID, userID, role)
		scope, err := resolver.Resolve(context.Background(), &Identity{UserID: userID}, wsID.String())
		require.NoError(t, err)
		assert.True(t, scope.Elevated(), "role %s should be elevated", role)
	}
}

func TestResolveRejections(t *testing.T) {
	store := newFakeStore()
	wsID := uuid.New()
	memberID := uuid.New()
	store.workspaces[wsID] = &models.Workspace{ID: wsID}
	store.addMember(wsID, memberID, models.RoleAgent)
	resolver := NewResolver(store)
	ctx := context.Background()

	tests := []struct {
		name        string
		identity    *Identity
		workspaceID string
		want        error
	}{
		{"nil identity", nil, wsID.String(), ErrUnauthorized},
		{"zero user id", &Identity{}, wsID.String(), ErrUnauthorized},
		{"no workspace header", &Identity{UserID: memberID}, "", ErrWorkspaceNotSelected},
		{"malformed workspace id", &Identity{UserID: memberID}, "not-a-uuid", ErrWorkspaceNotSelected},
		{"unknown workspace", &Identity{UserID: memberID}, uuid.New().String(), ErrWorkspaceNotSelected},
		{"non-member", &Identity{UserID: uuid.New()}, wsID.String(), ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolver.Resolve(ctx, tt.identity, tt.workspaceID)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
