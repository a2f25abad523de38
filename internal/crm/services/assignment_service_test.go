package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/edvantage/crm-backend/internal/core/events"
	"github.com/edvantage/crm-backend/internal/crm/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type assignmentHarness struct {
	svc       *AssignmentService
	rules     *fakeRuleRepo
	leads     *fakeLeadRepo
	users     *fakeUserRepo
	activity  *fakeActivityRepo
	workspace uuid.UUID
}

func newAssignmentHarness(t *testing.T, users ...*models.User) *assignmentHarness {
	t.Helper()
	ruleRepo := newFakeRuleRepo()
	leadRepo := newFakeLeadRepo()
	userRepo := newFakeUserRepo(users...)
	activityRepo := newFakeActivityRepo()
	svc := NewAssignmentService(ruleRepo, leadRepo, userRepo,
		NewActivityService(activityRepo), events.NewBus())
	return &assignmentHarness{
		svc:       svc,
		rules:     ruleRepo,
		leads:     leadRepo,
		users:     userRepo,
		activity:  activityRepo,
		workspace: uuid.New(),
	}
}

func activeUser(name string) *models.User {
	return &models.User{ID: uuid.New(), Name: name, IsActive: true}
}

func poolJSON(t *testing.T, ids ...uuid.UUID) datatypes.JSON {
	t.Helper()
	raw, err := json.Marshal(ids)
	require.NoError(t, err)
	return raw
}

func (h *assignmentHarness) addRule(t *testing.T, rule *models.AssignmentRule) *models.AssignmentRule {
	t.Helper()
	rule.WorkspaceID = h.workspace
	require.NoError(t, h.rules.Create(context.Background(), rule))
	return rule
}

func (h *assignmentHarness) addLead(t *testing.T, phone, source, status string) *models.Lead {
	t.Helper()
	lead, created, err := h.leads.CreateOrGet(context.Background(), &models.Lead{
		WorkspaceID: h.workspace,
		Phone:       phone,
		Source:      source,
		Status:      status,
	})
	require.NoError(t, err)
	require.True(t, created)
	return lead
}

func TestAssignSpecific(t *testing.T) {
	owner := activeUser("Asha")
	h := newAssignmentHarness(t, owner)
	h.addRule(t, &models.AssignmentRule{
		Source:         models.SourceWebsite,
		AssignmentType: models.AssignSpecific,
		AssigneeID:     owner.ID,
		Priority:       1,
		IsEnabled:      true,
	})

	lead := h.addLead(t, "919876500001", models.SourceWebsite, "NEW")
	got, err := h.svc.AssignNewLead(context.Background(), lead)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, owner.ID, *got)

	stored, err := h.leads.FindByID(context.Background(), h.workspace, lead.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.OwnerID)
	assert.Equal(t, owner.ID, *stored.OwnerID)

	assigned := h.activity.ofType(models.ActivityLeadAssigned)
	require.Len(t, assigned, 1)
	assert.Contains(t, assigned[0].Message, "Asha")
}

func TestFirstMatchingRuleWins(t *testing.T) {
	first := activeUser("First")
	second := activeUser("Second")
	h := newAssignmentHarness(t, first, second)

	// Higher priority number, created earlier: must lose
	h.addRule(t, &models.AssignmentRule{
		AssignmentType: models.AssignSpecific,
		AssigneeID:     second.ID,
		Priority:       5,
		IsEnabled:      true,
	})
	h.addRule(t, &models.AssignmentRule{
		Source:         models.SourceFacebook,
		AssignmentType: models.AssignSpecific,
		AssigneeID:     first.ID,
		Priority:       1,
		IsEnabled:      true,
	})

	lead := h.addLead(t, "919876500002", models.SourceFacebook, "NEW")
	got, err := h.svc.AssignNewLead(context.Background(), lead)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, *got)
}

func TestFilteredRuleSkipped(t *testing.T) {
	owner := activeUser("Ravi")
	h := newAssignmentHarness(t, owner)
	h.addRule(t, &models.AssignmentRule{
		Source:         models.SourceGoogleAds,
		AssignmentType: models.AssignSpecific,
		AssigneeID:     owner.ID,
		Priority:       1,
		IsEnabled:      true,
	})

	lead := h.addLead(t, "919876500003", models.SourceReferral, "NEW")
	got, err := h.svc.AssignNewLead(context.Background(), lead)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDisabledRuleSkipped(t *testing.T) {
	owner := activeUser("Meera")
	h := newAssignmentHarness(t, owner)
	h.addRule(t, &models.AssignmentRule{
		AssignmentType: models.AssignSpecific,
		AssigneeID:     owner.ID,
		Priority:       1,
		IsEnabled:      false,
	})

	lead := h.addLead(t, "919876500004", models.SourceWebsite, "NEW")
	got, err := h.svc.AssignNewLead(context.Background(), lead)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRoundRobinFairness(t *testing.T) {
	u1, u2, u3 := activeUser("U1"), activeUser("U2"), activeUser("U3")
	h := newAssignmentHarness(t, u1, u2, u3)
	h.addRule(t, &models.AssignmentRule{
		AssignmentType: models.AssignRoundRobin,
		AssigneeID:     u1.ID,
		Pool:           poolJSON(t, u1.ID, u2.ID, u3.ID),
		Priority:       1,
		IsEnabled:      true,
	})

	want := []uuid.UUID{u1.ID, u2.ID, u3.ID, u1.ID, u2.ID, u3.ID, u1.ID, u2.ID, u3.ID}
	for i, expected := range want {
		lead := h.addLead(t, fmt.Sprintf("91987651%04d", i), models.SourceWebsite, "NEW")
		got, err := h.svc.AssignNewLead(context.Background(), lead)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, expected, *got, "lead %d went to the wrong pool member", i)
	}
}

func TestRoundRobinConcurrent(t *testing.T) {
	u1, u2, u3 := activeUser("U1"), activeUser("U2"), activeUser("U3")
	h := newAssignmentHarness(t, u1, u2, u3)
	h.addRule(t, &models.AssignmentRule{
		AssignmentType: models.AssignRoundRobin,
		AssigneeID:     u1.ID,
		Pool:           poolJSON(t, u1.ID, u2.ID, u3.ID),
		Priority:       1,
		IsEnabled:      true,
	})

	const n = 30
	leads := make([]*models.Lead, n)
	for i := 0; i < n; i++ {
		leads[i] = h.addLead(t, fmt.Sprintf("91987652%04d", i), models.SourceWebsite, "NEW")
	}

	var wg sync.WaitGroup
	results := make([]*uuid.UUID, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = h.svc.AssignNewLead(context.Background(), leads[i])
		}(i)
	}
	wg.Wait()

	counts := map[uuid.UUID]int{}
	for i, r := range results {
		require.NoError(t, errs[i])
		require.NotNil(t, r)
		counts[*r]++
	}
	assert.Equal(t, n/3, counts[u1.ID])
	assert.Equal(t, n/3, counts[u2.ID])
	assert.Equal(t, n/3, counts[u3.ID])
}

func TestPercentageDeterministic(t *testing.T) {
	owner := activeUser("Quota")
	h := newAssignmentHarness(t, owner)
	h.addRule(t, &models.AssignmentRule{
		AssignmentType: models.AssignPercentage,
		Percentage:     25,
		AssigneeID:     owner.ID,
		Priority:       1,
		IsEnabled:      true,
	})

	assigned := 0
	for i := 0; i < 100; i++ {
		lead := h.addLead(t, fmt.Sprintf("91987653%04d", i), models.SourceWebsite, "NEW")
		got, err := h.svc.AssignNewLead(context.Background(), lead)
		require.NoError(t, err)
		if got != nil {
			assigned++
		}
	}
	assert.Equal(t, 25, assigned, "exactly 25 of 100 leads should be assigned")
}

func TestInactiveOwnerLeavesUnassigned(t *testing.T) {
	gone := &models.User{ID: uuid.New(), Name: "Gone", IsActive: false}
	h := newAssignmentHarness(t, gone)
	h.addRule(t, &models.AssignmentRule{
		AssignmentType: models.AssignSpecific,
		AssigneeID:     gone.ID,
		Priority:       1,
		IsEnabled:      true,
	})

	lead := h.addLead(t, "919876500005", models.SourceWebsite, "NEW")
	got, err := h.svc.AssignNewLead(context.Background(), lead)
	require.NoError(t, err)
	assert.Nil(t, got)

	stored, err := h.leads.FindByID(context.Background(), h.workspace, lead.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.OwnerID)
}

func TestAssignBySourceSweepsBacklog(t *testing.T) {
	owner := activeUser("Sweeper")
	h := newAssignmentHarness(t, owner)

	for i := 0; i < 4; i++ {
		h.addLead(t, fmt.Sprintf("91987654%04d", i), models.SourceLinkedIn, "NEW")
	}
	h.addLead(t, "919876549999", models.SourceReferral, "NEW")

	// Rule configured after the leads arrived
	h.addRule(t, &models.AssignmentRule{
		Source:         models.SourceLinkedIn,
		AssignmentType: models.AssignSpecific,
		AssigneeID:     owner.ID,
		Priority:       1,
		IsEnabled:      true,
	})

	assigned, err := h.svc.AssignBySource(context.Background(), h.workspace, models.SourceLinkedIn)
	require.NoError(t, err)
	assert.Equal(t, 4, assigned)

	// The referral lead stays untouched
	remaining, err := h.leads.FindUnassignedBySource(context.Background(), h.workspace, models.SourceReferral)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestCreateRuleValidation(t *testing.T) {
	owner := activeUser("Valid")
	h := newAssignmentHarness(t, owner)
	ctx := context.Background()

	tests := []struct {
		name  string
		input RuleInput
	}{
		{"unknown type", RuleInput{AssignmentType: "RANDOM", AssigneeID: owner.ID}},
		{"percentage without percentage", RuleInput{AssignmentType: models.AssignPercentage, AssigneeID: owner.ID}},
		{"percentage above 100", RuleInput{AssignmentType: models.AssignPercentage, Percentage: 120, AssigneeID: owner.ID}},
		{"unknown assignee", RuleInput{AssignmentType: models.AssignSpecific, AssigneeID: uuid.New()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.CreateRule(ctx, h.workspace, &tt.input)
			require.Error(t, err)
			assert.True(t, IsValidation(err), "expected a validation error, got %v", err)
		})
	}

	rule, err := h.svc.CreateRule(ctx, h.workspace, &RuleInput{
		AssignmentType: models.AssignSpecific,
		AssigneeID:     owner.ID,
		Priority:       2,
	})
	require.NoError(t, err)
	assert.True(t, rule.IsEnabled, "rules default to enabled")

	// A ROUND_ROBIN rule may omit the pool: it rotates over active members
	_, err = h.svc.CreateRule(ctx, h.workspace, &RuleInput{
		AssignmentType: models.AssignRoundRobin,
		AssigneeID:     owner.ID,
		Priority:       3,
	})
	require.NoError(t, err)
}

func TestRoundRobinEmptyPoolRotatesActiveMembers(t *testing.T) {
	u1, u2 := activeUser("U1"), activeUser("U2")
	gone := &models.User{ID: uuid.New(), Name: "Gone", IsActive: false}
	h := newAssignmentHarness(t, u1, u2, gone)
	h.addRule(t, &models.AssignmentRule{
		AssignmentType: models.AssignRoundRobin,
		AssigneeID:     u1.ID,
		Priority:       1,
		IsEnabled:      true,
	})

	want := []uuid.UUID{u1.ID, u2.ID, u1.ID, u2.ID}
	for i, expected := range want {
		lead := h.addLead(t, fmt.Sprintf("91987655%04d", i), models.SourceWebsite, "NEW")
		got, err := h.svc.AssignNewLead(context.Background(), lead)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, expected, *got, "lead %d went to the wrong member", i)
	}
}

func TestUpdateRulePreservesCounters(t *testing.T) {
	owner := activeUser("Counter")
	h := newAssignmentHarness(t, owner)
	ctx := context.Background()

	rule := h.addRule(t, &models.AssignmentRule{
		AssignmentType: models.AssignRoundRobin,
		AssigneeID:     owner.ID,
		Pool:           poolJSON(t, owner.ID),
		Priority:       1,
		IsEnabled:      true,
	})

	// Advance the rotation a few times
	for i := 0; i < 3; i++ {
		_, err := h.rules.AdvanceRotation(ctx, rule.ID, 1)
		require.NoError(t, err)
	}

	updated, err := h.svc.UpdateRule(ctx, h.workspace, rule.ID, &RuleInput{
		AssignmentType: models.AssignRoundRobin,
		AssigneeID:     owner.ID,
		Pool:           []uuid.UUID{owner.ID},
		Priority:       9,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.RotationIndex)
}
