package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/edvantage/crm-backend/internal/core/events"
	"github.com/edvantage/crm-backend/internal/core/gateway"
	"github.com/edvantage/crm-backend/internal/crm/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type triggerHarness struct {
	svc      *TriggerService
	triggers *fakeTriggerRepo
	activity *fakeActivityRepo
	provider *fakeProvider
	wsID     uuid.UUID
}

func newTriggerHarness(t *testing.T) *triggerHarness {
	t.Helper()
	triggerRepo := newFakeTriggerRepo()
	activityRepo := newFakeActivityRepo()
	provider := &fakeProvider{}
	svc := NewTriggerService(triggerRepo, gateway.NewService(provider, 1000),
		NewActivityService(activityRepo), events.NewBus())
	return &triggerHarness{
		svc:      svc,
		triggers: triggerRepo,
		activity: activityRepo,
		provider: provider,
		wsID:     uuid.New(),
	}
}

func (h *triggerHarness) addTrigger(t *testing.T, status, campaign string, params []string, fallback map[string]string, enabled bool) {
	t.Helper()
	rawParams, err := json.Marshal(params)
	require.NoError(t, err)
	rawFallback, err := json.Marshal(fallback)
	require.NoError(t, err)
	require.NoError(t, h.triggers.Create(context.Background(), &models.WhatsAppTrigger{
		WorkspaceID:    h.wsID,
		Status:         status,
		CampaignName:   campaign,
		TemplateParams: rawParams,
		ParamsFallback: rawFallback,
		IsEnabled:      enabled,
	}))
}

func TestDispatchResolvesParams(t *testing.T) {
	h := newTriggerHarness(t)
	custom, _ := json.Marshal(map[string]string{"CourseInterested": "Data Science"})
	lead := &models.Lead{
		ID:           uuid.New(),
		WorkspaceID:  h.wsID,
		Phone:        "919876543210",
		Name:         "Priya Sharma",
		Status:       "CONTACTED",
		Revenue:      2500,
		CustomFields: datatypes.JSON(custom),
	}
	h.addTrigger(t, "CONTACTED", "followup",
		[]string{"{{FirstName}}", "{{CourseInterested}}", "{{Amount}}", "{{CounselorName}}", "{{Unknown}}"},
		map[string]string{"CounselorName": "Admissions Team"},
		true)

	require.NoError(t, h.svc.Dispatch(context.Background(), h.wsID, lead))

	sends := h.provider.sent()
	require.Len(t, sends, 1)
	assert.Equal(t, "followup", sends[0].Campaign)
	assert.Equal(t, "919876543210", sends[0].To)
	assert.Equal(t, []string{
		"Priya",           // built-in attribute
		"Data Science",    // custom field
		"2500",            // revenue formatted without trailing zeros
		"Admissions Team", // configured fallback
		"",                // unresolvable stays empty
	}, sends[0].Params)

	recorded := h.activity.ofType(models.ActivityWhatsApp)
	require.Len(t, recorded, 1)
	assert.Equal(t, "WhatsApp Sent", recorded[0].Subject)
}

func TestDispatchWithoutTriggerIsNoop(t *testing.T) {
	h := newTriggerHarness(t)
	lead := &models.Lead{ID: uuid.New(), WorkspaceID: h.wsID, Phone: "919876543210", Status: "NEW"}

	require.NoError(t, h.svc.Dispatch(context.Background(), h.wsID, lead))
	assert.Empty(t, h.provider.sent())
	assert.Empty(t, h.activity.ofType(models.ActivityWhatsApp))
}

func TestDispatchSkipsDisabledTrigger(t *testing.T) {
	h := newTriggerHarness(t)
	h.addTrigger(t, "ENROLLED", "welcome", nil, nil, false)
	lead := &models.Lead{ID: uuid.New(), WorkspaceID: h.wsID, Phone: "919876543210", Status: "ENROLLED"}

	require.NoError(t, h.svc.Dispatch(context.Background(), h.wsID, lead))
	assert.Empty(t, h.provider.sent())
}

func TestDispatchRecordsFailure(t *testing.T) {
	h := newTriggerHarness(t)
	h.addTrigger(t, "ENROLLED", "welcome", nil, nil, true)
	h.provider.err = assert.AnError
	lead := &models.Lead{ID: uuid.New(), WorkspaceID: h.wsID, Phone: "919876543210", Status: "ENROLLED"}

	err := h.svc.Dispatch(context.Background(), h.wsID, lead)
	require.Error(t, err)

	recorded := h.activity.ofType(models.ActivityWhatsApp)
	require.Len(t, recorded, 1)
	assert.Equal(t, "WhatsApp Send Failed", recorded[0].Subject)
}

func TestCreateTriggerOnePerStatus(t *testing.T) {
	h := newTriggerHarness(t)
	ctx := context.Background()

	created, err := h.svc.CreateTrigger(ctx, h.wsID, &TriggerInput{
		Status:       "CONTACTED",
		CampaignName: "followup",
	})
	require.NoError(t, err)
	assert.True(t, created.IsEnabled, "triggers default to enabled")

	_, err = h.svc.CreateTrigger(ctx, h.wsID, &TriggerInput{
		Status:       "CONTACTED",
		CampaignName: "another_campaign",
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	// A different workspace can reuse the status
	_, err = h.svc.CreateTrigger(ctx, uuid.New(), &TriggerInput{
		Status:       "CONTACTED",
		CampaignName: "followup",
	})
	require.NoError(t, err)
}

func TestCreateTriggerValidation(t *testing.T) {
	h := newTriggerHarness(t)
	ctx := context.Background()

	_, err := h.svc.CreateTrigger(ctx, h.wsID, &TriggerInput{CampaignName: "x"})
	assert.True(t, IsValidation(err))

	_, err = h.svc.CreateTrigger(ctx, h.wsID, &TriggerInput{Status: "NEW"})
	assert.True(t, IsValidation(err))
}

func TestUpdateTriggerStatusClash(t *testing.T) {
	h := newTriggerHarness(t)
	ctx := context.Background()

	first, err := h.svc.CreateTrigger(ctx, h.wsID, &TriggerInput{Status: "NEW", CampaignName: "hello"})
	require.NoError(t, err)
	_, err = h.svc.CreateTrigger(ctx, h.wsID, &TriggerInput{Status: "ENROLLED", CampaignName: "welcome"})
	require.NoError(t, err)

	_, err = h.svc.UpdateTrigger(ctx, h.wsID, first.ID, &TriggerInput{Status: "ENROLLED", CampaignName: "hello"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	disabled := false
	updated, err := h.svc.UpdateTrigger(ctx, h.wsID, first.ID, &TriggerInput{
		Status:       "NEW",
		CampaignName: "hello_v2",
		IsEnabled:    &disabled,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello_v2", updated.CampaignName)
	assert.False(t, updated.IsEnabled)
}
