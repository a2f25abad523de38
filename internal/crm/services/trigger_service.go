package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/edvantage/crm-backend/internal/core/events"
	"github.com/edvantage/crm-backend/internal/core/gateway"
	"github.com/edvantage/crm-backend/internal/crm/models"
	"github.com/edvantage/crm-backend/internal/crm/repositories"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TriggerService dispatches WhatsApp template campaigns when a lead lands on
// a configured status, and manages the trigger configuration itself.
type TriggerService struct {
	triggerRepo repositories.TriggerRepo
	gateway     *gateway.Service
	activities  *ActivityService
	bus         *events.Bus
}

func NewTriggerService(
	triggerRepo repositories.TriggerRepo,
	gw *gateway.Service,
	activities *ActivityService,
	bus *events.Bus,
) *TriggerService {
	return &TriggerService{
		triggerRepo: triggerRepo,
		gateway:     gw,
		activities:  activities,
		bus:         bus,
	}
}

// Dispatch sends the campaign bound to the lead's current status, if any.
// Called synchronously after a status lands; the caller treats a returned
// error as a delivery problem, never as a reason to roll the status back.
func (s *TriggerService) Dispatch(ctx context.Context, workspaceID uuid.UUID, lead *models.Lead) error {
	trigger, err := s.triggerRepo.FindByStatus(ctx, workspaceID, lead.Status)
	if err != nil {
		return fmt.Errorf("failed to look up trigger for status %q: %w", lead.Status, err)
	}
	if trigger == nil || !trigger.IsEnabled {
		return nil
	}

	params := s.resolveParams(trigger, lead)

	deliveryID, err := s.gateway.Send(ctx, lead.Phone, trigger.CampaignName, params)
	if err != nil {
		log.Printf("❌ WhatsApp campaign %s failed for lead %s: %v", trigger.CampaignName, lead.ID, err)
		s.activities.Record(ctx, workspaceID, lead.ID, nil,
			models.ActivityWhatsApp,
			"WhatsApp Send Failed",
			fmt.Sprintf("Campaign %s could not be delivered: %v", trigger.CampaignName, err),
			map[string]interface{}{
				"campaign": trigger.CampaignName,
				"status":   lead.Status,
				"success":  false,
			})
		return err
	}

	s.activities.Record(ctx, workspaceID, lead.ID, nil,
		models.ActivityWhatsApp,
		"WhatsApp Sent",
		fmt.Sprintf("Campaign %s sent via %s", trigger.CampaignName, s.gateway.ProviderName()),
		map[string]interface{}{
			"campaign":    trigger.CampaignName,
			"status":      lead.Status,
			"delivery_id": deliveryID,
			"success":     true,
		})

	s.bus.Publish(events.Event{
		Name:        events.MessageSent,
		WorkspaceID: workspaceID,
		LeadID:      lead.ID,
		Payload: map[string]interface{}{
			"campaign":    trigger.CampaignName,
			"delivery_id": deliveryID,
		},
	})

	log.Printf("✅ campaign %s dispatched for lead %s (status %s)", trigger.CampaignName, lead.ID, lead.Status)
	return nil
}

// resolveParams fills the trigger's ordered placeholders from the lead.
// Resolution order: built-in attribute, custom field, configured fallback,
// empty string.
func (s *TriggerService) resolveParams(trigger *models.WhatsAppTrigger, lead *models.Lead) []string {
	names := trigger.ParamNames()
	if len(names) == 0 {
		return []string{}
	}

	custom := lead.CustomFieldMap()
	fallback := trigger.FallbackMap()

	params := make([]string, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSuffix(strings.TrimPrefix(raw, "{{"), "}}")

		value := ""
		switch name {
		case "Name":
			value = lead.Name
		case "FirstName":
			value = lead.FirstName()
		case "Phone":
			value = lead.Phone
		case "Email":
			value = lead.Email
		case "Source":
			value = lead.Source
		case "Status":
			value = lead.Status
		case "Amount":
			value = strconv.FormatFloat(lead.Revenue, 'f', -1, 64)
		default:
			value = custom[name]
		}

		if value == "" {
			value = fallback[name]
		}
		params = append(params, value)
	}
	return params
}

// TriggerInput is the write payload for WhatsApp triggers.
type TriggerInput struct {
	Status         string            `json:"status"`
	CampaignName   string            `json:"campaign_name"`
	Source         string            `json:"source"`
	TemplateParams []string          `json:"template_params"`
	ParamsFallback map[string]string `json:"params_fallback"`
	IsEnabled      *bool             `json:"is_enabled"`
}

func (in *TriggerInput) validate() error {
	if in.Status == "" {
		return NewValidationError("status", "status is required")
	}
	if in.CampaignName == "" {
		return NewValidationError("campaign_name", "campaign_name is required")
	}
	return nil
}

func (in *TriggerInput) encode() (datatypes.JSON, datatypes.JSON, error) {
	params := in.TemplateParams
	if params == nil {
		params = []string{}
	}
	rawParams, err := json.Marshal(params)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode template params: %w", err)
	}

	fallback := in.ParamsFallback
	if fallback == nil {
		fallback = map[string]string{}
	}
	rawFallback, err := json.Marshal(fallback)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode fallback params: %w", err)
	}
	return rawParams, rawFallback, nil
}

// CreateTrigger persists a new trigger. A workspace can hold at most one
// trigger per status.
func (s *TriggerService) CreateTrigger(ctx context.Context, workspaceID uuid.UUID, input *TriggerInput) (*models.WhatsAppTrigger, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	existing, err := s.triggerRepo.FindByStatus(ctx, workspaceID, input.Status)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewValidationError("status", fmt.Sprintf("a trigger for status %q already exists", input.Status))
	}

	rawParams, rawFallback, err := input.encode()
	if err != nil {
		return nil, err
	}

	enabled := true
	if input.IsEnabled != nil {
		enabled = *input.IsEnabled
	}

	trigger := &models.WhatsAppTrigger{
		WorkspaceID:    workspaceID,
		Status:         input.Status,
		CampaignName:   input.CampaignName,
		Source:         input.Source,
		TemplateParams: rawParams,
		ParamsFallback: rawFallback,
		IsEnabled:      enabled,
	}
	if err := s.triggerRepo.Create(ctx, trigger); err != nil {
		return nil, fmt.Errorf("failed to create trigger: %w", err)
	}
	return trigger, nil
}

// UpdateTrigger applies changes to an existing trigger.
func (s *TriggerService) UpdateTrigger(ctx context.Context, workspaceID, id uuid.UUID, input *TriggerInput) (*models.WhatsAppTrigger, error) {
	trigger, err := s.triggerRepo.FindByID(ctx, workspaceID, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	if input.Status != trigger.Status {
		clash, err := s.triggerRepo.FindByStatus(ctx, workspaceID, input.Status)
		if err != nil {
			return nil, err
		}
		if clash != nil {
			return nil, NewValidationError("status", fmt.Sprintf("a trigger for status %q already exists", input.Status))
		}
	}

	rawParams, rawFallback, err := input.encode()
	if err != nil {
		return nil, err
	}

	trigger.Status = input.Status
	trigger.CampaignName = input.CampaignName
	trigger.Source = input.Source
	trigger.TemplateParams = rawParams
	trigger.ParamsFallback = rawFallback
	if input.IsEnabled != nil {
		trigger.IsEnabled = *input.IsEnabled
	}

	if err := s.triggerRepo.Update(ctx, trigger); err != nil {
		return nil, fmt.Errorf("failed to update trigger: %w", err)
	}
	return trigger, nil
}

// ListTriggers returns a workspace's triggers.
func (s *TriggerService) ListTriggers(ctx context.Context, workspaceID uuid.UUID) ([]models.WhatsAppTrigger, error) {
	return s.triggerRepo.FindByWorkspace(ctx, workspaceID)
}

// GetTrigger fetches one trigger.
func (s *TriggerService) GetTrigger(ctx context.Context, workspaceID, id uuid.UUID) (*models.WhatsAppTrigger, error) {
	trigger, err := s.triggerRepo.FindByID(ctx, workspaceID, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return trigger, nil
}

// DeleteTrigger removes a trigger.
func (s *TriggerService) DeleteTrigger(ctx context.Context, workspaceID, id uuid.UUID) error {
	if _, err := s.triggerRepo.FindByID(ctx, workspaceID, id); err != nil {
		return ErrNotFound
	}
	return s.triggerRepo.Delete(ctx, workspaceID, id)
}
