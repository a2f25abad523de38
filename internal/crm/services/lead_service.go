package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/edvantage/crm-backend/internal/core/events"
	"github.com/edvantage/crm-backend/internal/core/phone"
	"github.com/edvantage/crm-backend/internal/crm/models"
	"github.com/edvantage/crm-backend/internal/crm/repositories"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// FallbackStatus is used when a workspace has not configured a default status.
const FallbackStatus = "NEW"

// LeadService owns the lead lifecycle: webhook ingestion with dedup, manual
// entry, status transitions with campaign dispatch, ownership changes and
// payment recording.
type LeadService struct {
	leadRepo    repositories.LeadRepo
	fieldRepo   repositories.FieldRepo
	statusRepo  repositories.StatusRepo
	paymentRepo repositories.PaymentRepo
	userRepo    repositories.UserRepo
	activities  *ActivityService
	assignment  *AssignmentService
	triggers    *TriggerService
	bus         *events.Bus

	// Region used for phone normalization when the workspace has none set
	defaultRegion string
}

func NewLeadService(
	leadRepo repositories.LeadRepo,
	fieldRepo repositories.FieldRepo,
	statusRepo repositories.StatusRepo,
	paymentRepo repositories.PaymentRepo,
	userRepo repositories.UserRepo,
	activities *ActivityService,
	assignment *AssignmentService,
	triggers *TriggerService,
	bus *events.Bus,
	defaultRegion string,
) *LeadService {
	return &LeadService{
		leadRepo:      leadRepo,
		fieldRepo:     fieldRepo,
		statusRepo:    statusRepo,
		paymentRepo:   paymentRepo,
		userRepo:      userRepo,
		activities:    activities,
		assignment:    assignment,
		triggers:      triggers,
		bus:           bus,
		defaultRegion: defaultRegion,
	}
}

// phoneRegion picks the workspace's normalization region, falling back to the
// configured default.
func (s *LeadService) phoneRegion(ws *models.Workspace) string {
	if ws.PhoneRegion != "" {
		return ws.PhoneRegion
	}
	return s.defaultRegion
}

// LeadInput is the write payload for webhook and manual lead creation.
type LeadInput struct {
	Phone        string            `json:"phone"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	Source       string            `json:"source"`
	CustomFields map[string]string `json:"custom_fields"`
}

// IngestResult is the acknowledgment returned to webhook callers.
type IngestResult struct {
	Lead     *models.Lead `json:"lead"`
	IsNew    bool         `json:"is_new"`
	Assigned bool         `json:"assigned"`
}

// IngestWebhook processes one inbound lead submission. Resubmissions of the
// same phone update the existing lead instead of creating a duplicate, and
// never re-run assignment.
func (s *LeadService) IngestWebhook(ctx context.Context, ws *models.Workspace, input *LeadInput) (*IngestResult, error) {
	if input.Phone == "" {
		return nil, NewValidationError("phone", "phone is required")
	}

	canonical, err := phone.Normalize(input.Phone, s.phoneRegion(ws))
	if err != nil {
		return nil, NewValidationError("phone", err.Error())
	}

	custom, err := s.filterCustomFields(ctx, ws.ID, input.CustomFields)
	if err != nil {
		return nil, err
	}

	status, err := s.initialStatus(ctx, ws.ID)
	if err != nil {
		return nil, err
	}

	source := input.Source
	if source == "" {
		source = models.SourceWebsite
	}

	lead := &models.Lead{
		WorkspaceID:  ws.ID,
		Phone:        canonical,
		Name:         input.Name,
		Email:        input.Email,
		Source:       source,
		Status:       status,
		CustomFields: custom,
	}

	lead, created, err := s.leadRepo.CreateOrGet(ctx, lead)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert lead: %w", err)
	}

	if created {
		return s.finishNewLead(ctx, ws, lead)
	}
	return s.mergeExistingLead(ctx, ws, lead, input, custom)
}

func (s *LeadService) finishNewLead(ctx context.Context, ws *models.Workspace, lead *models.Lead) (*IngestResult, error) {
	s.activities.Record(ctx, ws.ID, lead.ID, nil,
		models.ActivitySystem,
		"Lead Created via Webhook",
		fmt.Sprintf("Lead created via webhook from %s", lead.Source),
		map[string]interface{}{"source": lead.Source})

	s.bus.Publish(events.Event{
		Name:        events.LeadCreated,
		WorkspaceID: ws.ID,
		LeadID:      lead.ID,
		Payload:     map[string]interface{}{"source": lead.Source},
	})

	ownerID, err := s.assignment.AssignNewLead(ctx, lead)
	if err != nil {
		// Assignment is soft: the lead stays, somebody routes it manually
		log.Printf("⚠️ assignment failed for lead %s, left unassigned: %v", lead.ID, err)
		ownerID = nil
	}

	// A trigger bound to the initial status fires on creation too
	if err := s.triggers.Dispatch(ctx, ws.ID, lead); err != nil {
		log.Printf("⚠️ trigger dispatch failed for new lead %s: %v", lead.ID, err)
	}

	log.Printf("✅ new lead %s ingested (workspace %s, source %s)", lead.ID, ws.ID, lead.Source)
	return &IngestResult{Lead: lead, IsNew: true, Assigned: ownerID != nil}, nil
}

// mergeExistingLead folds a resubmission into the existing row. Non-empty
// incoming values overwrite, empty ones preserve what is there. Status,
// owner and revenue are never touched by resubmissions.
func (s *LeadService) mergeExistingLead(ctx context.Context, ws *models.Workspace, lead *models.Lead, input *LeadInput, custom datatypes.JSON) (*IngestResult, error) {
	if input.Name != "" {
		lead.Name = input.Name
	}
	if input.Email != "" {
		lead.Email = input.Email
	}
	if input.Source != "" {
		lead.Source = input.Source
	}

	if len(input.CustomFields) > 0 {
		merged := lead.CustomFieldMap()
		var incoming map[string]string
		_ = json.Unmarshal(custom, &incoming)
		for k, v := range incoming {
			if v != "" {
				merged[k] = v
			}
		}
		raw, err := json.Marshal(merged)
		if err != nil {
			return nil, fmt.Errorf("failed to merge custom fields: %w", err)
		}
		lead.CustomFields = raw
	}

	if err := s.leadRepo.Update(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	s.activities.Record(ctx, ws.ID, lead.ID, nil,
		models.ActivitySystem,
		"Lead Updated via Webhook",
		fmt.Sprintf("Duplicate submission from %s merged into existing lead", lead.Source),
		map[string]interface{}{"source": input.Source})

	log.Printf("🔄 duplicate submission merged into lead %s (workspace %s)", lead.ID, ws.ID)
	return &IngestResult{Lead: lead, IsNew: false, Assigned: lead.OwnerID != nil}, nil
}

// filterCustomFields keeps only keys registered in the workspace's field
// registry and checks SELECT values against their options. Unknown keys are
// dropped, not rejected, so integrations can send superset payloads.
func (s *LeadService) filterCustomFields(ctx context.Context, workspaceID uuid.UUID, incoming map[string]string) (datatypes.JSON, error) {
	if len(incoming) == 0 {
		return datatypes.JSON([]byte("{}")), nil
	}

	fields, err := s.fieldRepo.FindByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load field registry: %w", err)
	}

	registry := make(map[string]*models.LeadField, len(fields))
	for i := range fields {
		registry[fields[i].Key] = &fields[i]
	}

	kept := map[string]string{}
	for key, value := range incoming {
		field, ok := registry[key]
		if !ok {
			log.Printf("⚠️ dropping unregistered custom field %q", key)
			continue
		}
		if field.FieldType == models.FieldSelect && value != "" && !field.HasOption(value) {
			return nil, NewValidationError(key, fmt.Sprintf("%q is not an allowed option", value))
		}
		kept[key] = value
	}

	raw, err := json.Marshal(kept)
	if err != nil {
		return nil, fmt.Errorf("failed to encode custom fields: %w", err)
	}
	return raw, nil
}

func (s *LeadService) initialStatus(ctx context.Context, workspaceID uuid.UUID) (string, error) {
	status, err := s.statusRepo.DefaultStatus(ctx, workspaceID)
	if err != nil {
		return "", fmt.Errorf("failed to load default status: %w", err)
	}
	if status == nil {
		return FallbackStatus, nil
	}
	return status.Name, nil
}

// CreateManual creates a lead entered by a user rather than a webhook. The
// same dedup and assignment rules apply.
func (s *LeadService) CreateManual(ctx context.Context, ws *models.Workspace, userID uuid.UUID, input *LeadInput) (*IngestResult, error) {
	result, err := s.IngestWebhook(ctx, ws, input)
	if err != nil {
		return nil, err
	}
	if result.IsNew {
		s.activities.Record(ctx, ws.ID, result.Lead.ID, &userID,
			models.ActivityNote,
			"Manual Entry",
			"Lead entered manually",
			nil)
	}
	return result, nil
}

// ChangeStatus moves a lead to a new status, records the transition and
// dispatches any campaign bound to the destination status. Setting the same
// status is a no-op: nothing is recorded and nothing fires.
func (s *LeadService) ChangeStatus(ctx context.Context, ws *models.Workspace, leadID uuid.UUID, newStatus string, userID *uuid.UUID) (*models.Lead, error) {
	if newStatus == "" {
		return nil, NewValidationError("status", "status is required")
	}

	lead, err := s.leadRepo.FindByID(ctx, ws.ID, leadID)
	if err != nil {
		return nil, ErrNotFound
	}
	if lead.Status == newStatus {
		return lead, nil
	}

	if err := s.validateStatus(ctx, ws.ID, newStatus); err != nil {
		return nil, err
	}

	oldStatus := lead.Status
	if err := s.leadRepo.UpdateStatus(ctx, ws.ID, leadID, newStatus); err != nil {
		return nil, fmt.Errorf("failed to update lead status: %w", err)
	}
	lead.Status = newStatus

	s.activities.Record(ctx, ws.ID, lead.ID, userID,
		models.ActivityStatusChange,
		"Status Changed",
		fmt.Sprintf("Status changed from %s to %s", oldStatus, newStatus),
		map[string]interface{}{"from": oldStatus, "to": newStatus})

	s.bus.Publish(events.Event{
		Name:        events.StatusChanged,
		WorkspaceID: ws.ID,
		LeadID:      lead.ID,
		Payload:     map[string]interface{}{"from": oldStatus, "to": newStatus},
	})

	// Campaign dispatch is synchronous but soft: a gateway failure leaves
	// the status change in place
	if err := s.triggers.Dispatch(ctx, ws.ID, lead); err != nil {
		log.Printf("⚠️ trigger dispatch failed after status change on lead %s: %v", lead.ID, err)
	}

	return lead, nil
}

// validateStatus rejects statuses outside the workspace's configured set.
// Workspaces that never configured statuses accept anything.
func (s *LeadService) validateStatus(ctx context.Context, workspaceID uuid.UUID, status string) error {
	configured, err := s.statusRepo.FindByWorkspace(ctx, workspaceID)
	if err != nil {
		return fmt.Errorf("failed to load statuses: %w", err)
	}
	if len(configured) == 0 {
		return nil
	}
	for i := range configured {
		if configured[i].Name == status {
			return nil
		}
	}
	return NewValidationError("status", fmt.Sprintf("%q is not a configured status", status))
}

// AssignOwner sets or clears a lead's owner manually.
func (s *LeadService) AssignOwner(ctx context.Context, ws *models.Workspace, leadID uuid.UUID, ownerID *uuid.UUID, actorID uuid.UUID) (*models.Lead, error) {
	lead, err := s.leadRepo.FindByID(ctx, ws.ID, leadID)
	if err != nil {
		return nil, ErrNotFound
	}

	message := "Owner cleared"
	if ownerID != nil {
		owner, err := s.userRepo.FindActive(ctx, *ownerID)
		if err != nil {
			return nil, NewValidationError("owner_id", "owner must be an active user")
		}
		message = fmt.Sprintf("Assigned to %s manually", owner.Name)
	}

	if err := s.leadRepo.SetOwner(ctx, ws.ID, leadID, ownerID); err != nil {
		return nil, fmt.Errorf("failed to set owner: %w", err)
	}
	lead.OwnerID = ownerID

	s.activities.Record(ctx, ws.ID, lead.ID, &actorID,
		models.ActivityLeadAssigned,
		"Owner Changed",
		message,
		nil)

	return lead, nil
}

// PaymentInput is the write payload for recording a payment.
type PaymentInput struct {
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Reference string  `json:"reference"`
}

// RecordPayment stores a payment against a lead and bumps its revenue.
func (s *LeadService) RecordPayment(ctx context.Context, ws *models.Workspace, leadID uuid.UUID, actorID uuid.UUID, input *PaymentInput) (*models.Payment, error) {
	if input.Amount <= 0 {
		return nil, NewValidationError("amount", "amount must be positive")
	}

	lead, err := s.leadRepo.FindByID(ctx, ws.ID, leadID)
	if err != nil {
		return nil, ErrNotFound
	}

	payment := &models.Payment{
		WorkspaceID: ws.ID,
		LeadID:      lead.ID,
		Amount:      input.Amount,
		Method:      input.Method,
		Reference:   input.Reference,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	if err := s.leadRepo.AddRevenue(ctx, ws.ID, lead.ID, input.Amount); err != nil {
		return nil, fmt.Errorf("failed to update lead revenue: %w", err)
	}

	s.activities.Record(ctx, ws.ID, lead.ID, &actorID,
		models.ActivityPayment,
		"Payment Recorded",
		fmt.Sprintf("Payment of %.2f recorded (%s)", input.Amount, input.Method),
		map[string]interface{}{
			"amount":    input.Amount,
			"method":    input.Method,
			"reference": input.Reference,
		})

	s.bus.Publish(events.Event{
		Name:        events.PaymentRecorded,
		WorkspaceID: ws.ID,
		LeadID:      lead.ID,
		Payload:     map[string]interface{}{"amount": input.Amount},
	})

	return payment, nil
}

// CallInput is the payload of the telephony webhook.
type CallInput struct {
	Phone      string `json:"phone"`
	Direction  string `json:"direction"`
	DurationS  int    `json:"duration_seconds"`
	Recording  string `json:"recording_url"`
	AgentNotes string `json:"agent_notes"`
}

// RecordCall logs a phone call on the matching lead, creating the lead first
// when the caller is unknown. Calls from a known lead never touch the lead's
// original marketing source.
func (s *LeadService) RecordCall(ctx context.Context, ws *models.Workspace, input *CallInput) (*models.Lead, error) {
	if input.Phone == "" {
		return nil, NewValidationError("phone", "phone is required")
	}

	canonical, err := phone.Normalize(input.Phone, s.phoneRegion(ws))
	if err != nil {
		return nil, NewValidationError("phone", err.Error())
	}

	lead, err := s.leadRepo.FindByPhone(ctx, ws.ID, canonical)
	if err != nil {
		// Unknown caller: run the ingestion pipeline with the call source
		result, err := s.IngestWebhook(ctx, ws, &LeadInput{
			Phone:  canonical,
			Source: models.SourcePhoneInquiry,
		})
		if err != nil {
			return nil, err
		}
		lead = result.Lead
	}

	s.activities.Record(ctx, ws.ID, lead.ID, nil,
		models.ActivityCall,
		"Call Logged",
		fmt.Sprintf("%s call, %ds", input.Direction, input.DurationS),
		map[string]interface{}{
			"direction":     input.Direction,
			"duration_s":    input.DurationS,
			"recording_url": input.Recording,
			"agent_notes":   input.AgentNotes,
		})

	return lead, nil
}

// Get fetches one lead.
func (s *LeadService) Get(ctx context.Context, workspaceID, leadID uuid.UUID) (*models.Lead, error) {
	lead, err := s.leadRepo.FindByID(ctx, workspaceID, leadID)
	if err != nil {
		return nil, ErrNotFound
	}
	return lead, nil
}

// List pages through a workspace's leads, newest first.
func (s *LeadService) List(ctx context.Context, workspaceID uuid.UUID, limit, offset int) ([]models.Lead, error) {
	return s.leadRepo.List(ctx, workspaceID, limit, offset)
}

// Timeline returns a lead's activity history, newest first.
func (s *LeadService) Timeline(ctx context.Context, workspaceID, leadID uuid.UUID, limit int) ([]models.Activity, error) {
	if _, err := s.leadRepo.FindByID(ctx, workspaceID, leadID); err != nil {
		return nil, ErrNotFound
	}
	return s.activities.ListForLead(ctx, workspaceID, leadID, limit)
}

// Payments lists payments recorded against a lead.
func (s *LeadService) Payments(ctx context.Context, workspaceID, leadID uuid.UUID) ([]models.Payment, error) {
	if _, err := s.leadRepo.FindByID(ctx, workspaceID, leadID); err != nil {
		return nil, ErrNotFound
	}
	return s.paymentRepo.ListForLead(ctx, workspaceID, leadID)
}
