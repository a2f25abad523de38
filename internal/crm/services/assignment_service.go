package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/edvantage/crm-backend/internal/core/events"
	"github.com/edvantage/crm-backend/internal/crm/models"
	"github.com/edvantage/crm-backend/internal/crm/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AssignmentService routes leads to owners through prioritized rules.
//
// Exactly one rule fires per lead: the first enabled rule (priority ASC,
// creation order on ties) whose filters match. A rule that fires but cannot
// produce an owner leaves the lead unassigned; later rules are not consulted.
type AssignmentService struct {
	ruleRepo   repositories.RuleRepo
	leadRepo   repositories.LeadRepo
	userRepo   repositories.UserRepo
	activities *ActivityService
	bus        *events.Bus
	validate   *validator.Validate
}

func NewAssignmentService(
	ruleRepo repositories.RuleRepo,
	leadRepo repositories.LeadRepo,
	userRepo repositories.UserRepo,
	activities *ActivityService,
	bus *events.Bus,
) *AssignmentService {
	return &AssignmentService{
		ruleRepo:   ruleRepo,
		leadRepo:   leadRepo,
		userRepo:   userRepo,
		activities: activities,
		bus:        bus,
		validate:   validator.New(),
	}
}

// AssignNewLead runs the rule engine for a lead and persists the resulting
// owner. Returns the owner id, or nil when the lead stays unassigned.
// Assignment failures are soft: the lead is never lost over them.
func (s *AssignmentService) AssignNewLead(ctx context.Context, lead *models.Lead) (*uuid.UUID, error) {
	rules, err := s.ruleRepo.FindEnabled(ctx, lead.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignment rules: %w", err)
	}

	var matched *models.AssignmentRule
	for i := range rules {
		if rules[i].Matches(lead.Source, lead.Status) {
			matched = &rules[i]
			break
		}
	}
	if matched == nil {
		return nil, nil
	}

	candidate, err := s.resolveCandidate(ctx, matched)
	if err != nil {
		log.Printf("⚠️ rule %s could not resolve an owner for lead %s: %v", matched.ID, lead.ID, err)
		return nil, nil
	}
	if candidate == nil {
		// PERCENTAGE rule decided to skip this lead
		return nil, nil
	}

	owner, err := s.userRepo.FindActive(ctx, *candidate)
	if err != nil {
		log.Printf("⚠️ rule %s picked inactive or unknown user %s, leaving lead %s unassigned", matched.ID, candidate, lead.ID)
		return nil, nil
	}

	if err := s.leadRepo.SetOwner(ctx, lead.WorkspaceID, lead.ID, candidate); err != nil {
		return nil, fmt.Errorf("failed to set lead owner: %w", err)
	}
	lead.OwnerID = candidate

	s.activities.Record(ctx, lead.WorkspaceID, lead.ID, nil,
		models.ActivityLeadAssigned,
		"Lead Assigned",
		fmt.Sprintf("Assigned to %s by rule", owner.Name),
		map[string]interface{}{
			"rule_id":         matched.ID,
			"assignment_type": matched.AssignmentType,
			"owner_id":        owner.ID,
		})

	s.bus.Publish(events.Event{
		Name:        events.LeadAssigned,
		WorkspaceID: lead.WorkspaceID,
		LeadID:      lead.ID,
		Payload: map[string]interface{}{
			"owner_id": owner.ID.String(),
			"rule_id":  matched.ID.String(),
		},
	})

	log.Printf("✅ lead %s assigned to %s via %s rule", lead.ID, owner.Name, matched.AssignmentType)
	return candidate, nil
}

// resolveCandidate picks the rule's owner candidate. (nil, nil) means the
// rule deliberately left the lead unassigned.
func (s *AssignmentService) resolveCandidate(ctx context.Context, rule *models.AssignmentRule) (*uuid.UUID, error) {
	switch rule.AssignmentType {
	case models.AssignSpecific:
		id := rule.AssigneeID
		return &id, nil

	case models.AssignRoundRobin:
		pool := rule.PoolMembers()
		if len(pool) == 0 {
			// No explicit pool: rotate over the workspace's active members
			members, err := s.userRepo.ActiveMemberIDs(ctx, rule.WorkspaceID)
			if err != nil {
				return nil, fmt.Errorf("failed to load workspace members: %w", err)
			}
			pool = members
		}
		if len(pool) == 0 {
			pool = []uuid.UUID{rule.AssigneeID}
		}
		slot, err := s.advanceRotation(ctx, rule.ID, len(pool))
		if err != nil {
			return nil, err
		}
		id := pool[slot]
		return &id, nil

	case models.AssignPercentage:
		count, err := s.advancePercentage(ctx, rule.ID)
		if err != nil {
			return nil, err
		}
		// Deterministic: of every 100 consecutive matches, exactly
		// Percentage go to the assignee.
		if count%100 < int64(rule.Percentage) {
			id := rule.AssigneeID
			return &id, nil
		}
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown assignment type %q", rule.AssignmentType)
	}
}

// advanceRotation claims the next rotation slot, retrying once on a
// transient serialization failure.
func (s *AssignmentService) advanceRotation(ctx context.Context, ruleID uuid.UUID, poolSize int) (int, error) {
	slot, err := s.ruleRepo.AdvanceRotation(ctx, ruleID, poolSize)
	if err != nil {
		log.Printf("🔄 retrying rotation advance for rule %s: %v", ruleID, err)
		slot, err = s.ruleRepo.AdvanceRotation(ctx, ruleID, poolSize)
	}
	return slot, err
}

func (s *AssignmentService) advancePercentage(ctx context.Context, ruleID uuid.UUID) (int64, error) {
	count, err := s.ruleRepo.AdvancePercentage(ctx, ruleID)
	if err != nil {
		log.Printf("🔄 retrying percentage advance for rule %s: %v", ruleID, err)
		count, err = s.ruleRepo.AdvancePercentage(ctx, ruleID)
	}
	return count, err
}

// AssignBySource re-runs the engine over every unassigned lead of a source.
// Used after a new rule is configured to sweep the backlog. Returns how many
// leads received an owner.
func (s *AssignmentService) AssignBySource(ctx context.Context, workspaceID uuid.UUID, source string) (int, error) {
	if source == "" {
		return 0, NewValidationError("source", "source is required")
	}

	leads, err := s.leadRepo.FindUnassignedBySource(ctx, workspaceID, source)
	if err != nil {
		return 0, fmt.Errorf("failed to load unassigned leads: %w", err)
	}

	assigned := 0
	for i := range leads {
		ownerID, err := s.AssignNewLead(ctx, &leads[i])
		if err != nil {
			log.Printf("⚠️ bulk assignment failed for lead %s: %v", leads[i].ID, err)
			continue
		}
		if ownerID != nil {
			assigned++
		}
	}

	log.Printf("✅ bulk assignment for source %s: %d/%d leads assigned", source, assigned, len(leads))
	return assigned, nil
}

// RuleInput is the write payload for assignment rules.
type RuleInput struct {
	Source         string      `json:"source"`
	Status         string      `json:"status"`
	AssignmentType string      `json:"assignment_type" validate:"required,oneof=SPECIFIC ROUND_ROBIN PERCENTAGE"`
	Percentage     int         `json:"percentage" validate:"gte=0,lte=100"`
	AssigneeID     uuid.UUID   `json:"assignee_id" validate:"required"`
	Pool           []uuid.UUID `json:"pool"`
	Priority       int         `json:"priority" validate:"gte=0"`
	IsEnabled      *bool       `json:"is_enabled"`
}

func (s *AssignmentService) validateRuleInput(ctx context.Context, input *RuleInput) error {
	if err := s.validate.Struct(input); err != nil {
		return NewValidationError("", err.Error())
	}
	if input.AssignmentType == models.AssignPercentage && input.Percentage == 0 {
		return NewValidationError("percentage", "PERCENTAGE rules need a percentage between 1 and 100")
	}

	// Every referenced user must be an active member
	members := append([]uuid.UUID{input.AssigneeID}, input.Pool...)
	for _, id := range members {
		if _, err := s.userRepo.FindActive(ctx, id); err != nil {
			return NewValidationError("assignee_id", fmt.Sprintf("user %s is not an active user", id))
		}
	}
	return nil
}

// CreateRule validates and persists a new assignment rule.
func (s *AssignmentService) CreateRule(ctx context.Context, workspaceID uuid.UUID, input *RuleInput) (*models.AssignmentRule, error) {
	if err := s.validateRuleInput(ctx, input); err != nil {
		return nil, err
	}

	pool, err := json.Marshal(input.Pool)
	if err != nil {
		return nil, fmt.Errorf("failed to encode pool: %w", err)
	}

	enabled := true
	if input.IsEnabled != nil {
		enabled = *input.IsEnabled
	}

	rule := &models.AssignmentRule{
		WorkspaceID:    workspaceID,
		Source:         input.Source,
		Status:         input.Status,
		AssignmentType: input.AssignmentType,
		Percentage:     input.Percentage,
		AssigneeID:     input.AssigneeID,
		Pool:           datatypes.JSON(pool),
		Priority:       input.Priority,
		IsEnabled:      enabled,
	}
	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create assignment rule: %w", err)
	}
	return rule, nil
}

// UpdateRule validates and applies changes to an existing rule. Rotation and
// counter state survive the update untouched.
func (s *AssignmentService) UpdateRule(ctx context.Context, workspaceID, id uuid.UUID, input *RuleInput) (*models.AssignmentRule, error) {
	rule, err := s.ruleRepo.FindByID(ctx, workspaceID, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if err := s.validateRuleInput(ctx, input); err != nil {
		return nil, err
	}

	pool, err := json.Marshal(input.Pool)
	if err != nil {
		return nil, fmt.Errorf("failed to encode pool: %w", err)
	}

	rule.Source = input.Source
	rule.Status = input.Status
	rule.AssignmentType = input.AssignmentType
	rule.Percentage = input.Percentage
	rule.AssigneeID = input.AssigneeID
	rule.Pool = datatypes.JSON(pool)
	rule.Priority = input.Priority
	if input.IsEnabled != nil {
		rule.IsEnabled = *input.IsEnabled
	}

	if err := s.ruleRepo.Update(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to update assignment rule: %w", err)
	}
	return rule, nil
}

// ListRules returns a workspace's rules in evaluation order.
func (s *AssignmentService) ListRules(ctx context.Context, workspaceID uuid.UUID) ([]models.AssignmentRule, error) {
	return s.ruleRepo.FindByWorkspace(ctx, workspaceID)
}

// GetRule fetches one rule.
func (s *AssignmentService) GetRule(ctx context.Context, workspaceID, id uuid.UUID) (*models.AssignmentRule, error) {
	rule, err := s.ruleRepo.FindByID(ctx, workspaceID, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return rule, nil
}

// DeleteRule removes a rule. Already-assigned leads keep their owner.
func (s *AssignmentService) DeleteRule(ctx context.Context, workspaceID, id uuid.UUID) error {
	if _, err := s.ruleRepo.FindByID(ctx, workspaceID, id); err != nil {
		return ErrNotFound
	}
	return s.ruleRepo.Delete(ctx, workspaceID, id)
}
