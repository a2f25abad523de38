package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/edvantage/crm-backend/internal/crm/models"
	"github.com/edvantage/crm-backend/internal/crm/repositories"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var fieldKeyPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ConfigService manages workspace-level configuration: the status pipeline
// and the custom lead field registry.
type ConfigService struct {
	statusRepo repositories.StatusRepo
	fieldRepo  repositories.FieldRepo
}

func NewConfigService(statusRepo repositories.StatusRepo, fieldRepo repositories.FieldRepo) *ConfigService {
	return &ConfigService{statusRepo: statusRepo, fieldRepo: fieldRepo}
}

// StatusInput is the write payload for status configs.
type StatusInput struct {
	Name      string `json:"name"`
	Stage     string `json:"stage"`
	IsDefault bool   `json:"is_default"`
	SortOrder int    `json:"sort_order"`
}

func (in *StatusInput) validate() error {
	if in.Name == "" {
		return NewValidationError("name", "name is required")
	}
	switch in.Stage {
	case "", models.StageInitial, models.StageActive, models.StageClosed:
		return nil
	}
	return NewValidationError("stage", fmt.Sprintf("%q is not a valid stage", in.Stage))
}

// CreateStatus adds a status to the workspace pipeline.
func (s *ConfigService) CreateStatus(ctx context.Context, workspaceID uuid.UUID, input *StatusInput) (*models.StatusConfig, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	existing, err := s.statusRepo.FindByName(ctx, workspaceID, input.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewValidationError("name", fmt.Sprintf("status %q already exists", input.Name))
	}

	stage := input.Stage
	if stage == "" {
		stage = models.StageActive
	}

	status := &models.StatusConfig{
		WorkspaceID: workspaceID,
		Name:        input.Name,
		Stage:       stage,
		IsDefault:   input.IsDefault,
		SortOrder:   input.SortOrder,
	}
	if err := s.statusRepo.Create(ctx, status); err != nil {
		return nil, fmt.Errorf("failed to create status: %w", err)
	}
	return status, nil
}

// UpdateStatus edits a status config.
func (s *ConfigService) UpdateStatus(ctx context.Context, workspaceID, id uuid.UUID, input *StatusInput) (*models.StatusConfig, error) {
	status, err := s.statusRepo.FindByID(ctx, workspaceID, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	if input.Name != status.Name {
		clash, err := s.statusRepo.FindByName(ctx, workspaceID, input.Name)
		if err != nil {
			return nil, err
		}
		if clash != nil {
			return nil, NewValidationError("name", fmt.Sprintf("status %q already exists", input.Name))
		}
	}

	status.Name = input.Name
	if input.Stage != "" {
		status.Stage = input.Stage
	}
	status.IsDefault = input.IsDefault
	status.SortOrder = input.SortOrder

	if err := s.statusRepo.Update(ctx, status); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	return status, nil
}

// ListStatuses returns the workspace pipeline in display order.
func (s *ConfigService) ListStatuses(ctx context.Context, workspaceID uuid.UUID) ([]models.StatusConfig, error) {
	return s.statusRepo.FindByWorkspace(ctx, workspaceID)
}

// DeleteStatus removes a status config. Leads already on that status keep it.
func (s *ConfigService) DeleteStatus(ctx context.Context, workspaceID, id uuid.UUID) error {
	if _, err := s.statusRepo.FindByID(ctx, workspaceID, id); err != nil {
		return ErrNotFound
	}
	return s.statusRepo.Delete(ctx, workspaceID, id)
}

// FieldInput is the write payload for custom field definitions.
type FieldInput struct {
	Key       string   `json:"key"`
	Label     string   `json:"label"`
	FieldType string   `json:"field_type"`
	Options   []string `json:"options"`
}

func (in *FieldInput) validate() error {
	if !fieldKeyPattern.MatchString(in.Key) {
		return NewValidationError("key", "key must start with a letter and contain only letters, digits and underscores")
	}
	if in.Label == "" {
		return NewValidationError("label", "label is required")
	}
	switch in.FieldType {
	case models.FieldText, models.FieldNumber, models.FieldSelect,
		models.FieldDate, models.FieldBoolean, models.FieldEmail, models.FieldPhone:
	default:
		return NewValidationError("field_type", fmt.Sprintf("%q is not a valid field type", in.FieldType))
	}
	if in.FieldType == models.FieldSelect && len(in.Options) == 0 {
		return NewValidationError("options", "SELECT fields need at least one option")
	}
	return nil
}

func (in *FieldInput) encodeOptions() (datatypes.JSON, error) {
	options := in.Options
	if options == nil {
		options = []string{}
	}
	raw, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}
	return raw, nil
}

// CreateField registers a custom lead field.
func (s *ConfigService) CreateField(ctx context.Context, workspaceID uuid.UUID, input *FieldInput) (*models.LeadField, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	options, err := input.encodeOptions()
	if err != nil {
		return nil, err
	}

	field := &models.LeadField{
		WorkspaceID: workspaceID,
		Key:         input.Key,
		Label:       input.Label,
		FieldType:   input.FieldType,
		Options:     options,
	}
	if err := s.fieldRepo.Create(ctx, field); err != nil {
		return nil, fmt.Errorf("failed to create field: %w", err)
	}
	return field, nil
}

// UpdateField edits a field definition. The key is immutable once created:
// stored custom field values reference it.
func (s *ConfigService) UpdateField(ctx context.Context, workspaceID, id uuid.UUID, input *FieldInput) (*models.LeadField, error) {
	field, err := s.fieldRepo.FindByID(ctx, workspaceID, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if input.Key != "" && input.Key != field.Key {
		return nil, NewValidationError("key", "field keys cannot be changed")
	}
	input.Key = field.Key
	if err := input.validate(); err != nil {
		return nil, err
	}

	options, err := input.encodeOptions()
	if err != nil {
		return nil, err
	}

	field.Label = input.Label
	field.FieldType = input.FieldType
	field.Options = options

	if err := s.fieldRepo.Update(ctx, field); err != nil {
		return nil, fmt.Errorf("failed to update field: %w", err)
	}
	return field, nil
}

// ListFields returns the workspace's custom field registry.
func (s *ConfigService) ListFields(ctx context.Context, workspaceID uuid.UUID) ([]models.LeadField, error) {
	return s.fieldRepo.FindByWorkspace(ctx, workspaceID)
}

// DeleteField removes a field definition. Existing lead values keep the key
// but stop validating.
func (s *ConfigService) DeleteField(ctx context.Context, workspaceID, id uuid.UUID) error {
	if _, err := s.fieldRepo.FindByID(ctx, workspaceID, id); err != nil {
		return ErrNotFound
	}
	return s.fieldRepo.Delete(ctx, workspaceID, id)
}
