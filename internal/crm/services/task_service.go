package services

import (
	"context"
	"fmt"
	"time"

	"github.com/edvantage/crm-backend/internal/crm/models"
	"github.com/edvantage/crm-backend/internal/crm/repositories"
	"github.com/google/uuid"
)

// TaskService manages follow-up tasks on leads.
type TaskService struct {
	taskRepo   repositories.TaskRepo
	leadRepo   repositories.LeadRepo
	userRepo   repositories.UserRepo
	activities *ActivityService
}

func NewTaskService(
	taskRepo repositories.TaskRepo,
	leadRepo repositories.LeadRepo,
	userRepo repositories.UserRepo,
	activities *ActivityService,
) *TaskService {
	return &TaskService{
		taskRepo:   taskRepo,
		leadRepo:   leadRepo,
		userRepo:   userRepo,
		activities: activities,
	}
}

// TaskInput is the write payload for tasks.
type TaskInput struct {
	LeadID  uuid.UUID `json:"lead_id"`
	OwnerID uuid.UUID `json:"owner_id"`
	Title   string    `json:"title"`
	Notes   string    `json:"notes"`
	DueAt   time.Time `json:"due_at"`
}

// CreateTask schedules a follow-up on a lead.
func (s *TaskService) CreateTask(ctx context.Context, workspaceID uuid.UUID, actorID uuid.UUID, input *TaskInput) (*models.Task, error) {
	if input.Title == "" {
		return nil, NewValidationError("title", "title is required")
	}
	if input.DueAt.IsZero() {
		return nil, NewValidationError("due_at", "due_at is required")
	}
	if _, err := s.leadRepo.FindByID(ctx, workspaceID, input.LeadID); err != nil {
		return nil, NewValidationError("lead_id", "lead not found")
	}
	if _, err := s.userRepo.FindActive(ctx, input.OwnerID); err != nil {
		return nil, NewValidationError("owner_id", "owner must be an active user")
	}

	task := &models.Task{
		WorkspaceID: workspaceID,
		LeadID:      input.LeadID,
		OwnerID:     input.OwnerID,
		Title:       input.Title,
		Notes:       input.Notes,
		DueAt:       input.DueAt,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.activities.Record(ctx, workspaceID, input.LeadID, &actorID,
		models.ActivityTask,
		"Task Created",
		fmt.Sprintf("%s due %s", input.Title, input.DueAt.Format(time.RFC3339)),
		map[string]interface{}{"task_id": task.ID})

	return task, nil
}

// CompleteTask marks a task done.
func (s *TaskService) CompleteTask(ctx context.Context, workspaceID, id uuid.UUID, actorID uuid.UUID) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, workspaceID, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if task.IsCompleted {
		return task, nil
	}

	task.IsCompleted = true
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to complete task: %w", err)
	}

	s.activities.Record(ctx, workspaceID, task.LeadID, &actorID,
		models.ActivityTask,
		"Task Completed",
		task.Title,
		map[string]interface{}{"task_id": task.ID})

	return task, nil
}

// ListForLead returns a lead's tasks ordered by due date.
func (s *TaskService) ListForLead(ctx context.Context, workspaceID, leadID uuid.UUID) ([]models.Task, error) {
	return s.taskRepo.FindForLead(ctx, workspaceID, leadID)
}

// DeleteTask removes a task.
func (s *TaskService) DeleteTask(ctx context.Context, workspaceID, id uuid.UUID) error {
	if _, err := s.taskRepo.FindByID(ctx, workspaceID, id); err != nil {
		return ErrNotFound
	}
	return s.taskRepo.Delete(ctx, workspaceID, id)
}
