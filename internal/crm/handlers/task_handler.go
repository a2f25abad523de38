package handlers

import (
	"github.com/edvantage/crm-backend/internal/crm/middleware"
	"github.com/edvantage/crm-backend/internal/crm/services"
	"github.com/gofiber/fiber/v2"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// Create godoc
// @Summary Create a follow-up task on a lead
// @Tags Tasks
// @Accept json
// @Produce json
// @Param task body services.TaskInput true "Task"
// @Success 201 {object} models.Task
// @Failure 422 {object} map[string]interface{}
// @Router /tasks [post]
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	ws := middleware.Scope(c)

	var input services.TaskInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	task, err := h.taskService.CreateTask(c.UserContext(), ws.Workspace.ID, ws.UserID, &input)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.Status(201).JSON(task)
}

// Complete godoc
// @Summary Mark a task completed
// @Tags Tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} models.Task
// @Failure 404 {object} map[string]interface{}
// @Router /tasks/{id}/complete [post]
func (h *TaskHandler) Complete(c *fiber.Ctx) error {
	ws := middleware.Scope(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil
	}

	task, err := h.taskService.CompleteTask(c.UserContext(), ws.Workspace.ID, id, ws.UserID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(task)
}

// Delete godoc
// @Summary Delete a task
// @Tags Tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	ws := middleware.Scope(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil
	}

	if err := h.taskService.DeleteTask(c.UserContext(), ws.Workspace.ID, id); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "task deleted"})
}
