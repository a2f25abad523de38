package handlers

import (
	"github.com/edvantage/crm-backend/internal/crm/middleware"
	"github.com/edvantage/crm-backend/internal/crm/services"
	"github.com/gofiber/fiber/v2"
)

type RuleHandler struct {
	assignmentService *services.AssignmentService
}

func NewRuleHandler(assignmentService *services.AssignmentService) *RuleHandler {
	return &RuleHandler{assignmentService: assignmentService}
}

// List godoc
// @Summary List assignment rules
// @Description Returns the workspace's rules in evaluation order
// @Tags Assignment Rules
// @Produce json
// @Success 200 {array} models.AssignmentRule
// @Router /assignment-rules [get]
func (h *RuleHandler) List(c *fiber.Ctx) error {
	ws := middleware.Scope(c)

	rules, err := h.assignmentService.ListRules(c.UserContext(), ws.Workspace.ID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(rules)
}

// Get godoc
// @Summary Get an assignment rule
// @Tags Assignment Rules
// @Produce json
// @Param id path string true "Rule ID"
// @Success 200 {object} models.AssignmentRule
// @Failure 404 {object} map[string]interface{}
// @Router /assignment-rules/{id} [get]
func (h *RuleHandler) Get(c *fiber.Ctx) error {
	ws := middleware.Scope(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil
	}

	rule, err := h.assignmentService.GetRule(c.UserContext(), ws.Workspace.ID, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(rule)
}

// Create godoc
// @Summary Create an assignment rule
// @Tags Assignment Rules
// @Accept json
// @Produce json
// @Param rule body services.RuleInput true "Rule"
// @Success 201 {object} models.AssignmentRule
// @Failure 422 {object} map[string]interface{}
// @Router /assignment-rules [post]
func (h *RuleHandler) Create(c *fiber.Ctx) error {
	ws := middleware.Scope(c)

	var input services.RuleInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	rule, err := h.assignmentService.CreateRule(c.UserContext(), ws.Workspace.ID, &input)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.Status(201).JSON(rule)
}

// Update godoc
// @Summary Update an assignment rule
// @Description Edits a rule; rotation and counter state are preserved
// @Tags Assignment Rules
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param rule body services.RuleInput true "Rule"
// @Success 200 {object} models.AssignmentRule
// @Failure 404 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /assignment-rules/{id} [put]
func (h *RuleHandler) Update(c *fiber.Ctx) error {
	ws := middleware.Scope(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil
	}

	var input services.RuleInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	rule, err := h.assignmentService.UpdateRule(c.UserContext(), ws.Workspace.ID, id, &input)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(rule)
}

// Delete godoc
// @Summary Delete an assignment rule
// @Tags Assignment Rules
// @Produce json
// @Param id path string true "Rule ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /assignment-rules/{id} [delete]
func (h *RuleHandler) Delete(c *fiber.Ctx) error {
	ws := middleware.Scope(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil
	}

	if err := h.assignmentService.DeleteRule(c.UserContext(), ws.Workspace.ID, id); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "rule deleted"})
}
