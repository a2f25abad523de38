package handlers

import (
	"github.com/edvantage/crm-backend/internal/crm/middleware"
	"github.com/edvantage/crm-backend/internal/crm/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type LeadHandler struct {
	leadService       *services.LeadService
	assignmentService *services.AssignmentService
	taskService       *services.TaskService
}

func NewLeadHandler(
	leadService *services.LeadService,
	assignmentService *services.AssignmentService,
	taskService *services.TaskService,
) *LeadHandler {
	return &LeadHandler{
		leadService:       leadService,
		assignmentService: assignmentService,
		taskService:       taskService,
	}
}

// parseIDParam parses a uuid path parameter. On failure it writes the 400
// response and reports false.
func parseIDParam(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		_ = c.Status(400).JSON(fiber.Map{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// List godoc
// @Summary List leads
// @Description Lists the workspace's leads, newest first
// @Tags Leads
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Lead
// @Router /leads [get]
func (h *LeadHandler) List(c *fiber.Ctx) error {
	ws := middleware.Scope(c)

	leads, err := h.leadService.List(c.UserContext(), ws.Workspace.ID, c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(leads)
}

// Create godoc
// @Summary Create a lead manually
// @Description Creates a lead entered by a user; dedup and assignment apply as for webhooks
// @Tags Leads
// @Accept json
// @Produce json
// @Param lead body services.LeadInput true "Lead payload"
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /leads [post]
func (h *LeadHandler) Create(c *fiber.Ctx) error {
	ws := middleware.Scope(c)

	var input services.LeadInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	result, err := h.leadService.CreateManual(c.UserContext(), ws.Workspace, ws.UserID, &input)
	if err != nil {
		return writeServiceError(c, err)
	}

	status := 200
	if result.IsNew {
		status = 201
	}
	return c.Status(status).JSON(fiber.Map{
		"lead":     result.Lead,
		"is_new":   result.IsNew,
		"assigned": result.Assigned,
	})
}

// Get godoc
// @Summary Get a lead
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} models.Lead
// @Failure 404 {object} map[string]interface{}
// @Router /leads/{id} [get]
func (h *LeadHandler) Get(c *fiber.Ctx) error {
	ws := middleware.Scope(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil
	}

	lead, err := h.leadService.Get(c.UserContext(), ws.Workspace.ID, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(lead)
}

// Timeline godoc
// @Summary Get a lead's activity timeline
// @Description Returns the lead's activities, newest first
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Param limit query int false "Max entries (default 50)"
// @Success 200 {array} models.Activity
// @Failure 404 {object} map[string]interface{}
// @Router /leads/{id}/activities [get]
func (h *LeadHandler) Timeline(c *fiber.Ctx) error {
	ws := middleware.Scope(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil
	}

	activities, err := h.leadService.Timeline(c.UserContext(), ws.Workspace.ID, id, c.QueryInt("limit"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(activities)
}

type changeStatusRequest struct {
	Status string `json:"status"`
}

// ChangeStatus godoc
// @Summary Change a lead's status
// @Description Moves the lead, records the transition and fires any WhatsApp trigger bound to the new status
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param body body changeStatusRequest true "New status"
// @Success 200 {object} models.Lead
// @Failure 404 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /leads/{id}/status [patch]
func (h *LeadHandler) ChangeStatus(c *fiber.Ctx) error {
	ws := middleware.Scope(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil
	}

	var req changeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	userID := ws.UserID
	lead, err := h.leadService.ChangeStatus(c.UserContext(), ws.Workspace, id, req.Status, &userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(lead)
}

type changeOwnerRequest struct {
	OwnerID *uuid.UUID `json:"owner_id"`
}

// ChangeOwner godoc
// @Summary Set or clear a lead's owner
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param body body changeOwnerRequest true "Owner (null clears)"
// @Success 200 {object} models.Lead
// @Failure 404 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /leads/{id}/owner [patch]
func (h *LeadHandler) ChangeOwner(c *fiber.Ctx) error {
	ws := middleware.Scope(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil
	}

	var req changeOwnerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	lead, err := h.leadService.AssignOwner(c.UserContext(), ws.Workspace, id, req.OwnerID, ws.UserID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(lead)
}

// RecordPayment godoc
// @Summary Record a payment against a lead
// @Description Stores the payment and increments the lead's revenue
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param payment body services.PaymentInput true "Payment"
// @Success 201 {object} models.Payment
// @Failure 404 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /leads/{id}/payments [post]
func (h *LeadHandler) RecordPayment(c *fiber.Ctx) error {
	ws := middleware.Scope(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil
	}

	var input services.PaymentInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	payment, err := h.leadService.RecordPayment(c.UserContext(), ws.Workspace, id, ws.UserID, &input)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.Status(201).JSON(payment)
}

// ListPayments godoc
// @Summary List a lead's payments
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {array} models.Payment
// @Failure 404 {object} map[string]interface{}
// @Router /leads/{id}/payments [get]
func (h *LeadHandler) ListPayments(c *fiber.Ctx) error {
	ws := middleware.Scope(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil
	}

	payments, err := h.leadService.Payments(c.UserContext(), ws.Workspace.ID, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(payments)
}

// ListTasks godoc
// @Summary List a lead's tasks
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {array} models.Task
// @Router /leads/{id}/tasks [get]
func (h *LeadHandler) ListTasks(c *fiber.Ctx) error {
	ws := middleware.Scope(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil
	}

	tasks, err := h.taskService.ListForLead(c.UserContext(), ws.Workspace.ID, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(tasks)
}

type assignBySourceRequest struct {
	Source string `json:"source"`
}

// AssignBySource godoc
// @Summary Bulk-assign unassigned leads of a source
// @Description Re-runs the assignment engine over every unassigned lead of the source
// @Tags Leads
// @Accept json
// @Produce json
// @Param body body assignBySourceRequest true "Source"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /leads/assign-by-source [post]
func (h *LeadHandler) AssignBySource(c *fiber.Ctx) error {
	ws := middleware.Scope(c)

	var req assignBySourceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	assigned, err := h.assignmentService.AssignBySource(c.UserContext(), ws.Workspace.ID, req.Source)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(fiber.Map{"assigned": assigned})
}
