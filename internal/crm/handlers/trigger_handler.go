package handlers

import (
	"github.com/edvantage/crm-backend/internal/crm/middleware"
	"github.com/edvantage/crm-backend/internal/crm/services"
	"github.com/gofiber/fiber/v2"
)

type TriggerHandler struct {
	triggerService *services.TriggerService
}

func NewTriggerHandler(triggerService *services.TriggerService) *TriggerHandler {
	return &TriggerHandler{triggerService: triggerService}
}

// List godoc
// @Summary List WhatsApp triggers
// @Tags WhatsApp Triggers
// @Produce json
// @Success 200 {array} models.WhatsAppTrigger
// @Router /whatsapp-triggers [get]
func (h *TriggerHandler) List(c *fiber.Ctx) error {
	ws := middleware.Scope(c)

	triggers, err := h.triggerService.ListTriggers(c.UserContext(), ws.Workspace.ID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(triggers)
}

// Get godoc
// @Summary Get a WhatsApp trigger
// @Tags WhatsApp Triggers
// @Produce json
// @Param id path string true "Trigger ID"
// @Success 200 {object} models.WhatsAppTrigger
// @Failure 404 {object} map[string]interface{}
// @Router /whatsapp-triggers/{id} [get]
func (h *TriggerHandler) Get(c *fiber.Ctx) error {
	ws := middleware.Scope(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil
	}

	trigger, err := h.triggerService.GetTrigger(c.UserContext(), ws.Workspace.ID, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(trigger)
}

// Create godoc
// @Summary Create a WhatsApp trigger
// @Description Binds a template campaign to a lead status; one trigger per status
// @Tags WhatsApp Triggers
// @Accept json
// @Produce json
// @Param trigger body services.TriggerInput true "Trigger"
// @Success 201 {object} models.WhatsAppTrigger
// @Failure 422 {object} map[string]interface{}
// @Router /whatsapp-triggers [post]
func (h *TriggerHandler) Create(c *fiber.Ctx) error {
	ws := middleware.Scope(c)

	var input services.TriggerInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	trigger, err := h.triggerService.CreateTrigger(c.UserContext(), ws.Workspace.ID, &input)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.Status(201).JSON(trigger)
}

// Update godoc
// @Summary Update a WhatsApp trigger
// @Tags WhatsApp Triggers
// @Accept json
// @Produce json
// @Param id path string true "Trigger ID"
// @Param trigger body services.TriggerInput true "Trigger"
// @Success 200 {object} models.WhatsAppTrigger
// @Failure 404 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /whatsapp-triggers/{id} [put]
func (h *TriggerHandler) Update(c *fiber.Ctx) error {
	ws := middleware.Scope(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil
	}

	var input services.TriggerInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	trigger, err := h.triggerService.UpdateTrigger(c.UserContext(), ws.Workspace.ID, id, &input)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(trigger)
}

// Delete godoc
// @Summary Delete a WhatsApp trigger
// @Tags WhatsApp Triggers
// @Produce json
// @Param id path string true "Trigger ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /whatsapp-triggers/{id} [delete]
func (h *TriggerHandler) Delete(c *fiber.Ctx) error {
	ws := middleware.Scope(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil
	}

	if err := h.triggerService.DeleteTrigger(c.UserContext(), ws.Workspace.ID, id); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "trigger deleted"})
}
