package handlers

import (
	"github.com/edvantage/crm-backend/internal/crm/middleware"
	"github.com/edvantage/crm-backend/internal/crm/services"
	"github.com/gofiber/fiber/v2"
)

// ConfigHandler exposes workspace configuration: the status pipeline and the
// custom lead field registry.
type ConfigHandler struct {
	configService *services.ConfigService
}

func NewConfigHandler(configService *services.ConfigService) *ConfigHandler {
	return &ConfigHandler{configService: configService}
}

// ListStatuses godoc
// @Summary List workspace statuses
// @Tags Statuses
// @Produce json
// @Success 200 {array} models.StatusConfig
// @Router /statuses [get]
func (h *ConfigHandler) ListStatuses(c *fiber.Ctx) error {
	ws := middleware.Scope(c)

	statuses, err := h.configService.ListStatuses(c.UserContext(), ws.Workspace.ID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(statuses)
}

// CreateStatus godoc
// @Summary Add a status to the workspace pipeline
// @Tags Statuses
// @Accept json
// @Produce json
// @Param status body services.StatusInput true "Status"
// @Success 201 {object} models.StatusConfig
// @Failure 422 {object} map[string]interface{}
// @Router /statuses [post]
func (h *ConfigHandler) CreateStatus(c *fiber.Ctx) error {
	ws := middleware.Scope(c)

	var input services.StatusInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	status, err := h.configService.CreateStatus(c.UserContext(), ws.Workspace.ID, &input)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.Status(201).JSON(status)
}

// UpdateStatus godoc
// @Summary Update a status config
// @Tags Statuses
// @Accept json
// @Produce json
// @Param id path string true "Status ID"
// @Param status body services.StatusInput true "Status"
// @Success 200 {object} models.StatusConfig
// @Failure 404 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /statuses/{id} [put]
func (h *ConfigHandler) UpdateStatus(c *fiber.Ctx) error {
	ws := middleware.Scope(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil
	}

	var input services.StatusInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	status, err := h.configService.UpdateStatus(c.UserContext(), ws.Workspace.ID, id, &input)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(status)
}

// DeleteStatus godoc
// @Summary Delete a status config
// @Tags Statuses
// @Produce json
// @Param id path string true "Status ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /statuses/{id} [delete]
func (h *ConfigHandler) DeleteStatus(c *fiber.Ctx) error {
	ws := middleware.Scope(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil
	}

	if err := h.configService.DeleteStatus(c.UserContext(), ws.Workspace.ID, id); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "status deleted"})
}

// ListFields godoc
// @Summary List custom lead fields
// @Tags Lead Fields
// @Produce json
// @Success 200 {array} models.LeadField
// @Router /lead-fields [get]
func (h *ConfigHandler) ListFields(c *fiber.Ctx) error {
	ws := middleware.Scope(c)

	fields, err := h.configService.ListFields(c.UserContext(), ws.Workspace.ID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(fields)
}

// CreateField godoc
// @Summary Register a custom lead field
// @Tags Lead Fields
// @Accept json
// @Produce json
// @Param field body services.FieldInput true "Field"
// @Success 201 {object} models.LeadField
// @Failure 422 {object} map[string]interface{}
// @Router /lead-fields [post]
func (h *ConfigHandler) CreateField(c *fiber.Ctx) error {
	ws := middleware.Scope(c)

	var input services.FieldInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	field, err := h.configService.CreateField(c.UserContext(), ws.Workspace.ID, &input)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.Status(201).JSON(field)
}

// UpdateField godoc
// @Summary Update a custom field definition
// @Description Edits label, type and options; the key is immutable
// @Tags Lead Fields
// @Accept json
// @Produce json
// @Param id path string true "Field ID"
// @Param field body services.FieldInput true "Field"
// @Success 200 {object} models.LeadField
// @Failure 404 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /lead-fields/{id} [put]
func (h *ConfigHandler) UpdateField(c *fiber.Ctx) error {
	ws := middleware.Scope(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil
	}

	var input services.FieldInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	field, err := h.configService.UpdateField(c.UserContext(), ws.Workspace.ID, id, &input)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(field)
}

// DeleteField godoc
// @Summary Delete a custom field definition
// @Tags Lead Fields
// @Produce json
// @Param id path string true "Field ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /lead-fields/{id} [delete]
func (h *ConfigHandler) DeleteField(c *fiber.Ctx) error {
	ws := middleware.Scope(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil
	}

	if err := h.configService.DeleteField(c.UserContext(), ws.Workspace.ID, id); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "field deleted"})
}
