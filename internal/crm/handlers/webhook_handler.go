package handlers

import (
	"log"

	"github.com/edvantage/crm-backend/internal/crm/models"
	"github.com/edvantage/crm-backend/internal/crm/repositories"
	"github.com/edvantage/crm-backend/internal/crm/services"
	"github.com/gofiber/fiber/v2"
)

// WebhookHandler receives unauthenticated machine-to-machine callbacks.
// Callers identify their workspace with a shared webhook token instead of a
// user bearer token.
type WebhookHandler struct {
	workspaceRepo repositories.WorkspaceRepo
	leadService   *services.LeadService
}

func NewWebhookHandler(workspaceRepo repositories.WorkspaceRepo, leadService *services.LeadService) *WebhookHandler {
	return &WebhookHandler{
		workspaceRepo: workspaceRepo,
		leadService:   leadService,
	}
}

// resolveWorkspace authenticates the webhook token. On failure it writes the
// 401 response and returns a nil workspace.
func (h *WebhookHandler) resolveWorkspace(c *fiber.Ctx) (*models.Workspace, error) {
	token := c.Get("X-Webhook-Token")
	if token == "" {
		token = c.Query("token")
	}
	if token == "" {
		return nil, c.Status(401).JSON(fiber.Map{"error": "missing webhook token"})
	}

	ws, err := h.workspaceRepo.FindByWebhookToken(c.UserContext(), token)
	if err != nil {
		return nil, c.Status(401).JSON(fiber.Map{"error": "invalid webhook token"})
	}
	return ws, nil
}

// IngestLead godoc
// @Summary Ingest a lead from a marketing integration
// @Description Creates or updates a lead from a form/ad webhook payload
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param token query string false "Workspace webhook token (or X-Webhook-Token header)"
// @Param lead body services.LeadInput true "Lead payload"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /webhooks/lead [post]
func (h *WebhookHandler) IngestLead(c *fiber.Ctx) error {
	ws, err := h.resolveWorkspace(c)
	if ws == nil {
		return err
	}

	var input services.LeadInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	result, err := h.leadService.IngestWebhook(c.UserContext(), ws, &input)
	if err != nil {
		return writeServiceError(c, err)
	}

	log.Printf("📩 webhook lead for workspace %s (new=%v)", ws.ID, result.IsNew)
	return c.JSON(fiber.Map{
		"lead_id":          result.Lead.ID,
		"is_new":           result.IsNew,
		"matched_existing": !result.IsNew,
		"assigned":         result.Assigned,
	})
}

// IngestCall godoc
// @Summary Log a phone call from the telephony provider
// @Description Records a call activity on the matching lead, creating the lead when the caller is unknown
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param token query string false "Workspace webhook token (or X-Webhook-Token header)"
// @Param call body services.CallInput true "Call payload"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /webhooks/call [post]
func (h *WebhookHandler) IngestCall(c *fiber.Ctx) error {
	ws, err := h.resolveWorkspace(c)
	if ws == nil {
		return err
	}

	var input services.CallInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	lead, err := h.leadService.RecordCall(c.UserContext(), ws, &input)
	if err != nil {
		return writeServiceError(c, err)
	}

	return c.JSON(fiber.Map{"lead_id": lead.ID})
}
