package middleware

import (
	"errors"

	"github.com/edvantage/crm-backend/internal/core/workspace"
	"github.com/gofiber/fiber/v2"
)

const workspaceKey = "workspace_ctx"

// WorkspaceScope resolves the tenant named by the X-Workspace-ID header and
// verifies the caller's membership. Runs after Auth.
func WorkspaceScope(resolver *workspace.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		wsCtx, err := resolver.Resolve(c.UserContext(), Identity(c), c.Get("X-Workspace-ID"))
		if err != nil {
			switch {
			case errors.Is(err, workspace.ErrUnauthorized):
				return c.Status(401).JSON(fiber.Map{"error": "unauthorized"})
			case errors.Is(err, workspace.ErrWorkspaceNotSelected):
				return c.Status(400).JSON(fiber.Map{"error": "workspace not selected"})
			case errors.Is(err, workspace.ErrForbidden):
				return c.Status(403).JSON(fiber.Map{"error": "not a member of this workspace"})
			default:
				return c.Status(500).JSON(fiber.Map{"error": "failed to resolve workspace"})
			}
		}

		c.Locals(workspaceKey, wsCtx)
		return c.Next()
	}
}

// Scope returns the resolved workspace context for the request.
func Scope(c *fiber.Ctx) *workspace.Context {
	ws, _ := c.Locals(workspaceKey).(*workspace.Context)
	return ws
}

// RequireElevated blocks agents from configuration routes. Runs after
// WorkspaceScope.
func RequireElevated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ws := Scope(c)
		if ws == nil || !ws.Elevated() {
			return c.Status(403).JSON(fiber.Map{"error": "admin or manager role required"})
		}
		return c.Next()
	}
}
