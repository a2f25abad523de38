package handlers

import (
	"errors"
	"log"

	"github.com/edvantage/crm-backend/internal/crm/services"
	"github.com/gofiber/fiber/v2"
)

// writeServiceError maps service-layer errors onto HTTP statuses.
func writeServiceError(c *fiber.Ctx, err error) error {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(422).JSON(fiber.Map{"error": ve.Error()})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(403).JSON(fiber.Map{"error": "forbidden"})
	default:
		log.Printf("❌ internal error on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
}
