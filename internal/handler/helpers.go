package handler

import (
	"go-resale-ledger/internal/service"
	"go-resale-ledger/pkg/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// actorFrom rebuilds the caller identity from the Locals set by RequireAuth.
func actorFrom(c *fiber.Ctx) service.Actor {
	actor := service.Actor{Name: "Unknown"}
	if v, ok := c.Locals("user_id").(string); ok {
		if id, err := uuid.Parse(v); err == nil {
			actor.ID = id
		}
	}
	if v, ok := c.Locals("user_name").(string); ok {
		actor.Name = v
	}
	if v, ok := c.Locals("user_email").(string); ok {
		actor.Email = v
	}
	if v, ok := c.Locals("is_admin").(bool); ok {
		actor.IsAdmin = v
	}
	return actor
}

// idemKey reads the optional Idempotency-Key header.
func idemKey(c *fiber.Ctx) string {
	return c.Get("Idempotency-Key")
}

// fail renders an error with the status its kind maps to.
func fail(c *fiber.Ctx, err error) error {
	return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{
		"error": err.Error(),
		"kind":  string(apperr.KindOf(err)),
	})
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.Newf(apperr.KindValidation, "invalid %s", name)
	}
	return id, nil
}
