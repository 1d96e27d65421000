package handlers

import (
	"beecommerce/internal/services"
	"beecommerce/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

// GET /api/products/:id/availability
func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "product_not_found", "product not found")
	}
	a, err := h.Inv.Availability(c.UserContext(), id)
	if err != nil {
		return respondErr(c, "inventory.check", err)
	}
	return c.JSON(a)
}
