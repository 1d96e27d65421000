package handlers

import (
	"strconv"

	"beecommerce/internal/domain"
	applog "beecommerce/internal/log"
	"beecommerce/internal/services"
	"beecommerce/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Orders *services.OrderService
	Inv    *services.InventoryService
}

type statusInput struct {
	Status string `json:"status"`
}

// PATCH /api/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "not_found", "order not found")
	}
	var in statusInput
	if err := c.BodyParser(&in); err != nil {
		return badInput(c, "body", "request body must be JSON")
	}
	to, ok := domain.ParseStatus(in.Status)
	if !ok {
		return badInput(c, "status", "status must be one of pending, processing, shipped, delivered, cancelled")
	}
	o, err := h.Orders.UpdateStatus(c.UserContext(), id, to)
	if err != nil {
		return respondErr(c, "admin.orders.update", err)
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": string(to)})
	return c.JSON(newOrderView(o))
}

// GET /api/admin/inventory?threshold=N
func (h *AdminHandler) LowStock(c *fiber.Ctx) error {
	threshold := services.LowStockThreshold
	if v := c.Query("threshold"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return badInput(c, "threshold", "threshold must be a non-negative integer")
		}
		threshold = n
	}
	rows, err := h.Inv.Low(c.UserContext(), threshold)
	if err != nil {
		return respondErr(c, "admin.inventory.list", err)
	}
	return c.JSON(rows)
}

type stockInput struct {
	Stock *int `json:"stock"`
}

// PUT /api/admin/inventory/:id
func (h *AdminHandler) SetStock(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "product_not_found", "product not found")
	}
	var in stockInput
	if err := c.BodyParser(&in); err != nil || in.Stock == nil {
		return badInput(c, "stock", "stock is required")
	}
	if err := h.Inv.SetStock(c.UserContext(), id, *in.Stock); err != nil {
		return respondErr(c, "admin.inventory.save", err)
	}
	applog.Audit(c, "admin.inventory.save", map[string]any{"product_id": id, "stock": *in.Stock})
	a, err := h.Inv.Availability(c.UserContext(), id)
	if err != nil {
		return respondErr(c, "admin.inventory.save", err)
	}
	return c.JSON(a)
}
