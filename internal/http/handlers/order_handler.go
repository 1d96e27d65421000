package handlers

import (
	"beecommerce/internal/authz"
	"beecommerce/internal/domain"
	applog "beecommerce/internal/log"
	"beecommerce/internal/metrics"
	"beecommerce/internal/services"
	"beecommerce/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	Orders  *services.OrderService
	Metrics *metrics.ServerMetrics
}

type orderView struct {
	domain.Order
	StatusDisplay string `json:"status_display"`
}

func newOrderView(o domain.Order) orderView {
	if o.Items == nil {
		o.Items = []domain.OrderItem{}
	}
	return orderView{Order: o, StatusDisplay: o.Status.Display()}
}

// POST /api/checkout
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	o, err := h.Orders.Checkout(c.UserContext(), identity(c).UserID)
	if err != nil {
		_, code := errCode(err)
		h.count(code)
		return respondErr(c, "order.checkout", err)
	}
	h.count("ok")
	applog.Audit(c, "order.checkout", map[string]any{
		"order_id":     o.ID,
		"total_amount": o.TotalAmount.StringFixed(2),
		"items":        len(o.Items),
	})
	return c.Status(fiber.StatusCreated).JSON(newOrderView(o))
}

func (h *OrderHandler) count(result string) {
	if h.Metrics != nil {
		h.Metrics.Checkout(result)
	}
}

// GET /api/orders
func (h *OrderHandler) List(c *fiber.Ctx) error {
	id := identity(c)
	owner := id.UserID
	if authz.Can(id, authz.ListAllOrders, authz.Resource{Kind: "order"}) {
		owner = ""
	}
	n := validate.Page(c.Query("page"))
	orders, count, err := h.Orders.List(c.UserContext(), owner, n)
	if err != nil {
		return respondErr(c, "orders.list", err)
	}
	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, newOrderView(o))
	}
	return c.JSON(page(c, views, count, n, h.Orders.PageSize))
}

// GET /api/orders/:id
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "not_found", "order not found")
	}
	o, err := h.Orders.Get(c.UserContext(), oid)
	if err != nil {
		return respondErr(c, "orders.get", err)
	}
	if !authz.Can(identity(c), authz.ReadOrder, authz.Resource{Kind: "order", OwnerID: o.UserID}) {
		// Same answer as a missing order, so ids cannot be probed.
		applog.Security(c, "access.denied.order", map[string]any{"order_id": oid})
		return fail(c, fiber.StatusNotFound, "not_found", "order not found")
	}
	return c.JSON(newOrderView(o))
}

// GET /api/order-items
func (h *OrderHandler) Items(c *fiber.Ctx) error {
	items, err := h.Orders.ListItems(c.UserContext(), identity(c).UserID)
	if err != nil {
		return respondErr(c, "orders.items", err)
	}
	return c.JSON(items)
}

// POST /api/orders/:id/cancel
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "not_found", "order not found")
	}
	o, err := h.Orders.Cancel(c.UserContext(), identity(c), oid)
	if err != nil {
		return respondErr(c, "orders.cancel", err)
	}
	applog.Audit(c, "orders.cancel", map[string]any{"order_id": oid})
	return c.JSON(newOrderView(o))
}
