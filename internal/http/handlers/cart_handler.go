package handlers

import (
	"beecommerce/internal/domain"
	applog "beecommerce/internal/log"
	"beecommerce/internal/services"
	"beecommerce/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	Cart *services.CartService
}

type cartItemView struct {
	domain.CartItem
	Subtotal domain.Money `json:"subtotal"`
}

func newCartItemView(it domain.CartItem) cartItemView {
	return cartItemView{CartItem: it, Subtotal: it.Subtotal()}
}

type cartView struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
	Items     []cartItemView `json:"items"`
	Total     domain.Money   `json:"total"`
}

// GET /api/carts
func (h *CartHandler) View(c *fiber.Ctx) error {
	cart, err := h.Cart.View(c.UserContext(), identity(c).UserID)
	if err != nil {
		return respondErr(c, "cart.view", err)
	}
	v := cartView{ID: cart.ID, UserID: cart.UserID, CreatedAt: cart.CreatedAt, UpdatedAt: cart.UpdatedAt, Total: cart.Total, Items: []cartItemView{}}
	for _, it := range cart.Items {
		v.Items = append(v.Items, newCartItemView(it))
	}
	return c.JSON(v)
}

// GET /api/cart-items
func (h *CartHandler) Items(c *fiber.Ctx) error {
	items, err := h.Cart.Items(c.UserContext(), identity(c).UserID)
	if err != nil {
		return respondErr(c, "cart.items", err)
	}
	out := make([]cartItemView, 0, len(items))
	for _, it := range items {
		out = append(out, newCartItemView(it))
	}
	return c.JSON(out)
}

type addItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

// POST /api/cart-items
func (h *CartHandler) Add(c *fiber.Ctx) error {
	var in addItemInput
	if err := c.BodyParser(&in); err != nil {
		return badInput(c, "body", "request body must be JSON")
	}
	pid, ok := validate.ID(in.ProductID)
	if !ok {
		return badInput(c, "product_id", "product_id is required")
	}
	qty := 1
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	it, err := h.Cart.AddItem(c.UserContext(), identity(c).UserID, pid, qty)
	if err != nil {
		return respondErr(c, "cart.add", err)
	}
	applog.Info(c, "cart.add", map[string]any{"product_id": pid, "quantity": qty})
	return c.Status(fiber.StatusCreated).JSON(newCartItemView(it))
}

type setQtyInput struct {
	Quantity int `json:"quantity"`
}

// PATCH /api/cart-items/:id
func (h *CartHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "not_found", "cart item not found")
	}
	var in setQtyInput
	if err := c.BodyParser(&in); err != nil {
		return badInput(c, "body", "request body must be JSON")
	}
	it, err := h.Cart.SetQuantity(c.UserContext(), identity(c).UserID, id, in.Quantity)
	if err != nil {
		return respondErr(c, "cart.update", err)
	}
	return c.JSON(newCartItemView(it))
}

// DELETE /api/cart-items/:id
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "not_found", "cart item not found")
	}
	if err := h.Cart.RemoveItem(c.UserContext(), identity(c).UserID, id); err != nil {
		return respondErr(c, "cart.remove", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
