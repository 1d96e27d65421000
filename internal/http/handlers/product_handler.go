package handlers

import (
	"strconv"

	"beecommerce/internal/domain"
	applog "beecommerce/internal/log"
	"beecommerce/internal/services"
	"beecommerce/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// filter turns query parameters into a ProductFilter; ok is false with the
// offending field name when a parameter is malformed.
func filter(c *fiber.Ctx) (domain.ProductFilter, string, bool) {
	var f domain.ProductFilter
	if v := c.Query("category"); v != "" {
		id, ok := validate.ID(v)
		if !ok {
			return f, "category", false
		}
		f.CategoryID = id
	}
	if v := c.Query("available"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, "available", false
		}
		f.Available = &b
	}
	if v := c.Query("min_price"); v != "" {
		d, ok := validate.Price(v)
		if !ok {
			return f, "min_price", false
		}
		f.MinPrice = &d
	}
	if v := c.Query("max_price"); v != "" {
		d, ok := validate.Price(v)
		if !ok {
			return f, "max_price", false
		}
		f.MaxPrice = &d
	}
	if v := c.Query("search"); v != "" {
		q, ok := validate.Q(v)
		if !ok {
			return f, "search", false
		}
		f.Search = q
	}
	o, ok := validate.Ordering(c.Query("ordering"))
	if !ok {
		return f, "ordering", false
	}
	f.Ordering = o
	return f, "", true
}

// GET /api/products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	f, field, ok := filter(c)
	if !ok {
		return badInput(c, field, "invalid "+field+" parameter")
	}
	n := validate.Page(c.Query("page"))
	prods, count, err := h.Catalog.ListProducts(c.UserContext(), f, n)
	if err != nil {
		return respondErr(c, "products.list", err)
	}
	return c.JSON(page(c, prods, count, n, h.Catalog.PageSize))
}

// GET /api/products/:id
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "product_not_found", "product not found")
	}
	p, err := h.Catalog.GetProduct(c.UserContext(), id)
	if err != nil {
		return respondErr(c, "products.get", err)
	}
	return c.JSON(p)
}

// POST /api/products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badInput(c, "body", "request body must be JSON")
	}
	p, err := h.Catalog.CreateProduct(c.UserContext(), in)
	if err != nil {
		return respondErr(c, "products.create", err)
	}
	applog.Audit(c, "products.create", map[string]any{"product_id": p.ID, "price": p.Price.StringFixed(2), "stock": p.Stock})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// PUT|PATCH /api/products/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "product_not_found", "product not found")
	}
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badInput(c, "body", "request body must be JSON")
	}
	p, err := h.Catalog.UpdateProduct(c.UserContext(), id, in)
	if err != nil {
		return respondErr(c, "products.update", err)
	}
	applog.Audit(c, "products.update", map[string]any{"product_id": id, "price": p.Price.StringFixed(2), "stock": p.Stock})
	return c.JSON(p)
}

// DELETE /api/products/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "product_not_found", "product not found")
	}
	if err := h.Catalog.DeleteProduct(c.UserContext(), id); err != nil {
		return respondErr(c, "products.delete", err)
	}
	applog.Audit(c, "products.delete", map[string]any{"product_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
