package handlers

import (
	applog "beecommerce/internal/log"
	"beecommerce/internal/services"
	"beecommerce/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

// GET /api/categories
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	n := validate.Page(c.Query("page"))
	cats, count, err := h.Catalog.ListCategories(c.UserContext(), n)
	if err != nil {
		return respondErr(c, "categories.list", err)
	}
	return c.JSON(page(c, cats, count, n, h.Catalog.PageSize))
}

// GET /api/categories/:id
func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "not_found", "category not found")
	}
	cat, err := h.Catalog.GetCategory(c.UserContext(), id)
	if err != nil {
		return respondErr(c, "categories.get", err)
	}
	return c.JSON(cat)
}

// POST /api/categories
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var in services.CategoryInput
	if err := c.BodyParser(&in); err != nil {
		return badInput(c, "body", "request body must be JSON")
	}
	cat, err := h.Catalog.CreateCategory(c.UserContext(), in)
	if err != nil {
		return respondErr(c, "categories.create", err)
	}
	applog.Audit(c, "categories.create", map[string]any{"category_id": cat.ID, "slug": cat.Slug})
	return c.Status(fiber.StatusCreated).JSON(cat)
}

// PUT|PATCH /api/categories/:id
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "not_found", "category not found")
	}
	var in services.CategoryInput
	if err := c.BodyParser(&in); err != nil {
		return badInput(c, "body", "request body must be JSON")
	}
	cat, err := h.Catalog.UpdateCategory(c.UserContext(), id, in)
	if err != nil {
		return respondErr(c, "categories.update", err)
	}
	applog.Audit(c, "categories.update", map[string]any{"category_id": id})
	return c.JSON(cat)
}

// DELETE /api/categories/:id
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "not_found", "category not found")
	}
	if err := h.Catalog.DeleteCategory(c.UserContext(), id); err != nil {
		return respondErr(c, "categories.delete", err)
	}
	applog.Audit(c, "categories.delete", map[string]any{"category_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
