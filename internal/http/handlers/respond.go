package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"beecommerce/internal/auth"
	"beecommerce/internal/domain"
	applog "beecommerce/internal/log"
	"beecommerce/internal/services"

	"github.com/gofiber/fiber/v2"
)

type errorBody struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func fail(c *fiber.Ctx, status int, code, detail string) error {
	return c.Status(status).JSON(errorBody{Code: code, Detail: detail})
}

// errCode maps a service error to its HTTP status and stable code.
func errCode(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrEmptyCart):
		return fiber.StatusBadRequest, "empty_cart"
	case errors.Is(err, services.ErrInsufficientStock):
		return fiber.StatusBadRequest, "insufficient_stock"
	case errors.Is(err, services.ErrProductNotFound):
		return fiber.StatusNotFound, "product_not_found"
	case errors.Is(err, services.ErrInvalidQuantityOrPrice), errors.Is(err, services.ErrInvalidInput):
		return fiber.StatusBadRequest, "invalid_input"
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict, "conflict"
	case errors.Is(err, services.ErrInvalidTransition):
		return fiber.StatusBadRequest, "invalid_transition"
	case errors.Is(err, services.ErrBadCreds), errors.Is(err, auth.ErrInvalidToken):
		return fiber.StatusUnauthorized, "unauthorized"
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden, "forbidden"
	}
	return fiber.StatusInternalServerError, "server_error"
}

// respondErr writes a business error as JSON. Anything unrecognised goes to
// the app ErrorHandler, which logs it and hides the details.
func respondErr(c *fiber.Ctx, action string, err error) error {
	status, code := errCode(err)
	if status == fiber.StatusInternalServerError {
		return fmt.Errorf("%s: %w", action, err)
	}
	applog.Info(c, action+".fail", map[string]any{"code": code})
	body := fiber.Map{"code": code, "detail": err.Error()}
	var se *services.StockError
	if errors.As(err, &se) {
		body["product_id"] = se.ProductID
		body["requested"] = se.Requested
		body["available"] = se.Available
	}
	return c.Status(status).JSON(body)
}

func badInput(c *fiber.Ctx, field, detail string) error {
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	return fail(c, fiber.StatusBadRequest, "invalid_input", detail)
}

// page wraps one page of results with absolute next/previous links.
func page[T any](c *fiber.Ctx, results []T, count, pageNo, size int) domain.Page[T] {
	if results == nil {
		results = []T{}
	}
	p := domain.Page[T]{Count: count, Results: results}
	link := func(n int) *string {
		u, err := url.Parse(c.BaseURL() + c.OriginalURL())
		if err != nil {
			return nil
		}
		q := u.Query()
		if n == 1 {
			q.Del("page")
		} else {
			q.Set("page", strconv.Itoa(n))
		}
		u.RawQuery = q.Encode()
		s := u.String()
		return &s
	}
	if pageNo*size < count {
		p.Next = link(pageNo + 1)
	}
	if pageNo > 1 {
		p.Previous = link(pageNo - 1)
	}
	return p
}
