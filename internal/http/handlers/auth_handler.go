package handlers

import (
	"beecommerce/internal/authz"
	applog "beecommerce/internal/log"
	"beecommerce/internal/services"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Auth *services.AuthService
}

// POST /api/accounts/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return badInput(c, "body", "request body must be JSON")
	}
	u, err := h.Auth.Register(c.UserContext(), in)
	if err != nil {
		return respondErr(c, "auth.register", err)
	}
	applog.Audit(c, "auth.register", map[string]any{"user_id": u.ID})
	return c.Status(fiber.StatusCreated).JSON(u)
}

// GET /api/accounts/profile
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	id := identity(c)
	if !authz.Can(id, authz.ReadProfile, authz.Resource{Kind: "user", OwnerID: id.UserID}) {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", "authentication credentials were not provided")
	}
	u, err := h.Auth.Profile(c.UserContext(), id.UserID)
	if err != nil {
		return respondErr(c, "auth.profile", err)
	}
	return c.JSON(u)
}

type loginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /api/token
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var in loginInput
	if err := c.BodyParser(&in); err != nil || in.Username == "" || in.Password == "" {
		return badInput(c, "credentials", "username and password are required")
	}
	pair, u, err := h.Auth.Login(c.UserContext(), in.Username, in.Password)
	if err != nil {
		if status, _ := errCode(err); status == fiber.StatusUnauthorized {
			applog.Security(c, "auth.login.fail", map[string]any{"username": in.Username})
			return fail(c, fiber.StatusUnauthorized, "unauthorized", "no active account found with the given credentials")
		}
		return respondErr(c, "auth.login", err)
	}
	c.Locals("user_id", u.ID)
	applog.Audit(c, "auth.login", nil)
	return c.JSON(pair)
}

type tokenInput struct {
	Refresh string `json:"refresh"`
	Token   string `json:"token"`
}

// POST /api/token/refresh
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var in tokenInput
	if err := c.BodyParser(&in); err != nil || in.Refresh == "" {
		return badInput(c, "refresh", "refresh token is required")
	}
	pair, err := h.Auth.Refresh(c.UserContext(), in.Refresh)
	if err != nil {
		if status, _ := errCode(err); status == fiber.StatusUnauthorized {
			applog.Security(c, "auth.refresh.fail", nil)
		}
		return respondErr(c, "auth.refresh", err)
	}
	return c.JSON(pair)
}

// POST /api/token/verify
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	var in tokenInput
	if err := c.BodyParser(&in); err != nil || in.Token == "" {
		return badInput(c, "token", "token is required")
	}
	if _, err := h.Auth.Verify(c.UserContext(), in.Token); err != nil {
		return respondErr(c, "auth.verify", err)
	}
	return c.JSON(fiber.Map{})
}
