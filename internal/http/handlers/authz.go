package handlers

import (
	"strings"

	"beecommerce/internal/auth"
	"beecommerce/internal/authz"
	applog "beecommerce/internal/log"

	"github.com/gofiber/fiber/v2"
)

// Authenticate reads an optional bearer access token. A missing header leaves
// the request anonymous; a bad token is rejected outright.
func Authenticate(tokens *auth.Tokens) fiber.Handler {
	return func(c *fiber.Ctx) error {
		h := c.Get(fiber.HeaderAuthorization)
		if h == "" {
			c.Locals("identity", authz.Identity{})
			return c.Next()
		}
		raw, ok := strings.CutPrefix(h, "Bearer ")
		if !ok {
			applog.Security(c, "auth.header.malformed", nil)
			return fail(c, fiber.StatusUnauthorized, "unauthorized", "authorization header must be 'Bearer <token>'")
		}
		claims, err := tokens.Parse(strings.TrimSpace(raw), auth.TypeAccess)
		if err != nil {
			applog.Security(c, "auth.token.invalid", nil)
			return fail(c, fiber.StatusUnauthorized, "unauthorized", "token is invalid or expired")
		}
		c.Locals("identity", authz.Identity{UserID: claims.UserID, Role: claims.Role})
		c.Locals("user_id", claims.UserID)
		return c.Next()
	}
}

func identity(c *fiber.Ctx) authz.Identity {
	id, _ := c.Locals("identity").(authz.Identity)
	return id
}

// Require gates a route on a capability: anonymous callers get 401, callers
// without the capability get 403.
func Require(action authz.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := identity(c)
		if !id.Authenticated() {
			return fail(c, fiber.StatusUnauthorized, "unauthorized", "authentication credentials were not provided")
		}
		if !authz.Can(id, action, authz.Resource{}) {
			applog.Security(c, "access.denied", map[string]any{"action": string(action)})
			return fail(c, fiber.StatusForbidden, "forbidden", "you do not have permission to perform this action")
		}
		return c.Next()
	}
}
