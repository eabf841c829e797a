// Package auth provides the bearer-token middleware protecting
// authenticated routes.
package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/wysehawk/casedesk/internal/auth"
	"github.com/wysehawk/casedesk/internal/db/models"
	"github.com/wysehawk/casedesk/internal/web/handler"
)

// ClaimsLocal is the fiber locals key the verified session claims are
// stored under.
const ClaimsLocal = "SessionClaims"

// New creates a middleware that verifies the Authorization bearer token and
// stores the session claims in the request locals.
func New(tokens *auth.TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(handler.Response{
				Success: false,
				Message: "Missing authorization header",
			})
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		claims, err := tokens.Verify(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(handler.Response{
				Success: false,
				Message: "Invalid token",
			})
		}

		c.Locals(ClaimsLocal, claims)

		return c.Next()
	}
}

// Claims returns the verified session claims stored by the middleware, or
// nil when the request was not authenticated.
func Claims(c *fiber.Ctx) *auth.SessionClaims {
	claims, _ := c.Locals(ClaimsLocal).(*auth.SessionClaims)
	return claims
}

// RequireFullAccess creates a middleware that rejects authenticated users
// whose primary role does not grant full access to the given UI area path
// (e.g. "Settings", "Auth"). The configured super-administrator handle is
// exempt.
func RequireFullAccess(superAdmin string, area ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := Claims(c)
		if claims == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(handler.Response{
				Success: false,
				Message: "Missing authorization",
			})
		}

		if claims.Username == superAdmin || hasFullAccess(claims.UIPermissions, area) {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(handler.Response{
			Success: false,
			Message: "Access denied",
		})
	}
}

// hasFullAccess walks the permission tree along the area path and reports
// whether it ends in a full-access leaf.
func hasFullAccess(tree models.PermissionTree, area []string) bool {
	for i, name := range area {
		node, ok := tree[name]
		if !ok {
			return false
		}

		if node.IsLeaf() {
			return i == len(area)-1 && node.Level == models.AccessFull
		}

		tree = node.Children
	}

	return false
}
