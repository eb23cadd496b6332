package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/restaurant-portal/internal/auth"
	"github.com/spec-kit/restaurant-portal/internal/domain"
)

// SuperadminHome is the landing page of superadmins.
const SuperadminHome = "/superadmin/dashboard"

// PagesHandler renders the payload behind each guarded portal page. By the time a
// handler runs the guard has already confirmed the caller belongs on that page.
type PagesHandler struct{}

// NewPagesHandler constructs handler.
func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

// Render returns the handler for the named page.
func (h *PagesHandler) Render(page string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := auth.PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, "authentication required")
		}
		return c.JSON(fiber.Map{
			"data": fiber.Map{
				"page":   page,
				"status": clientHint(principal),
			},
		})
	}
}

// Login returns the unguarded login page payload for a role. Guards send callers here
// when they hold no usable token for the page they asked for.
func (h *PagesHandler) Login(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"data": fiber.Map{
				"page":      "login",
				"userType":  role,
				"login_url": "/auth/" + string(role) + "/login",
			},
		})
	}
}
