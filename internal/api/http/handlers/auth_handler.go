package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/restaurant-portal/internal/api/dto"
	"github.com/spec-kit/restaurant-portal/internal/auth"
	"github.com/spec-kit/restaurant-portal/internal/domain"
	"github.com/spec-kit/restaurant-portal/internal/service"
)

// AuthHandler exposes signup, login, refresh, logout and status endpoints.
type AuthHandler struct {
	auth    *service.AuthService
	cookies *auth.CookieTransport
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookies *auth.CookieTransport) *AuthHandler {
	return &AuthHandler{auth: authService, cookies: cookies}
}

// Signup handles POST /auth/restaurant/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	result, err := h.auth.RegisterRestaurant(c.UserContext(), service.SignupInput{
		RestaurantName: req.RestaurantName,
		OwnerName:      req.OwnerName,
		Email:          req.Email,
		Password:       req.Password,
	})
	if err != nil {
		return err
	}

	h.cookies.Attach(c, result.Session)
	dest := domain.ResolveDestination(result.Account)
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user":    dto.NewUserResponse(result.User),
			"session": dto.NewSessionResponse(result.Session),
			"status": dto.ClientHint{
				UserType:       result.User.Role,
				RestaurantInfo: dto.NewRestaurantInfo(result.Account),
				Destination:    dest,
				Redirect:       auth.PagePath(result.User.Role, dest),
			},
		},
	})
}

// Login returns the handler for POST /auth/{role}/login. Each role has its own login
// page, and an identity of another role is refused there.
func (h *AuthHandler) Login(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req dto.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid payload")
		}
		if req.Email == "" || req.Password == "" {
			return fiber.NewError(http.StatusBadRequest, "email and password required")
		}

		user, session, err := h.auth.Login(c.UserContext(), role, req.Email, req.Password)
		if err != nil {
			return err
		}

		h.cookies.Attach(c, session)
		return c.JSON(fiber.Map{
			"data": fiber.Map{
				"user":    dto.NewUserResponse(user),
				"session": dto.NewSessionResponse(session),
			},
		})
	}
}

// Refresh handles POST /auth/refresh. A refused refresh token also clears the cookies so
// the browser falls back to the login page.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	token, exp, identity, err := h.auth.Refresh(c.UserContext(), h.cookies.RefreshToken(c))
	if err != nil {
		if errors.Is(err, service.ErrInvalidSession) {
			h.cookies.Clear(c)
		}
		return err
	}

	h.cookies.AttachAccess(c, token)
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"session":  dto.SessionResponse{AccessExpiresAt: exp},
			"userType": identity.Role,
		},
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.cookies.Clear(c)
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "logged_out"}})
}

// Status handles GET /auth/status behind a guard that accepts any destination.
func (h *AuthHandler) Status(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "authentication required")
	}
	return c.JSON(fiber.Map{"data": clientHint(principal)})
}

func clientHint(principal *auth.Principal) dto.ClientHint {
	role := principal.Identity.Role
	if role == domain.RoleSuperadmin {
		return dto.ClientHint{UserType: role, Redirect: SuperadminHome}
	}
	return dto.ClientHint{
		UserType:       role,
		RestaurantInfo: dto.NewRestaurantInfo(principal.Account),
		Destination:    principal.Destination,
		Redirect:       auth.PagePath(role, principal.Destination),
	}
}
