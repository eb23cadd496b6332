package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/restaurant-portal/internal/api/dto"
	"github.com/spec-kit/restaurant-portal/internal/auth"
	"github.com/spec-kit/restaurant-portal/internal/domain"
	"github.com/spec-kit/restaurant-portal/internal/service"
)

// SuperadminHandler exposes restaurant review and suspension endpoints.
type SuperadminHandler struct {
	admin *service.AdminService
}

// NewSuperadminHandler constructs handler.
func NewSuperadminHandler(adminService *service.AdminService) *SuperadminHandler {
	return &SuperadminHandler{admin: adminService}
}

// ListRestaurants handles GET /superadmin/restaurants.
func (h *SuperadminHandler) ListRestaurants(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	query, err := parseRestaurantListQuery(c)
	if err != nil {
		return err
	}

	list, err := h.admin.ListRestaurants(c.UserContext(), principal.Identity, service.RestaurantListFilters{
		VerificationStatus: query.VerificationStatus,
		AccountStatus:      query.AccountStatus,
		Limit:              query.PageSize,
		Offset:             (query.Page - 1) * query.PageSize,
	})
	if err != nil {
		return err
	}

	items := make([]dto.RestaurantResponse, 0, len(list))
	for i := range list {
		items = append(items, dto.NewRestaurantResponse(&list[i]))
	}
	return c.JSON(fiber.Map{
		"data": items,
		"meta": fiber.Map{"page": query.Page, "page_size": query.PageSize},
	})
}

// GetRestaurant handles GET /superadmin/restaurants/:id.
func (h *SuperadminHandler) GetRestaurant(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	account, err := h.admin.GetRestaurant(c.UserContext(), principal.Identity, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRestaurantResponse(account)})
}

// Approve handles POST /superadmin/restaurants/:id/approve.
func (h *SuperadminHandler) Approve(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	account, err := h.admin.ApproveVerification(c.UserContext(), principal.Identity, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRestaurantResponse(account)})
}

// Reject handles POST /superadmin/restaurants/:id/reject.
func (h *SuperadminHandler) Reject(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	req, err := parseReason(c)
	if err != nil {
		return err
	}
	account, err := h.admin.RejectVerification(c.UserContext(), principal.Identity, c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRestaurantResponse(account)})
}

// Suspend handles POST /superadmin/restaurants/:id/suspend.
func (h *SuperadminHandler) Suspend(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	req, err := parseReason(c)
	if err != nil {
		return err
	}
	account, err := h.admin.Suspend(c.UserContext(), principal.Identity, c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRestaurantResponse(account)})
}

// Reinstate handles POST /superadmin/restaurants/:id/reinstate.
func (h *SuperadminHandler) Reinstate(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	account, err := h.admin.Reinstate(c.UserContext(), principal.Identity, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRestaurantResponse(account)})
}

func requirePrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, fiber.NewError(http.StatusUnauthorized, "authentication required")
	}
	return principal, nil
}

// parseReason accepts an empty body.
func parseReason(c *fiber.Ctx) (dto.StatusReasonRequest, error) {
	var req dto.StatusReasonRequest
	if len(c.Body()) == 0 {
		return req, nil
	}
	if err := c.BodyParser(&req); err != nil {
		return req, fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	return req, nil
}

// maxListPage bounds page so that (page-1)*page_size cannot overflow.
const maxListPage = 10000

func parseRestaurantListQuery(c *fiber.Ctx) (dto.RestaurantListQuery, error) {
	query := dto.RestaurantListQuery{
		Page:     parseInt(c.Query("page"), 1),
		PageSize: parseInt(c.Query("page_size"), 20),
	}
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Page > maxListPage {
		query.Page = maxListPage
	}
	if query.PageSize < 1 || query.PageSize > 100 {
		query.PageSize = 20
	}
	if raw := c.Query("verification_status"); raw != "" {
		status := domain.ParseVerificationStatus(raw)
		if status == domain.VerificationUnknown {
			return query, fiber.NewError(http.StatusBadRequest, "invalid verification_status")
		}
		query.VerificationStatus = &status
	}
	if raw := c.Query("account_status"); raw != "" {
		status := domain.ParseAccountStatus(raw)
		if status == domain.AccountUnknown {
			return query, fiber.NewError(http.StatusBadRequest, "invalid account_status")
		}
		query.AccountStatus = &status
	}
	return query, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return parsed
}
