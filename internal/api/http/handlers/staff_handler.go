package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/restaurant-portal/internal/api/dto"
	"github.com/spec-kit/restaurant-portal/internal/service"
)

// StaffHandler lets restaurant owners manage their staff logins.
type StaffHandler struct {
	staff *service.StaffService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(staffService *service.StaffService) *StaffHandler {
	return &StaffHandler{staff: staffService}
}

// CreateStaff handles POST /restaurant/staff.
func (h *StaffHandler) CreateStaff(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	member, err := h.staff.CreateStaffMember(c.UserContext(), principal.Identity, req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(member)})
}

// ListStaff handles GET /restaurant/staff.
func (h *StaffHandler) ListStaff(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	members, err := h.staff.ListStaffMembers(c.UserContext(), principal.Identity)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(members))
	for i := range members {
		items = append(items, dto.NewUserResponse(&members[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
