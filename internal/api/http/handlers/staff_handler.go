package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staff-roster/internal/api/dto"
	"github.com/spec-kit/staff-roster/internal/service"
	apperrors "github.com/spec-kit/staff-roster/pkg/util/errorutil"
)

// StaffHandler exposes the staff list endpoint.
type StaffHandler struct {
	staffService *service.StaffService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(staffService *service.StaffService) *StaffHandler {
	return &StaffHandler{staffService: staffService}
}

// List handles GET /api/staff. The body is a bare JSON array.
func (h *StaffHandler) List(c *fiber.Ctx) error {
	list, err := h.staffService.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// Replace handles PUT /api/staff.
func (h *StaffHandler) Replace(c *fiber.Ctx) error {
	var raw any
	if err := json.Unmarshal(c.Body(), &raw); err != nil {
		return apperrors.NewValidationError("invalid JSON payload", nil)
	}

	list, err := h.staffService.Replace(c.UserContext(), raw, c.IP())
	if err != nil {
		return err
	}
	return c.JSON(dto.StaffAckResponse{OK: true, Count: len(list)})
}
