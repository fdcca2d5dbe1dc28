package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/pequemaths/pequemaths-api/internal/api/dto"
	"github.com/pequemaths/pequemaths-api/internal/auth"
	"github.com/pequemaths/pequemaths-api/internal/domain"
	apperrors "github.com/pequemaths/pequemaths-api/pkg/util"
)

// RoleAdministration is the role store surface used by admin endpoints.
type RoleAdministration interface {
	ListProfiles(ctx context.Context) ([]*domain.UserProfile, error)
	GetProfile(ctx context.Context, uid string) (*domain.UserProfile, error)
	UpdateRole(ctx context.Context, actorUID, uid string, role domain.Role) (*domain.UserProfile, error)
}

// AdminHandler exposes user administration for admins.
type AdminHandler struct {
	roles RoleAdministration
}

// NewAdminHandler constructs handler.
func NewAdminHandler(roles RoleAdministration) *AdminHandler {
	return &AdminHandler{roles: roles}
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	profiles, err := h.roles.ListProfiles(c.UserContext())
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(fiber.Map{
		"ok":    true,
		"users": dto.NewUserProfileList(profiles),
	})
}

// GetUser handles GET /api/admin/users/:uid.
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	profile, err := h.roles.GetProfile(c.UserContext(), c.Params("uid"))
	if err != nil {
		return lookupError(err, "user")
	}
	return c.JSON(fiber.Map{
		"ok":   true,
		"user": dto.NewUserProfileResponse(profile),
	})
}

// SetRole handles PUT /api/admin/users/:uid/role.
func (h *AdminHandler) SetRole(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(apperrors.CodeNotAuthenticated, "authentication required")
	}

	var req dto.RoleUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError(apperrors.CodeInvalidPayload, "invalid payload")
	}
	role, ok := domain.ParseRoleStrict(req.Role)
	if !ok {
		return apperrors.NewValidationError(apperrors.CodeInvalidRole, "role must be admin or usuario")
	}

	profile, err := h.roles.UpdateRole(c.UserContext(), actor.UID, c.Params("uid"), role)
	if err != nil {
		return lookupError(err, "user")
	}
	return c.JSON(fiber.Map{
		"ok":   true,
		"user": dto.NewUserProfileResponse(profile),
	})
}
