package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/pequemaths/pequemaths-api/internal/api/dto"
	"github.com/pequemaths/pequemaths-api/internal/auth"
	"github.com/pequemaths/pequemaths-api/internal/domain"
	"github.com/pequemaths/pequemaths-api/internal/service"
	apperrors "github.com/pequemaths/pequemaths-api/pkg/util"
)

// ProfileEditor applies profile edits and reads the caller's account.
type ProfileEditor interface {
	UpdateProfile(ctx context.Context, caller *domain.SessionUser, in service.ProfileUpdateInput) (*service.ProfileUpdateResult, error)
	CurrentAccount(ctx context.Context, uid string) (*domain.Account, domain.Role, error)
}

// ProfileHandler exposes profile endpoints.
type ProfileHandler struct {
	profiles ProfileEditor
}

// NewProfileHandler constructs handler.
func NewProfileHandler(profiles ProfileEditor) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Update handles POST /api/profile.
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(apperrors.CodeNotAuthenticated, "authentication required")
	}

	var req dto.ProfileUpdateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError(apperrors.CodeInvalidPayload, "invalid payload")
		}
	}

	in := service.NewProfileUpdateInput(req.Name, req.Picture, req.UID)
	if _, err := h.profiles.UpdateProfile(c.UserContext(), user, in); err != nil {
		return serviceError(err)
	}
	return c.JSON(dto.Acknowledge())
}

// Me handles GET /api/me.
func (h *ProfileHandler) Me(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(apperrors.CodeNotAuthenticated, "authentication required")
	}

	account, role, err := h.profiles.CurrentAccount(c.UserContext(), user.UID)
	if err != nil {
		return lookupError(err, "account")
	}
	return c.JSON(fiber.Map{
		"ok":   true,
		"user": dto.NewAccountResponse(account, role),
	})
}
