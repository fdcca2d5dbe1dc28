package handlers

import (
	"errors"

	"github.com/pequemaths/pequemaths-api/internal/repository"
	"github.com/pequemaths/pequemaths-api/internal/service"
	apperrors "github.com/pequemaths/pequemaths-api/pkg/util"
)

// serviceError maps service failures onto client-facing error codes.
// Anything unrecognised is an internal error.
func serviceError(err error) error {
	switch {
	case errors.Is(err, service.ErrMissingToken):
		return apperrors.NewValidationError(apperrors.CodeMissingToken, "id token required")
	case errors.Is(err, service.ErrInvalidToken):
		return apperrors.NewUnauthorized(apperrors.CodeInvalidToken, "id token rejected")
	case errors.Is(err, service.ErrNotAuthenticated):
		return apperrors.NewUnauthorized(apperrors.CodeNotAuthenticated, "authentication required")
	case errors.Is(err, service.ErrForbidden):
		return apperrors.NewForbidden("not allowed to modify this user")
	default:
		return apperrors.NewInternalError(err)
	}
}

// lookupError is serviceError for read endpoints, where a missing record is 404.
func lookupError(err error, resource string) error {
	if errors.Is(err, repository.ErrProfileNotFound) || errors.Is(err, repository.ErrAccountNotFound) {
		return apperrors.NewNotFound(resource)
	}
	return serviceError(err)
}
