package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/materiales-portal/internal/application/dashboard"
	"github.com/jhoicas/materiales-portal/internal/application/dto"
	"github.com/jhoicas/materiales-portal/internal/application/profile"
	"github.com/jhoicas/materiales-portal/internal/domain"
)

// writeError traduce los errores de dominio a respuestas HTTP.
func writeError(c *fiber.Ctx, err error, signInPath string) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: verr.Error(), Fields: verr.Fields})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthenticated):
		return unauthenticated(c, signInPath)
	case errors.Is(err, dashboard.ErrViewNotFound),
		errors.Is(err, dashboard.ErrViewClosed),
		errors.Is(err, profile.ErrClosed):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "vista no encontrada"})
	case errors.Is(err, domain.ErrNotFound):
		// La vista sigue montada; el perfil ya no existe o la política de acceso lo oculta.
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "PROFILE_NOT_FOUND", Message: "perfil no encontrado"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "el perfil ya existe"})
	case errors.Is(err, domain.ErrSubmitInProgress):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SUBMIT_IN_PROGRESS", Message: "ya hay un envío en curso"})
	case errors.Is(err, domain.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: "operación no permitida en el estado actual"})
	case errors.Is(err, dashboard.ErrStatsLoading):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "STATS_LOADING", Message: "las estadísticas aún están cargando"})
	case errors.Is(err, domain.ErrPermissionDenied):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "PERMISSION_DENIED", Message: err.Error()})
	case errors.Is(err, domain.ErrTransient):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "UNAVAILABLE", Message: err.Error()})
	}
	return internalError(c, err)
}

func internalError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
