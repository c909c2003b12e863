package domain

import (
	"errors"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrPermissionDenied   = errors.New("permiso denegado por la política de acceso")
	ErrTransient          = errors.New("fallo temporal del backend")
	ErrUnauthenticated    = errors.New("sesión no válida o expirada")
	ErrSubmitInProgress   = errors.New("ya hay un envío en curso")
	ErrInvalidTransition  = errors.New("acción no permitida en el estado actual")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
)

// ValidationError error local de validación: se produce antes de cualquier llamada de red.
type ValidationError struct {
	Fields []string // campos requeridos vacíos, en orden del formulario
}

func (e *ValidationError) Error() string {
	return "campos requeridos vacíos: " + strings.Join(e.Fields, ", ")
}

// Is permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
