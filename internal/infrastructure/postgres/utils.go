package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/materiales-portal/internal/domain"
)

// Querier subconjunto común de *pgxpool.Pool y pgx.Tx usado por los repositorios.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Códigos SQLSTATE relevantes.
const (
	codeUniqueViolation       = "23505"
	codeInsufficientPrivilege = "42501"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

// isPermissionDenied detecta rechazos de la política de acceso: privilegios (42501) o RLS.
func isPermissionDenied(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeInsufficientPrivilege
	}
	msg := err.Error()
	return strings.Contains(msg, "row-level security") || strings.Contains(msg, "permission denied")
}

// classify traduce errores de pgx a la taxonomía de dominio.
// Todo lo que no sea no-encontrado, duplicado o permiso denegado se considera transitorio.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case isPermissionDenied(err):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrPermissionDenied, err)
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrDuplicate, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrTransient, err)
	}
}
