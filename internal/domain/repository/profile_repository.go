package repository

import (
	"context"

	"github.com/jhoicas/materiales-portal/internal/domain/entity"
)

// ProfileRepository puerto de persistencia para CustomerProfile.
//
// Clasificación de errores:
//   - domain.ErrNotFound: la identidad aún no tiene perfil (caso esperado, no es un fallo).
//   - domain.ErrPermissionDenied: la política de acceso de la base rechazó la escritura.
//   - domain.ErrTransient (envuelto): cualquier otro fallo de red o backend.
type ProfileRepository interface {
	FindByOwner(ctx context.Context, identityID string) (*entity.CustomerProfile, error)
	Create(ctx context.Context, identityID string, draft entity.ProfileDraft) (*entity.CustomerProfile, error)
	Update(ctx context.Context, identityID, profileID string, patch entity.ProfilePatch) (*entity.CustomerProfile, error)
}
