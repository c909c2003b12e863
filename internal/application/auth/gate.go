package auth

import (
	"context"

	"github.com/jhoicas/materiales-portal/internal/domain/entity"
	"github.com/rs/zerolog"
)

// IdentityProvider fuente de la identidad actual (proveedor de autenticación).
type IdentityProvider interface {
	CurrentIdentity(ctx context.Context) (*entity.Identity, error)
}

// Session resultado del gate: autenticada (con identidad) o no.
type Session struct {
	Identity *entity.Identity
}

// Authenticated indica si hay identidad.
func (s Session) Authenticated() bool {
	return s.Identity != nil
}

// SessionGate verifica la sesión al montar el tablero.
// Falla cerrado y sin reintentos: cualquier error del proveedor es "no autenticado" y
// quien llama redirige a la pantalla de ingreso.
type SessionGate struct {
	log zerolog.Logger
}

// NewSessionGate construye el gate.
func NewSessionGate(log zerolog.Logger) *SessionGate {
	return &SessionGate{log: log}
}

// Resolve consulta al proveedor una sola vez.
func (g *SessionGate) Resolve(ctx context.Context, p IdentityProvider) Session {
	if p == nil {
		return Session{}
	}
	identity, err := p.CurrentIdentity(ctx)
	if err != nil {
		g.log.Debug().Err(err).Msg("sesión no válida")
		return Session{}
	}
	if identity == nil || identity.ID == "" {
		return Session{}
	}
	return Session{Identity: identity}
}
