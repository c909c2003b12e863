package entity

import "time"

// Identity sujeto autenticado de la sesión. Inmutable durante la vida de la sesión.
type Identity struct {
	ID    string
	Email string

	SessionID string    // jti del token; clave de revocación
	IssuedAt  time.Time // emisión del token
	ExpiresAt time.Time
}
