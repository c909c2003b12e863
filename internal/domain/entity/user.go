package entity

import "time"

// Estados válidos para User.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User credencial detrás de una Identity (el id del usuario es el id de la identidad).
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Active indica si el usuario puede mantener una sesión.
func (u *User) Active() bool {
	return u != nil && u.Status == UserStatusActive
}
