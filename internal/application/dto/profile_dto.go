package dto

import "time"

// ProfileResponse perfil de cliente en respuestas.
type ProfileResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Company   string    `json:"company,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileDraftDTO valor actual del formulario.
type ProfileDraftDTO struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
}

// ProfileStateResponse estado del controlador de perfil para la vista.
// FormMode: "onboarding" | "edit" | "" (sin formulario visible).
type ProfileStateResponse struct {
	State    string           `json:"state"`
	FormOpen bool             `json:"form_open"`
	FormMode string           `json:"form_mode,omitempty"`
	Draft    *ProfileDraftDTO `json:"draft,omitempty"`
	Profile  *ProfileResponse `json:"profile,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// UpdateDraftRequest cambios de campos del borrador. Solo se aplican los presentes.
type UpdateDraftRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Company *string `json:"company"`
}
