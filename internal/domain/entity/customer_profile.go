package entity

import (
	"strings"
	"time"
)

// CustomerProfile ficha comercial del cliente asociada a una identidad (máximo una por identidad).
type CustomerProfile struct {
	ID              string
	OwnerIdentityID string
	Name            string
	Email           string
	Phone           string
	Company         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ProfileField campo editable del formulario de perfil.
type ProfileField string

const (
	FieldName    ProfileField = "name"
	FieldEmail   ProfileField = "email"
	FieldPhone   ProfileField = "phone"
	FieldCompany ProfileField = "company"
)

// Valid indica si el campo es uno de los editables.
func (f ProfileField) Valid() bool {
	switch f {
	case FieldName, FieldEmail, FieldPhone, FieldCompany:
		return true
	}
	return false
}

// ProfileDraft valor del formulario (alta o edición).
type ProfileDraft struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Company string `json:"company"`
}

// DraftFromProfile carga el perfil en un borrador editable.
func DraftFromProfile(p *CustomerProfile) ProfileDraft {
	if p == nil {
		return ProfileDraft{}
	}
	return ProfileDraft{Name: p.Name, Email: p.Email, Phone: p.Phone, Company: p.Company}
}

// With devuelve una copia del borrador con el campo modificado.
func (d ProfileDraft) With(field ProfileField, value string) ProfileDraft {
	switch field {
	case FieldName:
		d.Name = value
	case FieldEmail:
		d.Email = value
	case FieldPhone:
		d.Phone = value
	case FieldCompany:
		d.Company = value
	}
	return d
}

// Trimmed devuelve el borrador sin espacios alrededor.
func (d ProfileDraft) Trimmed() ProfileDraft {
	return ProfileDraft{
		Name:    strings.TrimSpace(d.Name),
		Email:   strings.TrimSpace(d.Email),
		Phone:   strings.TrimSpace(d.Phone),
		Company: strings.TrimSpace(d.Company),
	}
}

// ProfilePatch cambios parciales; los campos nil se conservan en la actualización.
type ProfilePatch struct {
	Name    *string
	Email   *string
	Phone   *string
	Company *string
}

// Empty indica que no hay cambios.
func (p ProfilePatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil && p.Company == nil
}

// Diff construye el patch con los campos del borrador que difieren del perfil.
func Diff(p *CustomerProfile, d ProfileDraft) ProfilePatch {
	cur := DraftFromProfile(p)
	pick := func(old, nw string) *string {
		if old == nw {
			return nil
		}
		v := nw
		return &v
	}
	return ProfilePatch{
		Name:    pick(cur.Name, d.Name),
		Email:   pick(cur.Email, d.Email),
		Phone:   pick(cur.Phone, d.Phone),
		Company: pick(cur.Company, d.Company),
	}
}

// Apply devuelve una copia del perfil con el patch aplicado.
func (p CustomerProfile) Apply(patch ProfilePatch) CustomerProfile {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.Phone != nil {
		p.Phone = *patch.Phone
	}
	if patch.Company != nil {
		p.Company = *patch.Company
	}
	return p
}
