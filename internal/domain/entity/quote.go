package entity

import "time"

// Estados de cotización.
const (
	QuoteStatusDraft    = "draft"
	QuoteStatusPending  = "pending"
	QuoteStatusApproved = "approved"
)

// Quote cotización (solo lectura para el tablero).
type Quote struct {
	ID          string
	QuoteNumber *string
	Status      string // draft, pending, approved u otro
	CreatedAt   time.Time
}
