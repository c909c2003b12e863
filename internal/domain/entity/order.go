package entity

import "time"

// Estados de pago y entrega de un pedido.
const (
	PaymentStatusPaid     = "paid"
	PaymentStatusPending  = "pending"
	DeliveryStatusPending = "pending"
)

// Order pedido (solo lectura para el tablero).
type Order struct {
	ID             string
	OrderNumber    *string
	PaymentStatus  string
	DeliveryStatus string
	CreatedAt      time.Time
}
