package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardStatsDTO estadísticas del tablero. Nunca contiene errores: los fallos se degradan a cero.
type DashboardStatsDTO struct {
	TotalQuotes        int             `json:"total_quotes"`
	TotalOrders        int             `json:"total_orders"`
	PendingOrders      int             `json:"pending_orders"`
	PendingDeliveries  int             `json:"pending_deliveries"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
}

// QuoteDTO cotización reciente.
type QuoteDTO struct {
	ID          string    `json:"id"`
	QuoteNumber *string   `json:"quote_number"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// OrderDTO pedido reciente.
type OrderDTO struct {
	ID             string    `json:"id"`
	OrderNumber    *string   `json:"order_number"`
	PaymentStatus  string    `json:"payment_status"`
	DeliveryStatus string    `json:"delivery_status"`
	CreatedAt      time.Time `json:"created_at"`
}

// DashboardSnapshotDTO una carga completa (todas las consultas ya resueltas).
type DashboardSnapshotDTO struct {
	Stats        DashboardStatsDTO `json:"stats"`
	RecentQuotes []QuoteDTO        `json:"recent_quotes"`
	RecentOrders []OrderDTO        `json:"recent_orders"`
	Degraded     bool              `json:"degraded"` // alguna consulta falló y se usó el valor por defecto
	LoadedAt     time.Time         `json:"loaded_at"`
}

// ViewResponse estado completo de una vista del tablero.
type ViewResponse struct {
	ID           string                `json:"id"`
	Identity     IdentityResponse      `json:"identity"`
	Profile      ProfileStateResponse  `json:"profile"`
	Stats        *DashboardSnapshotDTO `json:"stats"` // nil mientras carga
	StatsLoading bool                  `json:"stats_loading"`
}

// NotificationDTO aviso para el usuario (success | error).
type NotificationDTO struct {
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	At          time.Time `json:"at"`
}
