package entity

import "github.com/shopspring/decimal"

// DashboardStats estadísticas derivadas (no persistidas); se recalculan en cada carga.
type DashboardStats struct {
	TotalQuotes        int
	TotalOrders        int
	PendingOrders      int
	PendingDeliveries  int
	OutstandingBalance decimal.Decimal
}
