package repository

import (
	"context"

	"github.com/jhoicas/materiales-portal/internal/domain/entity"
)

// RecordKind tipo de registro contable para listados y conteos.
type RecordKind string

const (
	KindQuote RecordKind = "quote"
	KindOrder RecordKind = "order"
)

// CountFilter filtro opcional de conteo. Vacío = sin filtro.
type CountFilter struct {
	PaymentStatus  string // solo pedidos
	DeliveryStatus string // solo pedidos
}

// RecordsRepository consultas de solo lectura que alimentan el tablero.
// Cada método es independiente: ninguno depende del resultado de otro.
type RecordsRepository interface {
	// ListRecentQuotes devuelve hasta limit cotizaciones ordenadas por created_at DESC.
	ListRecentQuotes(ctx context.Context, limit int) ([]entity.Quote, error)
	// ListRecentOrders devuelve hasta limit pedidos ordenados por created_at DESC.
	ListRecentOrders(ctx context.Context, limit int) ([]entity.Order, error)
	Count(ctx context.Context, kind RecordKind, filter CountFilter) (int, error)
	// OutstandingLines devuelve las facturas con saldo > 0 de los clientes cuyo dueño es identityID.
	OutstandingLines(ctx context.Context, identityID string) ([]entity.OutstandingInvoiceLine, error)
}
