package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/materiales-portal/internal/domain/entity"
	"github.com/jhoicas/materiales-portal/internal/domain/repository"
)

var _ repository.RecordsRepository = (*RecordsRepo)(nil)

// RecordsRepo consultas de solo lectura de cotizaciones, pedidos y saldos para el tablero.
type RecordsRepo struct {
	pool *pgxpool.Pool
	tx   *TxRunner
}

// NewRecordsRepository construye el adaptador de lectura.
func NewRecordsRepository(pool *pgxpool.Pool, tx *TxRunner) *RecordsRepo {
	return &RecordsRepo{pool: pool, tx: tx}
}

// ListRecentQuotes devuelve las últimas `limit` cotizaciones (created_at DESC).
func (r *RecordsRepo) ListRecentQuotes(ctx context.Context, limit int) ([]entity.Quote, error) {
	const query = `
	SELECT id, quote_number, status, created_at
	FROM quotes
	ORDER BY created_at DESC
	LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, classify("records.ListRecentQuotes", err)
	}
	defer rows.Close()

	out := make([]entity.Quote, 0, limit)
	for rows.Next() {
		var q entity.Quote
		if err := rows.Scan(&q.ID, &q.QuoteNumber, &q.Status, &q.CreatedAt); err != nil {
			return nil, classify("records.ListRecentQuotes scan", err)
		}
		out = append(out, q)
	}
	return out, classify("records.ListRecentQuotes rows", rows.Err())
}

// ListRecentOrders devuelve los últimos `limit` pedidos (created_at DESC).
func (r *RecordsRepo) ListRecentOrders(ctx context.Context, limit int) ([]entity.Order, error) {
	const query = `
	SELECT id, order_number, payment_status, delivery_status, created_at
	FROM orders
	ORDER BY created_at DESC
	LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, classify("records.ListRecentOrders", err)
	}
	defer rows.Close()

	out := make([]entity.Order, 0, limit)
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.PaymentStatus, &o.DeliveryStatus, &o.CreatedAt); err != nil {
			return nil, classify("records.ListRecentOrders scan", err)
		}
		out = append(out, o)
	}
	return out, classify("records.ListRecentOrders rows", rows.Err())
}

// Count cuenta cotizaciones o pedidos, opcionalmente filtrando pedidos por estado de pago/entrega.
func (r *RecordsRepo) Count(ctx context.Context, kind repository.RecordKind, filter repository.CountFilter) (int, error) {
	query, args, err := countQuery(kind, filter)
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, classify("records.Count "+string(kind), err)
	}
	return n, nil
}

// countQuery arma el SELECT COUNT para el tipo; los nombres de tabla vienen de una lista cerrada.
func countQuery(kind repository.RecordKind, filter repository.CountFilter) (string, []any, error) {
	switch kind {
	case repository.KindQuote:
		return `SELECT COUNT(*) FROM quotes`, nil, nil
	case repository.KindOrder:
		query := `SELECT COUNT(*) FROM orders WHERE TRUE`
		var args []any
		if filter.PaymentStatus != "" {
			args = append(args, filter.PaymentStatus)
			query += fmt.Sprintf(" AND payment_status = $%d", len(args))
		}
		if filter.DeliveryStatus != "" {
			args = append(args, filter.DeliveryStatus)
			query += fmt.Sprintf(" AND delivery_status = $%d", len(args))
		}
		return query, args, nil
	default:
		return "", nil, fmt.Errorf("records.Count: tipo desconocido %q", kind)
	}
}

// OutstandingLines une facturas con el perfil dueño y filtra saldo > 0 para la identidad.
// El monto se devuelve como texto; la suma la hace el agregador.
func (r *RecordsRepo) OutstandingLines(ctx context.Context, identityID string) ([]entity.OutstandingInvoiceLine, error) {
	const query = `
	SELECT i.id, p.owner_identity_id, i.outstanding_amount::TEXT
	FROM invoices i
	JOIN customer_profiles p ON p.id = i.customer_id
	WHERE i.outstanding_amount > 0
	  AND p.owner_identity_id = $1`

	var out []entity.OutstandingInvoiceLine
	err := r.tx.RunAs(ctx, identityID, func(q Querier) error {
		rows, err := q.Query(ctx, query, identityID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var l entity.OutstandingInvoiceLine
			if err := rows.Scan(&l.InvoiceID, &l.OwnerIdentityID, &l.OutstandingAmount); err != nil {
				return err
			}
			out = append(out, l)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, classify("records.OutstandingLines", err)
	}
	return out, nil
}
