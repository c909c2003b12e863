// Package dashboard arma el tablero de operaciones: la vista montada tras la verificación
// de sesión, el controlador de perfil y la agregación concurrente de estadísticas.
package dashboard

import (
	"context"
	"time"

	"github.com/jhoicas/materiales-portal/internal/application/notify"
	"github.com/jhoicas/materiales-portal/internal/domain/entity"
	"github.com/jhoicas/materiales-portal/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DefaultRecentLimit cotizaciones/pedidos recientes retenidos por carga.
const DefaultRecentLimit = 5

// Snapshot resultado de una carga completa. Se publica solo cuando todas las consultas terminaron.
type Snapshot struct {
	Stats        entity.DashboardStats
	RecentQuotes []entity.Quote
	RecentOrders []entity.Order
	Degraded     bool     // alguna consulta falló y su campo quedó en cero
	Failed       []string // consultas fallidas (solo para logs y diagnóstico)
	LoadedAt     time.Time
}

// StatsAggregator lanza las consultas independientes del tablero en paralelo y las reduce
// a un único Snapshot. Nunca falla: cada consulta fallida degrada su campo al valor cero.
type StatsAggregator struct {
	records     repository.RecordsRepository
	recentLimit int
	log         zerolog.Logger
	now         func() time.Time
}

// NewStatsAggregator construye el agregador.
func NewStatsAggregator(records repository.RecordsRepository, recentLimit int, log zerolog.Logger) *StatsAggregator {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &StatsAggregator{records: records, recentLimit: recentLimit, log: log, now: time.Now}
}

// Load ejecuta las siete consultas (fan-out) y espera a que todas terminen (fan-in).
//
//  1. cotizaciones recientes      5. pedidos con pago pendiente
//  2. pedidos recientes           6. pedidos con entrega pendiente
//  3. total de cotizaciones       7. líneas de saldo pendiente de la identidad
//  4. total de pedidos
//
// Si alguna falla se emite un único aviso de error genérico.
func (a *StatsAggregator) Load(ctx context.Context, identityID string, n notify.Notifier) Snapshot {
	var (
		quotes                                      []entity.Quote
		orders                                      []entity.Order
		totalQuotes, totalOrders                    int
		pendingOrders, pendingDeliveries            int
		lines                                       []entity.OutstandingInvoiceLine
		errQuotes, errOrders, errTotalQ             error
		errTotalO, errPendingO, errPendingD, errBal error
	)

	// Las goroutines devuelven siempre nil: un fallo no debe cancelar a las demás.
	var g errgroup.Group
	g.Go(func() error {
		quotes, errQuotes = a.records.ListRecentQuotes(ctx, a.recentLimit)
		return nil
	})
	g.Go(func() error {
		orders, errOrders = a.records.ListRecentOrders(ctx, a.recentLimit)
		return nil
	})
	g.Go(func() error {
		totalQuotes, errTotalQ = a.records.Count(ctx, repository.KindQuote, repository.CountFilter{})
		return nil
	})
	g.Go(func() error {
		totalOrders, errTotalO = a.records.Count(ctx, repository.KindOrder, repository.CountFilter{})
		return nil
	})
	g.Go(func() error {
		pendingOrders, errPendingO = a.records.Count(ctx, repository.KindOrder,
			repository.CountFilter{PaymentStatus: entity.PaymentStatusPending})
		return nil
	})
	g.Go(func() error {
		pendingDeliveries, errPendingD = a.records.Count(ctx, repository.KindOrder,
			repository.CountFilter{DeliveryStatus: entity.DeliveryStatusPending})
		return nil
	})
	g.Go(func() error {
		lines, errBal = a.records.OutstandingLines(ctx, identityID)
		return nil
	})
	_ = g.Wait()

	snap := Snapshot{LoadedAt: a.now()}
	check := func(name string, err error) bool {
		if err == nil {
			return true
		}
		a.log.Warn().Err(err).Str("query", name).Str("identity_id", identityID).Msg("consulta del tablero fallida")
		snap.Failed = append(snap.Failed, name)
		return false
	}

	if check("recent_quotes", errQuotes) {
		snap.RecentQuotes = retain(quotes, a.recentLimit)
	}
	if check("recent_orders", errOrders) {
		snap.RecentOrders = retain(orders, a.recentLimit)
	}
	if check("total_quotes", errTotalQ) {
		snap.Stats.TotalQuotes = totalQuotes
	}
	if check("total_orders", errTotalO) {
		snap.Stats.TotalOrders = totalOrders
	}
	if check("pending_orders", errPendingO) {
		snap.Stats.PendingOrders = pendingOrders
	}
	if check("pending_deliveries", errPendingD) {
		snap.Stats.PendingDeliveries = pendingDeliveries
	}
	snap.Stats.OutstandingBalance = decimal.Zero
	if check("outstanding_balance", errBal) {
		snap.Stats.OutstandingBalance = SumOutstanding(lines)
	}
	if snap.RecentQuotes == nil {
		snap.RecentQuotes = []entity.Quote{}
	}
	if snap.RecentOrders == nil {
		snap.RecentOrders = []entity.Order{}
	}

	if len(snap.Failed) > 0 {
		snap.Degraded = true
		if n != nil {
			n.Notify(notify.KindError, "Error al cargar el tablero",
				"No se pudieron cargar algunos datos. Por favor actualiza la página.")
		}
	}
	return snap
}

// SumOutstanding suma los saldos pendientes partiendo de cero. Montos nulos, no numéricos
// o no positivos aportan cero.
func SumOutstanding(lines []entity.OutstandingInvoiceLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		if l.OutstandingAmount == nil {
			continue
		}
		amount, err := decimal.NewFromString(*l.OutstandingAmount)
		if err != nil || !amount.IsPositive() {
			continue
		}
		total = total.Add(amount)
	}
	return total.Round(2)
}

// retain conserva como máximo n elementos.
func retain[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
