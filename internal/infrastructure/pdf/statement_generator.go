// Package pdf genera el estado de cuenta descargable del tablero con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Cliente + empresa     │  Fecha de corte            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: cotizaciones / pedidos / pendientes / saldo       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: cotizaciones recientes                              │
//	│  TABLA: pedidos recientes                                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: aviso de datos degradados + leyenda                │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/materiales-portal/internal/application/dashboard"
	"github.com/jhoicas/materiales-portal/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 40, Blue: 40}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// StatementGenerator implementa dashboard.StatementRenderer usando Maroto v2.
type StatementGenerator struct {
	printer *message.Printer
}

var _ dashboard.StatementRenderer = (*StatementGenerator)(nil)

// NewStatementGenerator construye el generador. Los montos se formatean en español.
func NewStatementGenerator() *StatementGenerator {
	return &StatementGenerator{printer: message.NewPrinter(language.Spanish)}
}

// RenderStatement genera el PDF y devuelve sus bytes.
func (g *StatementGenerator) RenderStatement(ctx context.Context, data dashboard.StatementData) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Estado de cuenta", true).
		WithAuthor("Materiales Portal", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(g.summaryRow(data.Snapshot.Stats))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionTitle("COTIZACIONES RECIENTES"))
	m.AddRows(tableHeader("N° cotización", "Estado", "Fecha"))
	for _, q := range data.Snapshot.RecentQuotes {
		m.AddRows(tableRow(numberOrID(q.QuoteNumber, q.ID), q.Status, q.CreatedAt.Format("02/01/2006")))
	}
	if len(data.Snapshot.RecentQuotes) == 0 {
		m.AddRows(emptyRow("Sin cotizaciones registradas"))
	}

	m.AddRows(sectionTitle("PEDIDOS RECIENTES"))
	m.AddRows(tableHeader("N° pedido", "Pago / Entrega", "Fecha"))
	for _, o := range data.Snapshot.RecentOrders {
		m.AddRows(tableRow(
			numberOrID(o.OrderNumber, o.ID),
			o.PaymentStatus+" / "+o.DeliveryStatus,
			o.CreatedAt.Format("02/01/2006"),
		))
	}
	if len(data.Snapshot.RecentOrders) == 0 {
		m.AddRows(emptyRow("Sin pedidos registrados"))
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range footerRows(data.Snapshot.Degraded) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar estado de cuenta: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: datos del cliente (izq) y fecha de corte (der).
func headerRow(data dashboard.StatementData) core.Row {
	name, company := data.Identity.Email, ""
	if data.Profile != nil {
		name = nonEmpty(data.Profile.Name, data.Identity.Email)
		company = data.Profile.Company
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(company, data.Identity.Email), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("ESTADO DE CUENTA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Corte: "+data.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

// summaryRow: contadores y saldo pendiente.
func (g *StatementGenerator) summaryRow(s entity.DashboardStats) core.Row {
	label := func(v string) core.Component {
		return text.New(v, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(v string) core.Component {
		return text.New(v, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(30).Add(
		col.New(3),
		col.New(4).Add(
			label("Cotizaciones:"),
			label("Pedidos:"),
			label("Pagos pendientes:"),
			label("Entregas pendientes:"),
			text.New("SALDO PENDIENTE:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2,
			}),
		),
		col.New(3).Add(
			value(g.printer.Sprintf("%d", s.TotalQuotes)),
			value(g.printer.Sprintf("%d", s.TotalOrders)),
			value(g.printer.Sprintf("%d", s.PendingOrders)),
			value(g.printer.Sprintf("%d", s.PendingDeliveries)),
			text.New(g.formatMoney(s.OutstandingBalance), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1,
			}),
		),
		col.New(2),
	)
}

func sectionTitle(title string) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 3}),
	))
}

func tableHeader(a, b, c string) core.Row {
	h := func(label string, size int, al align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: al, Top: 1, Left: 1, Right: 1,
		}))
	}
	return row.New(6).Add(h(a, 4, align.Left), h(b, 5, align.Left), h(c, 3, align.Right))
}

func tableRow(a, b, c string) core.Row {
	return row.New(6).Add(
		col.New(4).Add(text.New(a, props.Text{Size: 8, Top: 1, Left: 1})),
		col.New(5).Add(text.New(b, props.Text{Size: 8, Top: 1, Left: 1})),
		col.New(3).Add(text.New(c, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
	)
}

func emptyRow(msg string) core.Row {
	return row.New(6).Add(col.New(12).Add(
		text.New(msg, props.Text{Size: 8, Color: colorGray, Top: 1, Left: 1}),
	))
}

// footerRows: aviso si la carga fue parcial + leyenda.
func footerRows(degraded bool) []core.Row {
	var rows []core.Row
	if degraded {
		rows = append(rows, row.New(8).Add(col.New(12).Add(
			text.New("Algunos indicadores no pudieron cargarse y se muestran en cero.", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorAlert, Top: 2,
			}),
		)))
	}
	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New("Documento informativo generado desde el portal de clientes. No constituye factura.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2}),
	)))
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// numberOrID usa el número visible; sin número, los primeros 8 caracteres del id.
func numberOrID(number *string, id string) string {
	if number != nil && *number != "" {
		return *number
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatMoney formatea el monto con separadores en español, ej. 1234.5 -> "$1.234,50".
func (g *StatementGenerator) formatMoney(d decimal.Decimal) string {
	return "$" + g.printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}
