package pdf_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/materiales-portal/internal/application/dashboard"
	"github.com/jhoicas/materiales-portal/internal/domain/entity"
	"github.com/jhoicas/materiales-portal/internal/infrastructure/pdf"
)

func strPtr(s string) *string { return &s }

func sampleData(degraded bool) dashboard.StatementData {
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	return dashboard.StatementData{
		Identity: entity.Identity{ID: "id-1", Email: "ana@obra.co"},
		Profile:  &entity.CustomerProfile{ID: "p-1", Name: "Ana", Email: "ana@obra.co", Phone: "300", Company: "Obras SAS"},
		Snapshot: dashboard.Snapshot{
			Stats: entity.DashboardStats{
				TotalQuotes: 3, TotalOrders: 2, PendingOrders: 1, PendingDeliveries: 1,
				OutstandingBalance: decimal.RequireFromString("1234.50"),
			},
			RecentQuotes: []entity.Quote{{ID: "q-1", QuoteNumber: strPtr("COT-001"), Status: "sent", CreatedAt: now}},
			RecentOrders: []entity.Order{{ID: "0123456789abcdef", PaymentStatus: "pending", DeliveryStatus: "pending", CreatedAt: now}},
			Degraded:     degraded,
			LoadedAt:     now,
		},
		GeneratedAt: now,
	}
}

func TestRenderStatement_GeneraPDF(t *testing.T) {
	g := pdf.NewStatementGenerator()

	out, err := g.RenderStatement(context.Background(), sampleData(false))
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, "%PDF", string(out[:4]), "el documento debe ser un PDF")
}

func TestRenderStatement_SinPerfilNiRegistros(t *testing.T) {
	g := pdf.NewStatementGenerator()
	data := dashboard.StatementData{
		Identity:    entity.Identity{ID: "id-2", Email: "b@x.co"},
		Snapshot:    dashboard.Snapshot{Degraded: true},
		GeneratedAt: time.Now(),
	}

	out, err := g.RenderStatement(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestRenderStatement_ContextoCancelado(t *testing.T) {
	g := pdf.NewStatementGenerator()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.RenderStatement(ctx, sampleData(false))
	assert.ErrorIs(t, err, context.Canceled)
}
