package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/materiales-portal/internal/domain/entity"
)

// ErrStatsLoading aún no hay un snapshot completo.
var ErrStatsLoading = errors.New("dashboard: estadísticas en carga")

// StatementData datos del estado de cuenta descargable.
type StatementData struct {
	Identity    entity.Identity
	Profile     *entity.CustomerProfile
	Snapshot    Snapshot
	GeneratedAt time.Time
}

// StatementRenderer genera el documento del estado de cuenta (PDF).
type StatementRenderer interface {
	RenderStatement(ctx context.Context, data StatementData) ([]byte, error)
}

// Statement genera el estado de cuenta con el último snapshot completo de la vista.
func (v *View) Statement(ctx context.Context, r StatementRenderer) ([]byte, error) {
	if v.Closed() {
		return nil, ErrViewClosed
	}
	snap, _ := v.Stats()
	if snap == nil {
		return nil, ErrStatsLoading
	}
	return r.RenderStatement(ctx, StatementData{
		Identity:    v.Identity,
		Profile:     v.Profile.Snapshot().Profile,
		Snapshot:    *snap,
		GeneratedAt: time.Now(),
	})
}
