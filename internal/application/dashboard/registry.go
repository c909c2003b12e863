package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/materiales-portal/internal/domain"
	"github.com/rs/zerolog"
)

// ErrViewNotFound la vista no existe, es de otra identidad o ya expiró. Cumple errors.Is con domain.ErrNotFound.
var ErrViewNotFound = fmt.Errorf("dashboard: vista: %w", domain.ErrNotFound)

// Registry vistas montadas en memoria, indexadas por id. Las vistas inactivas más de ttl se cierran.
type Registry struct {
	mu    sync.Mutex
	views map[string]*View
	ttl   time.Duration
	now   func() time.Time
	log   zerolog.Logger
}

// NewRegistry construye el registro. ttl <= 0 desactiva la expiración.
func NewRegistry(ttl time.Duration, log zerolog.Logger) *Registry {
	return &Registry{views: make(map[string]*View), ttl: ttl, now: time.Now, log: log}
}

// Put registra la vista.
func (r *Registry) Put(v *View) {
	r.mu.Lock()
	r.views[v.ID] = v
	r.mu.Unlock()
}

// Get devuelve la vista si existe y pertenece a la identidad; si no, ErrViewNotFound.
func (r *Registry) Get(id, identityID string) (*View, error) {
	r.mu.Lock()
	v, ok := r.views[id]
	r.mu.Unlock()
	if !ok || v.Identity.ID != identityID || v.Closed() {
		return nil, ErrViewNotFound
	}
	v.touch(r.now())
	return v, nil
}

// Remove cierra y elimina la vista de la identidad.
func (r *Registry) Remove(id, identityID string) error {
	r.mu.Lock()
	v, ok := r.views[id]
	if !ok || v.Identity.ID != identityID {
		r.mu.Unlock()
		return ErrViewNotFound
	}
	delete(r.views, id)
	r.mu.Unlock()

	v.Close()
	return nil
}

// Len vistas registradas.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

// Sweep cierra las vistas inactivas. Devuelve cuántas se cerraron.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var expired []*View
	for id, v := range r.views {
		if v.idleSince().Before(cutoff) || v.Closed() {
			expired = append(expired, v)
			delete(r.views, id)
		}
	}
	r.mu.Unlock()

	for _, v := range expired {
		v.Close()
	}
	if len(expired) > 0 {
		r.log.Debug().Int("count", len(expired)).Msg("vistas inactivas cerradas")
	}
	return len(expired)
}

// Run barre periódicamente hasta que ctx termine; al terminar cierra todas las vistas.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.CloseAll()
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// CloseAll cierra y elimina todas las vistas.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	views := r.views
	r.views = make(map[string]*View)
	r.mu.Unlock()

	for _, v := range views {
		v.Close()
	}
}
