package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/materiales-portal/internal/application/auth"
	"github.com/jhoicas/materiales-portal/internal/application/notify"
	"github.com/jhoicas/materiales-portal/internal/application/profile"
	"github.com/jhoicas/materiales-portal/internal/domain"
	"github.com/jhoicas/materiales-portal/internal/domain/entity"
	"github.com/jhoicas/materiales-portal/internal/domain/repository"
	"github.com/rs/zerolog"
)

// ErrViewClosed la vista ya fue desmontada.
var ErrViewClosed = errors.New("dashboard: vista cerrada")

// View instancia montada del tablero para una identidad. El controlador de perfil y la
// carga de estadísticas corren de forma independiente; al cerrar la vista los resultados
// en vuelo se descartan.
type View struct {
	ID       string
	Identity entity.Identity
	Profile  *profile.Controller

	agg    *StatsAggregator
	queue  *notify.Queue
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    zerolog.Logger

	mu       sync.Mutex
	stats    *Snapshot
	loading  bool
	gen      int
	closed   bool
	lastSeen time.Time
}

// guardedNotifier descarta avisos de una vista cerrada.
type guardedNotifier struct{ v *View }

func (g guardedNotifier) Notify(kind notify.Kind, title, description string) {
	if g.v.Closed() {
		return
	}
	g.v.queue.Notify(kind, title, description)
}

// Mounter verifica la sesión y monta vistas.
type Mounter struct {
	gate     *auth.SessionGate
	profiles repository.ProfileRepository
	agg      *StatsAggregator
	registry *Registry
	capacity int
	log      zerolog.Logger
}

// NewMounter construye el montador. capacity es la capacidad de la cola de avisos de cada vista.
func NewMounter(
	gate *auth.SessionGate,
	profiles repository.ProfileRepository,
	agg *StatsAggregator,
	registry *Registry,
	capacity int,
	log zerolog.Logger,
) *Mounter {
	return &Mounter{gate: gate, profiles: profiles, agg: agg, registry: registry, capacity: capacity, log: log}
}

// Mount resuelve la sesión; sin sesión devuelve domain.ErrUnauthenticated (quien llama redirige).
// Con sesión registra la vista y lanza en paralelo la verificación de perfil y la carga de estadísticas.
func (m *Mounter) Mount(ctx context.Context, provider auth.IdentityProvider) (*View, error) {
	session := m.gate.Resolve(ctx, provider)
	if !session.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}

	// La vista vive más que la petición HTTP que la monta.
	viewCtx, cancel := context.WithCancel(context.Background())
	v := &View{
		ID:       uuid.New().String(),
		Identity: *session.Identity,
		agg:      m.agg,
		ctx:      viewCtx,
		cancel:   cancel,
		lastSeen: time.Now(),
	}
	v.log = m.log.With().Str("view_id", v.ID).Str("identity_id", v.Identity.ID).Logger()
	v.queue = notify.NewQueue(m.capacity, v.log)
	v.Profile = profile.NewController(v.Identity, m.profiles, guardedNotifier{v}, v.log)

	m.registry.Put(v)

	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		_ = v.Profile.Check(v.ctx)
	}()
	v.RefreshStats()

	v.log.Info().Msg("vista del tablero montada")
	return v, nil
}

// RefreshStats lanza una nueva carga. El snapshot anterior se reemplaza completo al terminar;
// una carga más antigua nunca pisa a una más nueva.
func (v *View) RefreshStats() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.gen++
	gen := v.gen
	v.loading = true
	v.mu.Unlock()

	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		snap := v.agg.Load(v.ctx, v.Identity.ID, guardedNotifier{v})

		v.mu.Lock()
		defer v.mu.Unlock()
		if v.closed || gen != v.gen {
			return
		}
		v.stats = &snap
		v.loading = false
	}()
}

// Stats devuelve el último snapshot completo y si hay una carga en curso.
func (v *View) Stats() (*Snapshot, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stats, v.loading
}

// Notifications vacía la cola de avisos de la vista.
func (v *View) Notifications() []notify.Notification {
	return v.queue.Drain()
}

// Close desmonta la vista: cancela las operaciones en vuelo y bloquea escrituras tardías.
func (v *View) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.mu.Unlock()

	v.Profile.Close()
	v.cancel()
	v.log.Info().Msg("vista del tablero desmontada")
}

// Closed indica si la vista fue desmontada.
func (v *View) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

// Wait espera a que terminen las operaciones de fondo lanzadas hasta ahora.
func (v *View) Wait() {
	v.wg.Wait()
}

func (v *View) touch(now time.Time) {
	v.mu.Lock()
	v.lastSeen = now
	v.mu.Unlock()
}

func (v *View) idleSince() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastSeen
}

// Bind deriva de parent un contexto que además se cancela al desmontar la vista.
func (v *View) Bind(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(v.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
