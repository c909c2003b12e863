// Package profile contiene el controlador del ciclo de vida del perfil de cliente:
// decide entre formulario de alta, formulario de edición o ninguno, y ejecuta el alta
// o la edición con su política de reintento.
package profile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jhoicas/materiales-portal/internal/application/notify"
	"github.com/jhoicas/materiales-portal/internal/domain"
	"github.com/jhoicas/materiales-portal/internal/domain/entity"
	"github.com/jhoicas/materiales-portal/internal/domain/repository"
	"github.com/rs/zerolog"
)

// State etiqueta única del estado del controlador.
type State string

const (
	StateChecking        State = "checking"
	StateNeedsOnboarding State = "needs_onboarding"
	StateHasProfile      State = "has_profile"
	StateEditing         State = "editing"
	StateSubmitting      State = "submitting"
	StateError           State = "error" // la verificación inicial falló; no se muestra formulario
)

// FormMode formulario visible.
type FormMode string

const (
	FormNone       FormMode = ""
	FormOnboarding FormMode = "onboarding"
	FormEdit       FormMode = "edit"
)

// ErrClosed la vista que aloja el controlador ya fue desmontada.
var ErrClosed = errors.New("profile: controlador cerrado")

// SessionChecker revalida la sesión antes del reintento del alta.
type SessionChecker interface {
	CurrentIdentity(ctx context.Context) (*entity.Identity, error)
}

// Snapshot copia inmutable del estado para la vista.
type Snapshot struct {
	State   State
	Form    FormMode
	Draft   entity.ProfileDraft
	Profile *entity.CustomerProfile
	Err     error
}

// FormOpen indica si hay formulario visible (también durante el envío).
func (s Snapshot) FormOpen() bool {
	return s.Form != FormNone
}

// Controller máquina de estados del perfil. Es dueño exclusivo del borrador.
// Solo admite un alta/edición en vuelo: Submit durante StateSubmitting no hace nada.
type Controller struct {
	identity entity.Identity
	repo     repository.ProfileRepository
	notifier notify.Notifier
	retry    RetryPolicy
	log      zerolog.Logger

	mu      sync.Mutex
	state   State
	form    FormMode
	draft   entity.ProfileDraft
	profile *entity.CustomerProfile
	err     error
	closed  bool
	lookup  int // búsqueda vigente; un resultado de otra búsqueda se descarta
}

// NewController construye el controlador en StateChecking.
func NewController(
	identity entity.Identity,
	repo repository.ProfileRepository,
	notifier notify.Notifier,
	log zerolog.Logger,
) *Controller {
	return &Controller{
		identity: identity,
		repo:     repo,
		notifier: notifier,
		retry:    PermissionRetry(),
		log:      log.With().Str("identity_id", identity.ID).Logger(),
		state:    StateChecking,
	}
}

// Snapshot devuelve el estado actual.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{State: c.state, Form: c.form, Draft: c.draft, Err: c.err}
	if c.profile != nil {
		p := *c.profile
		s.Profile = &p
	}
	return s
}

// Close desmonta el controlador: los resultados que lleguen después se descartan.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// Check busca el perfil de la identidad. Encontrado -> HasProfile; no encontrado ->
// NeedsOnboarding con el email de la identidad; fallo -> StateError sin formulario
// ni aviso (el resto del tablero sigue funcionando).
func (c *Controller) Check(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state != StateChecking && c.state != StateError {
		c.mu.Unlock()
		return domain.ErrInvalidTransition
	}
	c.state = StateChecking
	c.err = nil
	lookup := c.beginLookup()
	c.mu.Unlock()

	p, err := c.repo.FindByOwner(ctx, c.identity.ID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.stale(lookup) {
		// Otra búsqueda (BeginEdit) ya decidió el estado.
		return nil
	}
	switch {
	case err == nil:
		c.toHasProfile(p)
	case errors.Is(err, domain.ErrNotFound):
		c.toOnboarding()
	default:
		c.log.Error().Err(err).Msg("verificación de perfil fallida")
		c.state = StateError
		c.form = FormNone
		c.err = err
	}
	return nil
}

// SetField modifica un campo del borrador. Mutación local, sin efecto de red.
func (c *Controller) SetField(field entity.ProfileField, value string) error {
	if !field.Valid() {
		return fmt.Errorf("%w: campo %q", domain.ErrInvalidInput, field)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	switch c.state {
	case StateNeedsOnboarding, StateEditing:
		c.draft = c.draft.With(field, value)
		return nil
	case StateSubmitting:
		return domain.ErrSubmitInProgress
	default:
		return domain.ErrInvalidTransition
	}
}

// BeginEdit abre el formulario de edición con el perfil en caché. Sin perfil en caché
// lo busca bajo demanda y, si no existe, pasa a NeedsOnboarding.
func (c *Controller) BeginEdit(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	switch c.state {
	case StateSubmitting:
		c.mu.Unlock()
		return domain.ErrSubmitInProgress
	case StateEditing, StateNeedsOnboarding:
		c.mu.Unlock()
		return nil
	}
	if c.profile != nil {
		c.toEditing()
		c.mu.Unlock()
		return nil
	}
	c.state = StateChecking
	lookup := c.beginLookup()
	c.mu.Unlock()

	p, err := c.repo.FindByOwner(ctx, c.identity.ID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.stale(lookup) {
		return nil
	}
	switch {
	case err == nil:
		c.profile = p
		c.toEditing()
		return nil
	case errors.Is(err, domain.ErrNotFound):
		c.toOnboarding()
		return nil
	default:
		c.log.Error().Err(err).Msg("búsqueda de perfil para edición fallida")
		c.state = StateError
		c.form = FormNone
		c.err = err
		return err
	}
}

// CancelEdit cierra el formulario de edición y descarta el borrador.
func (c *Controller) CancelEdit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.state != StateEditing {
		return domain.ErrInvalidTransition
	}
	c.toHasProfile(c.profile)
	return nil
}

// Submit envía el borrador: alta desde NeedsOnboarding, edición desde Editing.
// Valida localmente antes de cualquier llamada; emite exactamente un aviso por envío.
// session es la sesión de quien envía; el reintento del alta la revalida.
func (c *Controller) Submit(ctx context.Context, session SessionChecker) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	var form FormMode
	switch c.state {
	case StateSubmitting:
		c.mu.Unlock()
		return domain.ErrSubmitInProgress
	case StateNeedsOnboarding:
		form = FormOnboarding
	case StateEditing:
		form = FormEdit
	default:
		c.mu.Unlock()
		return domain.ErrInvalidTransition
	}

	draft := c.draft.Trimmed()
	if verr := ValidateDraft(draft); verr != nil {
		c.err = verr
		c.mu.Unlock()
		c.notifier.Notify(notify.KindError, "Datos incompletos", "Completa nombre, email y teléfono para continuar.")
		return verr
	}
	cached := c.profile
	c.state = StateSubmitting
	c.err = nil
	c.mu.Unlock()

	if form == FormOnboarding {
		return c.finishCreate(c.create(ctx, draft, session))
	}
	return c.finishUpdate(c.update(ctx, cached, draft))
}

func (c *Controller) create(ctx context.Context, draft entity.ProfileDraft, session SessionChecker) (*entity.CustomerProfile, error) {
	var created *entity.CustomerProfile
	attempts := 0
	revalidate := func(ctx context.Context) error {
		return c.revalidateSession(ctx, session)
	}
	err := c.retry.Do(ctx, revalidate, func(ctx context.Context) error {
		attempts++
		p, err := c.repo.Create(ctx, c.identity.ID, draft)
		if err != nil {
			c.log.Warn().Err(err).Int("attempt", attempts).Msg("alta de perfil fallida")
			return err
		}
		created = p
		return nil
	})
	if err != nil && errors.Is(err, domain.ErrPermissionDenied) && attempts > 1 {
		err = fmt.Errorf("no se pudo crear el perfil: la base de datos rechazó la escritura por permisos "+
			"incluso tras verificar la sesión; revise la configuración de control de acceso de customer_profiles: %w", err)
	}
	if errors.Is(err, domain.ErrDuplicate) {
		// Otra vista de la misma identidad ganó el alta: se adopta el perfil existente.
		p, ferr := c.repo.FindByOwner(ctx, c.identity.ID)
		if ferr != nil {
			c.log.Warn().Err(ferr).Msg("búsqueda de perfil tras alta duplicada fallida")
			return nil, err
		}
		return p, err
	}
	return created, err
}

func (c *Controller) update(ctx context.Context, cached *entity.CustomerProfile, draft entity.ProfileDraft) (*entity.CustomerProfile, error) {
	if cached == nil {
		return nil, fmt.Errorf("editar perfil: %w", domain.ErrNotFound)
	}
	p, err := c.repo.Update(ctx, c.identity.ID, cached.ID, entity.Diff(cached, draft))
	if err != nil {
		c.log.Warn().Err(err).Str("profile_id", cached.ID).Msg("edición de perfil fallida")
	}
	return p, err
}

// revalidateSession confirma que la sesión sigue activa y es de la misma identidad.
func (c *Controller) revalidateSession(ctx context.Context, session SessionChecker) error {
	if session == nil {
		return fmt.Errorf("revalidar sesión: %w", domain.ErrUnauthenticated)
	}
	identity, err := session.CurrentIdentity(ctx)
	if err != nil || identity == nil || identity.ID != c.identity.ID {
		return fmt.Errorf("revalidar sesión: %w", domain.ErrUnauthenticated)
	}
	return nil
}

func (c *Controller) finishCreate(p *entity.CustomerProfile, err error) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if err == nil {
		c.toHasProfile(p)
		c.mu.Unlock()
		c.notifier.Notify(notify.KindSuccess, "Perfil creado", "Tu perfil de cliente quedó registrado.")
		return nil
	}
	if errors.Is(err, domain.ErrDuplicate) && p != nil {
		c.toHasProfile(p)
		c.mu.Unlock()
		c.notifier.Notify(notify.KindSuccess, "Perfil ya registrado", "Tu perfil de cliente ya existía; se cargaron sus datos.")
		return nil
	}
	c.state = StateNeedsOnboarding
	c.form = FormOnboarding
	c.err = err
	c.mu.Unlock()

	title := "No se pudo crear el perfil"
	if errors.Is(err, domain.ErrUnauthenticated) {
		title = "Sesión expirada"
	}
	c.notifier.Notify(notify.KindError, title, err.Error())
	return err
}

func (c *Controller) finishUpdate(p *entity.CustomerProfile, err error) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if err == nil {
		c.toHasProfile(p)
		c.mu.Unlock()
		c.notifier.Notify(notify.KindSuccess, "Perfil actualizado", "Los cambios se guardaron correctamente.")
		return nil
	}
	// El borrador no se toca: el usuario conserva sus cambios.
	c.state = StateEditing
	c.form = FormEdit
	c.err = err
	c.mu.Unlock()

	c.notifier.Notify(notify.KindError, "No se pudo actualizar el perfil", err.Error())
	return err
}

// Transiciones; requieren c.mu tomado.

func (c *Controller) beginLookup() int {
	c.lookup++
	return c.lookup
}

// stale indica que el resultado de la búsqueda lookup ya no aplica.
func (c *Controller) stale(lookup int) bool {
	return lookup != c.lookup || c.state != StateChecking
}

func (c *Controller) toHasProfile(p *entity.CustomerProfile) {
	c.state = StateHasProfile
	c.form = FormNone
	c.profile = p
	c.draft = entity.DraftFromProfile(p)
	c.err = nil
}

func (c *Controller) toOnboarding() {
	c.state = StateNeedsOnboarding
	c.form = FormOnboarding
	c.profile = nil
	c.draft = entity.ProfileDraft{Email: c.identity.Email}
	c.err = nil
}

func (c *Controller) toEditing() {
	c.state = StateEditing
	c.form = FormEdit
	c.draft = entity.DraftFromProfile(c.profile)
	c.err = nil
}
