package profile_test

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/materiales-portal/internal/application/notify"
	"github.com/jhoicas/materiales-portal/internal/domain"
	"github.com/jhoicas/materiales-portal/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de prueba
// ──────────────────────────────────────────────────────────────────────────────

// fakeProfileRepo repositorio en memoria con fallos programables.
type fakeProfileRepo struct {
	mu       sync.Mutex
	profile  *entity.CustomerProfile
	findErr  error
	createFn func(attempt int) error
	updateFn func() error
	block    chan struct{} // si no es nil, Create/Update esperan a que se cierre

	findGate    chan struct{} // si no es nil, la primera búsqueda espera a que se cierre
	findEntered chan struct{} // se cierra cuando esa búsqueda queda esperando

	finds, creates, updates int
	lastPatch               entity.ProfilePatch
}

func (r *fakeProfileRepo) FindByOwner(ctx context.Context, identityID string) (*entity.CustomerProfile, error) {
	r.mu.Lock()
	gate, entered := r.findGate, r.findEntered
	r.findGate, r.findEntered = nil, nil
	r.mu.Unlock()
	if gate != nil {
		if entered != nil {
			close(entered)
		}
		select {
		case <-gate:
		case <-ctx.Done():
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	if r.findErr != nil {
		return nil, r.findErr
	}
	if r.profile == nil || r.profile.OwnerIdentityID != identityID {
		return nil, domain.ErrNotFound
	}
	p := *r.profile
	return &p, nil
}

func (r *fakeProfileRepo) Create(ctx context.Context, identityID string, d entity.ProfileDraft) (*entity.CustomerProfile, error) {
	r.wait(ctx)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createFn != nil {
		if err := r.createFn(r.creates); err != nil {
			return nil, err
		}
	}
	now := time.Now()
	r.profile = &entity.CustomerProfile{
		ID: "profile-1", OwnerIdentityID: identityID,
		Name: d.Name, Email: d.Email, Phone: d.Phone, Company: d.Company,
		CreatedAt: now, UpdatedAt: now,
	}
	p := *r.profile
	return &p, nil
}

func (r *fakeProfileRepo) Update(ctx context.Context, identityID, profileID string, patch entity.ProfilePatch) (*entity.CustomerProfile, error) {
	r.wait(ctx)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	r.lastPatch = patch
	if r.updateFn != nil {
		if err := r.updateFn(); err != nil {
			return nil, err
		}
	}
	if r.profile == nil || r.profile.ID != profileID || r.profile.OwnerIdentityID != identityID {
		return nil, domain.ErrNotFound
	}
	updated := r.profile.Apply(patch)
	updated.UpdatedAt = time.Now()
	r.profile = &updated
	p := updated
	return &p, nil
}

func (r *fakeProfileRepo) wait(ctx context.Context) {
	r.mu.Lock()
	block := r.block
	r.mu.Unlock()
	if block == nil {
		return
	}
	select {
	case <-block:
	case <-ctx.Done():
	}
}

func (r *fakeProfileRepo) counts() (finds, creates, updates int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finds, r.creates, r.updates
}

// fakeSession proveedor de identidad con resultado fijo.
type fakeSession struct {
	mu       sync.Mutex
	identity *entity.Identity
	err      error
	calls    int
}

func (s *fakeSession) CurrentIdentity(context.Context) (*entity.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

// recordingNotifier guarda los avisos emitidos.
type recordingNotifier struct {
	mu    sync.Mutex
	items []notify.Notification
}

func (n *recordingNotifier) Notify(kind notify.Kind, title, description string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, notify.Notification{Kind: kind, Title: title, Description: description})
}

func (n *recordingNotifier) all() []notify.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Notification(nil), n.items...)
}
