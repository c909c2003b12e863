package dashboard_test

import (
	"context"
	"sync"

	"github.com/jhoicas/materiales-portal/internal/application/notify"
	"github.com/jhoicas/materiales-portal/internal/domain"
	"github.com/jhoicas/materiales-portal/internal/domain/entity"
	"github.com/jhoicas/materiales-portal/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de prueba
// ──────────────────────────────────────────────────────────────────────────────

// fakeRecords respuestas fijas por consulta; errs indexado por nombre de consulta.
type fakeRecords struct {
	mu      sync.Mutex
	quotes  []entity.Quote
	orders  []entity.Order
	counts  map[string]int
	lines   []entity.OutstandingInvoiceLine
	errs    map[string]error
	calls   map[string]int
	lastIDs []string
	block   chan struct{}
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{counts: map[string]int{}, errs: map[string]error{}, calls: map[string]int{}}
}

func (f *fakeRecords) hit(ctx context.Context, name string) error {
	f.mu.Lock()
	f.calls[name]++
	block := f.block
	err := f.errs[name]
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeRecords) ListRecentQuotes(ctx context.Context, limit int) ([]entity.Quote, error) {
	if err := f.hit(ctx, "recent_quotes"); err != nil {
		return nil, err
	}
	return f.quotes, nil
}

func (f *fakeRecords) ListRecentOrders(ctx context.Context, limit int) ([]entity.Order, error) {
	if err := f.hit(ctx, "recent_orders"); err != nil {
		return nil, err
	}
	return f.orders, nil
}

func (f *fakeRecords) Count(ctx context.Context, kind repository.RecordKind, filter repository.CountFilter) (int, error) {
	name := "total_quotes"
	switch {
	case kind == repository.KindOrder && filter.PaymentStatus != "":
		name = "pending_orders"
	case kind == repository.KindOrder && filter.DeliveryStatus != "":
		name = "pending_deliveries"
	case kind == repository.KindOrder:
		name = "total_orders"
	}
	if err := f.hit(ctx, name); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[name], nil
}

func (f *fakeRecords) OutstandingLines(ctx context.Context, identityID string) ([]entity.OutstandingInvoiceLine, error) {
	f.mu.Lock()
	f.lastIDs = append(f.lastIDs, identityID)
	f.mu.Unlock()
	if err := f.hit(ctx, "outstanding_balance"); err != nil {
		return nil, err
	}
	return f.lines, nil
}

func (f *fakeRecords) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// fakeProfiles repositorio de perfiles mínimo.
type fakeProfiles struct {
	mu      sync.Mutex
	profile *entity.CustomerProfile
}

func (r *fakeProfiles) FindByOwner(_ context.Context, identityID string) (*entity.CustomerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.profile == nil || r.profile.OwnerIdentityID != identityID {
		return nil, domain.ErrNotFound
	}
	p := *r.profile
	return &p, nil
}

func (r *fakeProfiles) Create(_ context.Context, identityID string, d entity.ProfileDraft) (*entity.CustomerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profile = &entity.CustomerProfile{ID: "p-1", OwnerIdentityID: identityID, Name: d.Name, Email: d.Email, Phone: d.Phone, Company: d.Company}
	p := *r.profile
	return &p, nil
}

func (r *fakeProfiles) Update(_ context.Context, identityID, profileID string, patch entity.ProfilePatch) (*entity.CustomerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.profile == nil {
		return nil, domain.ErrNotFound
	}
	p := r.profile.Apply(patch)
	r.profile = &p
	return &p, nil
}

// fakeProvider proveedor de identidad con resultado fijo.
type fakeProvider struct {
	identity *entity.Identity
	err      error
}

func (p fakeProvider) CurrentIdentity(context.Context) (*entity.Identity, error) {
	return p.identity, p.err
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

func strPtr(s string) *string { return &s }
