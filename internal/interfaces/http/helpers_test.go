package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/materiales-portal/internal/application/auth"
	"github.com/jhoicas/materiales-portal/internal/application/dashboard"
	"github.com/jhoicas/materiales-portal/internal/application/dto"
	"github.com/jhoicas/materiales-portal/internal/domain"
	"github.com/jhoicas/materiales-portal/internal/domain/entity"
	"github.com/jhoicas/materiales-portal/internal/domain/repository"
	"github.com/jhoicas/materiales-portal/internal/infrastructure/session"
	apphttp "github.com/jhoicas/materiales-portal/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret  = "test-secret-key-for-unit-tests"
	testSignInPath = "/auth"
	testPassword   = "secreto123"
)

type memUsers struct {
	mu   sync.Mutex
	byID map[string]*entity.User
}

func (r *memUsers) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[u.ID] = u
	return nil
}

func (r *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id], nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

type memProfiles struct {
	mu        sync.Mutex
	byOwner   map[string]*entity.CustomerProfile
	createErr error
	creates   int
}

func (r *memProfiles) FindByOwner(_ context.Context, identityID string) (*entity.CustomerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byOwner[identityID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memProfiles) Create(_ context.Context, identityID string, d entity.ProfileDraft) (*entity.CustomerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createErr != nil {
		return nil, r.createErr
	}
	p := &entity.CustomerProfile{ID: "p-" + identityID, OwnerIdentityID: identityID, Name: d.Name, Email: d.Email, Phone: d.Phone, Company: d.Company}
	r.byOwner[identityID] = p
	cp := *p
	return &cp, nil
}

func (r *memProfiles) Update(_ context.Context, identityID, profileID string, patch entity.ProfilePatch) (*entity.CustomerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byOwner[identityID]
	if !ok || p.ID != profileID {
		return nil, domain.ErrNotFound
	}
	updated := p.Apply(patch)
	r.byOwner[identityID] = &updated
	return &updated, nil
}

type memRecords struct{}

func (memRecords) ListRecentQuotes(context.Context, int) ([]entity.Quote, error) {
	n := "COT-1"
	return []entity.Quote{{ID: "q1", QuoteNumber: &n, Status: entity.QuoteStatusPending, CreatedAt: time.Now()}}, nil
}

func (memRecords) ListRecentOrders(context.Context, int) ([]entity.Order, error) {
	return []entity.Order{}, nil
}

func (memRecords) Count(_ context.Context, kind repository.RecordKind, _ repository.CountFilter) (int, error) {
	if kind == repository.KindQuote {
		return 4, nil
	}
	return 2, nil
}

func (memRecords) OutstandingLines(context.Context, string) ([]entity.OutstandingInvoiceLine, error) {
	a := "150.50"
	return []entity.OutstandingInvoiceLine{{OutstandingAmount: &a}, {OutstandingAmount: nil}}, nil
}

type stubRenderer struct{}

func (stubRenderer) RenderStatement(context.Context, dashboard.StatementData) ([]byte, error) {
	return []byte("%PDF-1.3 stub"), nil
}

type testEnv struct {
	app      *fiber.App
	authUC   *auth.AuthUseCase
	registry *dashboard.Registry
	profiles *memProfiles
}

// buildTestApp construye la API completa sobre repositorios en memoria.
func buildTestApp(t *testing.T) *testEnv {
	t.Helper()
	log := zerolog.Nop()
	users := &memUsers{byID: map[string]*entity.User{}}
	profiles := &memProfiles{byOwner: map[string]*entity.CustomerProfile{}}
	authUC := auth.NewAuthUseCase(users, session.NewMemoryStore(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 60, Issuer: "test"})
	gate := auth.NewSessionGate(log)
	registry := dashboard.NewRegistry(time.Minute, log)
	agg := dashboard.NewStatsAggregator(memRecords{}, 5, log)
	mounter := dashboard.NewMounter(gate, profiles, agg, registry, 20, log)

	app := fiber.New(fiber.Config{
		// Silenciar errores internos en los tests
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Use(apphttp.RequestLogger(log))
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:     authUC,
		Gate:       gate,
		Mounter:    mounter,
		Registry:   registry,
		Statement:  stubRenderer{},
		SignInPath: testSignInPath,
		RootPath:   "/",
	})
	t.Cleanup(registry.CloseAll)
	return &testEnv{app: app, authUC: authUC, registry: registry, profiles: profiles}
}

// signIn registra una cuenta y devuelve "Bearer <token>" junto con el id de la identidad.
func (e *testEnv) signIn(t *testing.T, email string) (string, string) {
	t.Helper()
	u, err := e.authUC.Register(context.Background(), dto.RegisterRequest{Email: email, Password: testPassword})
	require.NoError(t, err)
	out, err := e.authUC.SignIn(context.Background(), dto.SignInRequest{Email: email, Password: testPassword})
	require.NoError(t, err)
	return "Bearer " + out.Token, u.ID
}

// signInAgain abre otra sesión de una cuenta ya registrada y devuelve "Bearer <token>".
func (e *testEnv) signInAgain(t *testing.T, email string) string {
	t.Helper()
	out, err := e.authUC.SignIn(context.Background(), dto.SignInRequest{Email: email, Password: testPassword})
	require.NoError(t, err)
	return "Bearer " + out.Token
}

// setProfiles reemplaza el estado del repositorio de perfiles en memoria.
func (e *testEnv) setProfiles(fn func(p *memProfiles)) {
	e.profiles.mu.Lock()
	defer e.profiles.mu.Unlock()
	fn(e.profiles)
}

// doRequest lanza la petición y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, method, path, authHeader string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// mountView monta una vista y espera a que terminen sus cargas iniciales.
func (e *testEnv) mountView(t *testing.T, authHeader, identityID string) dto.ViewResponse {
	t.Helper()
	resp := doRequest(t, e.app, http.MethodPost, "/api/dashboard/views", authHeader, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	view := decode[dto.ViewResponse](t, resp)
	v, err := e.registry.Get(view.ID, identityID)
	require.NoError(t, err)
	v.Wait()
	return view
}
