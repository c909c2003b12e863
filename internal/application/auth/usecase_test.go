package auth_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/materiales-portal/internal/application/auth"
	"github.com/jhoicas/materiales-portal/internal/application/dto"
	"github.com/jhoicas/materiales-portal/internal/domain"
	"github.com/jhoicas/materiales-portal/internal/domain/entity"
	pkgjwt "github.com/jhoicas/materiales-portal/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de prueba
// ──────────────────────────────────────────────────────────────────────────────

type fakeUsers struct {
	mu    sync.Mutex
	byID  map[string]*entity.User
	err   error
	added int
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[string]*entity.User{}} }

func (r *fakeUsers) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[u.ID] = u
	r.added++
	return nil
}

func (r *fakeUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return r.byID[id], nil
}

func (r *fakeUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

type fakeRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func (s *fakeRevocations) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = ttl
	return nil
}

func (s *fakeRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.revoked[tokenID]
	return ok, nil
}

const testSecret = "test-secret-key-for-unit-tests"

func newUseCase() (*auth.AuthUseCase, *fakeUsers, *fakeRevocations) {
	users := newFakeUsers()
	rev := &fakeRevocations{revoked: map[string]time.Duration{}}
	uc := auth.NewAuthUseCase(users, rev, auth.JWTConfig{Secret: testSecret, ExpMinutes: 60, Issuer: "test"})
	return uc, users, rev
}

func registerAndSignIn(t *testing.T, uc *auth.AuthUseCase) (*dto.UserResponse, *dto.SignInResponse) {
	t.Helper()
	ctx := context.Background()
	u, err := uc.Register(ctx, dto.RegisterRequest{Email: "a@b.co", Password: "secreto123"})
	require.NoError(t, err)
	out, err := uc.SignIn(ctx, dto.SignInRequest{Email: "a@b.co", Password: "secreto123"})
	require.NoError(t, err)
	return u, out
}

// ──────────────────────────────────────────────────────────────────────────────
// Registro e inicio de sesión
// ──────────────────────────────────────────────────────────────────────────────

func TestRegister_HasheaPassword(t *testing.T) {
	uc, users, _ := newUseCase()

	u, err := uc.Register(context.Background(), dto.RegisterRequest{Email: " a@b.co ", Password: "secreto123"})
	require.NoError(t, err)

	assert.Equal(t, "a@b.co", u.Email)
	assert.Equal(t, "a@b.co", u.Name, "sin nombre se usa el email")
	assert.Equal(t, entity.UserStatusActive, u.Status)
	stored := users.byID[u.ID]
	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secreto123")))
}

func TestRegister_EmailDuplicado(t *testing.T) {
	uc, users, _ := newUseCase()
	_, err := uc.Register(context.Background(), dto.RegisterRequest{Email: "a@b.co", Password: "secreto123"})
	require.NoError(t, err)

	_, err = uc.Register(context.Background(), dto.RegisterRequest{Email: "A@B.CO", Password: "otro12345"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	assert.Equal(t, 1, users.added)
}

func TestSignIn_CredencialesInvalidas(t *testing.T) {
	uc, _, _ := newUseCase()
	registerAndSignIn(t, uc)

	_, err := uc.SignIn(context.Background(), dto.SignInRequest{Email: "a@b.co", Password: "incorrecta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.SignIn(context.Background(), dto.SignInRequest{Email: "nadie@b.co", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestSignIn_CuentaInactiva(t *testing.T) {
	uc, users, _ := newUseCase()
	u, _ := registerAndSignIn(t, uc)
	users.byID[u.ID].Status = entity.UserStatusInactive

	_, err := uc.SignIn(context.Background(), dto.SignInRequest{Email: "a@b.co", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ──────────────────────────────────────────────────────────────────────────────
// Identidad actual y cierre de sesión
// ──────────────────────────────────────────────────────────────────────────────

func TestCurrentIdentity_TokenValido(t *testing.T) {
	uc, _, _ := newUseCase()
	u, out := registerAndSignIn(t, uc)

	id, err := uc.CurrentIdentity(context.Background(), out.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.ID)
	assert.Equal(t, "a@b.co", id.Email)
	assert.NotEmpty(t, id.SessionID)
}

func TestCurrentIdentity_NoAutenticado(t *testing.T) {
	uc, users, _ := newUseCase()
	u, out := registerAndSignIn(t, uc)

	_, err := uc.CurrentIdentity(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = uc.CurrentIdentity(context.Background(), "token.invalido.aqui")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	users.byID[u.ID].Status = entity.UserStatusInactive
	_, err = uc.CurrentIdentity(context.Background(), out.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	delete(users.byID, u.ID)
	_, err = uc.CurrentIdentity(context.Background(), out.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestSignOut_RevocaLaSesion(t *testing.T) {
	uc, _, rev := newUseCase()
	_, out := registerAndSignIn(t, uc)

	require.NoError(t, uc.SignOut(context.Background(), out.Token))

	s, err := pkgjwt.Parse(testSecret, out.Token)
	require.NoError(t, err)
	ttl, ok := rev.revoked[s.TokenID]
	require.True(t, ok)
	assert.Greater(t, ttl, 59*time.Minute, "la revocación dura lo que le queda al token")

	_, err = uc.CurrentIdentity(context.Background(), out.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestSignOut_TokenInvalido_NoEsError(t *testing.T) {
	uc, _, rev := newUseCase()
	assert.NoError(t, uc.SignOut(context.Background(), "basura"))
	assert.Empty(t, rev.revoked)
}

func TestProviderFor_FallaDelAlmacen_GateFallaCerrado(t *testing.T) {
	uc, _, rev := newUseCase()
	_, out := registerAndSignIn(t, uc)
	rev.err = errors.New("redis caído")

	_, err := uc.ProviderFor(out.Token).CurrentIdentity(context.Background())
	require.Error(t, err)

	session := auth.NewSessionGate(zerolog.Nop()).Resolve(context.Background(), uc.ProviderFor(out.Token))
	assert.False(t, session.Authenticated())
}
