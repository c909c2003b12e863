package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/materiales-portal/internal/application/dto"
	"github.com/jhoicas/materiales-portal/internal/domain"
	"github.com/jhoicas/materiales-portal/internal/domain/entity"
	"github.com/jhoicas/materiales-portal/internal/domain/repository"
	"github.com/jhoicas/materiales-portal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// RevocationStore guarda las sesiones cerradas antes de expirar (por jti).
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthUseCase casos de uso de autenticación: registro, inicio/cierre de sesión e identidad actual.
type AuthUseCase struct {
	userRepo repository.UserRepository
	revoked  RevocationStore
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, revoked RevocationStore, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, revoked: revoked, jwtCfg: jwtCfg}
}

// Register crea una cuenta: hashea password con bcrypt y persiste.
// Devuelve ErrEmailAlreadyExists si el email ya existe.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	email := strings.TrimSpace(in.Email)
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// SignIn verifica email/password y emite el token de sesión (beginSession).
func (uc *AuthUseCase) SignIn(ctx context.Context, in dto.SignInRequest) (*dto.SignInResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.Active() {
		return nil, domain.ErrForbidden
	}
	token, _, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Email, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.SignInResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(time.Duration(uc.jwtCfg.ExpMinutes) * time.Minute),
		Identity:  dto.IdentityResponse{ID: user.ID, Email: user.Email},
	}, nil
}

// SignOut revoca la sesión del token hasta su expiración (endSession).
// Un token ya inválido no es error: la sesión ya no existe.
func (uc *AuthUseCase) SignOut(ctx context.Context, token string) error {
	s, err := jwt.Parse(uc.jwtCfg.Secret, token)
	if err != nil || s.TokenID == "" {
		return nil
	}
	return uc.revoked.Revoke(ctx, s.TokenID, time.Until(s.ExpiresAt))
}

// CurrentIdentity resuelve la identidad del token (getCurrentIdentity).
// Token inválido, revocado, o usuario inexistente/inactivo -> ErrUnauthenticated.
// Un fallo del almacén o de la base se devuelve tal cual; el gate lo trata igual (falla cerrado).
func (uc *AuthUseCase) CurrentIdentity(ctx context.Context, token string) (*entity.Identity, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}
	s, err := jwt.Parse(uc.jwtCfg.Secret, token)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}
	if s.TokenID != "" {
		revoked, err := uc.revoked.IsRevoked(ctx, s.TokenID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, domain.ErrUnauthenticated
		}
	}
	user, err := uc.userRepo.GetByID(ctx, s.IdentityID)
	if err != nil {
		return nil, err
	}
	if !user.Active() {
		return nil, domain.ErrUnauthenticated
	}
	return &entity.Identity{
		ID:        s.IdentityID,
		Email:     s.Email,
		SessionID: s.TokenID,
		IssuedAt:  s.IssuedAt,
		ExpiresAt: s.ExpiresAt,
	}, nil
}

// ProviderFor devuelve un IdentityProvider atado al token de la petición.
func (uc *AuthUseCase) ProviderFor(token string) IdentityProvider {
	return tokenProvider{uc: uc, token: token}
}

type tokenProvider struct {
	uc    *AuthUseCase
	token string
}

func (p tokenProvider) CurrentIdentity(ctx context.Context) (*entity.Identity, error) {
	return p.uc.CurrentIdentity(ctx, p.token)
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
