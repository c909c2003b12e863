package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/jhoicas/materiales-portal/internal/application/auth"
	"github.com/jhoicas/materiales-portal/internal/application/dto"
	"github.com/jhoicas/materiales-portal/internal/domain/entity"
)

// Locals keys para la identidad y el token de la petición.
const (
	LocalIdentity = "identity"
	LocalToken    = "session_token"
)

// SessionCookie nombre de la cookie de sesión emitida al iniciar sesión.
const SessionCookie = "session"

// AuthMiddleware resuelve la sesión con el gate. Sin sesión responde 401 con la ruta de
// ingreso para que el shell redirija; nunca deja pasar una petición sin identidad.
func AuthMiddleware(uc *auth.AuthUseCase, gate *auth.SessionGate, signInPath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := TokenFromRequest(c)
		session := gate.Resolve(c.UserContext(), uc.ProviderFor(token))
		if !session.Authenticated() {
			return unauthenticated(c, signInPath)
		}
		c.Locals(LocalIdentity, *session.Identity)
		c.Locals(LocalToken, token)
		return c.Next()
	}
}

// TokenFromRequest extrae el token del header "Authorization: Bearer <token>" o, si no
// viene, de la cookie de sesión. Devuelve una copia: la vista montada la conserva más allá
// de la petición.
func TokenFromRequest(c *fiber.Ctx) string {
	if authHeader := c.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return utils.CopyString(strings.TrimSpace(parts[1]))
		}
		return ""
	}
	return utils.CopyString(c.Cookies(SessionCookie))
}

// GetIdentity devuelve la identidad del contexto (después del middleware de auth).
func GetIdentity(c *fiber.Ctx) (entity.Identity, bool) {
	v, ok := c.Locals(LocalIdentity).(entity.Identity)
	return v, ok
}

// GetIdentityID devuelve el id de la identidad o "" si no hay.
func GetIdentityID(c *fiber.Ctx) string {
	id, _ := GetIdentity(c)
	return id.ID
}

// GetToken devuelve el token de la petición autenticada.
func GetToken(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalToken).(string)
	return s
}

func unauthenticated(c *fiber.Ctx, signInPath string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Code:     "UNAUTHENTICATED",
		Message:  "sesión requerida",
		Redirect: signInPath,
	})
}
