package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/materiales-portal/internal/application/auth"
	"github.com/jhoicas/materiales-portal/internal/application/dashboard"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	Gate         *auth.SessionGate
	Mounter      *dashboard.Mounter
	Registry     *dashboard.Registry
	Statement    dashboard.StatementRenderer
	SignInPath   string
	RootPath     string
	SecureCookie bool
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, deps.RootPath, deps.SecureCookie)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/sign-in", authHandler.SignIn)
	authGroup.Post("/sign-out", authHandler.SignOut)

	requireSession := AuthMiddleware(deps.AuthUC, deps.Gate, deps.SignInPath)
	authGroup.Get("/session", requireSession, authHandler.Session)

	// Tablero (requiere sesión; las vistas pertenecen a la identidad que las montó)
	views := api.Group("/dashboard/views", requireSession)
	h := NewDashboardHandler(deps.AuthUC, deps.Mounter, deps.Registry, deps.Statement, deps.SignInPath)
	views.Post("/", h.Mount)
	views.Get("/:id", h.Get)
	views.Delete("/:id", h.Unmount)
	views.Patch("/:id/profile/draft", h.UpdateDraft)
	views.Post("/:id/profile/edit", h.BeginEdit)
	views.Post("/:id/profile/cancel", h.CancelEdit)
	views.Post("/:id/profile/submit", h.Submit)
	views.Post("/:id/stats/refresh", h.RefreshStats)
	views.Get("/:id/notifications", h.Notifications)
	views.Get("/:id/statement.pdf", h.Statement)
}
