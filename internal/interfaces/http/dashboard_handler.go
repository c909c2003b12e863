package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/materiales-portal/internal/application/auth"
	"github.com/jhoicas/materiales-portal/internal/application/dashboard"
	"github.com/jhoicas/materiales-portal/internal/application/dto"
	"github.com/jhoicas/materiales-portal/internal/application/notify"
	"github.com/jhoicas/materiales-portal/internal/application/profile"
	"github.com/jhoicas/materiales-portal/internal/domain/entity"
)

// DashboardHandler maneja las vistas montadas del tablero de operaciones.
type DashboardHandler struct {
	auth       *auth.AuthUseCase
	mounter    *dashboard.Mounter
	registry   *dashboard.Registry
	renderer   dashboard.StatementRenderer
	signInPath string
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(
	authUC *auth.AuthUseCase,
	mounter *dashboard.Mounter,
	registry *dashboard.Registry,
	renderer dashboard.StatementRenderer,
	signInPath string,
) *DashboardHandler {
	return &DashboardHandler{auth: authUC, mounter: mounter, registry: registry, renderer: renderer, signInPath: signInPath}
}

// Mount godoc
// @Summary      Montar el tablero
// @Description  Verifica la sesión y crea una vista. La verificación de perfil y la carga de
// @Description  estadísticas arrancan en paralelo; consultar la vista para ver su avance.
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      201   {object}  dto.ViewResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/dashboard/views [post]
func (h *DashboardHandler) Mount(c *fiber.Ctx) error {
	v, err := h.mounter.Mount(c.UserContext(), h.auth.ProviderFor(GetToken(c)))
	if err != nil {
		return writeError(c, err, h.signInPath)
	}
	return c.Status(fiber.StatusCreated).JSON(toViewResponse(v))
}

// Get godoc
// @Summary      Estado de una vista
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "id de la vista"
// @Success      200  {object}  dto.ViewResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/dashboard/views/{id} [get]
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	v, err := h.view(c)
	if err != nil {
		return writeError(c, err, h.signInPath)
	}
	return c.JSON(toViewResponse(v))
}

// Unmount godoc
// @Summary      Desmontar una vista
// @Description  Las operaciones en vuelo se descartan sin efectos visibles.
// @Tags         dashboard
// @Security     BearerAuth
// @Param        id   path  string  true  "id de la vista"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/dashboard/views/{id} [delete]
func (h *DashboardHandler) Unmount(c *fiber.Ctx) error {
	if err := h.registry.Remove(c.Params("id"), GetIdentityID(c)); err != nil {
		return writeError(c, err, h.signInPath)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UpdateDraft godoc
// @Summary      Modificar campos del formulario de perfil
// @Tags         dashboard
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                  true  "id de la vista"
// @Param        body  body  dto.UpdateDraftRequest  true  "campos a modificar"
// @Success      200   {object}  dto.ProfileStateResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/dashboard/views/{id}/profile/draft [patch]
func (h *DashboardHandler) UpdateDraft(c *fiber.Ctx) error {
	v, err := h.view(c)
	if err != nil {
		return writeError(c, err, h.signInPath)
	}
	var in dto.UpdateDraftRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	changes := []struct {
		field entity.ProfileField
		value *string
	}{
		{entity.FieldName, in.Name},
		{entity.FieldEmail, in.Email},
		{entity.FieldPhone, in.Phone},
		{entity.FieldCompany, in.Company},
	}
	for _, ch := range changes {
		if ch.value == nil {
			continue
		}
		if err := v.Profile.SetField(ch.field, *ch.value); err != nil {
			return writeError(c, err, h.signInPath)
		}
	}
	return c.JSON(toProfileState(v.Profile.Snapshot()))
}

// BeginEdit godoc
// @Summary      Abrir el formulario de edición del perfil
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "id de la vista"
// @Success      200  {object}  dto.ProfileStateResponse
// @Router       /api/dashboard/views/{id}/profile/edit [post]
func (h *DashboardHandler) BeginEdit(c *fiber.Ctx) error {
	v, err := h.view(c)
	if err != nil {
		return writeError(c, err, h.signInPath)
	}
	ctx, cancel := v.Bind(c.UserContext())
	defer cancel()
	if err := v.Profile.BeginEdit(ctx); err != nil {
		return writeError(c, err, h.signInPath)
	}
	return c.JSON(toProfileState(v.Profile.Snapshot()))
}

// CancelEdit godoc
// @Summary      Cerrar el formulario de edición sin guardar
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "id de la vista"
// @Success      200  {object}  dto.ProfileStateResponse
// @Router       /api/dashboard/views/{id}/profile/cancel [post]
func (h *DashboardHandler) CancelEdit(c *fiber.Ctx) error {
	v, err := h.view(c)
	if err != nil {
		return writeError(c, err, h.signInPath)
	}
	if err := v.Profile.CancelEdit(); err != nil {
		return writeError(c, err, h.signInPath)
	}
	return c.JSON(toProfileState(v.Profile.Snapshot()))
}

// Submit godoc
// @Summary      Enviar el formulario de perfil (alta o edición)
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "id de la vista"
// @Success      200  {object}  dto.ProfileStateResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/dashboard/views/{id}/profile/submit [post]
func (h *DashboardHandler) Submit(c *fiber.Ctx) error {
	v, err := h.view(c)
	if err != nil {
		return writeError(c, err, h.signInPath)
	}
	ctx, cancel := v.Bind(c.UserContext())
	defer cancel()
	// El reintento del alta revalida la sesión de esta petición, no la que montó la vista.
	if err := v.Profile.Submit(ctx, h.auth.ProviderFor(GetToken(c))); err != nil {
		return writeError(c, err, h.signInPath)
	}
	return c.JSON(toProfileState(v.Profile.Snapshot()))
}

// RefreshStats godoc
// @Summary      Recargar las estadísticas
// @Tags         dashboard
// @Security     BearerAuth
// @Param        id   path  string  true  "id de la vista"
// @Success      202
// @Router       /api/dashboard/views/{id}/stats/refresh [post]
func (h *DashboardHandler) RefreshStats(c *fiber.Ctx) error {
	v, err := h.view(c)
	if err != nil {
		return writeError(c, err, h.signInPath)
	}
	v.RefreshStats()
	return c.SendStatus(fiber.StatusAccepted)
}

// Notifications godoc
// @Summary      Avisos pendientes de la vista
// @Description  Devuelve los avisos en orden de llegada y vacía la cola.
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "id de la vista"
// @Success      200  {array}  dto.NotificationDTO
// @Router       /api/dashboard/views/{id}/notifications [get]
func (h *DashboardHandler) Notifications(c *fiber.Ctx) error {
	v, err := h.view(c)
	if err != nil {
		return writeError(c, err, h.signInPath)
	}
	return c.JSON(toNotifications(v.Notifications()))
}

// Statement godoc
// @Summary      Estado de cuenta en PDF
// @Tags         dashboard
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  string  true  "id de la vista"
// @Success      200
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/dashboard/views/{id}/statement.pdf [get]
func (h *DashboardHandler) Statement(c *fiber.Ctx) error {
	v, err := h.view(c)
	if err != nil {
		return writeError(c, err, h.signInPath)
	}
	out, err := v.Statement(c.UserContext(), h.renderer)
	if err != nil {
		return writeError(c, err, h.signInPath)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="estado-de-cuenta.pdf"`)
	return c.Send(out)
}

func (h *DashboardHandler) view(c *fiber.Ctx) (*dashboard.View, error) {
	return h.registry.Get(c.Params("id"), GetIdentityID(c))
}

// ── mapeo a DTOs ──────────────────────────────────────────────────────────────

func toViewResponse(v *dashboard.View) dto.ViewResponse {
	snap, loading := v.Stats()
	out := dto.ViewResponse{
		ID:           v.ID,
		Identity:     dto.IdentityResponse{ID: v.Identity.ID, Email: v.Identity.Email},
		Profile:      toProfileState(v.Profile.Snapshot()),
		StatsLoading: loading,
	}
	if snap != nil {
		s := toSnapshotDTO(*snap)
		out.Stats = &s
	}
	return out
}

func toProfileState(s profile.Snapshot) dto.ProfileStateResponse {
	out := dto.ProfileStateResponse{
		State:    string(s.State),
		FormOpen: s.FormOpen(),
		FormMode: string(s.Form),
	}
	if s.FormOpen() {
		out.Draft = &dto.ProfileDraftDTO{Name: s.Draft.Name, Email: s.Draft.Email, Phone: s.Draft.Phone, Company: s.Draft.Company}
	}
	if s.Profile != nil {
		out.Profile = &dto.ProfileResponse{
			ID:        s.Profile.ID,
			Name:      s.Profile.Name,
			Email:     s.Profile.Email,
			Phone:     s.Profile.Phone,
			Company:   s.Profile.Company,
			UpdatedAt: s.Profile.UpdatedAt,
		}
	}
	if s.Err != nil {
		out.Error = s.Err.Error()
	}
	return out
}

func toSnapshotDTO(s dashboard.Snapshot) dto.DashboardSnapshotDTO {
	out := dto.DashboardSnapshotDTO{
		Stats: dto.DashboardStatsDTO{
			TotalQuotes:        s.Stats.TotalQuotes,
			TotalOrders:        s.Stats.TotalOrders,
			PendingOrders:      s.Stats.PendingOrders,
			PendingDeliveries:  s.Stats.PendingDeliveries,
			OutstandingBalance: s.Stats.OutstandingBalance,
		},
		RecentQuotes: make([]dto.QuoteDTO, 0, len(s.RecentQuotes)),
		RecentOrders: make([]dto.OrderDTO, 0, len(s.RecentOrders)),
		Degraded:     s.Degraded,
		LoadedAt:     s.LoadedAt,
	}
	for _, q := range s.RecentQuotes {
		out.RecentQuotes = append(out.RecentQuotes, dto.QuoteDTO{ID: q.ID, QuoteNumber: q.QuoteNumber, Status: q.Status, CreatedAt: q.CreatedAt})
	}
	for _, o := range s.RecentOrders {
		out.RecentOrders = append(out.RecentOrders, dto.OrderDTO{
			ID: o.ID, OrderNumber: o.OrderNumber, PaymentStatus: o.PaymentStatus, DeliveryStatus: o.DeliveryStatus, CreatedAt: o.CreatedAt,
		})
	}
	return out
}

func toNotifications(ns []notify.Notification) []dto.NotificationDTO {
	out := make([]dto.NotificationDTO, 0, len(ns))
	for _, n := range ns {
		out = append(out, dto.NotificationDTO{Kind: string(n.Kind), Title: n.Title, Description: n.Description, At: n.At})
	}
	return out
}
