package maternal

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/barangay/records/internal/domain/resident"
	"github.com/barangay/records/internal/platform/apiresp"
	"github.com/barangay/records/internal/platform/auth"
	"github.com/barangay/records/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("/maternal-health", auth.RequireAuthenticated())
	read.GET("", h.List)
	read.GET("/archived", h.ListArchived)
	read.GET("/eligible-mothers", h.EligibleMothers)
	read.GET("/:id", h.Get)

	write := api.Group("/maternal-health", auth.RequireRole(auth.RoleHealthWorker))
	write.POST("", h.Create)
	write.PUT("/:id", h.Update)
	write.DELETE("/:id", h.Delete)
	write.POST("/:id/restore", h.Restore)
}

func (h *Handler) Create(c echo.Context) error {
	var m Record
	if err := apiresp.Bind(c, &m); err != nil {
		return err
	}
	if err := h.svc.Create(c.Request().Context(), &m); err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.OK(c, http.StatusCreated, m)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := apiresp.ParamID(c)
	if err != nil {
		return err
	}
	m, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.OK(c, http.StatusOK, m)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := apiresp.ParamID(c)
	if err != nil {
		return err
	}
	var m Record
	if err := apiresp.Bind(c, &m); err != nil {
		return err
	}
	m.ID = id
	if err := h.svc.Update(c.Request().Context(), &m); err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.OK(c, http.StatusOK, m)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := apiresp.ParamID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.Message(c, http.StatusOK, "maternal health record archived")
}

func (h *Handler) Restore(c echo.Context) error {
	id, err := apiresp.ParamID(c)
	if err != nil {
		return err
	}
	m, err := h.svc.Restore(c.Request().Context(), id)
	if err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.OK(c, http.StatusOK, m)
}

func (h *Handler) EligibleMothers(c echo.Context) error {
	items, err := h.svc.EligibleMothers(c.Request().Context())
	if err != nil {
		return apiresp.FromError(err)
	}
	if items == nil {
		items = []*resident.Resident{}
	}
	return apiresp.OK(c, http.StatusOK, items)
}

func (h *Handler) List(c echo.Context) error { return h.list(c, false) }

func (h *Handler) ListArchived(c echo.Context) error { return h.list(c, true) }

func (h *Handler) list(c echo.Context, archived bool) error {
	pg := pagination.FromContext(c)
	residentID, err := apiresp.QueryUUID(c, "resident_id")
	if err != nil {
		return err
	}
	f := ListFilter{
		Search:     pg.Pattern(),
		ResidentID: residentID,
		Status:     strings.ToLower(strings.TrimSpace(c.QueryParam("status"))),
		Archived:   archived,
	}
	if f.Status != "" && f.Status != StatusOngoing && f.Status != StatusDelivered {
		return echo.NewHTTPError(http.StatusBadRequest, "status must be ongoing or delivered")
	}
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return apiresp.FromError(err)
	}
	if items == nil {
		items = []*Record{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}
