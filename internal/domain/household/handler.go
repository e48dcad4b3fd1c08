package household

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
	read := api.Group("/households", auth.RequireAuthenticated())
	read.GET("", h.List)
	read.GET("/archived", h.ListArchived)
	read.GET("/:id", h.Get)
	read.GET("/:id/members", h.Members)

	write := api.Group("/households", auth.RequireRole(auth.RoleSecretary))
	write.POST("", h.Create)
	write.PUT("/:id", h.Update)
	write.DELETE("/:id", h.Delete)
	write.POST("/:id/restore", h.Restore)
}

func (h *Handler) Create(c echo.Context) error {
	var hh Household
	if err := apiresp.Bind(c, &hh); err != nil {
		return err
	}
	if err := h.svc.Create(c.Request().Context(), &hh); err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.OK(c, http.StatusCreated, hh)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := apiresp.ParamID(c)
	if err != nil {
		return err
	}
	hh, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.OK(c, http.StatusOK, hh)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := apiresp.ParamID(c)
	if err != nil {
		return err
	}
	var hh Household
	if err := apiresp.Bind(c, &hh); err != nil {
		return err
	}
	hh.ID = id
	if err := h.svc.Update(c.Request().Context(), &hh); err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.OK(c, http.StatusOK, hh)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := apiresp.ParamID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.Message(c, http.StatusOK, "household archived")
}

func (h *Handler) Restore(c echo.Context) error {
	id, err := apiresp.ParamID(c)
	if err != nil {
		return err
	}
	hh, err := h.svc.Restore(c.Request().Context(), id)
	if err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.OK(c, http.StatusOK, hh)
}

func (h *Handler) Members(c echo.Context) error {
	id, err := apiresp.ParamID(c)
	if err != nil {
		return err
	}
	members, err := h.svc.Members(c.Request().Context(), id)
	if err != nil {
		return apiresp.FromError(err)
	}
	if members == nil {
		members = []*resident.Resident{}
	}
	return apiresp.OK(c, http.StatusOK, members)
}

func (h *Handler) List(c echo.Context) error { return h.list(c, false) }

func (h *Handler) ListArchived(c echo.Context) error { return h.list(c, true) }

func (h *Handler) list(c echo.Context, archived bool) error {
	pg := pagination.FromContext(c)
	f := ListFilter{
		Search:   pg.Pattern(),
		Purok:    strings.TrimSpace(c.QueryParam("purok")),
		Archived: archived,
	}
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return apiresp.FromError(err)
	}
	if items == nil {
		items = []*Household{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}
